package valuation

import (
	"fcf_valuation/pkg/core/assumption"
	"fcf_valuation/pkg/core/calc"
	"fcf_valuation/pkg/core/projection"
	"fcf_valuation/pkg/core/valerr"
	"fcf_valuation/pkg/models"
)

// DCFInput encapsulates the market data a Free Cash Flow valuation consumes.
type DCFInput struct {
	Series            models.CashFlowSeries
	SharesOutstanding int64
}

// CalculateDCF performs the two-stage free-cash-flow valuation.
//
//  1. Historical CAGR over the longest sign-consistent window
//  2. Resolve initial/reduced growth (override, historical or faded)
//  3. Project the horizon and discount each year
//  4. Gordon Growth terminal value, discounted at the horizon
//  5. Enterprise value = Σ PV(FCF) + PV(TV); per-share = EV / shares
//
// It is pure: the same input and assumptions always give the same Result.
func CalculateDCF(input DCFInput, set assumption.Set) (*Result, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}

	values := input.Series.Values()
	if len(values) < 2 {
		return nil, valerr.New(valerr.KindInsufficientHistory, "ticker", input.Series.Ticker,
			"need at least 2 periods of free cash flow, got %d", len(values))
	}
	lastFCF := values[len(values)-1]

	// 1. Historical growth
	window, err := calc.LongestWindowCAGR(values, len(values)-1)
	if err != nil {
		return nil, err
	}

	// 2. Stage rates
	growth := set.ResolveGrowth(window.Rate)

	// 3. Explicit horizon
	schedule, err := projection.TwoStage(growth.Initial, growth.Reduced, set.Horizon, set.StageSplit)
	if err != nil {
		return nil, err
	}
	years := projection.Project(lastFCF, schedule)
	future := projection.Values(years)

	discounted, err := calc.DiscountSeries(future, set.DiscountRate)
	if err != nil {
		return nil, err
	}

	// 4. Terminal value
	tv, err := calc.TerminalValueGordonGrowth(future[len(future)-1], set.DiscountRate, set.TerminalGrowth)
	if err != nil {
		return nil, err
	}
	pvTerminal := calc.DiscountTerminalValue(tv, set.DiscountRate, set.Horizon)

	// 5. Aggregation
	var pvFCF float64
	for _, pv := range discounted {
		pvFCF += pv
	}
	ev := pvFCF + pvTerminal

	if input.SharesOutstanding <= 0 {
		return nil, valerr.New(valerr.KindMissingShareCount, "shares_outstanding", input.SharesOutstanding,
			"shares outstanding unavailable for %s", input.Series.Ticker)
	}

	return &Result{
		ticker:            input.Series.Ticker,
		assumptions:       set.Clone(),
		historicalWindow:  window,
		growth:            growth,
		years:             years,
		futureCashFlows:   future,
		discountedFlows:   discounted,
		pvExplicit:        pvFCF,
		terminalValue:     tv,
		pvTerminal:        pvTerminal,
		enterpriseValue:   ev,
		sharesOutstanding: input.SharesOutstanding,
		lastKnownCashFlow: lastFCF,
		intrinsicPerShare: ev / float64(input.SharesOutstanding),
	}, nil
}
