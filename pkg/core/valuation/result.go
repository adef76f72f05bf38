package valuation

import (
	"encoding/json"

	"fcf_valuation/pkg/core/assumption"
	"fcf_valuation/pkg/core/calc"
	"fcf_valuation/pkg/core/projection"
)

// Result is the outcome of one valuation. It is built once by CalculateDCF and
// never changes; slice accessors return copies.
type Result struct {
	ticker            string
	assumptions       assumption.Set
	historicalWindow  calc.GrowthWindow
	growth            assumption.Growth
	years             []projection.ProjectedYear
	futureCashFlows   []float64
	discountedFlows   []float64
	pvExplicit        float64
	terminalValue     float64
	pvTerminal        float64
	enterpriseValue   float64
	sharesOutstanding int64
	lastKnownCashFlow float64
	intrinsicPerShare float64
}

func (r *Result) Ticker() string { return r.ticker }
func (r *Result) Assumptions() assumption.Set { return r.assumptions.Clone() }
func (r *Result) HistoricalWindow() calc.GrowthWindow { return r.historicalWindow }
func (r *Result) HistoricalCAGR() float64 { return r.historicalWindow.Rate }
func (r *Result) InitialGrowthUsed() float64 { return r.growth.Initial }
func (r *Result) ReducedGrowthUsed() float64 { return r.growth.Reduced }
func (r *Result) Growth() assumption.Growth { return r.growth }
func (r *Result) SumDiscountedCashFlows() float64 { return r.pvExplicit }
func (r *Result) TerminalValue() float64 { return r.terminalValue }
func (r *Result) DiscountedTerminalValue() float64 { return r.pvTerminal }
func (r *Result) IntrinsicValueTotal() float64 { return r.enterpriseValue }
func (r *Result) IntrinsicValuePerShare() float64 { return r.intrinsicPerShare }
func (r *Result) SharesOutstanding() int64 { return r.sharesOutstanding }
func (r *Result) LastKnownCashFlow() float64 { return r.lastKnownCashFlow }

func (r *Result) FutureCashFlows() []float64 {
	return append([]float64(nil), r.futureCashFlows...)
}

func (r *Result) DiscountedCashFlows() []float64 {
	return append([]float64(nil), r.discountedFlows...)
}

func (r *Result) ProjectedYears() []projection.ProjectedYear {
	return append([]projection.ProjectedYear(nil), r.years...)
}

// View is the wire shape of a Result.
type View struct {
	Ticker                  string                     `json:"ticker"`
	IntrinsicValueTotal     float64                    `json:"intrinsic_value_total"`
	IntrinsicValuePerShare  float64                    `json:"intrinsic_value_per_share"`
	FutureCashFlows         []float64                  `json:"future_cash_flows"`
	DiscountedCashFlows     []float64                  `json:"discounted_cash_flows"`
	SumDiscountedCashFlows  float64                    `json:"sum_discounted_cash_flows"`
	TerminalValue           float64                    `json:"terminal_value"`
	DiscountedTerminalValue float64                    `json:"discounted_terminal_value"`
	SharesOutstanding       int64                      `json:"shares_outstanding"`
	LastKnownCashFlow       float64                    `json:"last_known_cash_flow"`
	InitialGrowthUsed       float64                    `json:"initial_growth_used"`
	ReducedGrowthUsed       float64                    `json:"reduced_growth_used"`
	HistoricalCAGR          float64                    `json:"historical_cagr"`
	HistoricalWindow        calc.GrowthWindow          `json:"historical_window"`
	Growth                  assumption.Growth          `json:"growth"`
	Projection              []projection.ProjectedYear `json:"projection"`
	Assumptions             assumption.Set             `json:"assumptions"`
}

// View copies the result into its serializable form.
func (r *Result) View() View {
	return View{
		Ticker:                  r.ticker,
		IntrinsicValueTotal:     r.enterpriseValue,
		IntrinsicValuePerShare:  r.intrinsicPerShare,
		FutureCashFlows:         r.FutureCashFlows(),
		DiscountedCashFlows:     r.DiscountedCashFlows(),
		SumDiscountedCashFlows:  r.pvExplicit,
		TerminalValue:           r.terminalValue,
		DiscountedTerminalValue: r.pvTerminal,
		SharesOutstanding:       r.sharesOutstanding,
		LastKnownCashFlow:       r.lastKnownCashFlow,
		InitialGrowthUsed:       r.growth.Initial,
		ReducedGrowthUsed:       r.growth.Reduced,
		HistoricalCAGR:          r.historicalWindow.Rate,
		HistoricalWindow:        r.historicalWindow,
		Growth:                  r.growth,
		Projection:              r.ProjectedYears(),
		Assumptions:             r.Assumptions(),
	}
}

func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}
