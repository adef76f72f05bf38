// Package calc provides deterministic financial calculations for the valuation engine.
// This file implements time-value-of-money helpers: present value and Gordon Growth terminal value.
package calc

import (
	"math"

	"fcf_valuation/pkg/core/valerr"
)

// =============================================================================
// PRESENT VALUE
// =============================================================================

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	return cashFlow / math.Pow(1+discountRate, float64(periods))
}

// DiscountSeries converts each future cash flow to present value.
//
// FORMULA: PV_t = CF_t / (1 + r)^t, t = 1..n
//
// Cash flows are assumed to be at end of each period (ordinary annuity),
// so the first element is discounted one full period.
func DiscountSeries(cashFlows []float64, discountRate float64) ([]float64, error) {
	if err := ValidateDiscountRate(discountRate); err != nil {
		return nil, err
	}
	pvs := make([]float64, len(cashFlows))
	for t, cf := range cashFlows {
		pvs[t] = PresentValue(cf, discountRate, t+1)
	}
	return pvs, nil
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += PresentValue(cf, discountRate, t+1)
	}
	return pv
}

// =============================================================================
// TERMINAL VALUE
// =============================================================================

// TerminalValueGordonGrowth calculates terminal value using Gordon Growth Model.
//
// FORMULA: TV = CF_n × (1 + g) / (r - g)
//
// Where:
//   - CF_n = Final projected cash flow of the explicit horizon
//   - r = Discount rate (must be > 0)
//   - g = Terminal growth rate (must be < r)
//
// A non-positive spread has no economic meaning and is rejected rather than
// producing a negative or infinite value.
func TerminalValueGordonGrowth(lastCashFlow, discountRate, growthRate float64) (float64, error) {
	if err := ValidateDiscountRate(discountRate); err != nil {
		return 0, err
	}
	if !isFinite(growthRate) {
		return 0, valerr.New(valerr.KindInvalidAssumption, "terminal_growth_rate", growthRate,
			"terminal growth rate must be a finite number")
	}
	if discountRate <= growthRate {
		return 0, valerr.New(valerr.KindInvalidTerminalSpread, "terminal_growth_rate", growthRate,
			"discount rate %.4f must exceed terminal growth rate %.4f", discountRate, growthRate)
	}
	return lastCashFlow * (1 + growthRate) / (discountRate - growthRate), nil
}

// DiscountTerminalValue brings a terminal value at the end of the horizon back to today.
//
// FORMULA: PV(TV) = TV / (1 + r)^n
func DiscountTerminalValue(terminalValue, discountRate float64, horizon int) float64 {
	return PresentValue(terminalValue, discountRate, horizon)
}

// ValidateDiscountRate rejects NaN, ±Inf and non-positive rates.
func ValidateDiscountRate(r float64) error {
	if !isFinite(r) {
		return valerr.New(valerr.KindInvalidAssumption, "discount_rate", r, "discount rate must be a finite number")
	}
	if r <= 0 {
		return valerr.New(valerr.KindInvalidAssumption, "discount_rate", r, "discount rate must be greater than zero")
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
