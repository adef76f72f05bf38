package calc

import (
	"math"

	"fcf_valuation/pkg/core/valerr"
)

// GrowthWindow is the lookback period a historical growth rate was measured over.
type GrowthWindow struct {
	Years int     `json:"years"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Rate  float64 `json:"rate"`
}

// CAGR calculates compound annual growth between two values.
//
// FORMULA: CAGR = (End / Start)^(1 / Years) - 1
//
// Callers must ensure Start and End share a sign; otherwise the ratio is
// negative and the fractional power is not real.
func CAGR(start, end float64, years int) float64 {
	return math.Pow(end/start, 1/float64(years)) - 1
}

// LongestWindowCAGR measures growth from the most recent value back over the
// longest window (at most maxYears) whose endpoints are non-zero and share a sign.
//
// maxYears is clamped to len(values)-1. Windows are tried from longest to
// shortest and the first valid one wins.
func LongestWindowCAGR(values []float64, maxYears int) (GrowthWindow, error) {
	if err := checkSeries(values, 2); err != nil {
		return GrowthWindow{}, err
	}
	if maxYears < 1 {
		return GrowthWindow{}, valerr.New(valerr.KindInvalidAssumption, "max_years", maxYears,
			"lookback must be at least one year")
	}

	n := len(values)
	if maxYears > n-1 {
		maxYears = n - 1
	}

	endIdx := n - 1
	end := values[endIdx]
	for years := maxYears; years >= 1; years-- {
		start := values[endIdx-years]
		if sameSign(start, end) {
			return GrowthWindow{Years: years, Start: start, End: end, Rate: CAGR(start, end, years)}, nil
		}
	}

	return GrowthWindow{}, valerr.New(valerr.KindNoValidGrowthWindow, "free_cash_flow", values,
		"no window of 1..%d years has non-zero start and end values of the same sign", maxYears)
}

// FixedWindowCAGR measures growth over exactly the last `years` periods.
// It fails instead of searching when that window is not sign-consistent.
func FixedWindowCAGR(values []float64, years int) (GrowthWindow, error) {
	if years < 1 {
		return GrowthWindow{}, valerr.New(valerr.KindInvalidAssumption, "years", years,
			"lookback must be at least one year")
	}
	if err := checkSeries(values, years+1); err != nil {
		return GrowthWindow{}, err
	}

	end := values[len(values)-1]
	start := values[len(values)-1-years]
	if !sameSign(start, end) {
		return GrowthWindow{}, valerr.New(valerr.KindNoValidGrowthWindow, "free_cash_flow", values,
			"%d-year window from %.2f to %.2f is not sign-consistent", years, start, end)
	}
	return GrowthWindow{Years: years, Start: start, End: end, Rate: CAGR(start, end, years)}, nil
}

func checkSeries(values []float64, minLen int) error {
	if len(values) < minLen {
		return valerr.New(valerr.KindInsufficientHistory, "free_cash_flow", values,
			"need at least %d periods, got %d", minLen, len(values))
	}
	for i, v := range values {
		if !isFinite(v) {
			return valerr.New(valerr.KindInvalidAssumption, "free_cash_flow", values,
				"period %d is not a finite number", i)
		}
	}
	return nil
}

// sameSign is false when either value is zero.
func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
