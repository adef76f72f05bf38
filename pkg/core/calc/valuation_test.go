package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcf_valuation/pkg/core/valerr"
)

func TestDiscountSeries(t *testing.T) {
	pvs, err := DiscountSeries([]float64{110, 121, 133.1}, 0.10)
	require.NoError(t, err)
	require.Len(t, pvs, 3)

	// Each flow is exactly 100 * 1.1^t so every PV collapses to 100.
	for i, pv := range pvs {
		assert.InDelta(t, 100.0, pv, 1e-9, "year %d", i+1)
	}
}

func TestDiscountRoundTrip(t *testing.T) {
	cases := []struct {
		value float64
		year  int
		rate  float64
	}{
		{1000, 1, 0.10},
		{-250.5, 7, 0.085},
		{1e9, 10, 0.12},
		{42, 30, 0.01},
	}
	for _, tc := range cases {
		pv := PresentValue(tc.value, tc.rate, tc.year)
		back := pv * math.Pow(1+tc.rate, float64(tc.year))
		assert.InEpsilon(t, tc.value, back, 1e-12)
	}
}

func TestDiscountSeriesRejectsBadRate(t *testing.T) {
	for _, r := range []float64{0, -0.05, math.NaN(), math.Inf(1)} {
		_, err := DiscountSeries([]float64{100}, r)
		assert.ErrorIs(t, err, valerr.ErrInvalidAssumption, "rate %v", r)
	}
}

func TestPresentValueOfCashFlowsMatchesSeriesSum(t *testing.T) {
	flows := []float64{100, 120, 140, 160}
	pvs, err := DiscountSeries(flows, 0.09)
	require.NoError(t, err)

	var sum float64
	for _, pv := range pvs {
		sum += pv
	}
	assert.InDelta(t, sum, PresentValueOfCashFlows(flows, 0.09), 1e-9)
}

func TestTerminalValueGordonGrowth(t *testing.T) {
	tv, err := TerminalValueGordonGrowth(100, 0.10, 0.02)
	require.NoError(t, err)
	// 100 * 1.02 / 0.08
	assert.InDelta(t, 1275.0, tv, 1e-9)

	pv := DiscountTerminalValue(tv, 0.10, 10)
	assert.InDelta(t, 1275.0/math.Pow(1.1, 10), pv, 1e-9)
}

func TestTerminalValueSpreadBoundary(t *testing.T) {
	_, err := TerminalValueGordonGrowth(100, 0.05, 0.05)
	assert.ErrorIs(t, err, valerr.ErrInvalidTerminalSpread)

	_, err = TerminalValueGordonGrowth(100, 0.04, 0.05)
	assert.ErrorIs(t, err, valerr.ErrInvalidTerminalSpread)

	// Shrinking the spread must grow the value monotonically while staying finite.
	prev := 0.0
	for _, spread := range []float64{1e-2, 1e-3, 1e-4, 1e-6} {
		tv, err := TerminalValueGordonGrowth(100, 0.05+spread, 0.05)
		require.NoError(t, err)
		assert.False(t, math.IsInf(tv, 0))
		assert.Greater(t, tv, prev)
		prev = tv
	}
}

func TestTerminalValueRejectsNonFiniteInputs(t *testing.T) {
	_, err := TerminalValueGordonGrowth(100, 0.10, math.NaN())
	assert.ErrorIs(t, err, valerr.ErrInvalidAssumption)

	_, err = TerminalValueGordonGrowth(100, math.Inf(1), 0.02)
	assert.ErrorIs(t, err, valerr.ErrInvalidAssumption)

	_, err = TerminalValueGordonGrowth(100, 0, -0.01)
	assert.ErrorIs(t, err, valerr.ErrInvalidAssumption)
}
