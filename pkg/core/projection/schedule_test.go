package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fcf_valuation/pkg/core/valerr"
)

func TestProjectTwoStage(t *testing.T) {
	sched, err := TwoStage(0.20, 0.10, 10, 5)
	require.NoError(t, err)
	require.Equal(t, 10, sched.Horizon())

	years := Project(100, sched)
	require.Len(t, years, 10)

	year5 := 100 * math.Pow(1.2, 5)
	year10 := year5 * math.Pow(1.1, 5)

	assert.InDelta(t, 248.832, years[4].Value, 1e-9)
	assert.InDelta(t, year5, years[4].Value, 1e-9)
	assert.InDelta(t, year10, years[9].Value, 1e-9)
	assert.InDelta(t, 400.75, years[9].Value, 0.05)

	assert.Equal(t, StageInitial, years[0].Stage)
	assert.Equal(t, StageInitial, years[4].Stage)
	assert.Equal(t, StageReduced, years[5].Stage)
	assert.Equal(t, 6, years[5].Year)
}

func TestProjectStageTwoCompoundsOnStageOne(t *testing.T) {
	sched, err := TwoStage(0.50, 0.0, 4, 2)
	require.NoError(t, err)

	vals := Values(Project(10, sched))
	// Zero growth in stage two holds the stage-one level, not the original base.
	assert.Equal(t, []float64{15, 22.5, 22.5, 22.5}, vals)
}

func TestTwoStageCollapsesEmptyStages(t *testing.T) {
	sched, err := TwoStage(0.1, 0.05, 7, 7)
	require.NoError(t, err)
	require.Len(t, sched.Stages, 1)
	assert.Equal(t, StageInitial, sched.Stages[0].Name)

	sched, err = TwoStage(0.1, 0.05, 7, 0)
	require.NoError(t, err)
	require.Len(t, sched.Stages, 1)
	assert.Equal(t, StageReduced, sched.Stages[0].Name)
	assert.Equal(t, 7, sched.Horizon())
}

func TestTwoStageValidation(t *testing.T) {
	cases := []struct {
		name             string
		initial, reduced float64
		horizon, split   int
	}{
		{"zero horizon", 0.1, 0.05, 0, 0},
		{"negative horizon", 0.1, 0.05, -3, 0},
		{"split past horizon", 0.1, 0.05, 5, 6},
		{"negative split", 0.1, 0.05, 5, -1},
		{"nan rate", math.NaN(), 0.05, 5, 2},
		{"total loss rate", 0.1, -1, 5, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TwoStage(tc.initial, tc.reduced, tc.horizon, tc.split)
			assert.ErrorIs(t, err, valerr.ErrInvalidAssumption)
		})
	}
}

func TestProjectNegativeBase(t *testing.T) {
	sched, err := TwoStage(0.10, 0.05, 2, 1)
	require.NoError(t, err)

	vals := Values(Project(-100, sched))
	assert.InDelta(t, -110.0, vals[0], 1e-9)
	assert.InDelta(t, -115.5, vals[1], 1e-9)
}

func TestProjectConstantMatchesSingleStage(t *testing.T) {
	sched, err := TwoStage(0.07, 0.07, 6, 3)
	require.NoError(t, err)

	staged := Values(Project(250, sched))
	closed := ProjectConstant(250, 0.07, 6)
	require.Len(t, closed, 6)
	for i := range closed {
		assert.InDelta(t, closed[i], staged[i], 1e-9)
	}
	assert.Nil(t, ProjectConstant(250, 0.07, 0))
}
