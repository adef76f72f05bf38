package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowthStrategy(t *testing.T) {
	s := GrowthStrategy{GrowthRate: 0.05}

	assert.Equal(t, "GrowthRate", s.Name())
	assert.InDelta(t, 105.0, s.Calculate(Context{Year: 1, LastYearValue: 100}), 1e-9)
	// A negative base moves further below zero.
	assert.InDelta(t, -105.0, s.Calculate(Context{Year: 1, LastYearValue: -100}), 1e-9)
}
