package valerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	err := New(KindInvalidAssumption, "discount_rate", -0.1, "discount rate must be positive")

	assert.ErrorIs(t, err, ErrInvalidAssumption)
	assert.NotErrorIs(t, err, ErrInvalidTerminalSpread)
}

func TestErrorSurvivesWrapping(t *testing.T) {
	base := New(KindMissingShareCount, "", "AAPL", "shares outstanding unavailable")
	wrapped := fmt.Errorf("valuing AAPL: %w", base)

	assert.ErrorIs(t, wrapped, ErrMissingShareCount)
	assert.Equal(t, KindMissingShareCount, KindOf(wrapped))

	ve, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "AAPL", ve.Input)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	_, ok := As(errors.New("boom"))
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	err := New(KindInvalidAssumption, "projection_years", 0, "horizon must be positive")
	assert.Equal(t, "INVALID_ASSUMPTION: horizon must be positive (projection_years=0)", err.Error())

	assert.Equal(t, "NO_VALID_GROWTH_WINDOW", ErrNoValidGrowthWindow.Error())
}
