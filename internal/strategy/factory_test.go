package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewStrategy(t *testing.T) {
	logger := zap.NewNop()

	s, err := NewStrategy("range_breakout", nil, logger)
	require.NoError(t, err)
	assert.Equal(t, "range_breakout", s.Name())
	assert.Equal(t, DefaultParams(), s.Params())

	// JSON numbers decode as float64
	s, err = NewStrategy("", map[string]interface{}{"ema_period": float64(20), "pivot_window": 3}, logger)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Params().EMAPeriod)
	assert.Equal(t, 3, s.Params().PivotWindow)
	assert.Equal(t, DefaultParams().PatternWindow, s.Params().PatternWindow)

	_, err = NewStrategy("range_breakout", map[string]interface{}{"ema_period": 2.5}, logger)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewStrategy("range_breakout", map[string]interface{}{"pattern_window": "11"}, logger)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewStrategy("range_breakout", map[string]interface{}{"pivot_window": float64(0)}, logger)
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = NewStrategy("ma_cross", nil, logger)
	assert.Error(t, err)
}
