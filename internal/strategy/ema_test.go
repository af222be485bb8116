package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEMA(t *testing.T) {
	t.Run("seeded with first close", func(t *testing.T) {
		ema, err := EMA(rangeBars(10, 20, 20), 3)
		require.NoError(t, err)
		// k = 0.5
		assert.InDeltaSlice(t, []float64{10, 15, 17.5}, ema, 1e-12)
	})

	t.Run("period one tracks close", func(t *testing.T) {
		bars := rangeBars(3, 7, 1, 9)
		ema, err := EMA(bars, 1)
		require.NoError(t, err)
		for i, b := range bars {
			assert.Equal(t, b.Close, ema[i])
		}
	})

	t.Run("constant input", func(t *testing.T) {
		ema, err := EMA(flatBars(50, 42), 150)
		require.NoError(t, err)
		for _, v := range ema {
			assert.Equal(t, 42.0, v)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		ema, err := EMA(nil, 5)
		require.NoError(t, err)
		assert.Empty(t, ema)
	})

	for _, p := range []int{0, -3} {
		_, err := EMA(rangeBars(1, 2), p)
		assert.ErrorIs(t, err, ErrInvalidParams)
	}
}
