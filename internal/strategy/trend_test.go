package strategy

import (
	"math"
	"testing"

	"range-breakout/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestTrendStates(t *testing.T) {
	bars := rangeBars(10, 11, 12, 13, 14)

	t.Run("all above", func(t *testing.T) {
		got := TrendStates(bars, []float64{9, 9, 9, 9, 9}, 2)
		assert.Equal(t, []model.TrendState{
			model.TrendNone, model.TrendNone,
			model.TrendAllAbove, model.TrendAllAbove, model.TrendAllAbove,
		}, got)
	})

	t.Run("all below", func(t *testing.T) {
		got := TrendStates(bars, []float64{20, 20, 20, 20, 20}, 1)
		assert.Equal(t, model.TrendNone, got[0])
		for i := 1; i < len(got); i++ {
			assert.Equal(t, model.TrendAllBelow, got[i])
		}
	})

	t.Run("touch falsifies", func(t *testing.T) {
		// bar 2 body sits exactly on the EMA
		got := TrendStates(bars, []float64{9, 9, 12, 9, 9}, 2)
		assert.Equal(t, model.TrendNone, got[2])
		assert.Equal(t, model.TrendNone, got[3])
		assert.Equal(t, model.TrendNone, got[4])
	})

	t.Run("window slides past the touch", func(t *testing.T) {
		got := TrendStates(bars, []float64{9, 9, 12, 9, 9}, 1)
		assert.Equal(t, model.TrendAllAbove, got[1])
		assert.Equal(t, model.TrendNone, got[2])
		assert.Equal(t, model.TrendNone, got[3])
		assert.Equal(t, model.TrendAllAbove, got[4])
	})

	t.Run("zero backcandles looks at the bar only", func(t *testing.T) {
		got := TrendStates(bars, []float64{9, 20, 9, 20, 9}, 0)
		assert.Equal(t, []model.TrendState{
			model.TrendAllAbove, model.TrendAllBelow, model.TrendAllAbove,
			model.TrendAllBelow, model.TrendAllAbove,
		}, got)
	})

	t.Run("history shorter than window", func(t *testing.T) {
		got := TrendStates(bars, []float64{9, 9, 9, 9, 9}, 10)
		for _, s := range got {
			assert.Equal(t, model.TrendNone, s)
		}
	})

	t.Run("incomparable ema is undetermined", func(t *testing.T) {
		nan := math.NaN()
		got := TrendStates(bars[:1], []float64{nan}, 0)
		assert.Equal(t, model.TrendUndetermined, got[0])
	})
}
