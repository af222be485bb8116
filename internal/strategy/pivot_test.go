package strategy

import (
	"testing"

	"range-breakout/internal/model"

	"github.com/stretchr/testify/assert"
)

func hl(high, low float64) model.Bar {
	mid := (high + low) / 2
	return model.Bar{Open: mid, High: high, Low: low, Close: mid}
}

func TestPivots(t *testing.T) {
	tests := []struct {
		name   string
		bars   []model.Bar
		window int
		want   []model.PivotState
	}{
		{
			name:   "peak",
			bars:   []model.Bar{hl(1, 0.5), hl(2, 1), hl(5, 4), hl(2, 1), hl(1, 0.5)},
			window: 1,
			want:   []model.PivotState{model.PivotNone, model.PivotNone, model.PivotHigh, model.PivotNone, model.PivotNone},
		},
		{
			name:   "trough",
			bars:   []model.Bar{hl(5, 4), hl(4, 3), hl(2, 1), hl(4, 3), hl(5, 4)},
			window: 2,
			want:   []model.PivotState{model.PivotNone, model.PivotNone, model.PivotLow, model.PivotNone, model.PivotNone},
		},
		{
			name:   "outside bar is both",
			bars:   []model.Bar{hl(2, 1), hl(3, 0.5), hl(2, 1)},
			window: 1,
			want:   []model.PivotState{model.PivotNone, model.PivotBoth, model.PivotNone},
		},
		{
			name:   "tie does not falsify",
			bars:   []model.Bar{hl(3, 2), hl(3, 2.5), hl(2, 1.5)},
			window: 1,
			want:   []model.PivotState{model.PivotNone, model.PivotHigh, model.PivotNone},
		},
		{
			name:   "equal highs with lowest low is both",
			bars:   []model.Bar{hl(10, 9), hl(10, 8), hl(10, 9)},
			window: 1,
			want:   []model.PivotState{model.PivotNone, model.PivotBoth, model.PivotNone},
		},
		{
			name:   "flat window",
			bars:   []model.Bar{hl(10, 9), hl(10, 9), hl(10, 9), hl(9.5, 9.2)},
			window: 1,
			want:   []model.PivotState{model.PivotNone, model.PivotNone, model.PivotBoth, model.PivotNone},
		},
		{
			name:   "window larger than series",
			bars:   []model.Bar{hl(1, 0.5), hl(5, 0.1), hl(1, 0.5)},
			window: 2,
			want:   []model.PivotState{model.PivotNone, model.PivotNone, model.PivotNone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pivots(tt.bars, tt.window))
		})
	}
}

func TestPivots_FlatSeries(t *testing.T) {
	for _, s := range Pivots(flatBars(40, 7), 3) {
		assert.Equal(t, model.PivotNone, s)
	}
}

// High means no neighbour in the window has a strictly greater high, and
// Low means none has a strictly smaller low.
func TestPivots_Definition(t *testing.T) {
	bars := rangeBars(5, 6, 8, 7, 7, 9, 4, 3, 3, 6, 8, 8, 5, 2, 6)
	const w = 2
	pivots := Pivots(bars, w)
	for i, p := range pivots {
		if p == model.PivotNone {
			continue
		}
		for j := i - w; j <= i+w; j++ {
			if j == i {
				continue
			}
			if p == model.PivotHigh || p == model.PivotBoth {
				assert.LessOrEqual(t, bars[j].High, bars[i].High, "bar %d high vs %d", i, j)
			}
			if p == model.PivotLow || p == model.PivotBoth {
				assert.GreaterOrEqual(t, bars[j].Low, bars[i].Low, "bar %d low vs %d", i, j)
			}
		}
	}
	assert.Equal(t, model.PivotHigh, pivots[5])
	assert.Equal(t, model.PivotLow, pivots[7])
	assert.Equal(t, model.PivotLow, pivots[8])
	assert.Equal(t, model.PivotNone, pivots[13])
}
