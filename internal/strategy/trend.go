package strategy

import (
	"math"

	"range-breakout/internal/model"
)

// TrendStates classifies every bar by how the bodies of the trailing
// backcandles+1 bars sit relative to the EMA.
func TrendStates(bars []model.Bar, ema []float64, backcandles int) []model.TrendState {
	out := make([]model.TrendState, len(bars))
	for i := backcandles; i < len(bars); i++ {
		out[i] = classifyTrend(bars, ema, i-backcandles, i)
	}
	return out
}

func classifyTrend(bars []model.Bar, ema []float64, from, to int) model.TrendState {
	above, below := true, true
	for j := from; j <= to; j++ {
		b := bars[j]
		if math.Max(b.Open, b.Close) >= ema[j] {
			below = false
		}
		if math.Min(b.Open, b.Close) <= ema[j] {
			above = false
		}
	}

	switch {
	case above && below:
		return model.TrendUndetermined
	case above:
		return model.TrendAllAbove
	case below:
		return model.TrendAllBelow
	}
	return model.TrendNone
}
