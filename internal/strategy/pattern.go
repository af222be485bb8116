package strategy

import (
	"math"

	"range-breakout/internal/model"
)

const (
	// ZoneWidth is the absolute price tolerance for touches of one level.
	ZoneWidth = 0.001
	touches   = 3
)

// Patterns runs DetectPattern for every bar.
func Patterns(bars []model.Bar, pivots []model.PivotState, backcandles, window int) []model.PatternState {
	out := make([]model.PatternState, len(bars))
	for i := range bars {
		out[i] = DetectPattern(bars, pivots, i, backcandles, window)
	}
	return out
}

// DetectPattern looks for three equal pivot lows (or highs) in
// [i-backcandles-window, i-window) that the close of bar i has broken.
// Only pivots that are exactly High or exactly Low count. A support break
// wins when both are present.
func DetectPattern(bars []model.Bar, pivots []model.PivotState, i, backcandles, window int) model.PatternState {
	n := len(bars)
	if i <= backcandles+window || i+window+1 >= n {
		return model.PatternNone
	}

	from, to := i-backcandles-window, i-window
	highs := lastPivots(bars, pivots, from, to, model.PivotHigh)
	lows := lastPivots(bars, pivots, from, to, model.PivotLow)
	closePrice := bars[i].Close

	if len(lows) == touches {
		if mean, ok := level(lows); ok && mean-closePrice > 2*ZoneWidth {
			return model.PatternSupportBreak
		}
	}
	if len(highs) == touches {
		if mean, ok := level(highs); ok && closePrice-mean > 2*ZoneWidth {
			return model.PatternResistanceBreak
		}
	}
	return model.PatternNone
}

// lastPivots returns up to three prices of the most recent pivots of kind in
// [from, to), oldest first.
func lastPivots(bars []model.Bar, pivots []model.PivotState, from, to int, kind model.PivotState) []float64 {
	prices := make([]float64, 0, touches)
	for j := to - 1; j >= from && len(prices) < touches; j-- {
		if pivots[j] != kind {
			continue
		}
		if kind == model.PivotHigh {
			prices = append(prices, bars[j].High)
		} else {
			prices = append(prices, bars[j].Low)
		}
	}
	for l, r := 0, len(prices)-1; l < r; l, r = l+1, r-1 {
		prices[l], prices[r] = prices[r], prices[l]
	}
	return prices
}

// level reports the mean of prices and whether every price is within the zone of it.
func level(prices []float64) (float64, bool) {
	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))
	for _, p := range prices {
		if math.Abs(p-mean) > ZoneWidth {
			return mean, false
		}
	}
	return mean, true
}
