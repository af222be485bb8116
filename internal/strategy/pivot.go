package strategy

import (
	"range-breakout/internal/model"
)

// Pivots marks local extremes over a symmetric window. Bars without a full
// window on both sides are never pivots. Ties with a neighbour do not
// disqualify a candidate. A fully flat window, where every neighbour has the
// same high and low as the bar, is not a pivot.
func Pivots(bars []model.Bar, window int) []model.PivotState {
	out := make([]model.PivotState, len(bars))
	for i := window; i+window < len(bars); i++ {
		out[i] = pivotAt(bars, i, window)
	}
	return out
}

func pivotAt(bars []model.Bar, i, window int) model.PivotState {
	high, low, flat := true, true, true
	cur := bars[i]
	for j := i - window; j <= i+window; j++ {
		if j == i {
			continue
		}
		if bars[j].High > cur.High {
			high = false
		}
		if bars[j].Low < cur.Low {
			low = false
		}
		if bars[j].High != cur.High || bars[j].Low != cur.Low {
			flat = false
		}
	}
	if flat {
		return model.PivotNone
	}

	switch {
	case high && low:
		return model.PivotBoth
	case high:
		return model.PivotHigh
	case low:
		return model.PivotLow
	}
	return model.PivotNone
}
