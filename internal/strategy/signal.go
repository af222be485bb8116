package strategy

import (
	"range-breakout/internal/model"
)

// Fuse combines pivot and pattern into a signal. Buy is checked before Sell;
// trend state is not consulted.
func Fuse(pivot model.PivotState, pattern model.PatternState) model.Signal {
	if pivot == model.PivotLow || pattern == model.PatternResistanceBreak {
		return model.SignalBuy
	}
	if pivot == model.PivotHigh || pattern == model.PatternSupportBreak {
		return model.SignalSell
	}
	return model.SignalNone
}

func Signals(pivots []model.PivotState, patterns []model.PatternState) []model.Signal {
	out := make([]model.Signal, len(pivots))
	for i := range pivots {
		out[i] = Fuse(pivots[i], patterns[i])
	}
	return out
}
