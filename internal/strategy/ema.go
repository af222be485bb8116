package strategy

import (
	"fmt"

	"range-breakout/internal/model"
)

// EMA returns the exponential moving average of the closes, seeded with the
// first close rather than an SMA warmup.
func EMA(bars []model.Bar, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: ema period %d", ErrInvalidParams, period)
	}
	out := make([]float64, len(bars))
	if len(bars) == 0 {
		return out, nil
	}

	k := 2.0 / float64(period+1)
	out[0] = bars[0].Close
	for i := 1; i < len(bars); i++ {
		out[i] = bars[i].Close*k + out[i-1]*(1-k)
	}
	return out, nil
}
