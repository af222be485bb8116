package strategy

import (
	"time"

	"range-breakout/internal/model"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// flatBars returns n identical bars one day apart.
func flatBars(n int, price float64) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		bars[i] = model.Bar{Time: t0.AddDate(0, 0, i), Open: price, High: price, Low: price, Close: price}
	}
	return bars
}

// rangeBars builds bars with open=close=c and a wick of half a unit each side.
func rangeBars(closes ...float64) []model.Bar {
	bars := make([]model.Bar, len(closes))
	for i, c := range closes {
		bars[i] = model.Bar{Time: t0.AddDate(0, 0, i), Open: c, High: c + 0.5, Low: c - 0.5, Close: c}
	}
	return bars
}
