package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptySeries   = errors.New("empty bar series")
	ErrMalformedBar  = errors.New("malformed bar")
	ErrUnorderedBars = errors.New("bar timestamps not strictly increasing")
)

// KLine (Candle) is one stored OHLCV row as it comes out of the database or a CSV file.
type KLine struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Exchange  string          `json:"exchange" db:"exchange"`
	Period    string          `json:"period" db:"period"` // "1d", "1wk"
	Open      decimal.Decimal `json:"o" db:"open"`
	High      decimal.Decimal `json:"h" db:"high"`
	Low       decimal.Decimal `json:"l" db:"low"`
	Close     decimal.Decimal `json:"c" db:"close"`
	Volume    decimal.Decimal `json:"v" db:"volume"`
	Timestamp time.Time       `json:"t" db:"time"`
}

// Bar converts the stored kline into the float view used by the pipeline.
func (k KLine) Bar() Bar {
	return Bar{
		Time:  k.Timestamp,
		Open:  k.Open.InexactFloat64(),
		High:  k.High.InexactFloat64(),
		Low:   k.Low.InexactFloat64(),
		Close: k.Close.InexactFloat64(),
	}
}

// Bar is one immutable OHLC observation.
type Bar struct {
	Time  time.Time `json:"time"`
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
}

func BarsFromKLines(klines []KLine) []Bar {
	bars := make([]Bar, len(klines))
	for i, k := range klines {
		bars[i] = k.Bar()
	}
	return bars
}

// Validate checks the OHLC ordering of a single bar.
func (b Bar) Validate() error {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite price", ErrMalformedBar)
		}
	}
	if b.High < b.Low {
		return fmt.Errorf("%w: high %v below low %v", ErrMalformedBar, b.High, b.Low)
	}
	if b.High < math.Max(b.Open, b.Close) {
		return fmt.Errorf("%w: high %v below body", ErrMalformedBar, b.High)
	}
	if b.Low > math.Min(b.Open, b.Close) {
		return fmt.Errorf("%w: low %v above body", ErrMalformedBar, b.Low)
	}
	return nil
}

// ValidateBars rejects empty input, malformed bars and out-of-order timestamps.
// Bars are reported, never repaired.
func ValidateBars(bars []Bar) error {
	if len(bars) == 0 {
		return ErrEmptySeries
	}
	for i, b := range bars {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("bar %d: %w", i, err)
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("bar %d at %s: %w", i, b.Time.Format(time.RFC3339), ErrUnorderedBars)
		}
	}
	return nil
}

// NormalizeSymbol unifies symbol spellings into one NATS-safe token
// (btc-usdt, BTC/USDT, brk.b become BTCUSDT, BRKB). Kline lookups, reports
// and report subjects all use this form.
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}
