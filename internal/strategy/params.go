package strategy

import (
	"errors"
	"fmt"
)

var ErrInvalidParams = errors.New("invalid strategy params")

// Params are the tunables of the range breakout pipeline.
type Params struct {
	EMAPeriod          int `json:"ema_period" mapstructure:"EMA_PERIOD"`
	TrendBackcandles   int `json:"trend_backcandles" mapstructure:"TREND_BACKCANDLES"`
	PivotWindow        int `json:"pivot_window" mapstructure:"PIVOT_WINDOW"`
	PatternBackcandles int `json:"pattern_backcandles" mapstructure:"PATTERN_BACKCANDLES"`
	PatternWindow      int `json:"pattern_window" mapstructure:"PATTERN_WINDOW"`
}

func DefaultParams() Params {
	return Params{
		EMAPeriod:          150,
		TrendBackcandles:   15,
		PivotWindow:        10,
		PatternBackcandles: 60,
		PatternWindow:      11,
	}
}

func (p Params) Validate() error {
	switch {
	case p.EMAPeriod <= 0:
		return fmt.Errorf("%w: ema_period must be > 0, got %d", ErrInvalidParams, p.EMAPeriod)
	case p.TrendBackcandles < 0:
		return fmt.Errorf("%w: trend_backcandles must be >= 0, got %d", ErrInvalidParams, p.TrendBackcandles)
	case p.PivotWindow < 1:
		return fmt.Errorf("%w: pivot_window must be >= 1, got %d", ErrInvalidParams, p.PivotWindow)
	case p.PatternBackcandles < 1:
		return fmt.Errorf("%w: pattern_backcandles must be >= 1, got %d", ErrInvalidParams, p.PatternBackcandles)
	case p.PatternWindow < 1:
		return fmt.Errorf("%w: pattern_window must be >= 1, got %d", ErrInvalidParams, p.PatternWindow)
	}
	return nil
}

// ToMap flattens the params for reports and persistence.
func (p Params) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"ema_period":          p.EMAPeriod,
		"trend_backcandles":   p.TrendBackcandles,
		"pivot_window":        p.PivotWindow,
		"pattern_backcandles": p.PatternBackcandles,
		"pattern_window":      p.PatternWindow,
	}
}
