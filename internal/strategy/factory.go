package strategy

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// NewStrategy builds a strategy from a decoded JSON config. Keys missing from
// config keep their defaults.
func NewStrategy(strategyType string, config map[string]interface{}, logger *zap.Logger) (Strategy, error) {
	switch strategyType {
	case RangeBreakoutName, "":
		params, err := ParamsFromMap(DefaultParams(), config)
		if err != nil {
			return nil, err
		}
		return NewRangeBreakoutStrategy(params, logger)
	default:
		return nil, fmt.Errorf("unknown strategy type: %s", strategyType)
	}
}

// ParamsFromMap overlays config onto base.
func ParamsFromMap(base Params, config map[string]interface{}) (Params, error) {
	fields := []struct {
		key string
		dst *int
	}{
		{"ema_period", &base.EMAPeriod},
		{"trend_backcandles", &base.TrendBackcandles},
		{"pivot_window", &base.PivotWindow},
		{"pattern_backcandles", &base.PatternBackcandles},
		{"pattern_window", &base.PatternWindow},
	}
	for _, f := range fields {
		raw, ok := config[f.key]
		if !ok {
			continue
		}
		v, err := toInt(raw)
		if err != nil {
			return base, fmt.Errorf("%w: %s: %v", ErrInvalidParams, f.key, err)
		}
		*f.dst = v
	}
	return base, base.Validate()
}

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", raw)
	}
}
