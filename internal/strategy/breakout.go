package strategy

import (
	"fmt"

	"range-breakout/internal/model"

	"go.uber.org/zap"
)

const RangeBreakoutName = "range_breakout"

// RangeBreakoutStrategy 区间突破策略: EMA trend filter, pivots and triple-touch breakouts.
type RangeBreakoutStrategy struct {
	params Params
	logger *zap.Logger
}

func NewRangeBreakoutStrategy(params Params, logger *zap.Logger) (*RangeBreakoutStrategy, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RangeBreakoutStrategy{params: params, logger: logger}, nil
}

func (s *RangeBreakoutStrategy) Name() string { return RangeBreakoutName }

func (s *RangeBreakoutStrategy) Params() Params { return s.params }

func (s *RangeBreakoutStrategy) Annotate(bars []model.Bar) (*model.Series, error) {
	if err := model.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	ema, err := EMA(bars, s.params.EMAPeriod)
	if err != nil {
		return nil, err
	}
	pivots := Pivots(bars, s.params.PivotWindow)
	patterns := Patterns(bars, pivots, s.params.PatternBackcandles, s.params.PatternWindow)

	series := &model.Series{
		Bars:    bars,
		EMA:     ema,
		Trend:   TrendStates(bars, ema, s.params.TrendBackcandles),
		Pivot:   pivots,
		Pattern: patterns,
		Signal:  Signals(pivots, patterns),
	}

	s.logger.Debug("series annotated",
		zap.Int("bars", len(bars)),
		zap.Int("signals", series.SignalCount()),
	)
	return series, nil
}
