package strategy

import (
	"range-breakout/internal/model"
)

// Strategy annotates a full bar series in one pass. Implementations must be
// deterministic and must not mutate the input bars.
type Strategy interface {
	Name() string
	Params() Params
	Annotate(bars []model.Bar) (*model.Series, error)
}
