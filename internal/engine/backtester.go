package engine

import (
	"errors"
	"fmt"
	"time"

	"range-breakout/internal/model"

	"go.uber.org/zap"
)

var ErrInvalidSettings = errors.New("invalid backtest settings")

// Settings are the money-management knobs of a run. Percentages are in
// percent units, so 2 means 2%.
type Settings struct {
	InitialBalance    float64 `json:"initial_balance" mapstructure:"INITIAL_BALANCE"`
	RiskPercent       float64 `json:"risk_percent" mapstructure:"RISK_PERCENT"`
	StopLossPercent   float64 `json:"stop_loss_percent" mapstructure:"STOP_LOSS_PERCENT"`
	TakeProfitPercent float64 `json:"take_profit_percent" mapstructure:"TAKE_PROFIT_PERCENT"`
}

func DefaultSettings() Settings {
	return Settings{
		InitialBalance:    10000,
		RiskPercent:       2,
		StopLossPercent:   2.5,
		TakeProfitPercent: 5,
	}
}

func (s Settings) Validate() error {
	check := []struct {
		name  string
		value float64
	}{
		{"initial_balance", s.InitialBalance},
		{"risk_percent", s.RiskPercent},
		{"stop_loss_percent", s.StopLossPercent},
		{"take_profit_percent", s.TakeProfitPercent},
	}
	for _, c := range check {
		// !(v > 0) also rejects NaN
		if !(c.value > 0) {
			return fmt.Errorf("%w: %s must be > 0, got %v", ErrInvalidSettings, c.name, c.value)
		}
	}
	return nil
}

func (s Settings) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"initial_balance":     s.InitialBalance,
		"risk_percent":        s.RiskPercent,
		"stop_loss_percent":   s.StopLossPercent,
		"take_profit_percent": s.TakeProfitPercent,
	}
}

// OpenPosition is the only data that exists while InPosition.
type OpenPosition struct {
	Direction  model.Direction
	EntryPrice float64
	EntryTime  time.Time
	StopLoss   float64
	TakeProfit float64
	Size       float64
}

// exitHit reports whether price has crossed the stop or the target.
func (p *OpenPosition) exitHit(price float64) bool {
	if p.Direction == model.Long {
		return price <= p.StopLoss || price >= p.TakeProfit
	}
	return price >= p.StopLoss || price <= p.TakeProfit
}

func (p *OpenPosition) profitLoss(exit float64) (amount, percent float64) {
	diff := exit - p.EntryPrice
	if p.Direction == model.Short {
		diff = -diff
	}
	return diff * p.Size, diff / p.EntryPrice * 100
}

// SimulationState is Flat when Position is nil and InPosition otherwise.
type SimulationState struct {
	Balance  float64
	Position *OpenPosition
}

func (s *SimulationState) Flat() bool { return s.Position == nil }

// open sizes a position so that hitting the stop loses risk% of the balance.
func (s *SimulationState) open(settings Settings, dir model.Direction, bar model.Bar) {
	entry := bar.Close
	risk := s.Balance * settings.RiskPercent / 100
	sl := settings.StopLossPercent / 100
	tp := settings.TakeProfitPercent / 100

	pos := &OpenPosition{
		Direction:  dir,
		EntryPrice: entry,
		EntryTime:  bar.Time,
		Size:       risk / (entry * sl),
	}
	if dir == model.Long {
		pos.StopLoss, pos.TakeProfit = entry*(1-sl), entry*(1+tp)
	} else {
		pos.StopLoss, pos.TakeProfit = entry*(1+sl), entry*(1-tp)
	}
	s.Position = pos
}

// close settles the open position at the bar close and returns to Flat.
func (s *SimulationState) close(bar model.Bar, forced bool) model.Trade {
	pos := s.Position
	amount, percent := pos.profitLoss(bar.Close)
	s.Balance += amount
	s.Position = nil

	return model.Trade{
		EntryTime:         pos.EntryTime,
		ExitTime:          bar.Time,
		Direction:         pos.Direction,
		EntryPrice:        pos.EntryPrice,
		ExitPrice:         bar.Close,
		ProfitLossPercent: percent,
		ProfitLossAmount:  amount,
		BalanceAfter:      s.Balance,
		Forced:            forced,
	}
}

// Backtester replays an annotated series through a single-position simulator.
// It holds no per-run state and is safe for concurrent use.
type Backtester struct {
	settings Settings
	logger   *zap.Logger
}

func NewBacktester(settings Settings, logger *zap.Logger) (*Backtester, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backtester{settings: settings, logger: logger}, nil
}

func (b *Backtester) Settings() Settings { return b.settings }

// Run walks the series from the second bar. On every bar the open position is
// checked for an exit first, then a Flat state may enter on the bar's signal.
// Fills are at the close. A position still open after the last bar is closed
// at the last close.
func (b *Backtester) Run(series *model.Series) model.Ledger {
	state := SimulationState{Balance: b.settings.InitialBalance}
	trades := make([]model.Trade, 0)
	n := series.Len()

	for i := 1; i < n; i++ {
		bar := series.Bars[i]

		if !state.Flat() && state.Position.exitHit(bar.Close) {
			trades = append(trades, state.close(bar, false))
		}

		// an entry on the last bar could only be force-closed at its own price
		if state.Flat() && i < n-1 {
			switch series.Signal[i] {
			case model.SignalBuy:
				state.open(b.settings, model.Long, bar)
			case model.SignalSell:
				state.open(b.settings, model.Short, bar)
			}
		}
	}

	if !state.Flat() {
		trades = append(trades, state.close(series.Bars[n-1], true))
	}

	b.logger.Debug("simulation finished",
		zap.Int("bars", n),
		zap.Int("trades", len(trades)),
		zap.Float64("final_balance", state.Balance),
	)

	return model.Ledger{
		Trades:         trades,
		InitialBalance: b.settings.InitialBalance,
		FinalBalance:   state.Balance,
	}
}
