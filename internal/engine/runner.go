package engine

import (
	"fmt"
	"time"

	"range-breakout/internal/infrastructure"
	"range-breakout/internal/model"
	"range-breakout/internal/strategy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RunOptions struct {
	Symbol        string
	Period        string
	IncludeSeries bool
}

// RunBacktest annotates bars with strat, replays them under settings and
// packs everything into a report. Configuration is validated before any
// bar is touched.
func RunBacktest(bars []model.Bar, strat strategy.Strategy, settings Settings, opts RunOptions, logger *zap.Logger) (*model.BacktestReport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()
	name := strat.Name()

	bt, err := NewBacktester(settings, logger)
	if err != nil {
		infrastructure.BacktestRuns.WithLabelValues(name, "invalid").Inc()
		return nil, err
	}

	series, err := strat.Annotate(bars)
	if err != nil {
		infrastructure.BacktestRuns.WithLabelValues(name, "invalid").Inc()
		return nil, fmt.Errorf("run %s on %s: %w", name, opts.Symbol, err)
	}
	series.Symbol = opts.Symbol

	ledger := bt.Run(series)

	params := strat.Params().ToMap()
	for k, v := range settings.ToMap() {
		params[k] = v
	}
	report := &model.BacktestReport{
		RunID:     uuid.New(),
		Symbol:    opts.Symbol,
		Period:    opts.Period,
		Strategy:  name,
		Params:    params,
		Ledger:    ledger,
		Summary:   Summarize(ledger),
		Signals:   series.SignalCount(),
		CreatedAt: time.Now().UTC(),
	}
	if opts.IncludeSeries {
		report.Series = series.Rows()
	}

	for _, t := range ledger.Trades {
		infrastructure.BacktestTrades.WithLabelValues(opts.Symbol, t.Direction.String()).Inc()
	}
	infrastructure.BacktestRuns.WithLabelValues(name, "ok").Inc()
	infrastructure.BacktestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	logger.Info("backtest completed",
		zap.String("run_id", report.RunID.String()),
		zap.String("symbol", opts.Symbol),
		zap.Int("bars", len(bars)),
		zap.Int("signals", report.Signals),
		zap.Int("trades", len(ledger.Trades)),
		zap.String("final_balance", report.Summary.FinalBalance.String()),
	)
	return report, nil
}
