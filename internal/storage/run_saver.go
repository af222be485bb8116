package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"range-breakout/internal/model"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RunSaver persists finished backtest runs and their trades.
type RunSaver struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewRunSaver(pool *pgxpool.Pool, logger *zap.Logger) *RunSaver {
	return &RunSaver{pool: pool, logger: logger}
}

// Save writes the run and its trades in one transaction. Saving a run id
// twice is a no-op, so redelivered messages are harmless.
func (s *RunSaver) Save(ctx context.Context, report *model.BacktestReport) error {
	params, err := json.Marshal(report.Params)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO backtest_runs (run_id, symbol, period, strategy, params, total_trades, win_rate,
			total_profit, total_return, max_drawdown, initial_balance, final_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (run_id) DO NOTHING`,
		report.RunID, report.Symbol, report.Period, report.Strategy, params,
		report.Summary.TotalTrades, report.Summary.WinRate, report.Summary.TotalProfit,
		report.Summary.TotalReturn, report.Summary.MaxDrawdown,
		report.Summary.InitialBalance, report.Summary.FinalBalance, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i, t := range report.Ledger.Trades {
		batch.Queue(`
			INSERT INTO backtest_trades (run_id, seq, direction, entry_time, exit_time, entry_price,
				exit_price, profit_loss_percent, profit_loss_amount, balance_after, forced)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			report.RunID, i, t.Direction.String(), t.EntryTime, t.ExitTime,
			decimal.NewFromFloat(t.EntryPrice), decimal.NewFromFloat(t.ExitPrice),
			t.ProfitLossPercent, decimal.NewFromFloat(t.ProfitLossAmount),
			decimal.NewFromFloat(t.BalanceAfter), t.Forced)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert trade %d of run %s: %w", i, report.RunID, err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.logger.Info("backtest run saved",
		zap.String("run_id", report.RunID.String()),
		zap.Int("trades", len(report.Ledger.Trades)),
	)
	return nil
}
