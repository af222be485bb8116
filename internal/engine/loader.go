package engine

import (
	"context"
	"fmt"
	"time"

	"range-breakout/internal/model"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const klineColumns = `time, symbol, exchange, period, open, high, low, close, volume`

// DataLoader reads stored klines from postgres.
type DataLoader struct {
	pool *pgxpool.Pool
}

func NewDataLoader(pool *pgxpool.Pool) *DataLoader {
	return &DataLoader{pool: pool}
}

// LoadCandles returns the klines of symbol/period in [start, end], oldest first.
// The result is what a backtest consumes, so it is ordered for the simulator.
func (l *DataLoader) LoadCandles(ctx context.Context, symbol string, start, end time.Time, period string) ([]model.KLine, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+klineColumns+`
		FROM market_klines
		WHERE symbol = $1 AND period = $2 AND time >= $3 AND time <= $4
		ORDER BY time ASC`,
		symbol, period, start, end)
	if err != nil {
		return nil, fmt.Errorf("query klines %s/%s: %w", symbol, period, err)
	}
	return scanKLines(rows, 0)
}

// LatestKLines returns the most recent limit klines, newest first.
func (l *DataLoader) LatestKLines(ctx context.Context, symbol, period string, limit int) ([]model.KLine, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT `+klineColumns+`
		FROM market_klines
		WHERE symbol = $1 AND period = $2
		ORDER BY time DESC
		LIMIT $3`,
		symbol, period, limit)
	if err != nil {
		return nil, fmt.Errorf("query latest klines %s/%s: %w", symbol, period, err)
	}
	return scanKLines(rows, limit)
}

func scanKLines(rows pgx.Rows, capacity int) ([]model.KLine, error) {
	defer rows.Close()

	out := make([]model.KLine, 0, capacity)
	for rows.Next() {
		var k model.KLine
		if err := rows.Scan(&k.Timestamp, &k.Symbol, &k.Exchange, &k.Period, &k.Open, &k.High, &k.Low, &k.Close, &k.Volume); err != nil {
			return nil, fmt.Errorf("scan kline: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
