package storage

import (
	"context"
	"testing"
	"time"

	"range-breakout/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	report := &model.BacktestReport{RunID: uuid.New(), Symbol: "AAPL"}
	require.NoError(t, cache.Put(ctx, report))

	got, err := cache.Get(ctx, report.RunID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", got.Symbol)

	_, err = cache.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrReportNotFound)

	now = now.Add(2 * time.Hour)
	_, err = cache.Get(ctx, report.RunID)
	assert.ErrorIs(t, err, ErrReportNotFound)

	// expired entries are swept on the next put
	require.NoError(t, cache.Put(ctx, &model.BacktestReport{RunID: uuid.New()}))
	assert.Len(t, cache.entries, 1)
}

func TestMemoryCache_ImplementsReportCache(t *testing.T) {
	var _ ReportCache = NewMemoryCache(time.Minute)
	var _ ReportCache = NewRedisCache("localhost:6379", "", 0, time.Minute)
}
