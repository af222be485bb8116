package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"range-breakout/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

// ReportCache keeps finished reports addressable by run id for a limited time.
type ReportCache interface {
	Put(ctx context.Context, report *model.BacktestReport) error
	Get(ctx context.Context, runID uuid.UUID) (*model.BacktestReport, error)
}

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "range-breakout:report:",
		ttl:    ttl,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Put(ctx context.Context, report *model.BacktestReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+report.RunID.String(), data, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, runID uuid.UUID) (*model.BacktestReport, error) {
	data, err := c.client.Get(ctx, c.prefix+runID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", runID, err)
	}

	var report model.BacktestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

type memoryEntry struct {
	report  *model.BacktestReport
	expires time.Time
}

// MemoryCache is the single-process fallback used when no redis is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[uuid.UUID]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryCache) Put(_ context.Context, report *model.BacktestReport) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, id)
		}
	}
	c.entries[report.RunID] = memoryEntry{report: report, expires: now.Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Get(_ context.Context, runID uuid.UUID) (*model.BacktestReport, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[runID]
	if !ok || c.now().After(e.expires) {
		return nil, ErrReportNotFound
	}
	return e.report, nil
}
