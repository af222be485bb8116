package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BacktestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtest_runs_total",
		Help: "Total number of backtest runs by outcome",
	}, []string{"strategy", "outcome"})

	BacktestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backtest_duration_seconds",
		Help:    "Wall time of a single annotate + simulate run",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"strategy"})

	BacktestTrades = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backtest_trades_total",
		Help: "Total number of simulated trades closed",
	}, []string{"symbol", "direction"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	ReportPublish = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_publish_total",
		Help: "Total number of backtest reports published to NATS",
	}, []string{"outcome"})
)
