package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"range-breakout/internal/engine"
	"range-breakout/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
	assert.Equal(t, 24*time.Hour, cfg.ReportTTL)
	assert.Equal(t, 4, cfg.SweepWorkers)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, strategy.DefaultParams(), cfg.StrategyParams())
	assert.Equal(t, engine.DefaultSettings(), cfg.BacktestSettings())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := "PIVOT_WINDOW=5\nREPORT_TTL=1h\nEMA_PERIOD=99\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("EMA_PERIOD", "20")
	t.Setenv("STOP_LOSS_PERCENT", "1.5")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.StrategyParams().PivotWindow)
	assert.Equal(t, time.Hour, cfg.ReportTTL)
	// environment wins over the file
	assert.Equal(t, 20, cfg.StrategyParams().EMAPeriod)
	assert.Equal(t, 1.5, cfg.BacktestSettings().StopLossPercent)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
		want       error
	}{
		{"EMA_PERIOD", "0", strategy.ErrInvalidParams},
		{"PATTERN_WINDOW", "0", strategy.ErrInvalidParams},
		{"RISK_PERCENT", "0", engine.ErrInvalidSettings},
		{"INITIAL_BALANCE", "-100", engine.ErrInvalidSettings},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig(t.TempDir())
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("SWEEP_WORKERS", func(t *testing.T) {
		t.Setenv("SWEEP_WORKERS", "0")
		_, err := LoadConfig(t.TempDir())
		assert.Error(t, err)
	})
}

func TestLoad_SkipsValidation(t *testing.T) {
	t.Setenv("RISK_PERCENT", "0")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.RiskPercent)
	assert.ErrorIs(t, cfg.Validate(), engine.ErrInvalidSettings)
}
