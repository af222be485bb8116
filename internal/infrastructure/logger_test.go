package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	require.NoError(t, Init("warn"))
	assert.NotSame(t, prev, Logger)
	assert.False(t, Logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Logger.Core().Enabled(zapcore.WarnLevel))
}

func TestInit_BadLevel(t *testing.T) {
	prev := zap.NewNop()
	Logger = prev
	t.Cleanup(func() { Logger = prev })

	assert.Error(t, Init("loud"))
	assert.Same(t, prev, Logger)
}
