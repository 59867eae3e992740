package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	previous := log
	core, logs := observer.New(zapcore.DebugLevel)
	log = zap.New(core)
	t.Cleanup(func() { log = previous })
	return logs
}

func TestInitialize(t *testing.T) {
	previous := log
	t.Cleanup(func() { log = previous })

	t.Run("debug without sentry", func(t *testing.T) {
		require.NoError(t, Initialize(Config{Debug: true, Service: "ingestion-worker"}))
		assert.True(t, Default().Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("production level", func(t *testing.T) {
		require.NoError(t, Initialize(Config{}))
		assert.False(t, Default().Core().Enabled(zapcore.DebugLevel))
		assert.True(t, Default().Core().Enabled(zapcore.InfoLevel))
	})

	t.Run("invalid sentry dsn", func(t *testing.T) {
		assert.Error(t, Initialize(Config{SentryDSN: "not a dsn"}))
	})
}

func TestLevels(t *testing.T) {
	logs := observe(t)
	ctx := context.Background()

	Debug("debug message", zap.String("k", "v"))
	InfoCtx(ctx, "info message")
	WarnCtx(ctx, "warn message")
	Error(errors.New("boom"), zap.Int("attempt", 3))
	ErrorCtx(ctx, nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)

	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "v", entries[0].ContextMap()["k"])
	assert.Equal(t, "info message", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[3].Message)
	assert.Equal(t, int64(3), entries[3].ContextMap()["attempt"])
	assert.Equal(t, "error occurred", entries[4].Message)
}

func TestFromContext_NilContext(t *testing.T) {
	observe(t)

	//nolint:staticcheck // nil context is tolerated
	assert.Equal(t, Default(), FromContext(nil))
}

func TestFlush_WithoutSentry(t *testing.T) {
	observe(t)
	sentryClient = nil

	assert.NotPanics(t, func() { Flush(0) })
}
