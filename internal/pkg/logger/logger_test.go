package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		t.Run(env, func(t *testing.T) {
			l := NewLogger(env)
			require.NotNil(t, l)
			l.Info("test message")
		})
	}
}

func TestNewLogger_LogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	l := NewLogger("production")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	// 無効なレベルは無視される
	t.Setenv("LOG_LEVEL", "invalid_level")
	l = NewLogger("production")
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}

func TestInit(t *testing.T) {
	original := Get()
	defer Set(original)

	l := Init("production")
	require.NotNil(t, l)
	assert.Equal(t, l, Get())
}

func TestPackageFunctions_WriteToCurrentLogger(t *testing.T) {
	original := Get()
	defer Set(original)

	core, logs := observer.New(zapcore.DebugLevel)
	Set(zap.New(core))

	Debug("debug")
	Info("予約を作成しました", zap.String("reservation_id", "r1"))
	Warn("warn")
	Error("error", zap.Int("status", 500))
	With(zap.String("user_id", "u1")).Info("with")

	require.Equal(t, 5, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "r1", entries[1].ContextMap()["reservation_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "u1", entries[4].ContextMap()["user_id"])
	assert.NotPanics(t, func() { _ = Sync() })
}
