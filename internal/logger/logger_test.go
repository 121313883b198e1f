package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{" INFO ", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"Warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", slog.LevelInfo, false},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestDefaultConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	t.Setenv(EnvFormat, "JSON")

	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelError, cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	t.Setenv(EnvLevel, "")
	t.Setenv(EnvFormat, "")
	cfg = DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.Equal(t, "text", cfg.Format)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	Component(l, "renderloop").Info("started", slog.String("shape", "bars"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "renderloop", rec["component"])
	assert.Equal(t, "bars", rec["shape"])
	assert.Equal(t, "started", rec["msg"])

	buf.Reset()
	Component(l, "x").Debug("hidden")
	assert.Zero(t, buf.Len())
}
