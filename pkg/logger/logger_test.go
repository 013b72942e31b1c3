package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelWarn},
		{"", slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInit_WritesSimpleLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oi.log")
	file, cleanup, err := OpenLogFile(path)
	require.NoError(t, err)

	log := Init(slog.LevelInfo, file, "simple")
	log.Info("Setting attribute", "attr", "model", "value", "gpt-4")
	log.Debug("hidden")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "INFO Setting attribute attr=model value=gpt-4\n", string(data))
}

func TestSetLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oi.log")
	file, cleanup, err := OpenLogFile(path)
	require.NoError(t, err)

	log := Init(slog.LevelWarn, file, "simple").With("component", "test")
	log.Debug("before")
	SetLevel(slog.LevelDebug)
	assert.Equal(t, slog.LevelDebug, Level())
	log.Debug("after")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DEBUG after component=test\n", string(data))
}
