package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larriantoniy/tg_report_bot/internal/config"
)

func TestLevelFor(t *testing.T) {
	_, on := LevelFor(0)
	assert.False(t, on)

	want := []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug, LevelTrace, LevelTrace}
	for i, w := range want {
		got, on := LevelFor(i + 1)
		assert.True(t, on)
		assert.Equal(t, w, got, "verbosity %d", i+1)
	}
}

func TestNew_OffDiscardsEverything(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(envProd, 0, config.LogConfig{}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	log.Error("nope")
	assert.Empty(t, buf.String())
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestNew_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(envProd, 2, config.LogConfig{}, &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "channel", "@a")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"channel":"@a"`)
}

func TestNew_DevUsesTextHandler(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(envDev, 3, config.LogConfig{}, &buf)
	require.NoError(t, err)

	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_FileRotation(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "reporter.log")
	log, closer, err := New(envProd, 3, config.LogConfig{File: path, MaxSizeMB: 1}, &buf)
	require.NoError(t, err)

	log.Info("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, buf.String(), "to file")
}
