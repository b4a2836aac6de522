package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/larriantoniy/tg_report_bot/internal/config"
)

const (
	envDev  = "dev"
	envProd = "prod"
)

// LevelTrace ниже Debug, для -vvvvv
const LevelTrace = slog.Level(-8)

// Verbosity ladder: 0 off, 1 error, 2 warn, 3 info, 4 debug, 5+ trace.
func LevelFor(verbosity int) (slog.Level, bool) {
	switch {
	case verbosity <= 0:
		return 0, false
	case verbosity == 1:
		return slog.LevelError, true
	case verbosity == 2:
		return slog.LevelWarn, true
	case verbosity == 3:
		return slog.LevelInfo, true
	case verbosity == 4:
		return slog.LevelDebug, true
	default:
		return LevelTrace, true
	}
}

// New собирает логгер. stderr, потому что stdout занят результатами.
func New(env string, verbosity int, cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, enabled := LevelFor(verbosity)
	if !enabled {
		return slog.New(discardHandler{}), nopCloser{}, nil
	}

	writer := stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, err
		}
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		writer = io.MultiWriter(stderr, rotating)
		closer = rotating
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch env {
	case envDev:
		handler = slog.NewTextHandler(writer, opts)
	default:
		handler = slog.NewJSONHandler(writer, opts)
	}

	return slog.New(handler), closer, nil
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }

func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler { return d }

func (d discardHandler) WithGroup(string) slog.Handler { return d }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
