package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wichananm65/gift-concierge/internal/config"
)

// New builds a slog logger from the log section of the config.
func New(cfg *config.Config) (*slog.Logger, error) {
	var writer io.Writer
	switch strings.ToLower(cfg.Log.Output) {
	case "file", "both":
		if err := os.MkdirAll(filepath.Dir(cfg.Log.FilePath), 0o755); err != nil {
			return nil, err
		}
		file, err := os.OpenFile(cfg.Log.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, err
		}
		writer = file
		if strings.EqualFold(cfg.Log.Output, "both") {
			writer = io.MultiWriter(os.Stdout, file)
		}
	default:
		writer = os.Stdout
	}
	return NewWithWriter(writer, cfg.Log.Level, cfg.Log.Format), nil
}

// NewWithWriter is New for an already opened writer.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Discard returns a logger that drops everything; used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
