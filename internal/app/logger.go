package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app's isolated logger from config. It never touches
// the process default logger, so tests and embedders can run multiple apps
// with independent outputs.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

// parseLevel maps a config level string to its slog level. The CLI layer
// validates the string; anything else that reaches here falls back to info.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
