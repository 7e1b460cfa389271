package config

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger installs the default slog logger for the process
func InitLogger(cfg LoggingConfig) {
	slog.SetDefault(NewLogger(os.Stdout, cfg))

	slog.With("component", "logger").Debug("Logger initialized",
		"level", cfg.Level,
		"json_format", cfg.JSONFormat,
	)
}

// NewLogger builds a text or JSON logger writing to w
func NewLogger(w io.Writer, cfg LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLogLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func ParseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
