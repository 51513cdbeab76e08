// Package logger sets up the process-wide slog logger. Level and format come from
// LOG_LEVEL (debug|info|warn|error) and LOG_FORMAT (text|json).
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Setup builds the default logger writing to stderr
func Setup() *slog.Logger {
	return SetupWriter(os.Stderr)
}

// SetupWriter builds the default logger writing to w
func SetupWriter(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromEnv()}

	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	slog.SetDefault(defaultLogger)
	return defaultLogger
}

// L returns the default logger, setting it up on first use
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
