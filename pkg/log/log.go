// Package log configures the process-wide structured logger.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to its slog level. The empty string means
// info; unknown names return info plus an error so callers can complain
// without refusing to start.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Setup installs the process default logger and returns it. Format "json"
// suits log collectors; anything else means human-readable text. An
// unknown level falls back to info.
func Setup(logLevel, format string) *slog.Logger {
	return SetupWithOutput(os.Stderr, logLevel, format)
}

// SetupWithOutput is Setup writing to the given sink. Tests use it to
// capture output.
func SetupWithOutput(w io.Writer, logLevel, format string) *slog.Logger {
	level, err := ParseLevel(logLevel)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	if err != nil {
		logger.Warn("falling back to info level", "error", err)
	}

	return logger
}

// WithModule tags a child of the default logger with the subsystem name.
// Subsystems use it so every line carries its origin.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
