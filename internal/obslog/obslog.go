// Package obslog builds the structured JSON logger every long-running
// component (engine, jobs, API middleware) logs through, consolidating the
// slog.NewJSONHandler(os.Stderr, nil) call repeated across handler
// constructors into one place that also honors LOG_LEVEL.
package obslog

import (
	"log/slog"
	"os"
	"strings"
)

// New builds a JSON-handler logger at the given level string ("debug",
// "info", "warn", "error"; unrecognized values fall back to info).
func New(level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)})
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
