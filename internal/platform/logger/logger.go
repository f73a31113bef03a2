// Package logger constructs the process-wide structured logger.
package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger at the given level. Handlers and services
// receive this instance; nothing logs through the global default.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// LevelFromEnv maps VERIFACE_LOG_LEVEL to a slog level, defaulting to info.
func LevelFromEnv() slog.Level {
	switch os.Getenv("VERIFACE_LOG_LEVEL") {
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
