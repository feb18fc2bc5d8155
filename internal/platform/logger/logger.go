package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Level defaults to info;
// set CITADEL_LOG_LEVEL=debug to see per-request navigation detail.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("CITADEL_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
