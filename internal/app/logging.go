package app

import (
	"io"
	"log/slog"
)

// NewLogger returns the diagnostics logger: warnings and up by default,
// everything with debug.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
