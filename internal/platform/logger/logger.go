// Package logger constructs the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
)

// New returns a slog logger writing to w in the given format ("json" or
// "text") at level.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("service", "residentd")
}
