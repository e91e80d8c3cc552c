// Package logging builds the run logger. It is constructed once by the
// entry point and handed to every component that reports diagnostics.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger on w. Verbose enables debug output, otherwise
// only warnings and errors are written.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
