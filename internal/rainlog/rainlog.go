// Package rainlog provides the structured-logging helper shared by every
// Rain component, built on log/slog the way
// Tonksthebear-trybotster/deprecated/go-hub/internal/pty/session.go logs a
// PTY session's own lifecycle: a *slog.Logger threaded in as a constructor
// parameter, never a package-level global.
package rainlog

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text-handler slog.Logger writing to w (os.Stderr if nil)
// at the given level, tagged with component="name".
func New(name string, w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("component", name)
}

// Discard returns a logger that drops everything, for tests and for
// callers that opt out of logging entirely.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
