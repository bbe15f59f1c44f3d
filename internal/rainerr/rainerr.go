// Package rainerr defines the sentinel error values the terminal core
// wraps with %w, in the style dcosson-h2/internal/session uses throughout
// (errors.Is-compatible sentinels rather than ad hoc string matching).
package rainerr

import "errors"

var (
	// ErrPTYWriteTimeout is returned by a session write when the child is
	// not draining its stdin and the kernel PTY buffer fills.
	ErrPTYWriteTimeout = errors.New("ptysession: write timed out, child likely hung")

	// ErrSessionClosed is returned by a session write (WriteInput, Paste)
	// once the session is no longer running, after Kill or child exit.
	ErrSessionClosed = errors.New("ptysession: session is closed")

	// ErrShellNotFound is returned when no usable shell could be located.
	ErrShellNotFound = errors.New("shelldetect: no usable shell found")

	// ErrBufferOverflow marks a DCS/Sixel/OSC buffer that hit its cap; the
	// caller discards further bytes but otherwise continues parsing.
	ErrBufferOverflow = errors.New("vt: buffer overflow, discarding further bytes")

	// ErrTmuxNotFound is returned when tmux is requested but not on PATH.
	ErrTmuxNotFound = errors.New("tmuxctl: tmux executable not found")
)
