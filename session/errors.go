package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/indent"
)

// ErrClosed is returned by every operation invoked after Close.
var ErrClosed = errors.New("session is closed")

// TimeoutError reports a bounded wait that expired without its condition
// being met. For text waits it carries the projected screen at expiry.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Screen  string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s: timed out after %v", e.Op, e.Timeout)
	if e.Screen != "" {
		msg += "\ncurrent screen:\n" + indentScreen(e.Screen)
	}
	return msg
}

// AmbiguousClickError reports a click pattern that matched more than once
// without First being set.
type AmbiguousClickError struct {
	Pattern string
	Count   int
}

func (e *AmbiguousClickError) Error() string {
	return fmt.Sprintf("click %s: found %d matches; pass First or use a more specific pattern",
		e.Pattern, e.Count)
}

// ClickNotFoundError reports a click that timed out without locating its
// pattern.
type ClickNotFoundError struct {
	Pattern string
	Timeout time.Duration
	Screen  string
}

func (e *ClickNotFoundError) Error() string {
	msg := fmt.Sprintf("click %s: pattern not found after %v", e.Pattern, e.Timeout)
	if e.Screen != "" {
		msg += "\ncurrent screen:\n" + indentScreen(e.Screen)
	}
	return msg
}

// LaunchError reports a failure to spawn the child or initialize the
// emulator.
type LaunchError struct {
	Command string
	Err     error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Command, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// WriteError reports a failed PTY write, e.g. after the child closed stdin.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("pty write: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// indentScreen formats a projected screen for inclusion in error text.
func indentScreen(s string) string {
	return indent.String(strings.TrimPrefix(s, "\n"), 4)
}
