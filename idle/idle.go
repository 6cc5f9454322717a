// Package idle implements the quiescence model the automation protocol
// depends on: the stream is idle once no bytes have arrived from the PTY
// for the debounce interval.
package idle

import (
	"errors"
	"sync"
	"time"
)

const (
	// Debounce is how long after the last received byte the stream is
	// declared idle.
	Debounce = 60 * time.Millisecond

	// InitialIdleFallback bounds how long a waiter sleeps when it arms
	// before any byte has ever arrived (or after the last fire).
	InitialIdleFallback = 20 * time.Millisecond
)

// ErrTimeout is returned by AwaitFirstData when no byte arrives in time.
var ErrTimeout = errors.New("timed out waiting for first data")

// ErrClosed is returned when the tracker has been closed.
var ErrClosed = errors.New("idle tracker is closed")

// Tracker observes PTY data-arrival timestamps and releases quiescence
// waiters in a batch once the debounce fires. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	timer   *time.Timer
	armed   bool
	waiters []chan struct{}

	seen  bool
	first chan struct{}
	done  chan struct{}
	closed bool
}

// NewTracker returns a tracker with nothing received yet.
func NewTracker() *Tracker {
	return &Tracker{
		first: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Notify records a data arrival: it restarts the debounce and wakes any
// first-data waiters. Called on every chunk read from the PTY.
func (t *Tracker) Notify() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if !t.seen {
		t.seen = true
		close(t.first)
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	t.armed = true
	t.timer = time.AfterFunc(Debounce, t.fire)
}

// fire releases every pending waiter in one batch.
func (t *Tracker) fire() {
	t.mu.Lock()
	waiters := t.waiters
	t.waiters = nil
	t.armed = false
	t.timer = nil
	t.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}

// AwaitQuiescent blocks until the debounce fires or the timeout elapses,
// whichever comes first. When no debounce is pending (no byte has arrived
// since the last fire) it resolves after min(timeout, InitialIdleFallback).
// It reports whether the stream is believed idle; a timeout while data is
// still flowing or a concurrent Close reports false.
func (t *Tracker) AwaitQuiescent(timeout time.Duration) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}

	if !t.armed {
		t.mu.Unlock()
		d := InitialIdleFallback
		if timeout < d {
			d = timeout
		}
		select {
		case <-time.After(d):
			return true
		case <-t.done:
			return false
		}
	}

	ch := make(chan struct{})
	t.waiters = append(t.waiters, ch)
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		return !closed
	case <-timer.C:
		return false
	}
}

// AwaitFirstData resolves as soon as the first byte ever arrives, and
// immediately if one already has. It returns ErrTimeout if none arrives
// within the timeout, and ErrClosed once the tracker has been closed.
func (t *Tracker) AwaitFirstData(timeout time.Duration) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.seen {
		t.mu.Unlock()
		return nil
	}
	first := t.first
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-first:
		return nil
	case <-t.done:
		return ErrClosed
	case <-timer.C:
		return ErrTimeout
	}
}

// SeenData reports whether at least one byte has ever been received.
func (t *Tracker) SeenData() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen
}

// Close cancels the pending debounce and wakes every outstanding waiter
// without success. Idempotent.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.armed = false
	waiters := t.waiters
	t.waiters = nil
	close(t.done)
	t.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}
