// Package session couples a PTY child process, an in-process terminal
// emulator, and an idle tracker into one deterministic automation surface:
// type text, press keys, click on matched content, wait for the screen to
// settle, and read it back as styled text.
package session

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/remorses/tuistory/idle"
	"github.com/remorses/tuistory/keys"
	"github.com/remorses/tuistory/log"
	"github.com/remorses/tuistory/screen"
	"github.com/remorses/tuistory/term"
)

const (
	// DefaultCols and DefaultRows size the PTY and emulator when
	// LaunchOptions leaves them zero.
	DefaultCols = 80
	DefaultRows = 24

	defaultTextTimeout     = 1 * time.Second
	defaultWaitTextTimeout = 5 * time.Second
	defaultIdleTimeout     = 500 * time.Millisecond
	defaultDataTimeout     = 5 * time.Second
	defaultClickTimeout    = 5 * time.Second

	// typeDelay paces per-character writes so per-keystroke handlers in
	// the child get a chance to react between characters.
	typeDelay = 1 * time.Millisecond

	// settleTimeout bounds the trailing quiescence wait after writes.
	settleTimeout = 500 * time.Millisecond

	// pollQuiescent is the short wait used inside text/click poll loops.
	pollQuiescent = 15 * time.Millisecond
)

// LaunchOptions configures the child process and its terminal.
type LaunchOptions struct {
	Command string
	Args    []string

	// Cols and Rows default to 80x24.
	Cols int
	Rows int

	// Cwd is the child's working directory; empty inherits ours.
	Cwd string

	// Env is merged over the inherited environment. TERM and COLORTERM
	// are forced on top so children always see a truecolor terminal.
	Env map[string]string
}

// ClickOptions configures Click.
type ClickOptions struct {
	// First clicks the first match (line-major, then column) instead of
	// failing when the pattern matches more than once.
	First bool

	// Timeout bounds the search. Zero means 5s.
	Timeout time.Duration
}

// CaptureOptions configures CaptureFrames.
type CaptureOptions struct {
	// FrameCount is the number of frames to capture. Zero means 5.
	FrameCount int

	// Interval is the sleep between frames. Zero means 10ms.
	Interval time.Duration
}

// Session drives one child process inside a PTY with an in-process screen
// emulation. Operations are safe to call from multiple goroutines, but
// concurrent Text calls race over the grid snapshot; serialize if the
// interleaving matters.
type Session struct {
	id   string
	pty  ptyIO
	emu  term.Emulator
	idle *idle.Tracker

	mu     sync.Mutex
	cols   int
	rows   int
	closed bool
}

// Launch spawns the command inside a new PTY and starts feeding its output
// into the emulator.
func Launch(opts LaunchOptions) (*Session, error) {
	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = DefaultCols
	}
	if rows <= 0 {
		rows = DefaultRows
	}

	emu := term.NewVT100(cols, rows)
	pty, err := spawnPTY(opts.Command, opts.Args, cols, rows, opts.Cwd, mergedEnv(opts.Env))
	if err != nil {
		emu.Destroy()
		return nil, &LaunchError{Command: opts.Command, Err: err}
	}

	return newSession(pty, emu, cols, rows), nil
}

// LaunchReady launches and then waits for the child's first output and the
// first quiescence, so the returned session already shows a settled screen.
// The session is closed when the wait fails.
func LaunchReady(opts LaunchOptions) (*Session, error) {
	s, err := Launch(opts)
	if err != nil {
		return nil, err
	}
	if err := s.WaitForData(0); err != nil {
		_ = s.Close()
		return nil, err
	}
	s.idle.AwaitQuiescent(defaultIdleTimeout)
	return s, nil
}

// newSession wires the data path: every arriving chunk feeds the emulator
// first, then notifies the idle tracker. Tests inject fakes here.
func newSession(pty ptyIO, emu term.Emulator, cols, rows int) *Session {
	s := &Session{
		id:   uuid.NewString(),
		pty:  pty,
		emu:  emu,
		idle: idle.NewTracker(),
		cols: cols,
		rows: rows,
	}
	pty.onData(s.handleData)
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Size returns the current geometry.
func (s *Session) Size() (cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cols, s.rows
}

// handleData is the PTY data sink. After Close it is a no-op. Emulator
// feed errors are logged and the chunk dropped; the stream must keep
// making progress no matter what bytes the child emits.
func (s *Session) handleData(p []byte) {
	if s.isClosed() {
		return
	}
	if err := s.emu.Feed(p); err != nil {
		log.ErrorLog.Printf("session %s: emulator feed: %v", s.id, err)
	}
	log.DataTrace("session %s: %d bytes", s.id, len(p))
	s.idle.Notify()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Type writes text one code-point at a time with a small pacing delay,
// then waits for the screen to settle.
func (s *Session) Type(text string) error {
	if s.isClosed() {
		return fmt.Errorf("type: %w", ErrClosed)
	}
	for _, r := range text {
		if err := s.pty.write([]byte(string(r))); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		time.Sleep(typeDelay)
	}
	s.idle.AwaitQuiescent(settleTimeout)
	return nil
}

// Press encodes one key chord, for example ("ctrl", "c"), writes it in a
// single PTY write, and waits for the screen to settle. Unknown key names
// are rejected with an error naming the offenders and the valid set.
func (s *Session) Press(names ...string) error {
	if s.isClosed() {
		return fmt.Errorf("press: %w", ErrClosed)
	}

	chord, err := parseChord(names)
	if err != nil {
		return err
	}

	encoded := keys.Encode(chord...)
	log.InputTrace("session %s: press %v -> %q", s.id, names, encoded)
	if len(encoded) > 0 {
		if err := s.pty.write(encoded); err != nil {
			return fmt.Errorf("press: %w", err)
		}
	}
	s.idle.AwaitQuiescent(settleTimeout)
	return nil
}

func parseChord(names []string) ([]keys.Key, error) {
	chord := make([]keys.Key, 0, len(names))
	var invalid []string
	for _, name := range names {
		k, err := keys.Parse(name)
		if err != nil {
			invalid = append(invalid, name)
			continue
		}
		chord = append(chord, k)
	}
	if len(invalid) > 0 {
		return nil, &keys.InvalidKeyError{Names: invalid}
	}
	return chord, nil
}

// SendRaw writes bytes to the PTY without pacing and without waiting for
// quiescence.
func (s *Session) SendRaw(p []byte) error {
	if s.isClosed() {
		return fmt.Errorf("send raw: %w", ErrClosed)
	}
	if err := s.pty.write(p); err != nil {
		return fmt.Errorf("send raw: %w", err)
	}
	return nil
}

// Text projects the screen into text. Unless Immediate is set it polls
// (brief quiescence wait, then projection) until the WaitFor predicate
// holds (default: trimmed text is non-empty) or the timeout expires. On
// expiry the predicate is evaluated once more against a fresh projection
// before a TimeoutError carrying the current screen is returned.
func (s *Session) Text(opts *screen.TextOptions) (string, error) {
	if s.isClosed() {
		return "", fmt.Errorf("text: %w", ErrClosed)
	}

	if opts == nil {
		opts = &screen.TextOptions{}
	}
	if opts.Immediate {
		return s.project(opts), nil
	}

	waitFor := opts.WaitFor
	if waitFor == nil {
		waitFor = func(text string) bool { return strings.TrimSpace(text) != "" }
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTextTimeout
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.idle.AwaitQuiescent(pollQuiescent)
		txt := s.project(opts)
		if waitFor(txt) {
			return txt, nil
		}
		if s.isClosed() {
			return "", fmt.Errorf("text: %w", ErrClosed)
		}
	}

	// One last look; the condition may have been met right at the edge.
	txt := s.project(opts)
	if waitFor(txt) {
		return txt, nil
	}
	return "", &TimeoutError{Op: "text", Timeout: timeout, Screen: txt}
}

func (s *Session) project(opts *screen.TextOptions) string {
	return screen.Project(s.emu.Snapshot(), opts)
}

// WaitForText waits until the pattern matches the projected text. A zero
// timeout means 5s.
func (s *Session) WaitForText(pattern screen.Pattern, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = defaultWaitTextTimeout
	}
	txt, err := s.Text(&screen.TextOptions{
		WaitFor: pattern.Matches,
		Timeout: timeout,
	})
	if err != nil {
		var te *TimeoutError
		if errors.As(err, &te) {
			return "", &TimeoutError{Op: fmt.Sprintf("wait for text %s", pattern), Timeout: timeout, Screen: te.Screen}
		}
		return "", err
	}
	return txt, nil
}

// WaitIdle waits for the stream to go quiescent. A zero timeout means
// 500ms. It returns normally whether the debounce fired or the timeout
// elapsed; only a closed session is an error.
func (s *Session) WaitIdle(timeout time.Duration) error {
	if s.isClosed() {
		return fmt.Errorf("wait idle: %w", ErrClosed)
	}
	if timeout <= 0 {
		timeout = defaultIdleTimeout
	}
	s.idle.AwaitQuiescent(timeout)
	if s.isClosed() {
		return fmt.Errorf("wait idle: %w", ErrClosed)
	}
	return nil
}

// WaitForData waits for the first byte the child ever writes. A zero
// timeout means 5s.
func (s *Session) WaitForData(timeout time.Duration) error {
	if s.isClosed() {
		return fmt.Errorf("wait for data: %w", ErrClosed)
	}
	if timeout <= 0 {
		timeout = defaultDataTimeout
	}
	switch err := s.idle.AwaitFirstData(timeout); err {
	case nil:
		return nil
	case idle.ErrClosed:
		return fmt.Errorf("wait for data: %w", ErrClosed)
	default:
		return &TimeoutError{Op: "wait for data", Timeout: timeout}
	}
}

// Click locates the pattern on the current screen and emits a mouse click
// at the match's cell. Zero matches keeps polling until the timeout; more
// than one match fails unless First is set.
func (s *Session) Click(pattern screen.Pattern, opts *ClickOptions) error {
	if s.isClosed() {
		return fmt.Errorf("click: %w", ErrClosed)
	}

	if opts == nil {
		opts = &ClickOptions{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultClickTimeout
	}

	deadline := time.Now().Add(timeout)
	for {
		s.idle.AwaitQuiescent(pollQuiescent)
		if s.isClosed() {
			return fmt.Errorf("click: %w", ErrClosed)
		}

		lines := screen.Lines(s.emu.Snapshot())
		matches := screen.FindMatches(lines, pattern)
		switch {
		case len(matches) == 0:
			if time.Now().After(deadline) {
				current := s.project(&screen.TextOptions{Immediate: true, TrimEnd: true})
				return &ClickNotFoundError{Pattern: pattern.String(), Timeout: timeout, Screen: current}
			}
		case len(matches) == 1 || opts.First:
			return s.ClickAt(matches[0].Col, matches[0].Row)
		default:
			return &AmbiguousClickError{Pattern: pattern.String(), Count: len(matches)}
		}
	}
}

// ClickAt emits an SGR mouse press and release at the given cell, then
// waits for the screen to settle.
func (s *Session) ClickAt(x, y int) error {
	if s.isClosed() {
		return fmt.Errorf("click at: %w", ErrClosed)
	}
	if err := s.pty.write(keys.MouseClick(x, y)); err != nil {
		return fmt.Errorf("click at: %w", err)
	}
	s.idle.AwaitQuiescent(settleTimeout)
	return nil
}

// ScrollUp emits wheel-up events at the screen center.
func (s *Session) ScrollUp(lines int) error {
	cols, rows := s.Size()
	return s.ScrollUpAt(lines, cols/2, rows/2)
}

// ScrollDown emits wheel-down events at the screen center.
func (s *Session) ScrollDown(lines int) error {
	cols, rows := s.Size()
	return s.ScrollDownAt(lines, cols/2, rows/2)
}

// ScrollUpAt emits lines wheel-up events at the given cell.
func (s *Session) ScrollUpAt(lines, x, y int) error {
	return s.scroll(keys.MouseScrollUp, lines, x, y)
}

// ScrollDownAt emits lines wheel-down events at the given cell.
func (s *Session) ScrollDownAt(lines, x, y int) error {
	return s.scroll(keys.MouseScrollDown, lines, x, y)
}

func (s *Session) scroll(event func(x, y int) []byte, lines, x, y int) error {
	if s.isClosed() {
		return fmt.Errorf("scroll: %w", ErrClosed)
	}
	if lines <= 0 {
		lines = 1
	}
	for i := 0; i < lines; i++ {
		if err := s.pty.write(event(x, y)); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
	}
	s.idle.AwaitQuiescent(settleTimeout)
	return nil
}

// CaptureFrames sends the key chord without waiting for quiescence, then
// captures FrameCount immediate projections with Interval sleeps between
// them. It exists to observe the transient intermediate renders the
// debounce would otherwise hide. The screen is allowed to settle after the
// last frame.
func (s *Session) CaptureFrames(names []string, opts *CaptureOptions) ([]string, error) {
	if s.isClosed() {
		return nil, fmt.Errorf("capture frames: %w", ErrClosed)
	}

	if opts == nil {
		opts = &CaptureOptions{}
	}
	count := opts.FrameCount
	if count <= 0 {
		count = 5
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}

	chord, err := parseChord(names)
	if err != nil {
		return nil, err
	}
	if encoded := keys.Encode(chord...); len(encoded) > 0 {
		if err := s.SendRaw(encoded); err != nil {
			return nil, err
		}
	}

	frames := make([]string, 0, count)
	for i := 0; i < count; i++ {
		frames = append(frames, s.project(&screen.TextOptions{Immediate: true}))
		if i < count-1 {
			time.Sleep(interval)
		}
	}
	s.idle.AwaitQuiescent(settleTimeout)
	return frames, nil
}

// Resize updates the session geometry, the emulator, and the PTY. The
// child's SIGWINCH-driven repaint is observed by subsequent operations, so
// there is no quiescence wait here.
func (s *Session) Resize(cols, rows int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("resize: %w", ErrClosed)
	}
	s.cols = cols
	s.rows = rows
	s.emu.Resize(cols, rows)
	err := s.pty.resize(cols, rows)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return nil
}

// Close terminates the child process and destroys the emulator, in that
// order. Outstanding waiters terminate without success. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.idle.Close()
	s.pty.kill()
	s.emu.Destroy()
	return nil
}

// mergedEnv overlays extra on the inherited environment and forces the
// terminal identity variables children use for capability detection.
func mergedEnv(extra map[string]string) []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for k, v := range extra {
		merged[k] = v
	}
	merged["TERM"] = "xterm-truecolor"
	merged["COLORTERM"] = "truecolor"

	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	return out
}
