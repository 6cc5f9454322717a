// Package term defines the styled cell-grid model a terminal emulator
// exposes to the rest of tuistory, and provides the default emulator
// implementation backed by the vt100 package.
package term

// Style is the attribute set carried by a span of cells.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Blink     bool
	Inverse   bool
	Fg        Color
	Bg        Color
}

// Span is a run of adjacent cells on one line sharing identical style
// attributes. Width is the number of columns the run occupies, which can
// exceed the rune count when the text contains wide glyphs.
type Span struct {
	Text  string
	Width int
	Style Style
}

// Line is the ordered sequence of spans making up one grid row. Span widths
// sum to the grid's column count.
type Line []Span

// Text returns the row's text with no style information.
func (l Line) Text() string {
	var n int
	for _, s := range l {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range l {
		b = append(b, s.Text...)
	}
	return string(b)
}

// Grid is an immutable snapshot of the emulator's screen.
type Grid struct {
	Cols, Rows int
	Lines      []Line

	// Cursor position, 0-based cells.
	CursorX, CursorY int
	CursorVisible    bool
}

// Emulator is the terminal emulation surface a Session drives. Feed must be
// total over arbitrary byte streams: a parse problem is reported as an error
// but must leave the emulator usable.
type Emulator interface {
	// Feed processes a chunk of child output.
	Feed(p []byte) error

	// Snapshot returns the current screen as styled per-line spans.
	Snapshot() *Grid

	// Resize changes the grid dimensions.
	Resize(cols, rows int)

	// Destroy releases the emulator. Feed and Resize become no-ops and
	// Snapshot returns an empty grid.
	Destroy()
}
