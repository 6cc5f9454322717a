package term

import (
	"regexp"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"
	"github.com/tonistiigi/vt100"
)

// oscSequenceRegex matches OSC 8 hyperlink sequences that vt100 doesn't
// handle. Format: ESC ] 8 ; params ; URI ST (where ST is ESC \ or BEL).
var oscSequenceRegex = regexp.MustCompile(`\x1b\]8;[^;]*;[^\x1b\x07]*(?:\x1b\\|\x07)`)

// VT100 is the default Emulator, backed by the vt100 package. All methods
// are safe for concurrent use.
//
// The underlying emulator carries no italic attribute and resolves indexed
// colors to RGBA, so Style.Italic is always false and only the eight base
// palette colors survive the round-trip back to indexed form.
type VT100 struct {
	mu sync.Mutex

	vt         *vt100.VT100
	cols, rows int
	destroyed  bool
}

// NewVT100 creates an emulator with the given geometry.
func NewVT100(cols, rows int) *VT100 {
	return &VT100{
		vt:   vt100.NewVT100(rows, cols),
		cols: cols,
		rows: rows,
	}
}

// Feed processes a chunk of child output.
func (e *VT100) Feed(p []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed {
		return nil
	}

	cleaned := oscSequenceRegex.ReplaceAll(p, nil)
	_, err := e.vt.Write(cleaned)
	return err
}

// Resize changes the grid dimensions.
func (e *VT100) Resize(cols, rows int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.destroyed || (cols == e.cols && rows == e.rows) {
		return
	}
	e.vt.Resize(rows, cols)
	e.cols = cols
	e.rows = rows
}

// Destroy releases the emulator.
func (e *VT100) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.destroyed = true
	e.vt = nil
}

// Snapshot returns the current screen as styled per-line spans.
func (e *VT100) Snapshot() *Grid {
	e.mu.Lock()
	defer e.mu.Unlock()

	g := &Grid{Cols: e.cols, Rows: e.rows}
	if e.destroyed {
		return g
	}

	g.Lines = make([]Line, e.rows)
	for y := 0; y < e.rows; y++ {
		g.Lines[y] = e.lineSpans(y)
	}
	g.CursorY = e.vt.Cursor.Y
	g.CursorX = e.vt.Cursor.X
	g.CursorVisible = true
	return g
}

// lineSpans walks one emulator row and coalesces adjacent cells with equal
// formats into spans. Must be called with mu held.
func (e *VT100) lineSpans(y int) Line {
	var line Line
	var text strings.Builder
	var width int
	var cur vt100.Format
	started := false

	flush := func() {
		if !started {
			return
		}
		line = append(line, Span{
			Text:  text.String(),
			Width: width,
			Style: styleFromFormat(cur),
		})
		text.Reset()
		width = 0
	}

	for x := 0; x < e.cols; x++ {
		ch := e.vt.Content[y][x]
		f := e.vt.Format[y][x]
		if ch == 0 {
			ch = ' '
		}

		if !started || !formatsEqual(f, cur) {
			flush()
			cur = f
			started = true
		}

		text.WriteRune(ch)
		if w := runewidth.RuneWidth(ch); w > 1 {
			width += w
		} else {
			width++
		}
	}
	flush()
	return line
}

func styleFromFormat(f vt100.Format) Style {
	return Style{
		Bold:      f.Intensity == vt100.Bright,
		Underline: f.Underscore,
		Blink:     f.Blink,
		Inverse:   f.Inverse || f.Negative,
		Fg:        fromRGBA(f.Fg),
		Bg:        fromRGBA(f.Bg),
	}
}

func formatsEqual(a, b vt100.Format) bool {
	return a.Fg == b.Fg &&
		a.Bg == b.Bg &&
		a.Intensity == b.Intensity &&
		a.Underscore == b.Underscore &&
		a.Conceal == b.Conceal &&
		a.Negative == b.Negative &&
		a.Blink == b.Blink &&
		a.Inverse == b.Inverse
}
