// Package screen projects an emulator grid into assertion-friendly text and
// locates pattern matches on it.
package screen

import (
	"strings"
	"time"

	"github.com/remorses/tuistory/term"
)

// StyleFilter selects spans by style. Each non-nil/non-empty field is an
// independent predicate; a span is kept only when every present predicate
// holds. Colors compare against the rendered form (a decimal string for
// indexed palette colors, lowercase #rrggbb for RGB) and the two forms are
// deliberately never cross-matched.
type StyleFilter struct {
	Bold       *bool
	Italic     *bool
	Underline  *bool
	Foreground string
	Background string
}

func (f *StyleFilter) matches(s term.Style) bool {
	if f.Bold != nil && *f.Bold != s.Bold {
		return false
	}
	if f.Italic != nil && *f.Italic != s.Italic {
		return false
	}
	if f.Underline != nil && *f.Underline != s.Underline {
		return false
	}
	if f.Foreground != "" && f.Foreground != s.Fg.String() {
		return false
	}
	if f.Background != "" && f.Background != s.Bg.String() {
		return false
	}
	return true
}

// TextOptions controls projection and, on the Session side, waiting.
type TextOptions struct {
	// Only keeps spans matching the filter; everything else is replaced
	// with spaces so the layout is preserved.
	Only *StyleFilter

	// WaitFor is the predicate the projected text must satisfy. Defaults
	// to "trimmed text is non-empty".
	WaitFor func(text string) bool

	// Timeout bounds the wait. Zero means the operation default.
	Timeout time.Duration

	// TrimEnd drops trailing all-empty lines.
	TrimEnd bool

	// Immediate skips the quiescence wait and projects right away.
	Immediate bool

	// ShowCursor overlays a block glyph on the cursor cell.
	ShowCursor bool
}

const cursorGlyph = '█'

// Project renders a grid snapshot into a newline-joined string. The result
// always starts with a newline so it diffs cleanly against indented literal
// blocks in tests. Lines are right-trimmed; with TrimEnd trailing empty
// lines are dropped as well.
func Project(g *term.Grid, opts *TextOptions) string {
	if opts == nil {
		opts = &TextOptions{}
	}

	lines := make([]string, len(g.Lines))
	for y, line := range g.Lines {
		var b strings.Builder
		for _, span := range line {
			if opts.Only == nil || opts.Only.matches(span.Style) {
				b.WriteString(span.Text)
			} else {
				b.WriteString(strings.Repeat(" ", span.Width))
			}
		}

		raw := b.String()
		if opts.ShowCursor && g.CursorVisible && y == g.CursorY {
			raw = overlayCursor(raw, g.CursorX)
		}
		lines[y] = strings.TrimRight(raw, " \t")
	}

	if opts.TrimEnd {
		for len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}

	return "\n" + strings.Join(lines, "\n")
}

func overlayCursor(line string, x int) string {
	runes := []rune(line)
	for len(runes) <= x {
		runes = append(runes, ' ')
	}
	runes[x] = cursorGlyph
	return string(runes)
}

// Lines returns the raw per-line text of a grid: no style filtering, no
// trimming. This is the view the pattern matcher works on, so match columns
// line up with grid cells.
func Lines(g *term.Grid) []string {
	out := make([]string, len(g.Lines))
	for y, line := range g.Lines {
		out[y] = line.Text()
	}
	return out
}
