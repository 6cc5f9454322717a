package term

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorString(t *testing.T) {
	require.Equal(t, "", Color{}.String())
	require.Equal(t, "4", Indexed(4).String())
	require.Equal(t, "196", Indexed(196).String())
	require.Equal(t, "#ff0000", RGB(0xff, 0, 0).String())
	require.Equal(t, "#0a0b0c", RGB(10, 11, 12).String())
}

func TestColorIsSet(t *testing.T) {
	require.False(t, Color{}.IsSet())
	require.True(t, Indexed(0).IsSet())
	require.True(t, RGB(0, 0, 0).IsSet())
}

func TestFromRGBA(t *testing.T) {
	// The zero value is the emulator's default-color marker.
	require.Equal(t, Color{}, fromRGBA(color.RGBA{}))

	// Exact palette values map back to their index.
	require.Equal(t, Indexed(1), fromRGBA(color.RGBA{R: 255, A: 255}))
	require.Equal(t, Indexed(7), fromRGBA(color.RGBA{R: 255, G: 255, B: 255, A: 255}))

	// Anything else renders as RGB, including near-misses.
	require.Equal(t, RGB(254, 0, 0), fromRGBA(color.RGBA{R: 254, A: 255}))
	require.Equal(t, RGB(0x12, 0x34, 0x56), fromRGBA(color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}))
}

func TestIndexedAndRGBAreNeverEqual(t *testing.T) {
	// "1" vs "#ff0000": the asymmetry is deliberate and load-bearing for
	// style filters.
	require.NotEqual(t, Indexed(1).String(), RGB(0xff, 0, 0).String())
}

func TestLineText(t *testing.T) {
	l := Line{
		{Text: "ab", Width: 2},
		{Text: "cd", Width: 2},
	}
	require.Equal(t, "abcd", l.Text())
}

func TestVT100FeedAndSnapshot(t *testing.T) {
	e := NewVT100(20, 5)
	defer e.Destroy()

	require.NoError(t, e.Feed([]byte("Hello")))

	g := e.Snapshot()
	require.Equal(t, 20, g.Cols)
	require.Equal(t, 5, g.Rows)
	require.Len(t, g.Lines, 5)
	require.True(t, strings.HasPrefix(g.Lines[0].Text(), "Hello"))

	// Span widths sum to the column count on every line.
	for _, line := range g.Lines {
		width := 0
		for _, span := range line {
			width += span.Width
		}
		require.Equal(t, 20, width)
	}
}

func TestVT100BoldSpans(t *testing.T) {
	e := NewVT100(20, 3)
	defer e.Destroy()

	require.NoError(t, e.Feed([]byte("ab\x1b[1mBOLD\x1b[0mcd")))

	g := e.Snapshot()
	line := g.Lines[0]
	require.GreaterOrEqual(t, len(line), 3)

	var boldText string
	for _, span := range line {
		if span.Style.Bold {
			boldText += span.Text
		}
	}
	require.Equal(t, "BOLD", boldText)
}

func TestVT100CursorPosition(t *testing.T) {
	e := NewVT100(20, 3)
	defer e.Destroy()

	require.NoError(t, e.Feed([]byte("abc")))

	g := e.Snapshot()
	require.True(t, g.CursorVisible)
	require.Equal(t, 0, g.CursorY)
	require.Equal(t, 3, g.CursorX)
}

func TestVT100OSC8Stripping(t *testing.T) {
	e := NewVT100(40, 3)
	defer e.Destroy()

	hyperlink := "\x1b]8;;https://example.com\x1b\\Click Here\x1b]8;;\x1b\\"
	require.NoError(t, e.Feed([]byte(hyperlink)))

	text := e.Snapshot().Lines[0].Text()
	require.Contains(t, text, "Click Here")
	require.NotContains(t, text, "8;;")
}

func TestVT100Resize(t *testing.T) {
	e := NewVT100(20, 5)
	defer e.Destroy()

	e.Resize(40, 10)
	g := e.Snapshot()
	require.Equal(t, 40, g.Cols)
	require.Equal(t, 10, g.Rows)
	require.Len(t, g.Lines, 10)
}

func TestVT100DestroyedIsInert(t *testing.T) {
	e := NewVT100(20, 5)
	require.NoError(t, e.Feed([]byte("before")))
	e.Destroy()

	require.NoError(t, e.Feed([]byte("after")))
	e.Resize(10, 2)

	g := e.Snapshot()
	require.Empty(t, g.Lines)
	require.Equal(t, 20, g.Cols)
}

func TestVT100FeedIsTotalOverGarbage(t *testing.T) {
	e := NewVT100(20, 5)
	defer e.Destroy()

	// Arbitrary bytes may error but must leave the emulator usable.
	_ = e.Feed([]byte{0xff, 0xfe, 0x1b, '[', 0xff})
	require.NoError(t, e.Feed([]byte("still alive")))
	require.Contains(t, e.Snapshot().Lines[0].Text(), "still alive")
}
