package term

import (
	"fmt"
	"image/color"
)

type colorKind uint8

const (
	colorNone colorKind = iota
	colorIndexed
	colorRGB
)

// Color is a terminal color: unset, an indexed palette number, or a 24-bit
// RGB triple. The two forms render differently on purpose: an indexed
// color prints as its decimal number, an RGB color as lowercase #rrggbb,
// mirroring the emulator's own representation. The forms are never
// normalized into each other, so "#ff0000" does not compare equal to an
// indexed red.
type Color struct {
	kind    colorKind
	index   uint8
	r, g, b uint8
}

// Indexed returns a palette color.
func Indexed(n uint8) Color {
	return Color{kind: colorIndexed, index: n}
}

// RGB returns a 24-bit color.
func RGB(r, g, b uint8) Color {
	return Color{kind: colorRGB, r: r, g: g, b: b}
}

// IsSet reports whether the color is something other than the default.
func (c Color) IsSet() bool {
	return c.kind != colorNone
}

// String renders the color: "" for default, a decimal number for indexed
// palette colors, "#rrggbb" for RGB.
func (c Color) String() string {
	switch c.kind {
	case colorIndexed:
		return fmt.Sprintf("%d", c.index)
	case colorRGB:
		return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
	default:
		return ""
	}
}

// ansiPalette maps the RGBA values the vt100 emulator assigns to the eight
// base SGR colors back to their palette indexes. Only exact matches map
// back; every other color renders in its RGB form.
var ansiPalette = map[color.RGBA]uint8{
	{R: 0, G: 0, B: 0, A: 255}:       0, // black
	{R: 255, G: 0, B: 0, A: 255}:     1, // red
	{R: 0, G: 255, B: 0, A: 255}:     2, // green
	{R: 255, G: 255, B: 0, A: 255}:   3, // yellow
	{R: 0, G: 0, B: 255, A: 255}:     4, // blue
	{R: 255, G: 0, B: 255, A: 255}:   5, // magenta
	{R: 0, G: 255, B: 255, A: 255}:   6, // cyan
	{R: 255, G: 255, B: 255, A: 255}: 7, // white
}

// fromRGBA converts an emulator cell color to the model form. The zero
// RGBA value is the emulator's "default color" marker.
func fromRGBA(c color.RGBA) Color {
	if c == (color.RGBA{}) {
		return Color{}
	}
	if idx, ok := ansiPalette[c]; ok {
		return Indexed(idx)
	}
	return RGB(c.R, c.G, c.B)
}
