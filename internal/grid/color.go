// Package grid implements the cell grid, scrollback, cursor, and mode state
// that backs a single terminal screen (the primary screen or the alternate
// screen of a Rain session).
package grid

import (
	"fmt"

	"github.com/muesli/termenv"
)

// ColorKind distinguishes the three color variants xterm-family terminals use.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed
	ColorRGB
)

// Color is a sum type: Default, an indexed palette entry (0-255), or a
// direct truecolor RGB triple. It is a plain struct rather than an
// interface so that Cell stays comparable and allocation-free.
type Color struct {
	Kind  ColorKind
	Index uint8
	R, G, B uint8
}

// Default is the zero value and represents "use the theme's default color".
var Default = Color{Kind: ColorDefault}

// Indexed builds a palette-indexed color (0-255).
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// RGB builds a direct truecolor value.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Equal reports whether two colors represent the same value.
func (c Color) Equal(o Color) bool {
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case ColorIndexed:
		return c.Index == o.Index
	case ColorRGB:
		return c.R == o.R && c.G == o.G && c.B == o.B
	default:
		return true
	}
}

// Palette is the 256-entry xterm-compatible color table: 16 theme-defined
// named colors, a 6x6x6 color cube (16-231), and a 24-step grayscale ramp
// (232-255). Built the way danielgatis-go-headless-term/colors.go builds its
// DefaultPalette.
type Palette struct {
	entries  [256][3]uint8
	fg, bg   [3]uint8
	cursorFg [3]uint8
}

// DefaultPalette is the standard xterm 16-color theme plus the 216-cube and
// grayscale ramp.
func DefaultPalette() *Palette {
	p := &Palette{
		fg:       [3]uint8{229, 229, 229},
		bg:       [3]uint8{0, 0, 0},
		cursorFg: [3]uint8{229, 229, 229},
	}
	named := [16][3]uint8{
		{0, 0, 0}, {205, 49, 49}, {13, 188, 121}, {229, 229, 16},
		{36, 114, 200}, {188, 63, 188}, {17, 168, 205}, {229, 229, 229},
		{102, 102, 102}, {241, 76, 76}, {35, 209, 139}, {245, 245, 67},
		{59, 142, 234}, {214, 112, 214}, {41, 184, 219}, {255, 255, 255},
	}
	for i, c := range named {
		p.entries[i] = c
	}
	i := 16
	steps := [6]uint8{0, 95, 135, 175, 215, 255}
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p.entries[i] = [3]uint8{steps[r], steps[g], steps[b]}
				i++
			}
		}
	}
	for j := 0; j < 24; j++ {
		v := uint8(8 + j*10)
		p.entries[232+j] = [3]uint8{v, v, v}
	}
	return p
}

// SetNamed overrides one of the 16 theme-defined colors (0-15).
func (p *Palette) SetNamed(index uint8, r, g, b uint8) {
	if index < 16 {
		p.entries[index] = [3]uint8{r, g, b}
	}
}

// Resolve returns the RGB triple for a Color, consulting the palette for
// indexed colors and the theme defaults for ColorDefault.
func (p *Palette) Resolve(c Color, isForeground bool) (r, g, b uint8) {
	switch c.Kind {
	case ColorRGB:
		return c.R, c.G, c.B
	case ColorIndexed:
		e := p.entries[c.Index]
		return e[0], e[1], e[2]
	default:
		if isForeground {
			return p.fg[0], p.fg[1], p.fg[2]
		}
		return p.bg[0], p.bg[1], p.bg[2]
	}
}

// X11 formats a Color as an X11 "rgb:rrrr/gggg/bbbb" string, the format
// xterm uses to answer OSC 10/11/4 color queries. Ported from
// dcosson-h2/internal/session/virtualterminal/util.go:ColorToX11.
func (p *Palette) X11(c Color, isForeground bool) string {
	r, g, b := p.Resolve(c, isForeground)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}

// ColorToX11 converts a termenv.Color directly, for palette/theme colors
// supplied externally as termenv values (e.g. from GUI theme configuration).
func ColorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
