package vt

import "github.com/realAndi/Rain/internal/grid"

// Color re-exports grid.Color so callers of this package's RenderFrame
// never need to import internal/grid directly.
type Color = grid.Color

var (
	Default = grid.Default
	Indexed = grid.Indexed
	RGB     = grid.RGB
)

const (
	ColorDefault = grid.ColorDefault
	ColorIndexed = grid.ColorIndexed
	ColorRGB     = grid.ColorRGB
)

const (
	AttrBold          = uint16(grid.AttrBold)
	AttrDim           = uint16(grid.AttrDim)
	AttrItalic        = uint16(grid.AttrItalic)
	AttrUnderline     = uint16(grid.AttrUnderline)
	AttrBlink         = uint16(grid.AttrBlink)
	AttrReverse       = uint16(grid.AttrReverse)
	AttrHidden        = uint16(grid.AttrHidden)
	AttrStrikethrough = uint16(grid.AttrStrikethrough)
)

func toSpans(rs []grid.StyledSpan) []Span {
	out := make([]Span, len(rs))
	for i, s := range rs {
		out[i] = Span{Text: s.Text, Fg: s.Fg, Bg: s.Bg, Attrs: uint16(s.Attrs), URL: s.URL}
	}
	return out
}
