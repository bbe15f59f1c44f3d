package grid

import "strings"

// Row is one line of the grid: a fixed-length (Cols) sequence of cells plus
// a dirty flag set by any mutation and cleared by the render snapshot.
type Row struct {
	Cells []Cell
	Dirty bool
}

// NewRow returns a row of the given width filled with blank cells on the
// given background.
func NewRow(cols int, bg Color) Row {
	cells := make([]Cell, cols)
	for i := range cells {
		cells[i] = BlankCell(bg)
	}
	return Row{Cells: cells}
}

// resize relengths the row in place: truncating drops trailing cells,
// growing appends blanks on the given background.
func (r *Row) resize(cols int, bg Color) {
	if cols == len(r.Cells) {
		return
	}
	if cols < len(r.Cells) {
		r.Cells = r.Cells[:cols]
		return
	}
	grown := make([]Cell, cols)
	copy(grown, r.Cells)
	for i := len(r.Cells); i < cols; i++ {
		grown[i] = BlankCell(bg)
	}
	r.Cells = grown
	r.Dirty = true
}

// StyledSpan is a run of cells sharing the same (fg, bg, attrs, url) tuple.
// REVERSE swaps fg/bg at construction time; HIDDEN sets fg = bg so the
// glyph renders invisibly without the display layer needing to know about
// the attribute.
type StyledSpan struct {
	Text  string
	Fg    Color
	Bg    Color
	Attrs CellAttrs
	URL   string
}

func spanStyle(c Cell) (fg, bg Color, attrs CellAttrs, url string) {
	fg, bg, attrs, url = c.Fg, c.Bg, c.Attrs, c.URL
	if attrs.Has(AttrReverse) {
		fg, bg = bg, fg
	}
	if attrs.Has(AttrHidden) {
		fg = bg
	}
	return
}

// Spans coalesces the row into a minimal sequence of StyledSpans: iterate
// cells, skip wide-char spacers (a wide char contributes exactly one glyph
// to the span), and flush whenever the resolved (fg, bg, attrs, url) tuple
// changes.
func (r *Row) Spans() []StyledSpan {
	var spans []StyledSpan
	var buf strings.Builder
	var curFg, curBg Color
	var curAttrs CellAttrs
	var curURL string
	open := false

	flush := func() {
		if open {
			spans = append(spans, StyledSpan{
				Text: buf.String(), Fg: curFg, Bg: curBg, Attrs: curAttrs, URL: curURL,
			})
			buf.Reset()
		}
	}

	for _, c := range r.Cells {
		if c.IsWideSpacer() {
			continue
		}
		fg, bg, attrs, url := spanStyle(c)
		if !open || fg != curFg || bg != curBg || attrs != curAttrs || url != curURL {
			flush()
			curFg, curBg, curAttrs, curURL = fg, bg, attrs, url
			open = true
		}
		ch := c.Ch
		if ch == 0 {
			ch = ' '
		}
		buf.WriteRune(ch)
	}
	flush()
	return spans
}

// Text returns the row's glyphs (wide-char spacers skipped) with trailing
// spaces trimmed, as used by get_text_range (§4.3).
func (r *Row) Text() string {
	end := len(r.Cells)
	for end > 0 {
		c := r.Cells[end-1]
		if c.IsWideSpacer() {
			end--
			continue
		}
		if c.Ch != ' ' && c.Ch != 0 {
			break
		}
		end--
	}
	var b strings.Builder
	for _, c := range r.Cells[:end] {
		if c.IsWideSpacer() {
			continue
		}
		if c.Ch == 0 {
			b.WriteRune(' ')
		} else {
			b.WriteRune(c.Ch)
		}
	}
	return b.String()
}

func (r *Row) markDirty() { r.Dirty = true }
