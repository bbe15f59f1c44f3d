package grid

// RenderedLine is a fully-resolved line handed to the render/scrollback
// layer: its coalesced spans plus the global scrollback index it was
// captured at (see ScrollbackSeq on Grid).
type RenderedLine struct {
	Spans []StyledSpan
	Index uint64
}

// Grid is one screen's worth of cell storage: a bounded scrollback deque
// plus a fixed-size viewport. Kept as two separate slices (rather than one
// contiguous append-only buffer with a moving window) so that ScrollUp,
// ScrollDown and Resize can each be expressed as a plain slice operation on
// exactly the region they affect, matching the scrollback-capture and
// resize invariants of spec.md §3/§8 directly.
type Grid struct {
	Rows, Cols int

	viewport   []Row
	scrollback []Row
	scrollMax  int // 0 = scrollback disabled (alt screen)

	bg Color // current default background, used to fill erased/new cells

	// ScrollbackSeq is a monotonic counter incremented once per line pushed
	// into scrollback. A line's Index is the value of ScrollbackSeq
	// immediately *before* it was pushed, so the first-ever scrolled line
	// has Index 0 and indices are stable references usable after later
	// lines are dropped off the front of a full scrollback.
	ScrollbackSeq uint64
}

// NewGrid allocates a grid of rows x cols with the given scrollback
// capacity (0 disables scrollback, as used for the alternate screen).
func NewGrid(rows, cols, scrollMax int) *Grid {
	g := &Grid{Rows: rows, Cols: cols, scrollMax: scrollMax, bg: Default}
	g.viewport = make([]Row, rows)
	for i := range g.viewport {
		g.viewport[i] = NewRow(cols, Default)
	}
	return g
}

// SetDefaultBackground changes the color used to fill cells created by
// erase/scroll/resize going forward (tracks SGR default-background resets).
func (g *Grid) SetDefaultBackground(bg Color) { g.bg = bg }

func (g *Grid) row(i int) *Row {
	return &g.viewport[i]
}

// Cell returns the cell at (row, col) in viewport coordinates.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return Cell{}
	}
	return g.viewport[row].Cells[col]
}

// SetCell writes a cell at (row, col) and marks the row dirty.
func (g *Grid) SetCell(row, col int, c Cell) {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return
	}
	g.viewport[row].Cells[col] = c
	g.viewport[row].Dirty = true
}

// EraseCells blanks [fromCol, toCol) on the given row using the current
// default background, clearing attributes per ECMA-48 erase semantics.
func (g *Grid) EraseCells(row, fromCol, toCol int) {
	if row < 0 || row >= g.Rows {
		return
	}
	if fromCol < 0 {
		fromCol = 0
	}
	if toCol > g.Cols {
		toCol = g.Cols
	}
	r := &g.viewport[row]
	for c := fromCol; c < toCol; c++ {
		r.Cells[c] = BlankCell(g.bg)
	}
	r.Dirty = true
}

// EraseAll blanks the whole viewport.
func (g *Grid) EraseAll() {
	for i := range g.viewport {
		g.EraseCells(i, 0, g.Cols)
	}
}

// InsertCells shifts cells at and after col right by n (ICH), dropping
// cells pushed off the right edge, filling the opened gap with blanks.
func (g *Grid) InsertCells(row, col, n int) {
	if row < 0 || row >= g.Rows {
		return
	}
	r := &g.viewport[row]
	if n <= 0 {
		return
	}
	if n > g.Cols-col {
		n = g.Cols - col
	}
	copy(r.Cells[col+n:g.Cols], r.Cells[col:g.Cols-n])
	for c := col; c < col+n; c++ {
		r.Cells[c] = BlankCell(g.bg)
	}
	r.Dirty = true
}

// DeleteCells shifts cells after col+n left into col (DCH), filling the
// vacated tail with blanks.
func (g *Grid) DeleteCells(row, col, n int) {
	if row < 0 || row >= g.Rows {
		return
	}
	r := &g.viewport[row]
	if n <= 0 {
		return
	}
	if n > g.Cols-col {
		n = g.Cols - col
	}
	copy(r.Cells[col:g.Cols-n], r.Cells[col+n:g.Cols])
	for c := g.Cols - n; c < g.Cols; c++ {
		r.Cells[c] = BlankCell(g.bg)
	}
	r.Dirty = true
}

// ScrollUp moves lines within [top, bottom] (inclusive, viewport rows) up
// by n, discarding the top n lines of the region and filling the bottom n
// with blanks. When the region's top is row 0 (the true top of the
// viewport, not just the scroll region) the discarded lines are captured
// into scrollback first — a scroll-region restricted to the lower screen
// never feeds scrollback, matching real xterm behavior.
func (g *Grid) ScrollUp(top, bottom, n int) []RenderedLine {
	if n <= 0 || top > bottom || bottom >= g.Rows {
		return nil
	}
	height := bottom - top + 1
	if n > height {
		n = height
	}

	var captured []RenderedLine
	if top == 0 && g.scrollMax > 0 {
		captured = make([]RenderedLine, 0, n)
		for i := 0; i < n; i++ {
			captured = append(captured, RenderedLine{
				Spans: g.viewport[i].Spans(),
				Index: g.ScrollbackSeq,
			})
			g.ScrollbackSeq++
		}
		g.scrollback = append(g.scrollback, g.viewport[0:n]...)
		if over := len(g.scrollback) - g.scrollMax; over > 0 {
			g.scrollback = g.scrollback[over:]
		}
	}

	copy(g.viewport[top:bottom+1-n], g.viewport[top+n:bottom+1])
	for i := bottom + 1 - n; i <= bottom; i++ {
		g.viewport[i] = NewRow(g.Cols, g.bg)
		g.viewport[i].Dirty = true
	}
	return captured
}

// ScrollDown moves lines within [top, bottom] down by n (reverse index,
// IL, SD), discarding the bottom n lines and filling
// the top n with blanks. Never touches scrollback.
func (g *Grid) ScrollDown(top, bottom, n int) {
	if n <= 0 || top > bottom || bottom >= g.Rows {
		return
	}
	height := bottom - top + 1
	if n > height {
		n = height
	}
	copy(g.viewport[top+n:bottom+1], g.viewport[top:bottom+1-n])
	for i := top; i < top+n; i++ {
		g.viewport[i] = NewRow(g.Cols, g.bg)
		g.viewport[i].Dirty = true
	}
}

// Resize changes the viewport dimensions in place. Growing rows pulls
// blank rows in from below (never from scrollback — reflow-on-resize is
// out of scope); shrinking rows drops the top-most rows, capturing them
// into scrollback first so a shrink never silently loses content. Growing
// or shrinking columns truncates/pads every row without reflowing text.
func (g *Grid) Resize(rows, cols int) []RenderedLine {
	var captured []RenderedLine
	if cols != g.Cols {
		for i := range g.viewport {
			g.viewport[i].resize(cols, g.bg)
		}
		for i := range g.scrollback {
			g.scrollback[i].resize(cols, g.bg)
		}
		g.Cols = cols
	}

	if rows < g.Rows {
		drop := g.Rows - rows
		if g.scrollMax > 0 {
			captured = make([]RenderedLine, 0, drop)
			for i := 0; i < drop; i++ {
				captured = append(captured, RenderedLine{
					Spans: g.viewport[i].Spans(),
					Index: g.ScrollbackSeq,
				})
				g.ScrollbackSeq++
			}
			g.scrollback = append(g.scrollback, g.viewport[0:drop]...)
			if over := len(g.scrollback) - g.scrollMax; over > 0 {
				g.scrollback = g.scrollback[over:]
			}
		}
		g.viewport = append([]Row{}, g.viewport[drop:]...)
	} else if rows > g.Rows {
		grown := make([]Row, rows)
		copy(grown, g.viewport)
		for i := g.Rows; i < rows; i++ {
			grown[i] = NewRow(g.Cols, g.bg)
		}
		g.viewport = grown
	}
	g.Rows = rows
	return captured
}

// CollectDirtyLines returns rendered spans for every dirty row, clearing
// each row's dirty flag as it is collected (the dirty-clearing invariant:
// after a snapshot, no row is dirty until mutated again).
func (g *Grid) CollectDirtyLines() []RenderedLine {
	var out []RenderedLine
	for i := range g.viewport {
		if !g.viewport[i].Dirty {
			continue
		}
		out = append(out, RenderedLine{Spans: g.viewport[i].Spans()})
		g.viewport[i].Dirty = false
	}
	return out
}

// MarkAllDirty forces every row to be included in the next
// CollectDirtyLines call, used after a resize or full-screen mode change
// where the entire viewport must be redrawn.
func (g *Grid) MarkAllDirty() {
	for i := range g.viewport {
		g.viewport[i].Dirty = true
	}
}

// ScrollbackLines returns up to n rendered lines of scrollback ending at
// the most recent, for history scroll / get_text_range support.
func (g *Grid) ScrollbackLines(n int) []RenderedLine {
	if n > len(g.scrollback) {
		n = len(g.scrollback)
	}
	start := len(g.scrollback) - n
	baseIndex := g.ScrollbackSeq - uint64(len(g.scrollback))
	out := make([]RenderedLine, n)
	for i := 0; i < n; i++ {
		out[i] = RenderedLine{
			Spans: g.scrollback[start+i].Spans(),
			Index: baseIndex + uint64(start+i),
		}
	}
	return out
}

// ScrollbackLen returns the number of lines currently retained in scrollback.
func (g *Grid) ScrollbackLen() int { return len(g.scrollback) }

// Row returns a pointer to the live viewport row at i, for direct mutation
// by Print and other TerminalState operations that need per-cell control
// beyond SetCell (e.g. cursor-position-aware writes with wide-char spacers).
func (g *Grid) Row(i int) *Row {
	if i < 0 || i >= g.Rows {
		return nil
	}
	return &g.viewport[i]
}

// TextRange extracts plain text for lines [fromRow, toRow] inclusive,
// viewport coordinates, joined by "\n" — the viewport-local half of
// get_text_range (§4.3); scrollback text comes from ScrollbackLines.
func (g *Grid) TextRange(fromRow, toRow int) string {
	if fromRow < 0 {
		fromRow = 0
	}
	if toRow >= g.Rows {
		toRow = g.Rows - 1
	}
	if fromRow > toRow {
		return ""
	}
	out := make([]string, 0, toRow-fromRow+1)
	for i := fromRow; i <= toRow; i++ {
		out = append(out, g.viewport[i].Text())
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	s := out[0]
	for _, l := range out[1:] {
		s += "\n" + l
	}
	return s
}
