package vt

import (
	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"

	"github.com/realAndi/Rain/internal/grid"
	"github.com/realAndi/Rain/internal/vtparser"
)

const defaultScrollbackLimit = 10000

// State is TerminalState: the composite of grid + alt-grid + cursor +
// modes + scroll region + tab stops + shell-integration sub-state that a
// VT parser drives. It implements vtparser.Performer directly.
type State struct {
	parser *vtparser.Parser

	main *grid.Grid
	alt  *grid.Grid
	usingAlt bool

	cursor      grid.Cursor
	savedCursor grid.SavedCursor

	modes        grid.Modes
	scrollTop    int
	scrollBottom int
	tabStops     []bool

	palette *grid.Palette

	title        string
	titleChanged bool

	cwd          string
	currentBlockID string

	pendingEvents    []Event
	pendingResponses []byte

	frameSeq    uint64
	resizeEpoch uint64

	scrolledOff []grid.RenderedLine

	hyperlinkURL string
	lastPrinted  rune
	decGraphics  bool
	bellPending  bool

	dcsAction     byte
	dcsIntermeds  []byte
	dcsParams     []int
	dcsPrivate    bool
	dcsBuf        []byte
	sixelActive   bool
	sixelBuf      []byte
	tmuxRecursion int
}

const maxDcsBuf = 16 * 1024 * 1024

// New returns a TerminalState sized rows x cols with the given scrollback
// capacity (0 uses the default of 10000).
func New(rows, cols int, scrollbackLimit int) *State {
	if scrollbackLimit <= 0 {
		scrollbackLimit = defaultScrollbackLimit
	}
	s := &State{
		parser:       vtparser.New(),
		main:         grid.NewGrid(rows, cols, scrollbackLimit),
		alt:          grid.NewGrid(rows, cols, 0),
		modes:        grid.NewModes(),
		scrollBottom: rows - 1,
		palette:      grid.DefaultPalette(),
		cursor:       grid.NewCursor(),
	}
	s.recomputeTabStops()
	return s
}

func (s *State) recomputeTabStops() {
	cols := s.activeGrid().Cols
	s.tabStops = make([]bool, cols)
	for i := 0; i < cols; i += 8 {
		s.tabStops[i] = true
	}
}

func (s *State) activeGrid() *grid.Grid {
	if s.usingAlt {
		return s.alt
	}
	return s.main
}

// Write feeds raw PTY bytes through the VT parser, mutating state and
// accumulating pending responses/events. Callers are expected to hold
// whatever external lock serializes access to this State (the PTY session
// layer's mutex), matching the single-writer assumption spec.md §5 makes.
func (s *State) Write(data []byte) {
	s.parser.AdvanceBytes(s, data)
}

// DrainResponses returns and clears bytes queued for write-back to the PTY
// (device reports, DCS replies).
func (s *State) DrainResponses() []byte {
	if len(s.pendingResponses) == 0 {
		return nil
	}
	out := s.pendingResponses
	s.pendingResponses = nil
	return out
}

func (s *State) respond(b string) {
	s.pendingResponses = append(s.pendingResponses, []byte(b)...)
}

func (s *State) emit(e Event) {
	s.pendingEvents = append(s.pendingEvents, e)
}

func (s *State) globalRow() uint64 {
	return s.main.ScrollbackSeq + uint64(s.cursor.Row)
}

// clampCursor keeps the cursor within the active grid after a resize or
// mode change.
func (s *State) clampCursor() {
	g := s.activeGrid()
	if s.cursor.Row >= g.Rows {
		s.cursor.Row = g.Rows - 1
	}
	if s.cursor.Row < 0 {
		s.cursor.Row = 0
	}
	if s.cursor.Col >= g.Cols {
		s.cursor.Col = g.Cols - 1
	}
	if s.cursor.Col < 0 {
		s.cursor.Col = 0
	}
}

func runeWidth(r rune) int {
	if runewidth.IsAmbiguousWidth(r) {
		return 1
	}
	w := runewidth.RuneWidth(r)
	if w <= 0 {
		return 1
	}
	return w
}

// Resize changes terminal dimensions. Per §4.3: shrinking rows on the main
// grid captures the lines losing visibility into scrollback (bumping
// scrollback_seq) before the grid itself is relengthed; the alt grid never
// captures. Tab stops are recomputed, the cursor clamped, and resize_epoch
// bumped.
func (s *State) Resize(rows, cols int) {
	captured := s.main.Resize(rows, cols)
	s.scrolledOff = append(s.scrolledOff, captured...)
	s.alt.Resize(rows, cols) // resize_no_scrollback: alt grid has scrollMax 0, so Resize never captures
	if s.scrollBottom == 0 || s.scrollBottom >= rows {
		s.scrollBottom = rows - 1
	}
	if s.scrollTop >= rows {
		s.scrollTop = 0
	}
	s.recomputeTabStops()
	s.clampCursor()
	s.resizeEpoch++
	s.main.MarkAllDirty()
	s.alt.MarkAllDirty()
}

// TakeRenderSnapshot builds a RenderFrame from accumulated dirty lines,
// scrolled-off lines, and events. Returns ok=false if there is nothing to
// publish (all three empty), per §4.3.
func (s *State) TakeRenderSnapshot() (RenderFrame, bool) {
	g := s.activeGrid()

	// CollectDirtyLines clears dirty flags as it scans but does not report
	// row indices (it stays a thin cell-storage primitive); recover indices
	// with our own single pass instead of calling it twice.
	dirtyLines := s.collectDirtyWithIndex(g)

	var scrolled [][]Span
	if len(s.scrolledOff) > 0 {
		for _, l := range s.scrolledOff {
			scrolled = append(scrolled, toSpans(l.Spans))
		}
		s.scrolledOff = nil
	}

	if s.titleChanged {
		s.emit(Event{Kind: EventTitleChanged, Title: s.title})
		s.titleChanged = false
	}
	if s.bellPending {
		s.emit(Event{Kind: EventBell})
		s.bellPending = false
	}

	events := s.pendingEvents
	s.pendingEvents = nil

	if len(dirtyLines) == 0 && len(scrolled) == 0 && len(events) == 0 {
		return RenderFrame{}, false
	}

	s.frameSeq++

	var base uint64
	if !s.usingAlt {
		base = s.main.ScrollbackSeq
	}

	shape := ReportBlock
	switch s.cursor.Shape {
	case grid.CursorUnderline:
		shape = ReportUnderline
	case grid.CursorBar:
		shape = ReportBar
	}

	return RenderFrame{
		FrameSeq:          s.frameSeq,
		ResizeEpoch:       s.resizeEpoch,
		DirtyLines:        dirtyLines,
		ScrolledLines:      scrolled,
		VisibleBaseGlobal: base,
		VisibleRows:       g.Rows,
		VisibleCols:       g.Cols,
		Cursor: CursorReport{
			Row: s.cursor.Row, Col: s.cursor.Col,
			Visible: s.modes.CursorVisible(), Shape: shape,
		},
		Events: events,
	}, true
}

// collectDirtyWithIndex mirrors grid.Grid.CollectDirtyLines but preserves
// row indices, which the grid-level API intentionally omits to stay a thin
// cell-storage primitive.
func (s *State) collectDirtyWithIndex(g *grid.Grid) []DirtyLine {
	var out []DirtyLine
	for i := 0; i < g.Rows; i++ {
		r := g.Row(i)
		if r == nil || !r.Dirty {
			continue
		}
		out = append(out, DirtyLine{Row: i, Spans: toSpans(r.Spans())})
	}
	// Clear dirty flags now that we've captured indices.
	g.CollectDirtyLines()
	return out
}

// GetTextRange returns newline-joined visible-row text for rows [start,end).
func (s *State) GetTextRange(start, end int) string {
	g := s.activeGrid()
	if end > g.Rows {
		end = g.Rows
	}
	if start < 0 {
		start = 0
	}
	if start >= end {
		return ""
	}
	return g.TextRange(start, end-1)
}

// GetBlockOutput returns plain text for viewport rows [startRow, endRow].
func (s *State) GetBlockOutput(startRow, endRow int) string {
	return s.GetTextRange(startRow, endRow+1)
}

func newBlockID() string {
	return uuid.NewString()
}

// CursorVisible is exposed so ptysession/tmuxctl can query the raw mode
// flag without reaching into grid.Modes directly.
func (s *State) CursorVisible() bool { return s.modes.CursorVisible() }

// BracketedPasteActive reports whether DECSET 2004 is currently on, so the
// PTY layer knows whether to wrap pasted text in ESC[200~/201~ markers.
func (s *State) BracketedPasteActive() bool { return s.modes.BracketedPaste }

// Title returns the current window title.
func (s *State) Title() string { return s.title }

// Cwd returns the last cwd reported via OSC 7.
func (s *State) Cwd() string { return s.cwd }
