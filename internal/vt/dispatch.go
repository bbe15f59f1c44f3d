package vt

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/realAndi/Rain/internal/grid"
)

// Print implements vtparser.Performer.
func (s *State) Print(r rune) {
	if s.decGraphics {
		r = mapDECGraphics(r)
	}
	width := runeWidth(r)
	g := s.activeGrid()

	if s.cursor.Col >= g.Cols {
		if s.modes.AutoWrap {
			s.carriageReturn()
			s.lineFeed()
		} else {
			s.cursor.Col = g.Cols - 1
		}
	}

	if width == 2 && s.cursor.Col == g.Cols-1 && g.Cols > 1 {
		// A wide glyph never fits as the last column without a following
		// spacer: mandatory-wrap it to the next line regardless of DECAWM,
		// blanking the dangling cell it would have left behind, matching
		// xterm's own behavior at the right margin.
		g.EraseCells(s.cursor.Row, s.cursor.Col, g.Cols)
		s.carriageReturn()
		s.lineFeed()
	}

	if s.modes.Insert {
		g.InsertCells(s.cursor.Row, s.cursor.Col, width)
	}

	cell := grid.Cell{Ch: r, Fg: s.cursor.Fg, Bg: s.cursor.Bg, Attrs: s.cursor.Attrs, URL: s.hyperlinkURL}
	if width == 2 {
		cell.Flags |= grid.FlagWideChar
	}
	g.SetCell(s.cursor.Row, s.cursor.Col, cell)
	if width == 2 && s.cursor.Col+1 < g.Cols {
		g.SetCell(s.cursor.Row, s.cursor.Col+1, grid.Cell{Ch: 0, Bg: s.cursor.Bg, Flags: grid.FlagWideSpacer})
	}
	s.cursor.Col += width
	s.lastPrinted = r
}

func mapDECGraphics(r rune) rune {
	if r < 0x60 || r > 0x7E {
		return r
	}
	if m, ok := decGraphicsTable[r]; ok {
		return m
	}
	return r
}

// decGraphicsTable maps ASCII 0x60-0x7E to the DEC Special Graphics
// line-drawing glyphs (VT100 G0 charset 0).
var decGraphicsTable = map[rune]rune{
	'`': '◆', 'a': '▒', 'b': '␉', 'c': '␌', 'd': '␍', 'e': '␊', 'f': '°',
	'g': '±', 'h': '␤', 'i': '␋', 'j': '┘', 'k': '┐', 'l': '┌', 'm': '└',
	'n': '┼', 'o': '⎺', 'p': '⎻', 'q': '─', 'r': '⎼', 's': '⎽', 't': '├',
	'u': '┤', 'v': '┴', 'w': '┬', 'x': '│', 'y': '≤', 'z': '≥', '{': 'π',
	'|': '≠', '}': '£', '~': '·',
}

func (s *State) carriageReturn() { s.cursor.Col = 0 }

func (s *State) lineFeed() {
	g := s.activeGrid()
	if s.cursor.Row == s.scrollBottom {
		captured := g.ScrollUp(s.scrollTop, s.scrollBottom, 1)
		if !s.usingAlt {
			s.scrolledOff = append(s.scrolledOff, captured...)
		}
	} else if s.cursor.Row < g.Rows-1 {
		s.cursor.Row++
	}
}

func (s *State) reverseIndex() {
	g := s.activeGrid()
	if s.cursor.Row == s.scrollTop {
		g.ScrollDown(s.scrollTop, s.scrollBottom, 1)
	} else if s.cursor.Row > 0 {
		s.cursor.Row--
	}
}

// Execute implements vtparser.Performer for C0 controls.
func (s *State) Execute(b byte) {
	switch b {
	case 0x07: // BEL
		s.bellPending = true
	case 0x08: // BS
		if s.cursor.Col > 0 {
			s.cursor.Col--
		}
	case 0x09: // HT
		s.cursor.Col = s.nextTabStop(s.cursor.Col)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		s.lineFeed()
		if s.modes.LineFeedMode {
			s.carriageReturn()
		}
	case 0x0D: // CR
		s.carriageReturn()
	}
}

func (s *State) nextTabStop(col int) int {
	cols := s.activeGrid().Cols
	for c := col + 1; c < cols; c++ {
		if c < len(s.tabStops) && s.tabStops[c] {
			return c
		}
	}
	return cols - 1
}

func param(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		return def
	}
	return params[i]
}

func rawParam(params []int, i, def int) (int, bool) {
	if i >= len(params) {
		return def, false
	}
	return params[i], true
}

// CsiDispatch implements vtparser.Performer.
func (s *State) CsiDispatch(action byte, params []int, intermeds []byte, prefix byte) {
	g := s.activeGrid()
	interStr := string(intermeds)
	private := prefix == '?'

	switch {
	case private && (action == 'h' || action == 'l'):
		s.decModeSetReset(params, action == 'h')
		return
	case prefix == 0 && (action == 'h' || action == 'l') && interStr == "":
		s.ansiModeSetReset(params, action == 'h')
		return
	}

	switch action {
	case 'A':
		s.moveCursorVert(-param(params, 0, 1))
	case 'B':
		s.moveCursorVert(param(params, 0, 1))
	case 'C':
		s.cursor.Col += param(params, 0, 1)
		if s.cursor.Col >= g.Cols {
			s.cursor.Col = g.Cols - 1
		}
	case 'D':
		s.cursor.Col -= param(params, 0, 1)
		if s.cursor.Col < 0 {
			s.cursor.Col = 0
		}
	case 'E':
		s.moveCursorVert(param(params, 0, 1))
		s.carriageReturn()
	case 'F':
		s.moveCursorVert(-param(params, 0, 1))
		s.carriageReturn()
	case 'G':
		s.cursor.Col = clamp(param(params, 0, 1)-1, 0, g.Cols-1)
	case 'H', 'f':
		row := param(params, 0, 1) - 1
		col := param(params, 1, 1) - 1
		if s.modes.OriginMode {
			row += s.scrollTop
		}
		s.cursor.Row = clamp(row, 0, g.Rows-1)
		s.cursor.Col = clamp(col, 0, g.Cols-1)
	case 'J':
		s.eraseInDisplay(param(params, 0, 0))
	case 'K':
		s.eraseInLine(param(params, 0, 0))
	case 'L':
		// IL: insert blank lines at the cursor row, pushing the rest of the
		// region down — the dual of DL, never touches scrollback.
		g.ScrollDown(s.cursor.Row, s.scrollBottom, param(params, 0, 1))
	case 'M':
		// DL: delete lines at the cursor row, pulling the region up. Uses
		// ScrollUp from the cursor row; when the cursor is on row 0 the
		// grid pushes the deleted lines into its scrollback (bumping
		// ScrollbackSeq), but they are not added to scrolledOff.
		g.ScrollUp(s.cursor.Row, s.scrollBottom, param(params, 0, 1))
	case '@':
		g.InsertCells(s.cursor.Row, s.cursor.Col, param(params, 0, 1))
	case 'P':
		g.DeleteCells(s.cursor.Row, s.cursor.Col, param(params, 0, 1))
	case 'X':
		n := param(params, 0, 1)
		g.EraseCells(s.cursor.Row, s.cursor.Col, s.cursor.Col+n)
	case 'S':
		captured := g.ScrollUp(s.scrollTop, s.scrollBottom, param(params, 0, 1))
		if !s.usingAlt {
			s.scrolledOff = append(s.scrolledOff, captured...)
		}
	case 'T':
		g.ScrollDown(s.scrollTop, s.scrollBottom, param(params, 0, 1))
	case 'd':
		s.cursor.Row = clamp(param(params, 0, 1)-1, 0, g.Rows-1)
	case 'm':
		s.sgr(params)
	case 'r':
		top := param(params, 0, 1) - 1
		bottom := param(params, 1, g.Rows) - 1
		if top < 0 {
			top = 0
		}
		if bottom >= g.Rows {
			bottom = g.Rows - 1
		}
		if top < bottom {
			s.scrollTop, s.scrollBottom = top, bottom
		} else {
			s.scrollTop, s.scrollBottom = 0, g.Rows-1
		}
		s.cursor.Row, s.cursor.Col = 0, 0
		if s.modes.OriginMode {
			s.cursor.Row = s.scrollTop
		}
	case 'n':
		switch param(params, 0, 0) {
		case 5:
			s.respond("\x1b[0n")
		case 6:
			s.respond("\x1b[" + itoa(s.cursor.Row+1) + ";" + itoa(s.cursor.Col+1) + "R")
		}
	case 'c':
		if prefix == '>' {
			// DA2 (Secondary Device Attributes): terminal type;firmware;cartridge.
			s.respond("\x1b[>0;10;0c")
		} else if param(params, 0, 0) == 0 {
			// DA1 (Primary Device Attributes): VT220 w/ 8-bit, SGR, ANSI color.
			s.respond("\x1b[?62;22c")
		}
	case 'p':
		if interStr == "$" {
			s.decrqm(params, prefix)
		}
	case 'q':
		if interStr == " " {
			s.decscusr(param(params, 0, 0))
		}
	case 's':
		s.savedCursor = s.cursor.Save()
	case 'u':
		s.cursor.Restore(s.savedCursor)
	case 'b':
		n := param(params, 0, 1)
		if n > 2048 {
			n = 2048
		}
		for i := 0; i < n; i++ {
			s.Print(s.lastPrinted)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *State) moveCursorVert(delta int) {
	g := s.activeGrid()
	lo, hi := 0, g.Rows-1
	if s.cursor.Row >= s.scrollTop && s.cursor.Row <= s.scrollBottom {
		lo, hi = s.scrollTop, s.scrollBottom
	}
	s.cursor.Row = clamp(s.cursor.Row+delta, lo, hi)
}

func (s *State) eraseInDisplay(mode int) {
	g := s.activeGrid()
	switch mode {
	case 0:
		g.EraseCells(s.cursor.Row, s.cursor.Col, g.Cols)
		for r := s.cursor.Row + 1; r < g.Rows; r++ {
			g.EraseCells(r, 0, g.Cols)
		}
	case 1:
		for r := 0; r < s.cursor.Row; r++ {
			g.EraseCells(r, 0, g.Cols)
		}
		g.EraseCells(s.cursor.Row, 0, s.cursor.Col+1)
	case 2:
		g.EraseAll()
	case 3:
		s.emit(Event{Kind: EventScrollbackCleared})
	}
}

func (s *State) eraseInLine(mode int) {
	g := s.activeGrid()
	switch mode {
	case 0:
		g.EraseCells(s.cursor.Row, s.cursor.Col, g.Cols)
	case 1:
		g.EraseCells(s.cursor.Row, 0, s.cursor.Col+1)
	case 2:
		g.EraseCells(s.cursor.Row, 0, g.Cols)
	}
}

// sgr walks SGR parameters sequentially, with 2-param/4-param lookahead for
// 38/48;2;r;g;b and 2-param lookahead for 38/48;5;i.
func (s *State) sgr(params []int) {
	if len(params) == 0 {
		s.resetSGR()
		return
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s.resetSGR()
		case p == 1:
			s.cursor.Attrs |= grid.AttrBold
		case p == 2:
			s.cursor.Attrs |= grid.AttrDim
		case p == 3:
			s.cursor.Attrs |= grid.AttrItalic
		case p == 4:
			s.cursor.Attrs |= grid.AttrUnderline
		case p == 5:
			s.cursor.Attrs |= grid.AttrBlink
		case p == 7:
			s.cursor.Attrs |= grid.AttrReverse
		case p == 8:
			s.cursor.Attrs |= grid.AttrHidden
		case p == 9:
			s.cursor.Attrs |= grid.AttrStrikethrough
		case p == 22:
			s.cursor.Attrs &^= grid.AttrBold | grid.AttrDim
		case p == 23:
			s.cursor.Attrs &^= grid.AttrItalic
		case p == 24:
			s.cursor.Attrs &^= grid.AttrUnderline
		case p == 25:
			s.cursor.Attrs &^= grid.AttrBlink
		case p == 27:
			s.cursor.Attrs &^= grid.AttrReverse
		case p == 28:
			s.cursor.Attrs &^= grid.AttrHidden
		case p == 29:
			s.cursor.Attrs &^= grid.AttrStrikethrough
		case p >= 30 && p <= 37:
			s.cursor.Fg = grid.Indexed(uint8(p - 30))
		case p == 38:
			i = s.sgrExtendedColor(params, i, true)
		case p == 39:
			s.cursor.Fg = grid.Default
		case p >= 40 && p <= 47:
			s.cursor.Bg = grid.Indexed(uint8(p - 40))
		case p == 48:
			i = s.sgrExtendedColor(params, i, false)
		case p == 49:
			s.cursor.Bg = grid.Default
		case p >= 90 && p <= 97:
			s.cursor.Fg = grid.Indexed(uint8(p-90) + 8)
		case p >= 100 && p <= 107:
			s.cursor.Bg = grid.Indexed(uint8(p-100) + 8)
		}
	}
}

// sgrExtendedColor handles 38/48;2;r;g;b and 38/48;5;i starting at index i
// (the 38 or 48 itself), returning the new index to resume the outer loop
// from (pointing at the last consumed parameter).
func (s *State) sgrExtendedColor(params []int, i int, isFg bool) int {
	if i+1 >= len(params) {
		return i
	}
	switch params[i+1] {
	case 2:
		if i+4 < len(params) {
			c := grid.RGB(uint8(params[i+2]), uint8(params[i+3]), uint8(params[i+4]))
			if isFg {
				s.cursor.Fg = c
			} else {
				s.cursor.Bg = c
			}
			return i + 4
		}
	case 5:
		if i+2 < len(params) {
			c := grid.Indexed(uint8(params[i+2]))
			if isFg {
				s.cursor.Fg = c
			} else {
				s.cursor.Bg = c
			}
			return i + 2
		}
	}
	return i
}

func (s *State) resetSGR() {
	s.cursor.Fg = grid.Default
	s.cursor.Bg = grid.Default
	s.cursor.Attrs = 0
}

func (s *State) decModeSetReset(params []int, set bool) {
	for _, p := range params {
		switch p {
		case 1:
			s.modes.CursorKeysApp = set
		case 5:
			s.modes.ReverseVideo = set
		case 6:
			s.modes.OriginMode = set
			if set {
				s.cursor.Row = s.scrollTop
			} else {
				s.cursor.Row = 0
			}
			s.cursor.Col = 0
		case 7:
			s.modes.AutoWrap = set
		case 9:
			s.modes.MouseX10 = set
		case 25:
			s.modes.CursorVis = set
		case 1000:
			s.modes.MouseVT200 = set
			s.emit(Event{Kind: EventMouseModeChanged})
		case 1002:
			s.modes.MouseButtonMove = set
			s.emit(Event{Kind: EventMouseModeChanged})
		case 1003:
			s.modes.MouseAnyMove = set
			s.emit(Event{Kind: EventMouseModeChanged})
		case 1004:
			s.modes.FocusEvents = set
		case 1005:
			s.modes.MouseUTF8 = set
		case 1006:
			s.modes.MouseSGR = set
			s.emit(Event{Kind: EventMouseModeChanged})
		case 1007:
			s.modes.AltScroll = set
		case 1049:
			s.setAltScreen(set)
		case 1047, 47:
			s.setAltScreen(set)
		case 2004:
			s.modes.BracketedPaste = set
		case 2026:
			s.modes.SyncOutput = set
		}
	}
}

func (s *State) ansiModeSetReset(params []int, set bool) {
	for _, p := range params {
		switch p {
		case 4:
			s.modes.Insert = set
		case 20:
			s.modes.LineFeedMode = set
		}
	}
}

func (s *State) setAltScreen(enter bool) {
	if enter == s.usingAlt {
		return
	}
	if enter {
		s.savedCursor = s.cursor.Save()
		s.alt.EraseAll()
		s.usingAlt = true
		s.alt.MarkAllDirty()
		s.emit(Event{Kind: EventAltScreenEntered})
	} else {
		s.usingAlt = false
		s.cursor.Restore(s.savedCursor)
		s.main.MarkAllDirty()
		s.emit(Event{Kind: EventAltScreenExited})
	}
	s.clampCursor()
}

func (s *State) decrqm(params []int, prefixByte byte) {
	if len(params) == 0 {
		s.respond("\x1b[0$y")
		return
	}
	mode := params[0]
	status := 0 // 0 = not recognized
	set := false
	recognized := true
	private := prefixByte == '?'
	if private {
		switch mode {
		case 1:
			set = s.modes.CursorKeysApp
		case 6:
			set = s.modes.OriginMode
		case 7:
			set = s.modes.AutoWrap
		case 25:
			set = s.modes.CursorVis
		case 1049, 47, 1047:
			set = s.usingAlt
		case 2004:
			set = s.modes.BracketedPaste
		case 2026:
			set = s.modes.SyncOutput
		default:
			recognized = false
		}
	} else {
		switch mode {
		case 4:
			set = s.modes.Insert
		case 20:
			set = s.modes.LineFeedMode
		default:
			recognized = false
		}
	}
	if !recognized {
		status = 0
	} else if set {
		status = 1
	} else {
		status = 2
	}
	prefix := ""
	if private {
		prefix = "?"
	}
	s.respond("\x1b[" + prefix + itoa(mode) + ";" + itoa(status) + "$y")
}

func (s *State) decscusr(n int) {
	switch n {
	case 0, 1, 2:
		s.cursor.Shape = grid.CursorBlock
		s.cursor.Blink = n != 2
	case 3, 4:
		s.cursor.Shape = grid.CursorUnderline
		s.cursor.Blink = n == 3
	case 5, 6:
		s.cursor.Shape = grid.CursorBar
		s.cursor.Blink = n == 5
	}
}

// EscDispatch implements vtparser.Performer.
func (s *State) EscDispatch(final byte, intermeds []byte) {
	inter := string(intermeds)
	switch {
	case inter == "#" && final == '8':
		// DECALN: fill the screen with 'E'.
		g := s.activeGrid()
		for r := 0; r < g.Rows; r++ {
			for c := 0; c < g.Cols; c++ {
				g.SetCell(r, c, grid.Cell{Ch: 'E'})
			}
		}
	case final == 'c':
		s.reset()
	case final == 'D':
		s.lineFeed()
	case final == 'E':
		s.lineFeed()
		s.carriageReturn()
	case final == 'H':
		if s.cursor.Col < len(s.tabStops) {
			s.tabStops[s.cursor.Col] = true
		}
	case final == 'M':
		s.reverseIndex()
	case final == '7':
		s.savedCursor = s.cursor.Save()
	case final == '8':
		s.cursor.Restore(s.savedCursor)
	case final == '=':
		s.modes.KeypadApp = true
	case final == '>':
		s.modes.KeypadApp = false
	case inter == "(" && final == '0':
		s.decGraphics = true
	case inter == "(" && final == 'B':
		s.decGraphics = false
	}
}

func (s *State) reset() {
	rows, cols := s.main.Rows, s.main.Cols
	frameSeq := s.frameSeq
	*s = *New(rows, cols, defaultScrollbackLimit)
	s.frameSeq = frameSeq
	s.main.MarkAllDirty()
}

// OscDispatch implements vtparser.Performer.
func (s *State) OscDispatch(fields [][]byte) {
	if len(fields) == 0 {
		return
	}
	code := string(fields[0])
	rest := ""
	if len(fields) > 1 {
		rest = string(fields[1])
	}
	switch code {
	case "0", "2":
		s.title = rest
		s.titleChanged = true
	case "7":
		s.cwd = stripFileURL(rest)
		s.emit(Event{Kind: EventCwdChanged, Cwd: s.cwd})
	case "8":
		parts := strings.SplitN(rest, ";", 2)
		if len(parts) == 2 {
			s.hyperlinkURL = parts[1]
		} else {
			s.hyperlinkURL = ""
		}
	case "133":
		s.shellIntegration(rest)
	case "52":
		s.oscClipboard(rest)
	case "4":
		s.oscPaletteQuery(rest)
	case "10":
		s.respond("\x1b]10;" + s.palette.X11(s.cursor.Fg, true) + "\x07")
	case "11":
		s.respond("\x1b]11;" + s.palette.X11(s.cursor.Bg, false) + "\x07")
	case "12":
		s.respond("\x1b]12;" + s.palette.X11(s.cursor.Fg, true) + "\x07")
	case "1337":
		s.oscITerm(rest)
	}
}

func stripFileURL(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	rest := s[len("file://"):]
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		return rest[idx:]
	}
	return rest
}

func (s *State) shellIntegration(rest string) {
	if rest == "T" {
		s.emit(Event{Kind: EventTmuxRequested})
		return
	}
	switch {
	case rest == "A" || strings.HasPrefix(rest, "A;"):
		id := newBlockID()
		s.currentBlockID = id
		s.emit(Event{Kind: EventBlockStarted, BlockID: id, Cwd: s.cwd, GlobalRow: s.globalRow()})
	case rest == "B" || strings.HasPrefix(rest, "B;"):
		s.emit(Event{Kind: EventBlockCommand, BlockID: s.currentBlockID, GlobalRow: s.globalRow()})
	case strings.HasPrefix(rest, "D"):
		code := 0
		if idx := strings.IndexByte(rest, ';'); idx >= 0 {
			if v, err := strconv.Atoi(rest[idx+1:]); err == nil {
				code = v
			}
		}
		s.emit(Event{Kind: EventBlockCompleted, BlockID: s.currentBlockID, ExitCode: code, GlobalRow: s.globalRow()})
		s.currentBlockID = ""
	}
}

func (s *State) oscClipboard(rest string) {
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) != 2 {
		return
	}
	payload := parts[1]
	if payload == "?" {
		s.respond("\x1b]52;" + parts[0] + ";\x07") // clipboard contents unknown to the core: replies with an empty payload
	}
	// non-empty payload: write-to-clipboard is an OS action the session
	// layer performs (out of scope for this package, §1 Non-goals).
}

func (s *State) oscPaletteQuery(rest string) {
	parts := strings.Split(rest, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		if parts[i+1] == "?" {
			c := grid.Indexed(uint8(idx))
			s.respond("\x1b]4;" + itoa(idx) + ";" + s.palette.X11(c, true) + "\x07")
		}
	}
}

func (s *State) oscITerm(rest string) {
	if !strings.HasPrefix(rest, "File=") {
		return
	}
	parts := strings.SplitN(rest[len("File="):], ":", 2)
	if len(parts) != 2 {
		return
	}
	meta, payload := parts[0], parts[1]
	inline := false
	for _, kv := range strings.Split(meta, ";") {
		if kv == "inline=1" {
			inline = true
		}
	}
	if inline {
		s.emit(Event{Kind: EventInlineImage, ImageData: payload})
	}
}

// Hook implements vtparser.Performer: begins a DCS string.
func (s *State) Hook(params []int, intermeds []byte, action byte) {
	s.dcsParams = append([]int(nil), params...)
	s.dcsIntermeds = append([]byte(nil), intermeds...)
	s.dcsAction = action
	s.dcsBuf = s.dcsBuf[:0]
	s.dcsPrivate = false
	s.sixelActive = action == 'q' && len(intermeds) == 0 && s.expectingSixel()
	if s.sixelActive {
		s.sixelBuf = s.sixelBuf[:0]
	}
}

// expectingSixel reports whether a bare DCS q (no intermediates) should be
// treated as a Sixel stream. Sixel is Non-goal pixel *decoding*, but the
// raw/base64 event forwarding spec.md §4.3 asks for still applies whenever
// the stream arrives; there is no separate negotiated flag in this core
// beyond "it's a q with no other interpretation".
func (s *State) expectingSixel() bool { return true }

// Put implements vtparser.Performer: accumulates one DCS payload byte,
// capped at 16 MiB per the BufferOverflow guard (§7).
func (s *State) Put(b byte) {
	if s.sixelActive {
		if len(s.sixelBuf) < maxDcsBuf {
			s.sixelBuf = append(s.sixelBuf, b)
		}
		return
	}
	if len(s.dcsBuf) < maxDcsBuf {
		s.dcsBuf = append(s.dcsBuf, b)
	}
}

// Unhook implements vtparser.Performer: completes a DCS string.
func (s *State) Unhook() {
	if s.sixelActive {
		s.emit(Event{Kind: EventSixelImage, ImageData: base64.StdEncoding.EncodeToString(s.sixelBuf)})
		s.sixelActive = false
		s.sixelBuf = nil
		return
	}

	inter := string(s.dcsIntermeds)
	payload := string(s.dcsBuf)

	switch {
	case inter == "+" && s.dcsAction == 'q':
		s.xtgettcap(payload)
	case inter == "$" && s.dcsAction == 'q':
		s.decrqss(payload)
	case strings.HasPrefix(payload, "tmux;"):
		s.tmuxPassthrough(payload[len("tmux;"):])
	}
}

var knownCapabilities = map[string]string{
	"TN":  "xterm-256color",
	"Co":  "256",
	"RGB": "8",
	"Tc":  "8",
}

func (s *State) xtgettcap(hexNames string) {
	var parts []string
	for _, name := range strings.Split(hexNames, ";") {
		raw, err := hex.DecodeString(name)
		if err != nil {
			parts = append(parts, "") // malformed request: respond unknown
			continue
		}
		capName := string(raw)
		switch capName {
		case "Ms":
			parts = append(parts, encodeCapReply(capName, "\x1b]52;c;?\x07"))
		case "Ss":
			parts = append(parts, encodeCapReply(capName, "\x1b[%p1%d q"))
		case "Se":
			parts = append(parts, encodeCapReply(capName, "\x1b[2 q"))
		default:
			if v, ok := knownCapabilities[capName]; ok {
				parts = append(parts, encodeCapReply(capName, v))
			} else {
				parts = append(parts, "")
			}
		}
	}
	ok := true
	for _, p := range parts {
		if p == "" {
			ok = false
			break
		}
	}
	if !ok || len(parts) == 0 {
		s.respond("\x1bP0+r\x1b\\")
		return
	}
	s.respond("\x1bP1+r" + strings.Join(parts, ";") + "\x1b\\")
}

func encodeCapReply(name, value string) string {
	return hex.EncodeToString([]byte(name)) + "=" + hex.EncodeToString([]byte(value))
}

func (s *State) decrqss(pt string) {
	switch pt {
	case "m":
		s.respond("\x1bP1$r0m\x1b\\")
	case " q":
		n := 2
		switch s.cursor.Shape {
		case grid.CursorUnderline:
			n = 4
		case grid.CursorBar:
			n = 6
		}
		if s.cursor.Blink {
			n--
		}
		s.respond("\x1bP1$r" + itoa(n) + " q\x1b\\")
	case "r":
		s.respond("\x1bP1$r" + itoa(s.scrollTop+1) + ";" + itoa(s.scrollBottom+1) + "r\x1b\\")
	default:
		s.respond("\x1bP0$r\x1b\\")
	}
}

// tmuxPassthrough decodes a `tmux;<payload>` DCS by replacing every ESC ESC
// with a single ESC and re-feeding the result into this same parser, per
// §4.3. A depth guard prevents runaway recursion from a malformed or
// adversarial nested tmux DCS.
func (s *State) tmuxPassthrough(payload string) {
	if s.tmuxRecursion > 4 {
		return
	}
	s.tmuxRecursion++
	decoded := strings.ReplaceAll(payload, "\x1b\x1b", "\x1b")
	s.Write([]byte(decoded))
	s.tmuxRecursion--
}

func itoa(v int) string { return strconv.Itoa(v) }
