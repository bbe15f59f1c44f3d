package grid

// Modes is a flat record of the terminal modes spec.md §3 lists as part of
// TerminalState: a mix of ANSI (SM/RM) and DEC private (DECSET/DECRST) modes.
type Modes struct {
	AutoWrap        bool // DECAWM (7), default on
	OriginMode      bool // DECOM (6)
	Insert          bool // IRM (4)
	CursorKeysApp   bool // DECCKM (1)
	KeypadApp       bool // DECKPAM/DECKPNM
	ReverseVideo    bool // DECSCNM (5)
	BracketedPaste  bool // 2004
	MouseX10        bool // 9
	MouseVT200      bool // 1000
	MouseButtonMove bool // 1002
	MouseAnyMove    bool // 1003
	MouseSGR        bool // 1006
	FocusEvents     bool // 1004
	AltScreenSaved  bool // 1049 (alt screen + cursor save variant)
	LineFeedMode    bool // LNM (20): LF also does CR
	CursorVis       bool // DECTCEM (25), default on
	AltScroll       bool // 1007
	SyncOutput      bool // 2026
	MouseUTF8       bool // 1005
}

// NewModes returns the default mode set xterm starts a session with.
func NewModes() Modes {
	return Modes{AutoWrap: true, CursorVis: true}
}

// CursorVisible reports the DECTCEM flag.
func (m Modes) CursorVisible() bool { return m.CursorVis }

// ScrollRegion is the DECSTBM scrolling region, inclusive row bounds in
// viewport coordinates. top==0 && bottom==rows-1 means "full screen".
type ScrollRegion struct {
	Top, Bottom int
}
