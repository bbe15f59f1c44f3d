package vt

import "testing"

func newTestState(rows, cols int) *State {
	return New(rows, cols, 100)
}

func TestPlainPrintAdvancesCursor(t *testing.T) {
	s := newTestState(5, 20)
	s.Write([]byte("hi"))
	if s.cursor.Col != 2 {
		t.Fatalf("want col 2, got %d", s.cursor.Col)
	}
	if s.main.Cell(0, 0).Ch != 'h' || s.main.Cell(0, 1).Ch != 'i' {
		t.Fatal("unexpected cell contents")
	}
}

func TestAutowrapAtColumnBoundary(t *testing.T) {
	s := newTestState(3, 5)
	s.Write([]byte("abcdeZ"))
	if s.cursor.Row != 1 || s.cursor.Col != 1 {
		t.Fatalf("want wrap to row 1 col 1, got row=%d col=%d", s.cursor.Row, s.cursor.Col)
	}
	if s.main.Cell(1, 0).Ch != 'Z' {
		t.Fatalf("want Z on wrapped row, got %q", s.main.Cell(1, 0).Ch)
	}
}

func TestSGRTruecolorAndReset(t *testing.T) {
	s := newTestState(1, 20)
	s.Write([]byte("\x1b[38;2;128;64;32mX\x1b[0mY"))
	c0 := s.main.Cell(0, 0)
	if c0.Fg.Kind != RGB(0, 0, 0).Kind || c0.Fg.R != 128 || c0.Fg.G != 64 || c0.Fg.B != 32 {
		t.Fatalf("want rgb(128,64,32), got %+v", c0.Fg)
	}
	c1 := s.main.Cell(0, 1)
	if !c1.Fg.Equal(Default) {
		t.Fatalf("want default fg after reset, got %+v", c1.Fg)
	}
}

func TestScrollRegionRestrictedDoesNotCaptureScrollback(t *testing.T) {
	s := newTestState(4, 10)
	s.Write([]byte("\x1b[2;4r")) // scroll region rows 2-4 (1-indexed) -> 1-3 zero-indexed
	before := s.main.ScrollbackSeq
	s.cursor.Row = s.scrollBottom
	s.lineFeed()
	if s.main.ScrollbackSeq != before {
		t.Fatalf("scroll region not touching row 0 must not feed scrollback, seq changed from %d to %d", before, s.main.ScrollbackSeq)
	}
}

func TestFullScreenScrollCapturesScrollback(t *testing.T) {
	s := newTestState(3, 10)
	for i := 0; i < 5; i++ {
		s.Write([]byte("line\r\n"))
	}
	if s.main.ScrollbackSeq == 0 {
		t.Fatal("expected scrollback_seq to advance from full-height scrolling")
	}
}

func TestOriginModeHomesCursor(t *testing.T) {
	s := newTestState(10, 10)
	s.Write([]byte("\x1b[3;8r")) // region rows 3-8
	s.Write([]byte("\x1b[?6h"))  // origin mode on
	if s.cursor.Row != s.scrollTop {
		t.Fatalf("origin mode should home cursor to scroll_top, got row %d want %d", s.cursor.Row, s.scrollTop)
	}
}

func TestShellIntegrationBlockLifecycle(t *testing.T) {
	s := newTestState(5, 20)
	s.Write([]byte("\x1b]133;A\x07"))
	s.Write([]byte("\x1b]133;B\x07"))
	s.Write([]byte("\x1b]133;D;0\x07"))

	frame, ok := s.TakeRenderSnapshot()
	if !ok {
		t.Fatal("expected a snapshot with events")
	}
	var kinds []EventKind
	for _, e := range frame.Events {
		kinds = append(kinds, e.Kind)
	}
	want := []EventKind{EventBlockStarted, EventBlockCommand, EventBlockCompleted}
	if len(kinds) != len(want) {
		t.Fatalf("want %d events, got %d: %+v", len(want), len(kinds), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("event %d: want %d got %d", i, want[i], kinds[i])
		}
	}
}

func TestCwdOscStripsFileURL(t *testing.T) {
	s := newTestState(3, 20)
	s.Write([]byte("\x1b]7;file://host/home/me\x07"))
	if s.cwd != "/home/me" {
		t.Fatalf("want /home/me, got %q", s.cwd)
	}
}

func TestFrameSeqMonotonic(t *testing.T) {
	s := newTestState(3, 10)
	s.Write([]byte("a"))
	f1, ok := s.TakeRenderSnapshot()
	if !ok {
		t.Fatal("want snapshot")
	}
	s.Write([]byte("b"))
	f2, ok := s.TakeRenderSnapshot()
	if !ok {
		t.Fatal("want snapshot")
	}
	if f2.FrameSeq <= f1.FrameSeq {
		t.Fatalf("frame_seq must be monotonic: %d then %d", f1.FrameSeq, f2.FrameSeq)
	}
}

func TestEmptySnapshotReturnsNotOK(t *testing.T) {
	s := newTestState(3, 10)
	_, ok := s.TakeRenderSnapshot()
	if ok {
		t.Fatal("fresh state with nothing dirty should have no snapshot")
	}
}

func TestDSRCursorPositionReport(t *testing.T) {
	s := newTestState(10, 10)
	s.cursor.Row, s.cursor.Col = 2, 4
	s.Write([]byte("\x1b[6n"))
	resp := s.DrainResponses()
	if string(resp) != "\x1b[3;5R" {
		t.Fatalf("want ESC[3;5R, got %q", resp)
	}
}

func TestDA1Response(t *testing.T) {
	s := newTestState(3, 10)
	s.Write([]byte("\x1b[c"))
	if string(s.DrainResponses()) != "\x1b[?62;22c" {
		t.Fatalf("unexpected DA1 response: %q", s.DrainResponses())
	}
}

func TestDA2Response(t *testing.T) {
	s := newTestState(3, 10)
	s.Write([]byte("\x1b[>c"))
	if got := string(s.DrainResponses()); got != "\x1b[>0;10;0c" {
		t.Fatalf("unexpected DA2 response: %q", got)
	}
}

func TestCsiREPClampsAt2048(t *testing.T) {
	s := newTestState(1, 4000)
	s.Write([]byte("Z"))
	s.Write([]byte("\x1b[9999b"))
	if s.cursor.Col != 1+2048 {
		t.Fatalf("want REP clamped to 2048 reps, cursor col=%d", s.cursor.Col)
	}
}

func TestAltScreenEnterExitRestoresCursor(t *testing.T) {
	s := newTestState(5, 10)
	s.cursor.Row, s.cursor.Col = 2, 3
	s.Write([]byte("\x1b[?1049h"))
	if !s.usingAlt {
		t.Fatal("want alt screen active")
	}
	s.cursor.Row, s.cursor.Col = 0, 0
	s.Write([]byte("\x1b[?1049l"))
	if s.usingAlt {
		t.Fatal("want primary screen restored")
	}
	if s.cursor.Row != 2 || s.cursor.Col != 3 {
		t.Fatalf("want cursor restored to (2,3), got (%d,%d)", s.cursor.Row, s.cursor.Col)
	}
}

func TestResizeShrinkBumpsResizeEpochAndScrollback(t *testing.T) {
	s := newTestState(5, 10, )
	s.Resize(2, 10)
	if s.resizeEpoch != 1 {
		t.Fatalf("want resize_epoch 1, got %d", s.resizeEpoch)
	}
	if s.main.ScrollbackSeq != 3 {
		t.Fatalf("shrinking by 3 rows should bump scrollback_seq by 3, got %d", s.main.ScrollbackSeq)
	}
}
