package grid

import "testing"

func TestSpansCoalescesRuns(t *testing.T) {
	r := NewRow(6, Default)
	for i, ch := range "abXYZ!" {
		r.Cells[i].Ch = ch
	}
	r.Cells[2].Fg = Indexed(1)
	r.Cells[3].Fg = Indexed(1)
	r.Cells[4].Fg = Indexed(1)

	spans := r.Spans()
	if len(spans) != 3 {
		t.Fatalf("want 3 spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "ab" || spans[1].Text != "XYZ" || spans[2].Text != "!" {
		t.Fatalf("unexpected span text: %q %q %q", spans[0].Text, spans[1].Text, spans[2].Text)
	}
}

func TestSpansSkipsWideSpacer(t *testing.T) {
	r := NewRow(4, Default)
	r.Cells[0].Ch = 'a'
	r.Cells[1].Ch = '中' // wide glyph
	r.Cells[1].Flags |= FlagWideChar
	r.Cells[2].Flags |= FlagWideSpacer
	r.Cells[3].Ch = 'b'

	spans := r.Spans()
	if len(spans) != 1 {
		t.Fatalf("want 1 span, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "a中b" {
		t.Fatalf("want a+wide+b contiguous, got %q", spans[0].Text)
	}
}

func TestSpansReverseSwapsColors(t *testing.T) {
	r := NewRow(1, Default)
	r.Cells[0].Ch = 'x'
	r.Cells[0].Fg = RGB(1, 2, 3)
	r.Cells[0].Bg = RGB(4, 5, 6)
	r.Cells[0].Attrs = AttrReverse

	spans := r.Spans()
	if len(spans) != 1 {
		t.Fatal("want 1 span")
	}
	if !spans[0].Fg.Equal(RGB(4, 5, 6)) || !spans[0].Bg.Equal(RGB(1, 2, 3)) {
		t.Fatalf("reverse did not swap: fg=%+v bg=%+v", spans[0].Fg, spans[0].Bg)
	}
}

func TestSpansHiddenMasksForeground(t *testing.T) {
	r := NewRow(1, Default)
	r.Cells[0].Ch = 'x'
	r.Cells[0].Fg = RGB(9, 9, 9)
	r.Cells[0].Bg = RGB(1, 1, 1)
	r.Cells[0].Attrs = AttrHidden

	spans := r.Spans()
	if !spans[0].Fg.Equal(RGB(1, 1, 1)) {
		t.Fatalf("hidden should set fg=bg, got fg=%+v bg=%+v", spans[0].Fg, spans[0].Bg)
	}
}

func TestRowTextTrimsTrailingSpace(t *testing.T) {
	r := NewRow(5, Default)
	r.Cells[0].Ch = 'h'
	r.Cells[1].Ch = 'i'
	if got := r.Text(); got != "hi" {
		t.Fatalf("want %q, got %q", "hi", got)
	}
}
