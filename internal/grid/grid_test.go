package grid

import "testing"

func TestScrollUpCapturesFromTopOfRegionOnly(t *testing.T) {
	g := NewGrid(4, 10, 100)
	for i := 0; i < 4; i++ {
		g.viewport[i].Cells[0].Ch = rune('0' + i)
	}

	// Scroll restricted to rows [1,3]: must NOT feed scrollback.
	captured := g.ScrollUp(1, 3, 1)
	if captured != nil {
		t.Fatalf("region not starting at row 0 must not capture, got %+v", captured)
	}
	if g.ScrollbackSeq != 0 {
		t.Fatalf("scrollback seq should be untouched, got %d", g.ScrollbackSeq)
	}

	// Full-screen scroll from row 0 captures.
	captured = g.ScrollUp(0, 3, 1)
	if len(captured) != 1 {
		t.Fatalf("want 1 captured line, got %d", len(captured))
	}
	if captured[0].Index != 0 {
		t.Fatalf("first captured line must have index 0, got %d", captured[0].Index)
	}
	if g.ScrollbackSeq != 1 {
		t.Fatalf("scrollback seq should advance to 1, got %d", g.ScrollbackSeq)
	}
}

func TestScrollbackSeqIsStableAcrossEviction(t *testing.T) {
	g := NewGrid(2, 4, 3) // scrollback capacity 3
	for i := 0; i < 5; i++ {
		g.ScrollUp(0, 1, 1)
	}
	if g.ScrollbackSeq != 5 {
		t.Fatalf("want seq 5 after 5 scrolls, got %d", g.ScrollbackSeq)
	}
	if g.ScrollbackLen() != 3 {
		t.Fatalf("want scrollback capped at 3, got %d", g.ScrollbackLen())
	}
	lines := g.ScrollbackLines(3)
	// The oldest 2 lines (index 0,1) were evicted; retained lines carry
	// indices 2,3,4 — stable global references even after eviction.
	wantFirst := uint64(2)
	if lines[0].Index != wantFirst {
		t.Fatalf("want first retained index %d, got %d", wantFirst, lines[0].Index)
	}
	if lines[2].Index != 4 {
		t.Fatalf("want last retained index 4, got %d", lines[2].Index)
	}
}

func TestCollectDirtyLinesClearsDirtyFlag(t *testing.T) {
	g := NewGrid(3, 5, 10)
	g.SetCell(1, 0, Cell{Ch: 'x'})

	lines := g.CollectDirtyLines()
	if len(lines) != 1 {
		t.Fatalf("want 1 dirty line, got %d", len(lines))
	}
	if g.viewport[1].Dirty {
		t.Fatal("dirty flag should be cleared after collection")
	}

	// Second collection with no new mutation must be empty.
	lines = g.CollectDirtyLines()
	if len(lines) != 0 {
		t.Fatalf("want 0 dirty lines on second pass, got %d", len(lines))
	}
}

func TestResizeShrinkRowsCapturesToScrollback(t *testing.T) {
	g := NewGrid(4, 3, 100)
	for i := 0; i < 4; i++ {
		g.viewport[i].Cells[0].Ch = rune('0' + i)
	}
	captured := g.Resize(2, 3)
	if len(captured) != 2 {
		t.Fatalf("shrinking by 2 rows should capture 2 lines, got %d", len(captured))
	}
	if g.Rows != 2 || len(g.viewport) != 2 {
		t.Fatalf("viewport should now have 2 rows, got %d/%d", g.Rows, len(g.viewport))
	}
	// Remaining rows are the bottom-most two of the original four ('2','3').
	if g.viewport[0].Cells[0].Ch != '2' || g.viewport[1].Cells[0].Ch != '3' {
		t.Fatalf("unexpected remaining rows after shrink")
	}
}

func TestResizeGrowColsPadsWithBlanks(t *testing.T) {
	g := NewGrid(2, 3, 10)
	g.Resize(2, 6)
	if g.Cols != 6 {
		t.Fatalf("want 6 cols, got %d", g.Cols)
	}
	if len(g.viewport[0].Cells) != 6 {
		t.Fatalf("row not grown: %d cells", len(g.viewport[0].Cells))
	}
	if g.viewport[0].Cells[5].Ch != ' ' {
		t.Fatalf("new cells should be blank, got %q", g.viewport[0].Cells[5].Ch)
	}
}

func TestInsertAndDeleteCells(t *testing.T) {
	g := NewGrid(1, 5, 0)
	for i, ch := range "abcde" {
		g.viewport[0].Cells[i].Ch = ch
	}
	g.InsertCells(0, 1, 2)
	got := ""
	for _, c := range g.viewport[0].Cells {
		got += string(c.Ch)
	}
	if got != "a  bc" {
		t.Fatalf("insert: want %q, got %q", "a  bc", got)
	}

	g2 := NewGrid(1, 5, 0)
	for i, ch := range "abcde" {
		g2.viewport[0].Cells[i].Ch = ch
	}
	g2.DeleteCells(0, 1, 2)
	got2 := ""
	for _, c := range g2.viewport[0].Cells {
		got2 += string(c.Ch)
	}
	if got2 != "ade  " {
		t.Fatalf("delete: want %q, got %q", "ade  ", got2)
	}
}

func TestScrollDownNeverTouchesScrollback(t *testing.T) {
	g := NewGrid(3, 4, 10)
	g.ScrollDown(0, 2, 1)
	if g.ScrollbackLen() != 0 {
		t.Fatalf("scroll down must never populate scrollback, got len %d", g.ScrollbackLen())
	}
}

func TestTextRangeDropsTrailingBlankRows(t *testing.T) {
	g := NewGrid(5, 10, 10)
	g.viewport[0].Cells[0].Ch = 'S'
	got := g.TextRange(0, 4)
	if got != "S" {
		t.Fatalf("want %q, got %q", "S", got)
	}
}

func TestTextRangeAllBlankReturnsEmptyString(t *testing.T) {
	g := NewGrid(3, 10, 10)
	if got := g.TextRange(0, 2); got != "" {
		t.Fatalf("want empty string for all-blank range, got %q", got)
	}
}
