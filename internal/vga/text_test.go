package vga

import (
	"errors"
	"testing"
)

func TestWriteCharRepeatsAcrossColumns(t *testing.T) {
	a, s := newTextAdapter(t)
	const attr Attribute = 0x1F
	if err := a.WriteCharAttr(10, 3, 'A', attr, 5); err != nil {
		t.Fatalf("WriteCharAttr: %v", err)
	}
	for col := 10; col < 15; col++ {
		if err := a.SetCursor(0, col, 3); err != nil {
			t.Fatalf("SetCursor: %v", err)
		}
		ch, got := a.ReadCharAtCursor()
		if ch != 'A' || got != attr {
			t.Fatalf("cell %d = %q/%#x, want A/%#x", col, ch, got, attr)
		}
	}
	if ch, _, _ := a.CharAt(15, 3); ch != ' ' {
		t.Fatalf("cell 15 = %q, want blank", ch)
	}
	cell, _ := s.CellAt(12, 3)
	fg, _ := a.Palette().ColorFor(attr.Foreground())
	bg, _ := a.Palette().ColorFor(attr.Background())
	if cell.Char != 'A' || cell.FG != fg || cell.BG != bg {
		t.Fatalf("host cell = %+v", cell)
	}
}

func TestWriteCharWrapsToNextRow(t *testing.T) {
	a, _ := newTextAdapter(t)
	if err := a.WriteCharAttr(77, 0, 'W', 0x07, 5); err != nil {
		t.Fatalf("WriteCharAttr: %v", err)
	}
	for _, pos := range []Position{{77, 0}, {78, 0}, {79, 0}, {0, 1}, {1, 1}} {
		if ch, _, _ := a.CharAt(pos.Col, pos.Row); ch != 'W' {
			t.Fatalf("cell %v = %q, want W", pos, ch)
		}
	}
	if ch, _, _ := a.CharAt(2, 1); ch != ' ' {
		t.Fatalf("cell 2,1 = %q, want blank", ch)
	}
}

func TestWriteCharStopsAtEndOfScreen(t *testing.T) {
	a, _ := newTextAdapter(t)
	if err := a.WriteCharAttr(79, 24, 'Z', 0x07, 10); err != nil {
		t.Fatalf("WriteCharAttr: %v", err)
	}
	if ch, _, _ := a.CharAt(0, 0); ch != ' ' {
		t.Fatalf("write wrapped to top: %q", ch)
	}
}

func TestWriteCharKeepsAttribute(t *testing.T) {
	a, _ := newTextAdapter(t)
	if err := a.WriteCharAttr(0, 0, 'x', 0x4E, 2); err != nil {
		t.Fatalf("WriteCharAttr: %v", err)
	}
	if err := a.WriteChar(0, 0, 'y', 3); err != nil {
		t.Fatalf("WriteChar: %v", err)
	}
	want := []struct {
		ch   byte
		attr Attribute
	}{{'y', 0x4E}, {'y', 0x4E}, {'y', DefaultAttribute}}
	for col, w := range want {
		ch, attr, _ := a.CharAt(col, 0)
		if ch != w.ch || attr != w.attr {
			t.Fatalf("cell %d = %q/%#x, want %q/%#x", col, ch, attr, w.ch, w.attr)
		}
	}
}

func TestSetCursorPages(t *testing.T) {
	a, s := newTextAdapter(t)
	if err := a.SetCursor(0, 200, 7); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if got := a.Cursor(0); got != (Position{Col: 79, Row: 7}) {
		t.Fatalf("cursor = %+v, want clamped 79,7", got)
	}
	if err := a.SetCursor(2, 5, 5); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if got := a.Cursor(2); got != (Position{Col: 5, Row: 5}) {
		t.Fatalf("page 2 cursor = %+v", got)
	}
	if snap := s.Snapshot(); snap.Cursor.X != 79 || snap.Cursor.Y != 7 {
		t.Fatalf("host cursor moved by page 2: %+v", snap.Cursor)
	}
	if err := a.SetCursor(8, 0, 0); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestTeletypeAdvancesAndScrolls(t *testing.T) {
	a, _ := newTextAdapter(t)
	if err := a.WriteCharAttr(0, 0, 'T', 0x07, 1); err != nil {
		t.Fatalf("WriteCharAttr: %v", err)
	}
	if err := a.SetCursor(0, 79, 24); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}
	if err := a.Teletype('!'); err != nil {
		t.Fatalf("Teletype: %v", err)
	}
	if got := a.Cursor(0); got != (Position{Col: 0, Row: 24}) {
		t.Fatalf("cursor = %+v, want 0,24", got)
	}
	if ch, _, _ := a.CharAt(79, 23); ch != '!' {
		t.Fatalf("scrolled char = %q, want !", ch)
	}
	if ch, _, _ := a.CharAt(0, 0); ch != ' ' {
		t.Fatalf("top row not scrolled away: %q", ch)
	}
}

func TestTeletypeControlCharacters(t *testing.T) {
	a, _ := newTextAdapter(t)
	for _, ch := range []byte("ab\bc\a\r\nd") {
		if err := a.Teletype(ch); err != nil {
			t.Fatalf("Teletype(%q): %v", ch, err)
		}
	}
	if got := rowText(a, 0, 3); got != "ac " {
		t.Fatalf("row0 = %q, want \"ac \"", got)
	}
	if got := rowText(a, 1, 2); got != "d " {
		t.Fatalf("row1 = %q", got)
	}
	if got := a.Cursor(0); got != (Position{Col: 1, Row: 1}) {
		t.Fatalf("cursor = %+v", got)
	}
}

func TestWriteStringInlineAttributes(t *testing.T) {
	a, _ := newTextAdapter(t)
	if err := a.WriteString(0, 2, 4, []byte{'h', 0x1A, 'i', 0x2B}, 0, true, false); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if ch, attr, _ := a.CharAt(3, 4); ch != 'i' || attr != 0x2B {
		t.Fatalf("cell = %q/%#x", ch, attr)
	}
	if got := a.Cursor(0); got != (Position{}) {
		t.Fatalf("cursor moved: %+v", got)
	}
	if err := a.WriteString(0, 0, 1, []byte("ok"), 0x70, false, true); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if got := a.Cursor(0); got != (Position{Col: 2, Row: 1}) {
		t.Fatalf("cursor = %+v", got)
	}
	if err := a.WriteString(1, 0, 0, []byte("x"), 0x07, false, false); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestSelectPage(t *testing.T) {
	a, _ := newTextAdapter(t)
	if err := a.SelectPage(3); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if a.State().CurrentPage != 3 {
		t.Fatalf("page = %d", a.State().CurrentPage)
	}
	if _, err := a.SetMode(0x03, true); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	st := a.State()
	if st.CurrentPage != 0 || st.CursorType != DefaultCursorType {
		t.Fatalf("mode set did not reset page/cursor: %+v", st)
	}
}

func rowText(a *Adapter, row, n int) string {
	out := make([]byte, n)
	for col := range out {
		out[col], _, _ = a.CharAt(col, row)
	}
	return string(out)
}
