package render

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/vt"

	"pkt.systems/vgabios/internal/display"
	"pkt.systems/vgabios/internal/display/memsurface"
)

func TestChangedRows(t *testing.T) {
	s := newTextSurface(t, 4, 3)
	prev := s.Snapshot()
	fg := allocColor(t, s, color.RGBA{R: 0xFF, A: 0xFF})
	s.WriteCell(2, 1, 'x', fg, 0, false)
	next := s.Snapshot()

	rows, full := ChangedRows(prev, next)
	if full || len(rows) != 1 || rows[0] != 1 {
		t.Fatalf("rows = %v full = %v, want [1] false", rows, full)
	}
	if rows, full := ChangedRows(next, next); full || len(rows) != 0 {
		t.Fatalf("identical snapshots: rows = %v full = %v", rows, full)
	}

	if err := s.SetTextGeometry(5, 3); err != nil {
		t.Fatalf("SetTextGeometry: %v", err)
	}
	if _, full := ChangedRows(next, s.Snapshot()); !full {
		t.Fatalf("geometry change should force a full redraw")
	}
}

func TestDiffRedrawsOnlyChangedRows(t *testing.T) {
	s := newTextSurface(t, 6, 2)
	white := allocColor(t, s, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	s.WriteCell(0, 0, 'A', white, 0, false)
	prev := s.Snapshot()

	term := vt.NewEmulator(6, 2)
	var buf bytes.Buffer
	if err := Text(&buf, prev, Options{}); err != nil {
		t.Fatalf("Text: %v", err)
	}
	if _, err := term.Write(buf.Bytes()); err != nil {
		t.Fatalf("vt write: %v", err)
	}

	s.WriteCell(3, 1, 'B', white, 0, false)
	s.SetCursor(4, 1)
	next := s.Snapshot()
	buf.Reset()
	if err := Diff(&buf, prev, next, Options{}); err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if strings.Contains(buf.String(), "\x1b[1;1H") {
		t.Fatalf("unchanged row 0 was redrawn: %q", buf.String())
	}
	if _, err := term.Write(buf.Bytes()); err != nil {
		t.Fatalf("vt write: %v", err)
	}
	if got := vtCellAt(term, 0, 0); got.content != "A" {
		t.Fatalf("row 0 = %q, want A", got.content)
	}
	got := vtCellAt(term, 3, 1)
	if got.content != "B" || got.fg != colorKey(s.Colors()[white]) {
		t.Fatalf("cell(3,1) = %+v", got)
	}

	buf.Reset()
	if err := Diff(&buf, next, next, Options{}); err != nil || buf.Len() != 0 {
		t.Fatalf("no-op diff wrote %q (%v)", buf.String(), err)
	}
}

func newTextSurface(t *testing.T, cols, rows int) *memsurface.Surface {
	t.Helper()
	s := memsurface.New()
	if err := s.SetTextGeometry(cols, rows); err != nil {
		t.Fatalf("SetTextGeometry: %v", err)
	}
	black := allocColor(t, s, color.RGBA{A: 0xFF})
	s.FillRect(display.Rect{Right: cols - 1, Bottom: rows - 1}, black, false)
	return s
}
