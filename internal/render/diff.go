package render

import (
	"fmt"
	"io"
	"strings"

	"pkt.systems/vgabios/internal/display"
)

// ChangedRows lists the text rows of next that differ from prev. full is
// true when the geometry or presentation mode changed and the whole screen
// must be redrawn.
func ChangedRows(prev, next display.Snapshot) (rows []int, full bool) {
	if next.Kind != display.KindText {
		return nil, true
	}
	if prev.Kind != next.Kind || prev.Cols != next.Cols || prev.Rows != next.Rows {
		return nil, true
	}
	for y := 0; y < next.Rows; y++ {
		if rowChanged(prev, next, y) {
			rows = append(rows, y)
		}
	}
	return rows, false
}

func rowChanged(prev, next display.Snapshot, y int) bool {
	for x := 0; x < next.Cols; x++ {
		a, errA := prev.CellAt(x, y)
		b, errB := next.CellAt(x, y)
		if errA != nil || errB != nil {
			return true
		}
		if a.Char != b.Char || a.Blink != b.Blink {
			return true
		}
		// Handles are surface-local; compare what they resolve to.
		if prev.RGB(a.FG) != next.RGB(b.FG) || prev.RGB(a.BG) != next.RGB(b.BG) {
			return true
		}
	}
	return false
}

// Diff redraws only what changed between prev and next. Graphics snapshots
// and geometry changes fall back to a full Snapshot render. Diff does not
// crop; ViewCols and ViewRows are ignored for incremental updates.
func Diff(w io.Writer, prev, next display.Snapshot, opts Options) error {
	rows, full := ChangedRows(prev, next)
	if full {
		return Snapshot(w, next, opts)
	}
	if len(rows) == 0 && prev.Cursor == next.Cursor {
		return nil
	}

	var b strings.Builder
	b.WriteString(ansiHideCursor)
	for _, y := range rows {
		fmt.Fprintf(&b, "\x1b[%d;%dH", y+1, 1)
		var current renderAttr
		for x := 0; x < next.Cols; x++ {
			cell, _ := next.CellAt(x, y)
			attr := renderAttr{fg: next.RGB(cell.FG), bg: next.RGB(cell.BG), blink: cell.Blink}
			if x == 0 || attr != current {
				b.WriteString(sgr(attr, opts.Color))
				current = attr
			}
			b.WriteRune(Glyph(cell.Char))
		}
	}
	b.WriteString(ansiReset)
	cx := clampIndex(next.Cursor.X, next.Cols)
	cy := clampIndex(next.Cursor.Y, next.Rows)
	fmt.Fprintf(&b, "\x1b[%d;%dH", cy+1, cx+1)
	b.WriteString(ansiShowCursor)
	_, err := io.WriteString(w, b.String())
	return err
}
