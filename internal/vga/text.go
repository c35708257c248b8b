package vga

import "fmt"

// Control characters interpreted by teletype output.
const (
	charBEL = 0x07
	charBS  = 0x08
	charLF  = 0x0A
	charCR  = 0x0D
)

// SetCursor moves the cursor of page. The position is clamped to the screen.
// Only page 0 is presented: other pages keep the position but report
// ErrUnsupported and the host cursor does not move.
func (a *Adapter) SetCursor(page uint8, col, row int) error {
	if int(page) >= MaxPages {
		return fmt.Errorf("%w: display page %d", ErrUnsupported, page)
	}
	pos := Position{Col: clamp(col, a.state.Columns), Row: clamp(row, a.state.Rows)}
	a.state.CursorPos[page] = pos
	if page != 0 {
		return fmt.Errorf("%w: cursor on display page %d", ErrUnsupported, page)
	}
	a.surface.SetCursor(pos.Col, pos.Row)
	return nil
}

// Cursor returns the stored cursor of page.
func (a *Adapter) Cursor(page uint8) Position {
	return a.state.Cursor(page)
}

// SetCursorType stores the cursor shape.
func (a *Adapter) SetCursorType(v uint16) {
	a.state.CursorType = v
}

// SelectPage makes page the active display page. Only page 0 is presented.
func (a *Adapter) SelectPage(page uint8) error {
	if int(page) >= MaxPages {
		return fmt.Errorf("%w: display page %d", ErrUnsupported, page)
	}
	a.state.CurrentPage = page
	if page != 0 {
		return fmt.Errorf("%w: display page %d", ErrUnsupported, page)
	}
	return nil
}

// WriteCharAttr writes count copies of ch with attr starting at (col, row),
// continuing on the next row past the last column. Writing stops at the end
// of the screen.
func (a *Adapter) WriteCharAttr(col, row int, ch byte, attr Attribute, count int) error {
	return a.writeChars(col, row, ch, attr, true, count)
}

// WriteChar is WriteCharAttr without an attribute: each cell keeps the
// attribute it had.
func (a *Adapter) WriteChar(col, row int, ch byte, count int) error {
	return a.writeChars(col, row, ch, 0, false, count)
}

func (a *Adapter) writeChars(col, row int, ch byte, attr Attribute, setAttr bool, count int) error {
	if !a.inScreen(col, row) {
		return fmt.Errorf("%w: cell %d,%d outside %dx%d", ErrInvalidGeometry, col, row, a.state.Columns, a.state.Rows)
	}
	for ; count > 0; count-- {
		if err := a.putCell(col, row, ch, attr, setAttr); err != nil {
			return err
		}
		col++
		if col >= a.state.Columns {
			col = 0
			row++
			if row >= a.state.Rows {
				break
			}
		}
	}
	return nil
}

func (a *Adapter) putCell(col, row int, ch byte, attr Attribute, setAttr bool) error {
	idx := a.cellIndex(col, row)
	if !setAttr {
		attr = a.cells[idx].attr
	}
	fg, bg, err := a.palette.Resolve(attr)
	if err != nil {
		return err
	}
	a.cells[idx] = textCell{ch: ch, attr: attr}
	if a.textMode() {
		a.surface.WriteCell(col, row, ch, fg, bg, attr.Blink())
	}
	return nil
}

// CharAt returns the character and attribute stored at (col, row).
func (a *Adapter) CharAt(col, row int) (byte, Attribute, error) {
	if !a.inScreen(col, row) {
		return 0, 0, fmt.Errorf("%w: cell %d,%d outside %dx%d", ErrInvalidGeometry, col, row, a.state.Columns, a.state.Rows)
	}
	c := a.cells[a.cellIndex(col, row)]
	return c.ch, c.attr, nil
}

// ReadCharAtCursor returns the cell under the page 0 cursor.
func (a *Adapter) ReadCharAtCursor() (byte, Attribute) {
	pos := a.state.CursorPos[0]
	ch, attr, err := a.CharAt(pos.Col, pos.Row)
	if err != nil {
		return ' ', DefaultAttribute
	}
	return ch, attr
}

// Teletype writes ch at the page 0 cursor and advances it, wrapping to the
// next row and scrolling the screen up one line past the bottom row. BEL is
// ignored; BS, LF and CR move the cursor.
func (a *Adapter) Teletype(ch byte) error {
	return a.teletype(ch, 0, false)
}

func (a *Adapter) teletype(ch byte, attr Attribute, setAttr bool) error {
	pos := a.state.CursorPos[0]
	switch ch {
	case charBEL:
		return nil
	case charBS:
		if pos.Col > 0 {
			pos.Col--
		}
	case charCR:
		pos.Col = 0
	case charLF:
		pos.Row++
	default:
		if err := a.putCell(pos.Col, pos.Row, ch, attr, setAttr); err != nil {
			return err
		}
		pos.Col++
		if pos.Col >= a.state.Columns {
			pos.Col = 0
			pos.Row++
		}
	}
	if pos.Row >= a.state.Rows {
		if err := a.Scroll(ScrollUp, 1, a.screenRect(), DefaultAttribute); err != nil {
			return err
		}
		pos.Row = a.state.Rows - 1
	}
	a.state.CursorPos[0] = pos
	a.surface.SetCursor(pos.Col, pos.Row)
	return nil
}

// WriteString teletypes data starting at (col, row) of page 0. With
// inlineAttrs data alternates character and attribute bytes; otherwise attr
// applies to every character. The cursor is restored afterwards unless
// updateCursor is set.
func (a *Adapter) WriteString(page uint8, col, row int, data []byte, attr Attribute, inlineAttrs, updateCursor bool) error {
	if page != 0 {
		return fmt.Errorf("%w: write string to display page %d", ErrUnsupported, page)
	}
	if !a.inScreen(col, row) {
		return fmt.Errorf("%w: cell %d,%d outside %dx%d", ErrInvalidGeometry, col, row, a.state.Columns, a.state.Rows)
	}
	saved := a.state.CursorPos[0]
	a.state.CursorPos[0] = Position{Col: col, Row: row}
	step := 1
	if inlineAttrs {
		step = 2
	}
	var err error
	for i := 0; i+step <= len(data); i += step {
		if inlineAttrs {
			attr = Attribute(data[i+1])
		}
		if err = a.teletype(data[i], attr, true); err != nil {
			break
		}
	}
	if !updateCursor {
		a.state.CursorPos[0] = saved
		a.surface.SetCursor(saved.Col, saved.Row)
	}
	return err
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
