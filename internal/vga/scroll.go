package vga

import (
	"fmt"

	"pkt.systems/vgabios/internal/display"
)

// Direction is a scroll direction.
type Direction int

// Scroll directions.
const (
	ScrollUp Direction = iota
	ScrollDown
)

func (d Direction) String() string {
	if d == ScrollDown {
		return "down"
	}
	return "up"
}

// Scroll moves the rows of the inclusive rectangle r by lines in dir. Rows
// pushed past the leading edge are lost and vacated rows are filled with
// blanks in attr. lines == 0, or a count covering the whole rectangle,
// clears it. A rectangle with top-left past bottom-right is a no-op that
// reports ErrInvalidGeometry.
func (a *Adapter) Scroll(dir Direction, lines uint8, r display.Rect, attr Attribute) error {
	if r.Empty() {
		return fmt.Errorf("%w: scroll rectangle %s", ErrInvalidGeometry, r)
	}
	r = r.Clip(a.state.Columns, a.state.Rows)
	if r.Empty() {
		return fmt.Errorf("%w: scroll rectangle %s off screen", ErrInvalidGeometry, r)
	}
	_, bg, err := a.palette.Resolve(attr)
	if err != nil {
		return err
	}

	n := int(lines)
	if n == 0 || n >= r.Height() {
		a.fillCells(r, attr)
		if a.textMode() {
			a.surface.FillRect(r, bg, attr.Blink())
		} else {
			a.fillPixelCells(r, attr.Background())
		}
		return nil
	}

	var vacated display.Rect
	if dir == ScrollUp {
		for y := r.Top; y <= r.Bottom-n; y++ {
			a.moveCells(r, y+n, y)
		}
		vacated = display.Rect{Left: r.Left, Top: r.Bottom - n + 1, Right: r.Right, Bottom: r.Bottom}
	} else {
		for y := r.Bottom; y >= r.Top+n; y-- {
			a.moveCells(r, y-n, y)
		}
		vacated = display.Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Top + n - 1}
	}
	a.fillCells(vacated, attr)

	dy := n
	if dir == ScrollUp {
		dy = -n
	}
	if a.textMode() {
		a.surface.ShiftRows(r, dy)
		a.surface.FillRect(vacated, bg, attr.Blink())
		return nil
	}
	a.shiftPixelCells(r, dy)
	a.fillPixelCells(vacated, attr.Background())
	return nil
}

// Clear blanks the whole screen with attr.
func (a *Adapter) Clear(attr Attribute) error {
	return a.Scroll(ScrollUp, 0, a.screenRect(), attr)
}

func (a *Adapter) screenRect() display.Rect {
	return display.Rect{Right: a.state.Columns - 1, Bottom: a.state.Rows - 1}
}

func (a *Adapter) moveCells(r display.Rect, from, to int) {
	copy(a.cells[a.cellIndex(r.Left, to):a.cellIndex(r.Right, to)+1], a.cells[a.cellIndex(r.Left, from):a.cellIndex(r.Right, from)+1])
}

func (a *Adapter) fillCells(r display.Rect, attr Attribute) {
	blank := textCell{ch: ' ', attr: attr}
	for y := r.Top; y <= r.Bottom; y++ {
		for x := r.Left; x <= r.Right; x++ {
			a.cells[a.cellIndex(x, y)] = blank
		}
	}
}
