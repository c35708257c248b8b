// Package memsurface implements display.Surface in memory. It backs the CLI
// renderer and the adapter tests.
package memsurface

import (
	"fmt"
	"image/color"

	"pkt.systems/vgabios/internal/display"
)

// Surface is an in-memory host display.
type Surface struct {
	kind display.Kind

	cols  int
	rows  int
	cells []display.Cell

	width  int
	height int
	depth  int
	pixels []uint32

	cursor  display.Cursor
	border  display.HostColor
	colors  []color.RGBA
	palette []color.RGBA

	initialized bool
	teardowns   int
	transitions int

	// ModeErr, when set, is returned by the next mode transition and then
	// cleared. It simulates a host that cannot switch modes.
	ModeErr error
	// AllocErr, when set, fails every colour allocation.
	AllocErr error
}

// New returns an uninitialized surface. The host connection initializes on
// the first colour allocation.
func New() *Surface {
	return &Surface{}
}

// AllocColor implements display.Surface.
func (s *Surface) AllocColor(c color.RGBA) (display.HostColor, error) {
	if s.AllocErr != nil {
		return 0, s.AllocErr
	}
	s.initialized = true
	c.A = 0xFF
	s.colors = append(s.colors, c)
	return display.HostColor(len(s.colors) - 1), nil
}

// SetTextGeometry implements display.Surface.
func (s *Surface) SetTextGeometry(cols, rows int) error {
	if err := s.takeModeErr(); err != nil {
		return err
	}
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("invalid text geometry %dx%d", cols, rows)
	}
	s.kind = display.KindText
	s.cols = cols
	s.rows = rows
	s.cells = make([]display.Cell, cols*rows)
	s.clearAll(display.Cell{Char: ' '})
	s.cursor = display.Cursor{}
	s.transitions++
	return nil
}

// SetGraphicsMode implements display.Surface.
func (s *Surface) SetGraphicsMode(width, height, depth int) error {
	if err := s.takeModeErr(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 || depth <= 0 {
		return fmt.Errorf("invalid graphics mode %dx%dx%d", width, height, depth)
	}
	s.kind = display.KindGraphics
	s.width = width
	s.height = height
	s.depth = depth
	s.pixels = make([]uint32, width*height)
	s.transitions++
	return nil
}

// Teardown implements display.Surface.
func (s *Surface) Teardown() {
	s.kind = display.KindNone
	s.pixels = nil
	s.width, s.height, s.depth = 0, 0, 0
	s.teardowns++
}

// WriteCell implements display.Surface.
func (s *Surface) WriteCell(col, row int, ch byte, fg, bg display.HostColor, blink bool) {
	if !s.inBounds(col, row) {
		return
	}
	s.cells[s.index(col, row)] = display.Cell{Char: ch, FG: fg, BG: bg, Blink: blink}
}

// ShiftRows implements display.Surface.
func (s *Surface) ShiftRows(r display.Rect, dy int) {
	r = r.Clip(s.cols, s.rows)
	if r.Empty() || dy == 0 {
		return
	}
	height := r.Height()
	if dy >= height || -dy >= height {
		return
	}
	if dy < 0 {
		n := -dy
		for y := r.Top; y <= r.Bottom-n; y++ {
			s.copyRow(r, y+n, y)
		}
		return
	}
	for y := r.Bottom; y >= r.Top+dy; y-- {
		s.copyRow(r, y-dy, y)
	}
}

// FillRect implements display.Surface.
func (s *Surface) FillRect(r display.Rect, bg display.HostColor, blink bool) {
	r = r.Clip(s.cols, s.rows)
	if r.Empty() {
		return
	}
	fill := display.Cell{Char: ' ', FG: bg, BG: bg, Blink: blink}
	for y := r.Top; y <= r.Bottom; y++ {
		for x := r.Left; x <= r.Right; x++ {
			s.cells[s.index(x, y)] = fill
		}
	}
}

// SetCursor implements display.Surface.
func (s *Surface) SetCursor(col, row int) {
	s.cursor = display.Cursor{X: col, Y: row}
}

// SetPixel implements display.PixelWriter.
func (s *Surface) SetPixel(x, y int, value uint32) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return
	}
	s.pixels[y*s.width+x] = value
}

// SetPalette implements display.PaletteSetter.
func (s *Surface) SetPalette(start int, colors []color.RGBA) {
	if start < 0 {
		return
	}
	if need := start + len(colors); need > len(s.palette) {
		grown := make([]color.RGBA, need)
		copy(grown, s.palette)
		s.palette = grown
	}
	copy(s.palette[start:], colors)
}

// SetBorder implements display.BorderSetter.
func (s *Surface) SetBorder(c display.HostColor) {
	s.border = c
}

// Initialized reports whether the host connection has been initialized.
func (s *Surface) Initialized() bool {
	return s.initialized
}

// Colors returns the allocated colours in allocation order.
func (s *Surface) Colors() []color.RGBA {
	out := make([]color.RGBA, len(s.colors))
	copy(out, s.colors)
	return out
}

// Teardowns returns how many times Teardown was called.
func (s *Surface) Teardowns() int {
	return s.teardowns
}

// Transitions returns how many mode transitions succeeded.
func (s *Surface) Transitions() int {
	return s.transitions
}

// Kind returns the current presentation mode.
func (s *Surface) Kind() display.Kind {
	return s.kind
}

// CellAt returns the cell at (x, y).
func (s *Surface) CellAt(x, y int) (display.Cell, error) {
	if !s.inBounds(x, y) {
		return display.Cell{}, fmt.Errorf("cell out of range")
	}
	return s.cells[s.index(x, y)], nil
}

// Pixel returns the pixel value at (x, y).
func (s *Surface) Pixel(x, y int) (uint32, error) {
	if x < 0 || y < 0 || x >= s.width || y >= s.height {
		return 0, fmt.Errorf("pixel out of range")
	}
	return s.pixels[y*s.width+x], nil
}

// Snapshot captures the surface state.
func (s *Surface) Snapshot() display.Snapshot {
	snap := display.Snapshot{
		Kind:    s.kind,
		Cols:    s.cols,
		Rows:    s.rows,
		Width:   s.width,
		Height:  s.height,
		Depth:   s.depth,
		Cursor:  s.cursor,
		Border:  s.border,
		Colors:  s.Colors(),
		Cells:   make([]display.Cell, len(s.cells)),
		Palette: make([]color.RGBA, len(s.palette)),
	}
	copy(snap.Cells, s.cells)
	copy(snap.Palette, s.palette)
	if s.pixels != nil {
		snap.Pixels = make([]uint32, len(s.pixels))
		copy(snap.Pixels, s.pixels)
	}
	return snap
}

func (s *Surface) takeModeErr() error {
	err := s.ModeErr
	s.ModeErr = nil
	return err
}

func (s *Surface) copyRow(r display.Rect, from, to int) {
	copy(s.cells[s.index(r.Left, to):s.index(r.Right, to)+1], s.cells[s.index(r.Left, from):s.index(r.Right, from)+1])
}

func (s *Surface) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.cols && y < s.rows
}

func (s *Surface) index(x, y int) int {
	return y*s.cols + x
}

func (s *Surface) clearAll(fill display.Cell) {
	for i := range s.cells {
		s.cells[i] = fill
	}
}
