package display

import (
	"fmt"
	"image/color"
)

// HostColor is an opaque colour handle allocated by the host surface.
type HostColor uint32

// Surface is the host display the video adapter drives. Implementations
// render character cells in text modes and a pixel buffer in graphics modes.
type Surface interface {
	// AllocColor registers an RGB value with the host and returns its handle.
	// The first call is the point where the host display initializes.
	AllocColor(c color.RGBA) (HostColor, error)
	SetTextGeometry(cols, rows int) error
	SetGraphicsMode(width, height, depth int) error
	WriteCell(col, row int, ch byte, fg, bg HostColor, blink bool)
	// ShiftRows moves the rows of r by dy (negative is up). Rows moved
	// outside r are discarded; vacated rows are left for the caller to fill.
	ShiftRows(r Rect, dy int)
	FillRect(r Rect, bg HostColor, blink bool)
	SetCursor(col, row int)
	Teardown()
}

// PixelWriter is implemented by surfaces that present graphics modes.
type PixelWriter interface {
	SetPixel(x, y int, value uint32)
}

// PaletteSetter is implemented by surfaces with an indexed colour palette.
type PaletteSetter interface {
	SetPalette(start int, colors []color.RGBA)
}

// BorderSetter is implemented by surfaces that draw an overscan border.
type BorderSetter interface {
	SetBorder(c HostColor)
}

// Rect is an inclusive cell rectangle.
type Rect struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.Left > r.Right || r.Top > r.Bottom
}

// Width returns the column count.
func (r Rect) Width() int {
	if r.Empty() {
		return 0
	}
	return r.Right - r.Left + 1
}

// Height returns the row count.
func (r Rect) Height() int {
	if r.Empty() {
		return 0
	}
	return r.Bottom - r.Top + 1
}

// Clip intersects r with a cols x rows screen.
func (r Rect) Clip(cols, rows int) Rect {
	if r.Left < 0 {
		r.Left = 0
	}
	if r.Top < 0 {
		r.Top = 0
	}
	if r.Right >= cols {
		r.Right = cols - 1
	}
	if r.Bottom >= rows {
		r.Bottom = rows - 1
	}
	return r
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.Left, r.Top, r.Right, r.Bottom)
}

// Kind is the presentation mode of a surface.
type Kind int

// Surface kinds.
const (
	KindNone Kind = iota
	KindText
	KindGraphics
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindGraphics:
		return "graphics"
	default:
		return "none"
	}
}

// Cursor is a cell position.
type Cursor struct {
	X int
	Y int
}

// Cell is a rendered character cell.
type Cell struct {
	Char  byte
	FG    HostColor
	BG    HostColor
	Blink bool
}

// Snapshot captures surface state for rendering and export.
type Snapshot struct {
	Kind   Kind
	Cols   int
	Rows   int
	Width  int
	Height int
	Depth  int
	Cursor Cursor
	Border HostColor
	// Colors resolves HostColor handles to RGB.
	Colors []color.RGBA
	Cells  []Cell
	// Pixels holds palette indexes for depth <= 8, packed 0xRRGGBB otherwise.
	Pixels  []uint32
	Palette []color.RGBA
}

// CellAt returns the cell at (x, y).
func (s Snapshot) CellAt(x, y int) (Cell, error) {
	if x < 0 || y < 0 || x >= s.Cols || y >= s.Rows {
		return Cell{}, fmt.Errorf("cell out of range")
	}
	idx := y*s.Cols + x
	if idx >= len(s.Cells) {
		return Cell{}, fmt.Errorf("cell out of range")
	}
	return s.Cells[idx], nil
}

// RGB resolves a host colour handle; unknown handles resolve to black.
func (s Snapshot) RGB(c HostColor) color.RGBA {
	if int(c) < len(s.Colors) {
		return s.Colors[c]
	}
	return color.RGBA{A: 0xFF}
}

// PixelRGB resolves the pixel at (x, y) to RGB.
func (s Snapshot) PixelRGB(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return color.RGBA{A: 0xFF}
	}
	idx := y*s.Width + x
	if idx >= len(s.Pixels) {
		return color.RGBA{A: 0xFF}
	}
	v := s.Pixels[idx]
	if s.Depth <= 8 {
		if int(v) < len(s.Palette) {
			return s.Palette[v]
		}
		return color.RGBA{A: 0xFF}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}
