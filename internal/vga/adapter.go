package vga

import (
	"fmt"
	"image/color"

	"pkt.systems/pslog"
	"pkt.systems/vgabios/internal/display"
)

// Options configures an Adapter.
type Options struct {
	Logger pslog.Logger
}

type textCell struct {
	ch   byte
	attr Attribute
}

var blankCell = textCell{ch: ' ', attr: DefaultAttribute}

// Adapter is the virtual VGA adapter. It owns the video state, the colour
// palette, the DAC and a shadow of the text and pixel buffers, and drives the
// host surface through mode transitions.
//
// Adapter is not safe for concurrent use; embedders running several guest
// contexts must serialize calls.
type Adapter struct {
	surface display.Surface
	palette *Palette
	dac     *DAC
	logger  pslog.Logger

	state State
	mode  ModeDescriptor

	cells  []textCell
	pixels []uint32
}

// NewAdapter returns an adapter in the power-on state (mode 0x03). The host
// surface is not touched until the first video operation.
func NewAdapter(surface display.Surface, opts Options) *Adapter {
	if opts.Logger == nil {
		opts.Logger = pslog.LoggerFromEnv()
	}
	mode, _ := LookupMode(0x03)
	a := &Adapter{
		surface: surface,
		palette: NewPalette(surface),
		dac:     NewDAC(),
		logger:  opts.Logger,
		state:   NewState(),
		mode:    mode,
	}
	a.cells = blankCells(mode.Columns() * mode.Rows())
	return a
}

// EnsurePalette performs the one-time legacy palette allocation. It is a
// no-op once the palette is allocated and retries after a failure.
func (a *Adapter) EnsurePalette() error {
	return a.palette.ensure()
}

// Palette returns the legacy colour palette.
func (a *Adapter) Palette() *Palette {
	return a.palette
}

// DAC returns the DAC registers.
func (a *Adapter) DAC() *DAC {
	return a.dac
}

// Surface returns the host surface.
func (a *Adapter) Surface() display.Surface {
	return a.surface
}

// State returns a copy of the video state.
func (a *Adapter) State() State {
	return a.state
}

// Mode returns the descriptor of the current mode.
func (a *Adapter) Mode() ModeDescriptor {
	return a.mode
}

// SetMode switches to mode id. When clear is false the text buffer or pixel
// buffer keeps its contents where the geometry allows.
//
// Every mode set allocates the legacy palette before the host transition, so
// the first mode set of either kind is also the point where the host display
// initializes. The video state changes only after the host transition
// succeeded.
func (a *Adapter) SetMode(id ModeID, clear bool) (ModeDescriptor, error) {
	desc, ok := LookupMode(id)
	if !ok {
		return ModeDescriptor{}, fmt.Errorf("%w: video mode %s", ErrUnsupported, id)
	}
	if err := a.palette.ensure(); err != nil {
		return ModeDescriptor{}, err
	}
	if desc.Text() {
		if err := a.setTextMode(desc, clear); err != nil {
			return ModeDescriptor{}, err
		}
	} else if err := a.setGraphicsMode(desc, clear); err != nil {
		return ModeDescriptor{}, err
	}
	a.logger.Debug("video mode set", "mode", desc.ID.String(), "kind", desc.Kind.String(), "width", desc.Width, "height", desc.Height, "depth", desc.Depth)
	return desc, nil
}

func (a *Adapter) setTextMode(desc ModeDescriptor, clear bool) error {
	cols, rows := desc.Columns(), desc.Rows()
	cells := blankCells(cols * rows)
	if !clear {
		copyCells(cells, cols, rows, a.cells, a.state.Columns, a.state.Rows)
	}
	colors, err := a.resolveCells(cells)
	if err != nil {
		return err
	}
	if a.mode.Kind == display.KindGraphics {
		a.surface.Teardown()
	}
	if err := a.surface.SetTextGeometry(cols, rows); err != nil {
		return fmt.Errorf("%w: text geometry %dx%d: %v", ErrHostSurface, cols, rows, err)
	}

	a.mode = desc
	a.state.Mode = desc.ID
	a.state.Columns = cols
	a.state.Rows = rows
	a.state.resetCursors()
	a.cells = cells
	a.pixels = nil

	for i, c := range cells {
		a.surface.WriteCell(i%cols, i/cols, c.ch, colors[i].fg, colors[i].bg, c.attr.Blink())
	}
	a.surface.SetCursor(0, 0)
	return nil
}

func (a *Adapter) setGraphicsMode(desc ModeDescriptor, clear bool) error {
	if err := a.surface.SetGraphicsMode(desc.Width, desc.Height, desc.Depth); err != nil {
		return fmt.Errorf("%w: graphics mode %dx%dx%d: %v", ErrHostSurface, desc.Width, desc.Height, desc.Depth, err)
	}
	keep := !clear && a.mode.Kind == display.KindGraphics && a.mode.Width == desc.Width && a.mode.Height == desc.Height
	if !keep {
		a.pixels = make([]uint32, desc.Width*desc.Height)
	}

	a.mode = desc
	a.state.Mode = desc.ID
	a.state.Columns = desc.Columns()
	a.state.Rows = desc.Rows()
	a.state.resetCursors()
	a.cells = blankCells(a.state.Columns * a.state.Rows)

	a.pushPalette()
	if keep {
		a.repaintPixels()
	}
	return nil
}

// pushPalette hands the graphics colour table to surfaces with an indexed
// palette. 16-colour modes route the pixel value through the attribute
// palette registers first.
func (a *Adapter) pushPalette() {
	ps, ok := a.surface.(display.PaletteSetter)
	if !ok || a.mode.Kind != display.KindGraphics || a.mode.Depth > 8 {
		return
	}
	if a.mode.Depth == 8 {
		ps.SetPalette(0, a.dac.RGBA(0, DACSize))
		return
	}
	colors := make([]color.RGBA, ColorCount)
	for i := range colors {
		colors[i] = a.dac.Get(a.state.PaletteRegs[i]&0x3F & a.dac.Mask()).RGBA()
	}
	ps.SetPalette(0, colors)
}

func (a *Adapter) repaintPixels() {
	pw, ok := a.surface.(display.PixelWriter)
	if !ok {
		return
	}
	w := a.mode.Width
	for i, v := range a.pixels {
		pw.SetPixel(i%w, i/w, v)
	}
}

type cellColors struct {
	fg display.HostColor
	bg display.HostColor
}

func (a *Adapter) resolveCells(cells []textCell) ([]cellColors, error) {
	out := make([]cellColors, len(cells))
	for i, c := range cells {
		fg, bg, err := a.palette.Resolve(c.attr)
		if err != nil {
			return nil, err
		}
		out[i] = cellColors{fg: fg, bg: bg}
	}
	return out, nil
}

func (a *Adapter) textMode() bool {
	return a.mode.Kind == display.KindText
}

func (a *Adapter) cellIndex(col, row int) int {
	return row*a.state.Columns + col
}

func (a *Adapter) inScreen(col, row int) bool {
	return col >= 0 && row >= 0 && col < a.state.Columns && row < a.state.Rows
}

func blankCells(n int) []textCell {
	cells := make([]textCell, n)
	for i := range cells {
		cells[i] = blankCell
	}
	return cells
}

func copyCells(dst []textCell, dstCols, dstRows int, src []textCell, srcCols, srcRows int) {
	rows := min(dstRows, srcRows)
	cols := min(dstCols, srcCols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if i := y*srcCols + x; i < len(src) {
				dst[y*dstCols+x] = src[i]
			}
		}
	}
}
