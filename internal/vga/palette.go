package vga

import (
	"fmt"
	"image/color"

	"pkt.systems/vgabios/internal/display"
)

// ColorCount is the size of the legacy text colour space.
const ColorCount = 16

// LegacyColors is the CGA/EGA text palette in attribute index order.
var LegacyColors = [ColorCount]color.RGBA{
	{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}, // black
	{R: 0x00, G: 0x00, B: 0xAA, A: 0xFF}, // blue
	{R: 0x00, G: 0xAA, B: 0x00, A: 0xFF}, // green
	{R: 0x00, G: 0xAA, B: 0xAA, A: 0xFF}, // cyan
	{R: 0xAA, G: 0x00, B: 0x00, A: 0xFF}, // red
	{R: 0xAA, G: 0x00, B: 0xAA, A: 0xFF}, // magenta
	{R: 0xAA, G: 0x55, B: 0x00, A: 0xFF}, // brown
	{R: 0xAA, G: 0xAA, B: 0xAA, A: 0xFF}, // light gray
	{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}, // dark gray
	{R: 0x55, G: 0x55, B: 0xFF, A: 0xFF}, // light blue
	{R: 0x55, G: 0xFF, B: 0x55, A: 0xFF}, // light green
	{R: 0x55, G: 0xFF, B: 0xFF, A: 0xFF}, // light cyan
	{R: 0xFF, G: 0x55, B: 0x55, A: 0xFF}, // light red
	{R: 0xFF, G: 0x55, B: 0xFF, A: 0xFF}, // light magenta
	{R: 0xFF, G: 0xFF, B: 0x55, A: 0xFF}, // yellow
	{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, // white
}

// ColorAllocator is the part of the host surface that hands out colours.
type ColorAllocator interface {
	AllocColor(c color.RGBA) (display.HostColor, error)
}

// Palette maps the 16 legacy colour indexes to host colours. The host colours
// are allocated together, in index order, on the first lookup from any entry
// point; that allocation is also what initializes the host display. A failed
// allocation leaves the palette unallocated so the next lookup retries.
//
// Palette is not safe for concurrent use.
type Palette struct {
	alloc     ColorAllocator
	colors    [ColorCount]display.HostColor
	allocated bool
}

// NewPalette returns a palette that allocates from alloc on first use.
func NewPalette(alloc ColorAllocator) *Palette {
	return &Palette{alloc: alloc}
}

// ColorFor returns the host colour of a legacy index. Only the low four bits
// of index are used.
func (p *Palette) ColorFor(index uint8) (display.HostColor, error) {
	if err := p.ensure(); err != nil {
		return 0, err
	}
	return p.colors[index&0x0F], nil
}

// Allocated reports whether the one-time allocation has happened.
func (p *Palette) Allocated() bool {
	return p.allocated
}

// Resolve returns foreground and background host colours for an attribute.
func (p *Palette) Resolve(a Attribute) (fg, bg display.HostColor, err error) {
	if fg, err = p.ColorFor(a.Foreground()); err != nil {
		return 0, 0, err
	}
	if bg, err = p.ColorFor(a.Background()); err != nil {
		return 0, 0, err
	}
	return fg, bg, nil
}

func (p *Palette) ensure() error {
	if p.allocated {
		return nil
	}
	if p.alloc == nil {
		return fmt.Errorf("%w: no colour allocator", ErrHostSurface)
	}
	var colors [ColorCount]display.HostColor
	for i, rgb := range LegacyColors {
		c, err := p.alloc.AllocColor(rgb)
		if err != nil {
			return fmt.Errorf("%w: allocate colour %d: %v", ErrHostSurface, i, err)
		}
		colors[i] = c
	}
	p.colors = colors
	p.allocated = true
	return nil
}

// DACSize is the number of DAC colour registers.
const DACSize = 256

// DACColor is a DAC register in 6-bit VGA units.
type DACColor struct {
	R uint8
	G uint8
	B uint8
}

// RGBA expands 6-bit components to 8 bits.
func (c DACColor) RGBA() color.RGBA {
	return color.RGBA{R: expand6(c.R), G: expand6(c.G), B: expand6(c.B), A: 0xFF}
}

func expand6(v uint8) uint8 {
	v &= 0x3F
	return v<<2 | v>>4
}

// DAC holds the 256 colour registers and the PEL mask used by graphics modes.
type DAC struct {
	regs [DACSize]DACColor
	mask uint8
}

// NewDAC returns a DAC loaded with the default VGA palette.
func NewDAC() *DAC {
	d := &DAC{}
	d.Reset()
	return d
}

// Reset loads the default palette: the 16 legacy colours, a 6x6x6 colour
// cube and a 24-step gray ramp.
func (d *DAC) Reset() {
	d.mask = 0xFF
	for i, c := range LegacyColors {
		d.regs[i] = DACColor{R: c.R >> 2, G: c.G >> 2, B: c.B >> 2}
	}
	idx := ColorCount
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				d.regs[idx] = DACColor{R: uint8(r * 63 / 5), G: uint8(g * 63 / 5), B: uint8(b * 63 / 5)}
				idx++
			}
		}
	}
	for i := 0; i < 24; i++ {
		gray := uint8(i * 63 / 23)
		d.regs[idx] = DACColor{R: gray, G: gray, B: gray}
		idx++
	}
}

// Get returns register index.
func (d *DAC) Get(index uint8) DACColor {
	return d.regs[index]
}

// Set stores register index, keeping the low six bits of each component.
func (d *DAC) Set(index uint8, c DACColor) {
	d.regs[index] = DACColor{R: c.R & 0x3F, G: c.G & 0x3F, B: c.B & 0x3F}
}

// Mask returns the PEL mask.
func (d *DAC) Mask() uint8 {
	return d.mask
}

// SetMask sets the PEL mask.
func (d *DAC) SetMask(m uint8) {
	d.mask = m
}

// RGBA returns count expanded registers starting at start, with the PEL mask
// applied to the index.
func (d *DAC) RGBA(start, count int) []color.RGBA {
	out := make([]color.RGBA, 0, count)
	for i := start; i < start+count && i < DACSize; i++ {
		out = append(out, d.regs[uint8(i)&d.mask].RGBA())
	}
	return out
}
