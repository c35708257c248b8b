package vga

import (
	"fmt"

	"pkt.systems/vgabios/internal/display"
)

// PutPixel writes colour at (x, y) in graphics modes; with xor the colour is
// combined with the current pixel. Text modes ignore the call.
func (a *Adapter) PutPixel(x, y int, value uint8, xor bool) error {
	if a.textMode() {
		return nil
	}
	if !a.inPixels(x, y) {
		return fmt.Errorf("%w: pixel %d,%d outside %dx%d", ErrInvalidGeometry, x, y, a.mode.Width, a.mode.Height)
	}
	v := uint32(value) & a.pixelMask()
	idx := y*a.mode.Width + x
	if xor {
		v ^= a.pixels[idx]
	}
	a.setPixel(idx, v)
	return nil
}

// Pixel returns the pixel at (x, y). Text modes read as 0.
func (a *Adapter) Pixel(x, y int) (uint8, error) {
	if a.textMode() {
		return 0, nil
	}
	if !a.inPixels(x, y) {
		return 0, fmt.Errorf("%w: pixel %d,%d outside %dx%d", ErrInvalidGeometry, x, y, a.mode.Width, a.mode.Height)
	}
	return uint8(a.pixels[y*a.mode.Width+x]), nil
}

func (a *Adapter) setPixel(idx int, v uint32) {
	a.pixels[idx] = v
	if pw, ok := a.surface.(display.PixelWriter); ok {
		pw.SetPixel(idx%a.mode.Width, idx/a.mode.Width, v)
	}
}

func (a *Adapter) inPixels(x, y int) bool {
	return x >= 0 && y >= 0 && x < a.mode.Width && y < a.mode.Height && len(a.pixels) == a.mode.Width*a.mode.Height
}

func (a *Adapter) pixelMask() uint32 {
	if a.mode.Depth >= 8 {
		return 0xFF
	}
	return 1<<a.mode.Depth - 1
}

// pixelSpan converts a cell rectangle to pixel bounds, clipped to the mode.
func (a *Adapter) pixelSpan(r display.Rect) (x0, y0, x1, y1, ch int) {
	ch = a.mode.CharHeight()
	x0, y0 = r.Left*8, r.Top*ch
	x1 = min((r.Right+1)*8, a.mode.Width)
	y1 = min((r.Bottom+1)*ch, a.mode.Height)
	return x0, y0, x1, y1, ch
}

func (a *Adapter) fillPixelCells(r display.Rect, value uint8) {
	if r.Empty() || len(a.pixels) == 0 {
		return
	}
	v := uint32(value) & a.pixelMask()
	x0, y0, x1, y1, _ := a.pixelSpan(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			a.setPixel(y*a.mode.Width+x, v)
		}
	}
}

func (a *Adapter) shiftPixelCells(r display.Rect, dy int) {
	if len(a.pixels) == 0 {
		return
	}
	x0, y0, x1, y1, ch := a.pixelSpan(r)
	d := dy * ch
	w := a.mode.Width
	move := func(from, to int) {
		for x := x0; x < x1; x++ {
			a.setPixel(to*w+x, a.pixels[from*w+x])
		}
	}
	if d < 0 {
		for y := y0; y < y1+d; y++ {
			move(y-d, y)
		}
		return
	}
	for y := y1 - 1; y >= y0+d; y-- {
		move(y-d, y)
	}
}
