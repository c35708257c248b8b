package vga

import (
	"fmt"

	"pkt.systems/vgabios/internal/display"
)

// SetBorder stores the border colour index and forwards the legacy colour to
// surfaces that draw a border.
func (a *Adapter) SetBorder(index uint8) error {
	c, err := a.palette.ColorFor(index)
	if err != nil {
		return err
	}
	a.state.BorderColor = index & 0x0F
	if bs, ok := a.surface.(display.BorderSetter); ok {
		bs.SetBorder(c)
	}
	return nil
}

// SetPaletteRegister stores attribute controller palette register reg.
func (a *Adapter) SetPaletteRegister(reg, value uint8) error {
	if int(reg) >= len(a.state.PaletteRegs) {
		return fmt.Errorf("%w: palette register %d", ErrUnsupported, reg)
	}
	a.state.PaletteRegs[reg] = value & 0x3F
	a.pushPalette()
	return nil
}

// PaletteRegister returns attribute controller palette register reg.
func (a *Adapter) PaletteRegister(reg uint8) (uint8, error) {
	if int(reg) >= len(a.state.PaletteRegs) {
		return 0, fmt.Errorf("%w: palette register %d", ErrUnsupported, reg)
	}
	return a.state.PaletteRegs[reg], nil
}

// SetOverscan stores the overscan register.
func (a *Adapter) SetOverscan(v uint8) {
	a.state.Overscan = v
}

// Overscan returns the overscan register.
func (a *Adapter) Overscan() uint8 {
	return a.state.Overscan
}

// SetPaletteRegisters loads all 16 palette registers followed by overscan.
func (a *Adapter) SetPaletteRegisters(regs [17]byte) {
	for i := range a.state.PaletteRegs {
		a.state.PaletteRegs[i] = regs[i] & 0x3F
	}
	a.state.Overscan = regs[16]
	a.pushPalette()
}

// PaletteRegisters returns all 16 palette registers followed by overscan.
func (a *Adapter) PaletteRegisters() [17]byte {
	var out [17]byte
	copy(out[:], a.state.PaletteRegs[:])
	out[16] = a.state.Overscan
	return out
}

// SetBlink selects blink (true) or background intensity for attribute bit 7.
func (a *Adapter) SetBlink(on bool) {
	a.state.BlinkEnabled = on
}

// SetDAC stores DAC register index and refreshes the host palette.
func (a *Adapter) SetDAC(index uint8, c DACColor) {
	a.dac.Set(index, c)
	a.pushPalette()
}

// SetDACBlock stores consecutive DAC registers starting at start. Entries
// past the last register are dropped.
func (a *Adapter) SetDACBlock(start int, colors []DACColor) {
	for i, c := range colors {
		if start+i >= DACSize {
			break
		}
		a.dac.Set(uint8(start+i), c)
	}
	a.pushPalette()
}

// DACBlock returns count DAC registers starting at start.
func (a *Adapter) DACBlock(start, count int) []DACColor {
	var out []DACColor
	for i := start; i < start+count && i < DACSize; i++ {
		out = append(out, a.dac.Get(uint8(i)))
	}
	return out
}

// SetPELMask sets the DAC PEL mask.
func (a *Adapter) SetPELMask(m uint8) {
	a.dac.SetMask(m)
	a.pushPalette()
}

// SetVESAEnabled records whether the VBE extension is exposed.
func (a *Adapter) SetVESAEnabled(on bool) {
	a.state.VESAEnabled = on
}

// SetDefaultPaletteLoading toggles bit 3 of the VGA settings.
// Enabled means the bit is clear.
func (a *Adapter) SetDefaultPaletteLoading(enabled bool) {
	if enabled {
		a.state.VGASettings &^= 0x08
	} else {
		a.state.VGASettings |= 0x08
	}
}

// SetCursorEmulation toggles bit 0 of the mode options.
// Enabled means the bit is clear.
func (a *Adapter) SetCursorEmulation(enabled bool) {
	if enabled {
		a.state.ModeOptions &^= 0x01
	} else {
		a.state.ModeOptions |= 0x01
	}
}
