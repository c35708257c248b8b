package int10

import (
	"fmt"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/vga"
)

const vbeToggle = 0xFF

func vbeTable() map[uint8]Function {
	return map[uint8]Function{
		0x00: {Desc: "GET SuperVGA INFORMATION", Handler: vbeInfo},
		0x01: {Desc: "GET SuperVGA MODE INFORMATION", Handler: vbeModeInfo},
		0x02: {Desc: "SET SuperVGA VIDEO MODE", Handler: vbeSetMode},
		0x03: {Desc: "GET CURRENT VIDEO MODE", Handler: vbeGetMode},
		0x04: unsupported("SAVE/RESTORE SuperVGA VIDEO STATE"),
		0x05: unsupported("CPU VIDEO MEMORY CONTROL"),
		0x06: unsupported("GET/SET LOGICAL SCAN LINE LENGTH"),
		0x07: unsupported("GET/SET DISPLAY START"),
		0x08: unsupported("GET/SET DAC PALETTE CONTROL"),
		0x09: {Desc: "GET/SET PALETTE ENTRIES", Handler: vbePalette},
		0xEF: {Desc: "GET VIDEO ADAPTER TYPE AND MODE", Handler: herculesProbe},
		vbeToggle: {Desc: "TURN VESA ON/OFF", Handler: vbeToggleEnabled},
	}
}

// ES:DI receives the 512-byte controller information block.
func vbeInfo(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	writeInfoBlock(m, r.ES(), r.DI(), d.videoKB, vga.VBEModes())
	return nil
}

// CX mode, ES:DI receives the 256-byte mode information block.
func vbeModeInfo(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	id := vga.ModeID(r.CX() & vbeModeMask)
	desc, ok := vga.LookupMode(id)
	if !ok {
		return fmt.Errorf("%w: mode information for %s", vga.ErrUnsupported, id)
	}
	writeModeInfoBlock(m, r.ES(), r.DI(), desc)
	return nil
}

const (
	vbeModeMask    = 0x3FFF
	vbeModeNoClear = 0x8000
)

// BX low 14 bits select the mode; bit 15 keeps the video memory contents.
func vbeSetMode(d *Dispatcher, r cpu.View) error {
	bx := r.BX()
	_, err := d.adapter.SetMode(vga.ModeID(bx&vbeModeMask), bx&vbeModeNoClear == 0)
	return err
}

func vbeGetMode(d *Dispatcher, r cpu.View) error {
	r.SetBX(uint16(d.adapter.State().Mode))
	return nil
}

// BL 0x00/0x80 set, 0x01 get. CX count, DX first entry, ES:DI table of
// blue, green, red, pad entries.
func vbePalette(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	start, count := int(r.DX()), int(r.CX())
	addr := cpu.Linear(r.ES(), r.DI())
	switch r.BL() {
	case 0x00, 0x80:
		raw := cpu.LoadBytes(m, addr, count*4)
		colors := make([]vga.DACColor, 0, count)
		for i := 0; i+4 <= len(raw); i += 4 {
			colors = append(colors, vga.DACColor{R: raw[i+2], G: raw[i+1], B: raw[i]})
		}
		d.adapter.SetDACBlock(start, colors)
	case 0x01:
		colors := d.adapter.DACBlock(start, count)
		raw := make([]byte, 0, len(colors)*4)
		for _, c := range colors {
			raw = append(raw, c.B, c.G, c.R, 0)
		}
		cpu.StoreBytes(m, addr, raw)
	default:
		return fmt.Errorf("%w: palette sub-function 0x%02X", vga.ErrUnsupported, r.BL())
	}
	return nil
}

func vbeToggleEnabled(d *Dispatcher, r cpu.View) error {
	d.adapter.SetVESAEnabled(!d.adapter.State().VESAEnabled)
	return nil
}
