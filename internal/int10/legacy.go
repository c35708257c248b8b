package int10

import (
	"fmt"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/display"
	"pkt.systems/vgabios/internal/vga"
)

func legacyTable() map[uint8]Function {
	return map[uint8]Function{
		0x00: {Desc: "SET VIDEO MODE", Handler: setVideoMode},
		0x01: {Desc: "SET CURSOR SHAPE", Handler: setCursorShape},
		0x02: {Desc: "SET CURSOR POSITION", Handler: setCursorPosition},
		0x03: {Desc: "GET CURSOR POSITION AND SIZE", Handler: getCursorPosition},
		0x04: {Desc: "READ LIGHT PEN POSITION", Handler: readLightPen},
		0x05: {Desc: "SELECT ACTIVE DISPLAY PAGE", Handler: selectPage},
		0x06: {Desc: "SCROLL UP WINDOW", Handler: scrollWindow(vga.ScrollUp)},
		0x07: {Desc: "SCROLL DOWN WINDOW", Handler: scrollWindow(vga.ScrollDown)},
		0x08: {Desc: "READ CHARACTER AND ATTRIBUTE", Handler: readCharAttr},
		0x09: {Desc: "WRITE CHARACTER AND ATTRIBUTE", Handler: writeCharAttr},
		0x0A: {Desc: "WRITE CHARACTER ONLY", Handler: writeCharOnly},
		0x0B: {Desc: "COLOR PALETTE", Sub: selectBH, Table: map[uint8]Function{
			0x00: {Desc: "SET BACKGROUND/BORDER COLOR", Handler: setBorder},
			0x01: unsupported("SET PALETTE"),
		}},
		0x0C: {Desc: "WRITE GRAPHICS PIXEL", Handler: writePixel},
		0x0D: {Desc: "READ GRAPHICS PIXEL", Handler: readPixel},
		0x0E: {Desc: "TELETYPE OUTPUT", Handler: teletype},
		0x0F: {Desc: "GET CURRENT VIDEO MODE", Handler: getVideoMode},
		0x10: {Desc: "PALETTE REGISTERS", Sub: selectAL, Table: paletteTable()},
		0x11: {Desc: "CHARACTER GENERATOR", Sub: selectAL, Table: fontTable()},
		0x12: {Desc: "ALTERNATE FUNCTION SELECT", Sub: selectBL, Table: map[uint8]Function{
			0x10: {Desc: "GET EGA INFO", Handler: getEGAInfo},
			0x20: unsupported("ALTERNATE PRINT SCREEN"),
			0x30: unsupported("SELECT VERTICAL RESOLUTION"),
			0x31: {Desc: "DEFAULT PALETTE LOADING", Handler: defaultPaletteLoading},
			0x32: unsupported("VIDEO ADDRESSING"),
			0x33: unsupported("GRAY-SCALE SUMMING"),
			0x34: {Desc: "CURSOR EMULATION", Handler: cursorEmulation},
			0x35: unsupported("DISPLAY SWITCH"),
			0x36: unsupported("VIDEO REFRESH CONTROL"),
		}},
		0x13: {Desc: "WRITE STRING", Handler: writeString},
		0x1A: {Desc: "DISPLAY COMBINATION CODE", Sub: selectAL, Table: map[uint8]Function{
			0x00: {Desc: "GET DISPLAY COMBINATION CODE", Handler: getDisplayCombination},
			0x01: unsupported("SET DISPLAY COMBINATION CODE"),
		}},
		0x1B: {Desc: "FUNCTIONALITY/STATE INFORMATION", Handler: functionalityInfo},
		0x1C: unsupported("SAVE/RESTORE VIDEO STATE"),
		0xEF: {Desc: "GET VIDEO ADAPTER TYPE AND MODE", Handler: herculesProbe},
	}
}

func paletteTable() map[uint8]Function {
	return map[uint8]Function{
		0x00: {Desc: "SET SINGLE PALETTE REGISTER", Handler: setPaletteRegister},
		0x01: {Desc: "SET BORDER (OVERSCAN) COLOR", Handler: setOverscan},
		0x02: {Desc: "SET ALL PALETTE REGISTERS", Handler: setAllPaletteRegisters},
		0x03: {Desc: "TOGGLE INTENSITY/BLINKING", Handler: toggleBlink},
		0x07: {Desc: "GET PALETTE REGISTER", Handler: getPaletteRegister},
		0x08: {Desc: "READ OVERSCAN REGISTER", Handler: getOverscan},
		0x09: {Desc: "READ ALL PALETTE REGISTERS", Handler: getAllPaletteRegisters},
		0x10: {Desc: "SET INDIVIDUAL DAC REGISTER", Handler: setDACRegister},
		0x12: {Desc: "SET BLOCK OF DAC REGISTERS", Handler: setDACBlock},
		0x13: unsupported("SELECT VIDEO DAC COLOR PAGE"),
		0x15: {Desc: "READ INDIVIDUAL DAC REGISTER", Handler: readDACRegister},
		0x17: {Desc: "READ BLOCK OF DAC REGISTERS", Handler: readDACBlock},
		0x18: {Desc: "SET PEL MASK", Handler: setPELMask},
		0x19: {Desc: "READ PEL MASK", Handler: readPELMask},
		0x1A: unsupported("GET VIDEO DAC COLOR PAGE"),
		0x1B: unsupported("PERFORM GRAY-SCALE SUMMING"),
	}
}

func fontTable() map[uint8]Function {
	return map[uint8]Function{
		0x00: unsupported("LOAD USER-SPECIFIED CHARACTER DEFINITION TABLE"),
		0x01: unsupported("LOAD ROM MONOCHROME PATTERNS (8 BY 14)"),
		0x02: unsupported("LOAD ROM 8 BY 8 DOUBLE-DOT PATTERNS"),
		0x03: unsupported("SET BLOCK SPECIFIER"),
		0x04: unsupported("LOAD ROM 8X16 CHARACTER SET"),
		0x10: unsupported("LOAD AND ACTIVATE USER-SPECIFIED CHARACTER TABLE"),
		0x11: unsupported("LOAD AND ACTIVATE ROM 8X14 CHARACTER SET"),
		0x12: unsupported("LOAD AND ACTIVATE ROM 8X8 CHARACTER SET"),
		0x14: unsupported("LOAD AND ACTIVATE ROM 8X16 CHARACTER SET"),
		0x20: unsupported("SET USER 8X8 GRAPHICS CHARACTERS"),
		0x21: unsupported("SET USER GRAPHICS CHARACTERS"),
		0x22: unsupported("SET ROM 8X14 GRAPHICS CHARACTERS"),
		0x23: unsupported("SET ROM 8X8 DBL DOT CHARS"),
		0x24: unsupported("LOAD 8X16 GRAPHICS CHARS"),
		0x30: unsupported("GET FONT INFORMATION"),
	}
}

// AL bit 7 keeps the video memory contents.
func setVideoMode(d *Dispatcher, r cpu.View) error {
	al := r.AL()
	_, err := d.adapter.SetMode(vga.ModeID(al&0x7F), al&0x80 == 0)
	return err
}

func setCursorShape(d *Dispatcher, r cpu.View) error {
	d.adapter.SetCursorType(r.CX())
	return nil
}

func setCursorPosition(d *Dispatcher, r cpu.View) error {
	return d.adapter.SetCursor(r.BH(), int(r.DL()), int(r.DH()))
}

func getCursorPosition(d *Dispatcher, r cpu.View) error {
	pos := d.adapter.Cursor(r.BH())
	r.SetCX(d.adapter.State().CursorType)
	r.SetDH(uint8(pos.Row))
	r.SetDL(uint8(pos.Col))
	return nil
}

func readLightPen(d *Dispatcher, r cpu.View) error {
	r.SetAH(0x00)
	return nil
}

func selectPage(d *Dispatcher, r cpu.View) error {
	return d.adapter.SelectPage(r.AL())
}

func scrollWindow(dir vga.Direction) Handler {
	return func(d *Dispatcher, r cpu.View) error {
		rect := display.Rect{
			Left:   int(r.CL()),
			Top:    int(r.CH()),
			Right:  int(r.DL()),
			Bottom: int(r.DH()),
		}
		return d.adapter.Scroll(dir, r.AL(), rect, vga.Attribute(r.BH()))
	}
}

func readCharAttr(d *Dispatcher, r cpu.View) error {
	if page := r.BH(); page != 0 {
		r.SetAL(' ')
		r.SetAH(uint8(vga.DefaultAttribute))
		return fmt.Errorf("%w: read from display page %d", vga.ErrUnsupported, page)
	}
	ch, attr := d.adapter.ReadCharAtCursor()
	r.SetAL(ch)
	r.SetAH(uint8(attr))
	return nil
}

// The cursor does not advance.
func writeCharAttr(d *Dispatcher, r cpu.View) error {
	if page := r.BH(); page != 0 {
		return fmt.Errorf("%w: write to display page %d", vga.ErrUnsupported, page)
	}
	pos := d.adapter.Cursor(0)
	return d.adapter.WriteCharAttr(pos.Col, pos.Row, r.AL(), vga.Attribute(r.BL()), int(r.CX()))
}

func writeCharOnly(d *Dispatcher, r cpu.View) error {
	if page := r.BH(); page != 0 {
		return fmt.Errorf("%w: write to display page %d", vga.ErrUnsupported, page)
	}
	pos := d.adapter.Cursor(0)
	return d.adapter.WriteChar(pos.Col, pos.Row, r.AL(), int(r.CX()))
}

func setBorder(d *Dispatcher, r cpu.View) error {
	return d.adapter.SetBorder(r.BL())
}

// AL bit 7 XORs the colour into 16-colour modes.
func writePixel(d *Dispatcher, r cpu.View) error {
	al := r.AL()
	xor := al&0x80 != 0 && d.adapter.Mode().Depth < 8
	if xor {
		al &= 0x7F
	}
	return d.adapter.PutPixel(int(r.CX()), int(r.DX()), al, xor)
}

func readPixel(d *Dispatcher, r cpu.View) error {
	v, err := d.adapter.Pixel(int(r.CX()), int(r.DX()))
	if err != nil {
		return err
	}
	r.SetAL(v)
	return nil
}

func teletype(d *Dispatcher, r cpu.View) error {
	return d.adapter.Teletype(r.AL())
}

func getVideoMode(d *Dispatcher, r cpu.View) error {
	st := d.adapter.State()
	r.SetAL(uint8(st.Mode))
	r.SetAH(uint8(st.Columns))
	r.SetBH(0)
	return nil
}

func setPaletteRegister(d *Dispatcher, r cpu.View) error {
	return d.adapter.SetPaletteRegister(r.BL(), r.BH())
}

func setOverscan(d *Dispatcher, r cpu.View) error {
	d.adapter.SetOverscan(r.BH())
	return nil
}

// ES:DX points to 16 palette registers followed by the overscan register.
func setAllPaletteRegisters(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	var regs [17]byte
	copy(regs[:], cpu.LoadBytes(m, cpu.Linear(r.ES(), r.DX()), len(regs)))
	d.adapter.SetPaletteRegisters(regs)
	return nil
}

func toggleBlink(d *Dispatcher, r cpu.View) error {
	switch r.BL() {
	case 0x00:
		d.adapter.SetBlink(false)
	case 0x01:
		d.adapter.SetBlink(true)
	default:
		return fmt.Errorf("%w: blink selector 0x%02X", vga.ErrUnsupported, r.BL())
	}
	return nil
}

func getPaletteRegister(d *Dispatcher, r cpu.View) error {
	v, err := d.adapter.PaletteRegister(r.BL())
	if err != nil {
		return err
	}
	r.SetBH(v)
	return nil
}

func getOverscan(d *Dispatcher, r cpu.View) error {
	r.SetBH(d.adapter.Overscan())
	return nil
}

func getAllPaletteRegisters(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	regs := d.adapter.PaletteRegisters()
	cpu.StoreBytes(m, cpu.Linear(r.ES(), r.DX()), regs[:])
	return nil
}

// BX register, DH red, CH green, CL blue.
func setDACRegister(d *Dispatcher, r cpu.View) error {
	d.adapter.SetDAC(uint8(r.BX()), vga.DACColor{R: r.DH(), G: r.CH(), B: r.CL()})
	return nil
}

// BX first register, CX count, ES:DX red/green/blue triplets.
func setDACBlock(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	count := int(r.CX())
	raw := cpu.LoadBytes(m, cpu.Linear(r.ES(), r.DX()), count*3)
	colors := make([]vga.DACColor, 0, count)
	for i := 0; i+3 <= len(raw); i += 3 {
		colors = append(colors, vga.DACColor{R: raw[i], G: raw[i+1], B: raw[i+2]})
	}
	d.adapter.SetDACBlock(int(r.BX()), colors)
	return nil
}

func readDACRegister(d *Dispatcher, r cpu.View) error {
	c := d.adapter.DAC().Get(uint8(r.BX()))
	r.SetDH(c.R)
	r.SetCH(c.G)
	r.SetCL(c.B)
	return nil
}

func readDACBlock(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	colors := d.adapter.DACBlock(int(r.BX()), int(r.CX()))
	raw := make([]byte, 0, len(colors)*3)
	for _, c := range colors {
		raw = append(raw, c.R, c.G, c.B)
	}
	cpu.StoreBytes(m, cpu.Linear(r.ES(), r.DX()), raw)
	return nil
}

func setPELMask(d *Dispatcher, r cpu.View) error {
	d.adapter.SetPELMask(r.BL())
	return nil
}

func readPELMask(d *Dispatcher, r cpu.View) error {
	r.SetBL(d.adapter.DAC().Mask())
	return nil
}

func getEGAInfo(d *Dispatcher, r cpu.View) error {
	st := d.adapter.State()
	r.SetBH(0)
	r.SetBL(st.ModeOptions >> 5)
	r.SetCX(uint16(st.FeatureBits))
	return nil
}

// AL=1 disables loading, anything else enables it.
func defaultPaletteLoading(d *Dispatcher, r cpu.View) error {
	d.adapter.SetDefaultPaletteLoading(r.AL() != 1)
	r.SetAL(0x12)
	return nil
}

// AL=1 disables emulation, anything else enables it.
func cursorEmulation(d *Dispatcher, r cpu.View) error {
	d.adapter.SetCursorEmulation(r.AL() != 1)
	r.SetAL(0x12)
	return nil
}

// AL bit 0 moves the cursor, bit 1 selects inline attributes. BH page, BL
// attribute, CX length, DH/DL start row/column, ES:BP string.
func writeString(d *Dispatcher, r cpu.View) error {
	m, err := d.mem()
	if err != nil {
		return err
	}
	al := r.AL()
	inline := al&0x02 != 0
	n := int(r.CX())
	if inline {
		n *= 2
	}
	data := cpu.LoadBytes(m, cpu.Linear(r.ES(), r.BP()), n)
	return d.adapter.WriteString(r.BH(), int(r.DL()), int(r.DH()), data, vga.Attribute(r.BL()), inline, al&0x01 != 0)
}

// Colour VGA with analog colour display, no alternate display.
func getDisplayCombination(d *Dispatcher, r cpu.View) error {
	r.SetAX(0x001A)
	r.SetBL(0x08)
	r.SetBH(0x00)
	return nil
}

func functionalityInfo(d *Dispatcher, r cpu.View) error {
	if r.BX() != 0 {
		return fmt.Errorf("%w: implementation type 0x%04X", vga.ErrUnsupported, r.BX())
	}
	r.SetAL(0x1B)
	r.SetES(0xF000)
	r.SetBX(0xE000)
	return nil
}

// Not a Hercules-compatible adapter.
func herculesProbe(d *Dispatcher, r cpu.View) error {
	r.SetDX(0xFFFF)
	return nil
}
