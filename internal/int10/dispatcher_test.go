package int10

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"pkt.systems/pslog"
	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/display/memsurface"
	"pkt.systems/vgabios/internal/vga"
)

func TestUnknownFunctionIsLoggedAndHarmless(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	before := env.d.Adapter().State()
	env.logs.Reset()

	regs := regsOf(0x9912, 0x3456, 0x789A, 0xBCDE)
	err := env.d.Handle(regs)
	if !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if !regs.Carry() {
		t.Fatalf("carry not set")
	}
	if regs.Reg16(cpu.AX) != 0x9912 || regs.Reg16(cpu.BX) != 0x3456 || regs.Reg16(cpu.DX) != 0xBCDE {
		t.Fatalf("registers modified: %+v", regs)
	}
	if env.d.Adapter().State() != before {
		t.Fatalf("video state changed")
	}
	logs := env.logs.String()
	if !strings.Contains(logs, "\"ah\":\"0x99\"") || !strings.Contains(logs, "unsupported video function") {
		t.Fatalf("expected unsupported log, got %s", logs)
	}
}

func TestFirstInterruptAllocatesPalette(t *testing.T) {
	for _, ax := range []uint16{0x0013, 0x0F00, 0x1A00, 0x4F03} {
		env := newEnv(t)
		env.call(t, ax, 0, 0, 0)
		if !env.d.Adapter().Palette().Allocated() || !env.s.Initialized() {
			t.Fatalf("AX=%#04x: palette allocated=%v host initialized=%v", ax, env.d.Adapter().Palette().Allocated(), env.s.Initialized())
		}
		if n := len(env.s.Colors()); n != vga.ColorCount {
			t.Fatalf("AX=%#04x: allocated %d colours, want %d", ax, n, vga.ColorCount)
		}
		env.call(t, 0x0F00, 0, 0, 0)
		if n := len(env.s.Colors()); n != vga.ColorCount {
			t.Fatalf("AX=%#04x: second call allocated again (%d colours)", ax, n)
		}
	}
}

func TestFirstInterruptAllocationFailure(t *testing.T) {
	env := newEnv(t)
	env.s.AllocErr = errors.New("no colormap")
	regs := regsOf(0x0F00, 0, 0, 0)
	if err := env.d.Handle(regs); !errors.Is(err, vga.ErrHostSurface) {
		t.Fatalf("err = %v, want ErrHostSurface", err)
	}
	if !regs.Carry() || env.d.Adapter().Palette().Allocated() {
		t.Fatalf("carry=%v allocated=%v", regs.Carry(), env.d.Adapter().Palette().Allocated())
	}
	regs = regsOf(0x4F03, 0, 0, 0)
	if err := env.d.Handle(regs); !errors.Is(err, vga.ErrHostSurface) || hi(regs.Reg16(cpu.AX)) != 0x01 {
		t.Fatalf("vbe err = %v AX=%#04x", err, regs.Reg16(cpu.AX))
	}

	env.s.AllocErr = nil
	regs = env.call(t, 0x0F00, 0, 0, 0)
	if lo(regs.Reg16(cpu.AX)) != 0x03 || !env.d.Adapter().Palette().Allocated() {
		t.Fatalf("retry AX=%#04x allocated=%v", regs.Reg16(cpu.AX), env.d.Adapter().Palette().Allocated())
	}
}

func TestUnsupportedSubFunctionNamesIt(t *testing.T) {
	env := newEnv(t)
	regs := regsOf(0x1104, 0, 0, 0)
	if err := env.d.Handle(regs); !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	logs := env.logs.String()
	if !strings.Contains(logs, "\"sub\":\"0x04\"") || !strings.Contains(logs, "LOAD ROM 8X16 CHARACTER SET") {
		t.Fatalf("expected named sub-function, got %s", logs)
	}
}

func TestSetAndGetMode(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0013, 0, 0, 0)
	regs := env.call(t, 0x0F00, 0xFF00, 0, 0)
	if al, ah := lo(regs.Reg16(cpu.AX)), hi(regs.Reg16(cpu.AX)); al != 0x13 || ah != 40 {
		t.Fatalf("AL=%#x AH=%d, want 0x13/40", al, ah)
	}
	if hi(regs.Reg16(cpu.BX)) != 0 {
		t.Fatalf("BH = %#x, want 0", hi(regs.Reg16(cpu.BX)))
	}
	if env.s.Snapshot().Width != 320 {
		t.Fatalf("host width = %d", env.s.Snapshot().Width)
	}
}

func TestSetUnknownModeSetsCarry(t *testing.T) {
	env := newEnv(t)
	regs := regsOf(0x0042, 0, 0, 0)
	if err := env.d.Handle(regs); !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("err = %v", err)
	}
	if !regs.Carry() || env.d.Adapter().State().Mode != 0x03 {
		t.Fatalf("carry=%v mode=%s", regs.Carry(), env.d.Adapter().State().Mode)
	}
}

func TestSetModeKeepBit(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	env.call(t, 0x0941, 0x001E, 1, 0)
	env.call(t, 0x0083, 0, 0, 0)
	regs := env.call(t, 0x0800, 0, 0, 0)
	if regs.Reg16(cpu.AX) != 0x1E41 {
		t.Fatalf("AX = %#04x, want 0x1E41", regs.Reg16(cpu.AX))
	}
}

func TestCursorPositionAndShape(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	env.call(t, 0x0100, 0, 0x0D0E, 0)
	env.call(t, 0x0200, 0x0000, 0, 0x050A)
	regs := env.call(t, 0x0300, 0, 0, 0)
	if regs.Reg16(cpu.CX) != 0x0D0E || regs.Reg16(cpu.DX) != 0x050A {
		t.Fatalf("CX=%#04x DX=%#04x", regs.Reg16(cpu.CX), regs.Reg16(cpu.DX))
	}

	page := regsOf(0x0200, 0x0100, 0, 0x0102)
	if err := env.d.Handle(page); !errors.Is(err, vga.ErrUnsupported) || !page.Carry() {
		t.Fatalf("page 1 err = %v carry = %v", err, page.Carry())
	}
	if cur := env.s.Snapshot().Cursor; cur.X != 10 || cur.Y != 5 {
		t.Fatalf("host cursor = %+v", cur)
	}
}

func TestWriteAndReadCharacter(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	env.call(t, 0x0200, 0, 0, 0x024E)
	env.call(t, 0x0941, 0x004F, 5, 0)
	for col := 0x4E; col < 0x4E+5; col++ {
		row, c := 2, col
		if c >= 80 {
			row, c = 3, col-80
		}
		env.call(t, 0x0200, 0, 0, uint16(row)<<8|uint16(c))
		regs := env.call(t, 0x0800, 0, 0, 0)
		if regs.Reg16(cpu.AX) != 0x4F41 {
			t.Fatalf("cell %d,%d AX = %#04x", c, row, regs.Reg16(cpu.AX))
		}
	}

	regs := regsOf(0x0800, 0x0200, 0, 0)
	if err := env.d.Handle(regs); !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("page 2 read err = %v", err)
	}
	if regs.Reg16(cpu.AX) != 0x0720 {
		t.Fatalf("page 2 AX = %#04x, want 0x0720", regs.Reg16(cpu.AX))
	}
}

func TestWriteCharOnlyKeepsAttribute(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	env.call(t, 0x0958, 0x0071, 1, 0)
	env.call(t, 0x0A59, 0x00FF, 1, 0)
	regs := env.call(t, 0x0800, 0, 0, 0)
	if regs.Reg16(cpu.AX) != 0x7159 {
		t.Fatalf("AX = %#04x, want 0x7159", regs.Reg16(cpu.AX))
	}
	if err := env.d.Handle(regsOf(0x0A59, 0x0100, 1, 0)); !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("page 1 write err = %v", err)
	}
}

func TestScrollClearWindow(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	env.call(t, 0x0958, 0x0007, 80*25, 0)
	env.call(t, 0x0600, 0x1F00, 0x0101, 0x0303)
	cell, _ := env.s.CellAt(2, 2)
	bg, _ := env.d.Adapter().Palette().ColorFor(1)
	if cell.Char != ' ' || cell.BG != bg {
		t.Fatalf("cell = %+v, want blank on %d", cell, bg)
	}
	if cell, _ := env.s.CellAt(0, 0); cell.Char != 'X' {
		t.Fatalf("outside cell = %q", cell.Char)
	}
}

func TestScrollInvertedWindowIsIgnored(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	regs := regsOf(0x0601, 0x0700, 0x0505, 0x0101)
	if err := env.d.Handle(regs); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if regs.Carry() {
		t.Fatalf("carry set for invalid geometry")
	}
}

func TestTeletypeAndWriteString(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0003, 0, 0, 0)
	for _, ch := range []byte("Hi") {
		env.call(t, 0x0E00|uint16(ch), 0, 0, 0)
	}
	if cur := env.d.Adapter().Cursor(0); cur.Col != 2 {
		t.Fatalf("cursor = %+v", cur)
	}

	cpu.StoreBytes(env.mem, cpu.Linear(0x1000, 0x0010), []byte("hello"))
	regs := regsOf(0x1301, 0x001A, 5, 0x0A03)
	regs.SetReg16(cpu.ES, 0x1000)
	regs.SetReg16(cpu.BP, 0x0010)
	if err := env.d.Handle(regs); err != nil {
		t.Fatalf("write string: %v", err)
	}
	ch, attr, _ := env.d.Adapter().CharAt(7, 10)
	if ch != 'o' || attr != 0x1A {
		t.Fatalf("cell = %q/%#x", ch, attr)
	}
	if cur := env.d.Adapter().Cursor(0); cur != (vga.Position{Col: 8, Row: 10}) {
		t.Fatalf("cursor = %+v", cur)
	}
}

func TestPixelFunctions(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0012, 0, 0, 0)
	env.call(t, 0x0C05, 0, 100, 50)
	env.call(t, 0x0C83, 0, 100, 50)
	regs := env.call(t, 0x0D00, 0, 100, 50)
	if lo(regs.Reg16(cpu.AX)) != 0x06 {
		t.Fatalf("pixel = %#x, want 0x06", lo(regs.Reg16(cpu.AX)))
	}
}

func TestBorderColor(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x0B00, 0x0002, 0, 0)
	if env.d.Adapter().State().BorderColor != 2 {
		t.Fatalf("border = %d", env.d.Adapter().State().BorderColor)
	}
	if !env.s.Initialized() {
		t.Fatalf("border call did not initialize the palette")
	}
	if err := env.d.Handle(regsOf(0x0B00, 0x0100, 0, 0)); !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("set palette err = %v", err)
	}
}

func TestPaletteAndDAC(t *testing.T) {
	env := newEnv(t)
	env.call(t, 0x1000, 0x2A03, 0, 0)
	regs := env.call(t, 0x1007, 0x0003, 0, 0)
	if hi(regs.Reg16(cpu.BX)) != 0x2A {
		t.Fatalf("palette reg = %#x", hi(regs.Reg16(cpu.BX)))
	}

	env.call(t, 0x1010, 0x0020, 0x0A0B, 0x0C00)
	regs = env.call(t, 0x1015, 0x0020, 0, 0)
	if regs.Reg16(cpu.CX) != 0x0A0B || hi(regs.Reg16(cpu.DX)) != 0x0C {
		t.Fatalf("DAC read CX=%#04x DH=%#x", regs.Reg16(cpu.CX), hi(regs.Reg16(cpu.DX)))
	}

	cpu.StoreBytes(env.mem, cpu.Linear(0x3000, 0), []byte{1, 2, 3, 4, 5, 6})
	block := regsOf(0x1012, 0x0040, 2, 0)
	block.SetReg16(cpu.ES, 0x3000)
	if err := env.d.Handle(block); err != nil {
		t.Fatalf("set block: %v", err)
	}
	read := regsOf(0x1017, 0x0040, 2, 0x0100)
	read.SetReg16(cpu.ES, 0x3000)
	if err := env.d.Handle(read); err != nil {
		t.Fatalf("read block: %v", err)
	}
	if got := cpu.LoadBytes(env.mem, cpu.Linear(0x3000, 0x0100), 6); !bytes.Equal(got, []byte{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("block = %v", got)
	}

	env.call(t, 0x1018, 0x000F, 0, 0)
	regs = env.call(t, 0x1019, 0, 0, 0)
	if lo(regs.Reg16(cpu.BX)) != 0x0F {
		t.Fatalf("PEL mask = %#x", lo(regs.Reg16(cpu.BX)))
	}
}

func TestAllPaletteRegisters(t *testing.T) {
	env := newEnv(t)
	src := make([]byte, 17)
	for i := range src {
		src[i] = byte(16 - i)
	}
	cpu.StoreBytes(env.mem, cpu.Linear(0x2000, 0), src)
	set := regsOf(0x1002, 0, 0, 0)
	set.SetReg16(cpu.ES, 0x2000)
	if err := env.d.Handle(set); err != nil {
		t.Fatalf("set all: %v", err)
	}
	get := regsOf(0x1009, 0, 0, 0x0040)
	get.SetReg16(cpu.ES, 0x2000)
	if err := env.d.Handle(get); err != nil {
		t.Fatalf("read all: %v", err)
	}
	if got := cpu.LoadBytes(env.mem, cpu.Linear(0x2000, 0x40), 17); !bytes.Equal(got, src) {
		t.Fatalf("registers = %v", got)
	}
	regs := env.call(t, 0x1008, 0, 0, 0)
	if hi(regs.Reg16(cpu.BX)) != 0 {
		t.Fatalf("overscan = %#x, want 0", hi(regs.Reg16(cpu.BX)))
	}
}

func TestAlternateFunctions(t *testing.T) {
	env := newEnv(t)
	regs := env.call(t, 0x1200, 0x0010, 0, 0)
	if regs.Reg16(cpu.BX) != 0x0003 || regs.Reg16(cpu.CX) != 0x0009 {
		t.Fatalf("EGA info BX=%#04x CX=%#04x", regs.Reg16(cpu.BX), regs.Reg16(cpu.CX))
	}
	regs = env.call(t, 0x1201, 0x0031, 0, 0)
	if lo(regs.Reg16(cpu.AX)) != 0x12 || env.d.Adapter().State().VGASettings&0x08 == 0 {
		t.Fatalf("palette loading AL=%#x settings=%#x", lo(regs.Reg16(cpu.AX)), env.d.Adapter().State().VGASettings)
	}
	env.call(t, 0x1200, 0x0031, 0, 0)
	if env.d.Adapter().State().VGASettings&0x08 != 0 {
		t.Fatalf("palette loading still disabled, settings=%#x", env.d.Adapter().State().VGASettings)
	}

	regs = env.call(t, 0x1201, 0x0034, 0, 0)
	if lo(regs.Reg16(cpu.AX)) != 0x12 || env.d.Adapter().State().ModeOptions&0x01 == 0 {
		t.Fatalf("cursor emulation disable: AL=%#x options=%#x", lo(regs.Reg16(cpu.AX)), env.d.Adapter().State().ModeOptions)
	}
	regs = env.call(t, 0x1200, 0x0010, 0, 0)
	if hi(regs.Reg16(cpu.BX)) != 0 || lo(regs.Reg16(cpu.BX)) != 0x03 {
		t.Fatalf("EGA info after option change BX=%#04x", regs.Reg16(cpu.BX))
	}
	env.call(t, 0x1200, 0x0034, 0, 0)
	if env.d.Adapter().State().ModeOptions&0x01 != 0 {
		t.Fatalf("cursor emulation not re-enabled, options=%#x", env.d.Adapter().State().ModeOptions)
	}
}

func TestAdapterQueries(t *testing.T) {
	env := newEnv(t)
	regs := env.call(t, 0x1A00, 0xFFFF, 0, 0)
	if regs.Reg16(cpu.AX) != 0x001A || regs.Reg16(cpu.BX) != 0x0008 {
		t.Fatalf("DCC AX=%#04x BX=%#04x", regs.Reg16(cpu.AX), regs.Reg16(cpu.BX))
	}
	regs = env.call(t, 0x1B00, 0, 0, 0)
	if lo(regs.Reg16(cpu.AX)) != 0x1B || regs.Reg16(cpu.ES) != 0xF000 || regs.Reg16(cpu.BX) != 0xE000 {
		t.Fatalf("state info AX=%#04x ES=%#04x BX=%#04x", regs.Reg16(cpu.AX), regs.Reg16(cpu.ES), regs.Reg16(cpu.BX))
	}
	regs = env.call(t, 0xEF00, 0, 0, 0)
	if regs.Reg16(cpu.DX) != 0xFFFF {
		t.Fatalf("DX = %#04x", regs.Reg16(cpu.DX))
	}
	regs = env.call(t, 0x0400, 0, 0, 0)
	if hi(regs.Reg16(cpu.AX)) != 0 {
		t.Fatalf("light pen AH = %#x", hi(regs.Reg16(cpu.AX)))
	}
	if err := env.d.Handle(regsOf(0x1C00, 0, 0, 0)); !errors.Is(err, vga.ErrUnsupported) {
		t.Fatalf("save/restore err = %v", err)
	}
}

func TestBlockCallsWithoutMemory(t *testing.T) {
	env := newEnv(t)
	d := New(env.d.Adapter(), Options{Logger: env.logger})
	regs := regsOf(0x1301, 0x0007, 3, 0)
	if err := d.Handle(regs); !errors.Is(err, vga.ErrNoMemory) {
		t.Fatalf("err = %v, want ErrNoMemory", err)
	}
	if !regs.Carry() {
		t.Fatalf("carry not set")
	}
}

type testEnv struct {
	d      *Dispatcher
	s      *memsurface.Surface
	mem    cpu.FlatMemory
	logs   *bytes.Buffer
	logger pslog.Logger
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	var buf bytes.Buffer
	logger := pslog.NewWithOptions(&buf, pslog.Options{
		Mode:             pslog.ModeStructured,
		DisableTimestamp: true,
		NoColor:          true,
	})
	s := memsurface.New()
	mem := cpu.NewFlatMemory(cpu.DefaultMemorySize)
	adapter := vga.NewAdapter(s, vga.Options{Logger: logger})
	d := New(adapter, Options{Memory: mem, Logger: logger})
	return &testEnv{d: d, s: s, mem: mem, logs: &buf, logger: logger}
}

func (e *testEnv) call(t *testing.T, ax, bx, cx, dx uint16) *cpu.Registers {
	t.Helper()
	regs := regsOf(ax, bx, cx, dx)
	if err := e.d.Handle(regs); err != nil {
		t.Fatalf("INT 10h AX=%#04x: %v", ax, err)
	}
	if regs.Carry() {
		t.Fatalf("INT 10h AX=%#04x set carry", ax)
	}
	return regs
}

func regsOf(ax, bx, cx, dx uint16) *cpu.Registers {
	regs := &cpu.Registers{}
	regs.SetReg16(cpu.AX, ax)
	regs.SetReg16(cpu.BX, bx)
	regs.SetReg16(cpu.CX, cx)
	regs.SetReg16(cpu.DX, dx)
	return regs
}

func lo(v uint16) uint8 { return uint8(v) }
func hi(v uint16) uint8 { return uint8(v >> 8) }
