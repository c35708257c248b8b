// Package int10 implements the video BIOS interrupt (INT 10h) on top of the
// virtual VGA adapter. Each trapped interrupt is decoded from the register
// file and routed through lookup tables; functions that are not implemented
// are reported and never touch adapter state.
package int10

import (
	"errors"
	"fmt"

	"pkt.systems/pslog"
	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/vga"
)

// VESAMarker in AL selects the VBE table, with the sub-function in AH.
const VESAMarker = 0x4F

// DefaultVideoMemoryKB is the video memory reported by the VBE info block.
const DefaultVideoMemoryKB = 16384

// Handler implements one video function.
type Handler func(d *Dispatcher, r cpu.View) error

// Function describes a table entry. Entries either carry a Handler or fan out
// to a sub-function Table keyed by Sub.
type Function struct {
	// Desc is the human-readable name used in logs.
	Desc    string
	Handler Handler

	Sub   func(r cpu.View) uint8
	Table map[uint8]Function
}

// Options configures a Dispatcher.
type Options struct {
	// Memory is guest memory for block transfers (VBE info blocks, palette
	// tables, strings). Without it those functions fail with
	// vga.ErrNoMemory.
	Memory        cpu.Memory
	VideoMemoryKB int
	Logger        pslog.Logger
}

// Dispatcher decodes INT 10h calls.
type Dispatcher struct {
	adapter *vga.Adapter
	memory  cpu.Memory
	logger  pslog.Logger
	videoKB int

	Legacy map[uint8]Function
	VBE    map[uint8]Function
}

// New returns a dispatcher for adapter.
func New(adapter *vga.Adapter, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = pslog.LoggerFromEnv()
	}
	if opts.VideoMemoryKB <= 0 {
		opts.VideoMemoryKB = DefaultVideoMemoryKB
	}
	return &Dispatcher{
		adapter: adapter,
		memory:  opts.Memory,
		logger:  opts.Logger,
		videoKB: opts.VideoMemoryKB,
		Legacy:  legacyTable(),
		VBE:     vbeTable(),
	}
}

// Adapter returns the adapter behind the dispatcher.
func (d *Dispatcher) Adapter() *vga.Adapter {
	return d.adapter
}

// Handle services one interrupt. The returned error describes the outcome
// for observability: unsupported functions, invalid geometry and host
// failures are all non-fatal and already reflected in the register file
// (carry flag on the legacy path, AH status on the VBE path).
//
// The first interrupt allocates the legacy palette, whatever the function.
// A failed allocation fails the call as a host error and is retried on the
// next interrupt.
func (d *Dispatcher) Handle(regs cpu.RegisterFile) error {
	r := cpu.View{RegisterFile: regs}
	initErr := d.adapter.EnsurePalette()
	switch {
	case r.AL() == VESAMarker:
		return d.handleVBE(r, r.AH(), initErr)
	case r.AH() == 0x4F:
		return d.handleVBE(r, r.AL(), initErr)
	default:
		return d.handleLegacy(r, initErr)
	}
}

func (d *Dispatcher) handleLegacy(r cpu.View, initErr error) error {
	ah := r.AH()
	fields := []any{"ah", hex8(ah), "al", hex8(r.AL())}
	err := initErr
	if err == nil {
		err = d.dispatch(r, d.Legacy, ah, &fields)
	}
	switch {
	case err == nil:
		d.logger.Debug("video call", fields...)
		return nil
	case errors.Is(err, vga.ErrInvalidGeometry):
		d.logger.Debug("video call ignored", append(fields, "err", err)...)
		return nil
	case errors.Is(err, vga.ErrUnsupported):
		d.logger.Warn("unsupported video function", append(fields, "err", err)...)
	default:
		d.logger.Error("video call failed", append(fields, "err", err)...)
	}
	r.SetCarry(true)
	return err
}

func (d *Dispatcher) handleVBE(r cpu.View, sub uint8, initErr error) error {
	fields := []any{"ah", hex8(r.AH()), "al", hex8(r.AL()), "vbe", hex8(sub)}
	err := initErr
	switch {
	case err != nil:
	case !d.adapter.State().VESAEnabled && sub != vbeToggle:
		err = fmt.Errorf("%w: VBE disabled", vga.ErrUnsupported)
	default:
		err = d.dispatch(r, d.VBE, sub, &fields)
	}
	r.SetAL(VESAMarker)
	if err == nil {
		r.SetAH(0x00)
		d.logger.Debug("vbe call", fields...)
		return nil
	}
	r.SetAH(0x01)
	if errors.Is(err, vga.ErrUnsupported) {
		d.logger.Warn("unsupported vbe function", append(fields, "err", err)...)
	} else {
		d.logger.Error("vbe call failed", append(fields, "err", err)...)
	}
	return err
}

// dispatch resolves key in table, following sub-function tables, and runs
// the handler. fields collects the log context of the resolved entry.
func (d *Dispatcher) dispatch(r cpu.View, table map[uint8]Function, key uint8, fields *[]any) error {
	fn, ok := table[key]
	if !ok {
		return fmt.Errorf("%w: function 0x%02X", vga.ErrUnsupported, key)
	}
	*fields = append(*fields, "desc", fn.Desc)
	if fn.Handler != nil {
		return fn.Handler(d, r)
	}
	if fn.Sub == nil {
		return fmt.Errorf("%w: %s", vga.ErrUnsupported, fn.Desc)
	}
	sub := fn.Sub(r)
	*fields = append(*fields, "sub", hex8(sub))
	entry, ok := fn.Table[sub]
	if !ok {
		return fmt.Errorf("%w: %s sub-function 0x%02X", vga.ErrUnsupported, fn.Desc, sub)
	}
	*fields = append(*fields, "sub_desc", entry.Desc)
	if entry.Handler == nil {
		return fmt.Errorf("%w: %s", vga.ErrUnsupported, entry.Desc)
	}
	return entry.Handler(d, r)
}

func (d *Dispatcher) mem() (cpu.Memory, error) {
	if d.memory == nil {
		return nil, vga.ErrNoMemory
	}
	return d.memory, nil
}

// unsupported names a function that is not implemented.
func unsupported(desc string) Function {
	return Function{Desc: desc}
}

func hex8(v uint8) string {
	return fmt.Sprintf("0x%02X", v)
}

func selectAL(r cpu.View) uint8 { return r.AL() }
func selectBL(r cpu.View) uint8 { return r.BL() }
func selectBH(r cpu.View) uint8 { return r.BH() }
