// Package vgabios emulates the video BIOS (INT 10h) of a VGA/VBE 2.0 adapter
// on top of a host display surface.
package vgabios

import (
	"errors"
	"fmt"

	"pkt.systems/pslog"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/display"
	"pkt.systems/vgabios/internal/display/memsurface"
	"pkt.systems/vgabios/internal/int10"
	"pkt.systems/vgabios/internal/protocol"
	"pkt.systems/vgabios/internal/vga"
)

// Surface is the host display a BIOS drives.
type Surface = display.Surface

// Snapshot captures the host display.
type Snapshot = display.Snapshot

// RegisterFile is the register context of a trapped interrupt.
type RegisterFile = cpu.RegisterFile

// Registers is a plain RegisterFile.
type Registers = cpu.Registers

// Reg names a 16-bit guest register.
type Reg = cpu.Reg

// Registers visible to BIOS services.
const (
	AX = cpu.AX
	BX = cpu.BX
	CX = cpu.CX
	DX = cpu.DX
	SI = cpu.SI
	DI = cpu.DI
	BP = cpu.BP
	ES = cpu.ES
)

// Memory is guest memory addressed linearly.
type Memory = cpu.Memory

// ModeID identifies a video mode.
type ModeID = vga.ModeID

// ModeDescriptor describes a video mode.
type ModeDescriptor = vga.ModeDescriptor

// State is the observable video state.
type State = vga.State

// Frame is a saved screen capture.
type Frame = protocol.Frame

// Error taxonomy of BIOS calls.
var (
	ErrUnsupported     = vga.ErrUnsupported
	ErrInvalidGeometry = vga.ErrInvalidGeometry
	ErrHostSurface     = vga.ErrHostSurface
	ErrNoMemory        = vga.ErrNoMemory
)

// Options configures New.
type Options struct {
	// Surface is the host display. Nil uses an in-memory surface, which
	// makes Snapshot available.
	Surface Surface
	// Memory backs block calls. Nil allocates MemoryKB of flat memory.
	Memory   Memory
	MemoryKB int
	// VideoMemoryKB is reported by VBE function 0x00.
	VideoMemoryKB int
	// InitialMode is set during New. Negative leaves the adapter in its reset
	// state without touching the surface.
	InitialMode int
	DisableVESA bool
	Logger      pslog.Logger
}

// BIOS is a video BIOS instance: adapter state plus the INT 10h dispatcher.
type BIOS struct {
	adapter    *vga.Adapter
	dispatcher *int10.Dispatcher
	memory     Memory
	mem        *memsurface.Surface
	logger     pslog.Logger
}

// New builds a BIOS and sets the initial mode.
func New(opts Options) (*BIOS, error) {
	if opts.Logger == nil {
		opts.Logger = pslog.LoggerFromEnv()
	}
	b := &BIOS{logger: opts.Logger}

	surface := opts.Surface
	if surface == nil {
		b.mem = memsurface.New()
		surface = b.mem
	}
	b.memory = opts.Memory
	if b.memory == nil {
		b.memory = cpu.NewFlatMemory(opts.MemoryKB * 1024)
	}
	b.adapter = vga.NewAdapter(surface, vga.Options{Logger: opts.Logger.With("component", "vga")})
	b.dispatcher = int10.New(b.adapter, int10.Options{
		Memory:        b.memory,
		VideoMemoryKB: opts.VideoMemoryKB,
		Logger:        opts.Logger.With("component", "int10"),
	})
	if opts.DisableVESA {
		b.adapter.SetVESAEnabled(false)
	}
	if opts.InitialMode >= 0 {
		if _, err := b.adapter.SetMode(vga.ModeID(opts.InitialMode), true); err != nil {
			return nil, fmt.Errorf("initial mode %#x: %w", opts.InitialMode, err)
		}
	}
	return b, nil
}

// NewFromConfig builds a BIOS on an in-memory surface from cfg.
func NewFromConfig(cfg Config, logger pslog.Logger) (*BIOS, error) {
	return New(Options{
		MemoryKB:      cfg.Video.MemoryKB,
		VideoMemoryKB: cfg.Video.VideoMemoryKB,
		InitialMode:   cfg.Video.InitialMode,
		DisableVESA:   !cfg.Video.VESA,
		Logger:        logger,
	})
}

// Interrupt services one INT 10h call. The returned error reports the
// outcome; the register file already reflects it (carry or AH status).
func (b *BIOS) Interrupt(regs RegisterFile) error {
	return b.dispatcher.Handle(regs)
}

// Dispatcher exposes the INT 10h dispatcher.
func (b *BIOS) Dispatcher() *int10.Dispatcher {
	return b.dispatcher
}

// Memory returns guest memory.
func (b *BIOS) Memory() Memory {
	return b.memory
}

// State returns a copy of the video state.
func (b *BIOS) State() State {
	return b.adapter.State()
}

// Mode returns the current mode descriptor.
func (b *BIOS) Mode() ModeDescriptor {
	return b.adapter.Mode()
}

// SetMode switches video mode directly, as INT 10h AH=00h or VBE 02h do.
func (b *BIOS) SetMode(id ModeID, clear bool) error {
	_, err := b.adapter.SetMode(id, clear)
	return err
}

// Snapshot captures the in-memory surface. It reports false when the BIOS
// drives a caller-supplied surface.
func (b *BIOS) Snapshot() (Snapshot, bool) {
	if b.mem == nil {
		return Snapshot{}, false
	}
	return b.mem.Snapshot(), true
}

// Frame captures the screen together with the current mode.
func (b *BIOS) Frame() (Frame, error) {
	snap, ok := b.Snapshot()
	if !ok {
		return Frame{}, errors.New("frame capture needs the in-memory surface")
	}
	mode := b.adapter.Mode()
	return protocol.NewFrame(uint16(mode.ID), mode.Name, snap), nil
}

// Modes lists every supported mode in id order.
func Modes() []ModeDescriptor {
	return vga.Modes()
}

// MarshalFrame encodes a frame in its protobuf wire form.
func MarshalFrame(f Frame) []byte {
	return protocol.MarshalFrame(f)
}

// UnmarshalFrame decodes a frame written by MarshalFrame.
func UnmarshalFrame(data []byte) (Frame, error) {
	return protocol.UnmarshalFrame(data)
}
