package vgabios

import (
	"errors"
	"io"
	"testing"

	"pkt.systems/pslog"

	"pkt.systems/vgabios/internal/display"
	"pkt.systems/vgabios/internal/display/memsurface"
)

func TestNewSetsInitialMode(t *testing.T) {
	bios, err := New(Options{InitialMode: 0x13, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := bios.State(); st.Mode != 0x13 {
		t.Fatalf("mode = %s, want 0x13", st.Mode)
	}
	snap, ok := bios.Snapshot()
	if !ok || snap.Kind != display.KindGraphics || snap.Width != 320 || snap.Height != 200 {
		t.Fatalf("snapshot = %v %s %dx%d", ok, snap.Kind, snap.Width, snap.Height)
	}
}

func TestNewRejectsUnknownInitialMode(t *testing.T) {
	if _, err := New(Options{InitialMode: 0x55, Logger: testLogger()}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
}

func TestInterruptTeletype(t *testing.T) {
	bios, err := New(Options{InitialMode: DefaultInitialMode, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var regs Registers
	regs.SetReg16(AX, 0x0E41)
	if err := bios.Interrupt(&regs); err != nil {
		t.Fatalf("Interrupt: %v", err)
	}
	snap, _ := bios.Snapshot()
	cell, err := snap.CellAt(0, 0)
	if err != nil || cell.Char != 'A' {
		t.Fatalf("cell = %+v, %v", cell, err)
	}
	if snap.Cursor != (display.Cursor{X: 1, Y: 0}) {
		t.Fatalf("cursor = %+v", snap.Cursor)
	}
}

func TestExternalSurfaceHasNoSnapshot(t *testing.T) {
	s := memsurface.New()
	bios, err := New(Options{Surface: s, InitialMode: -1, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Initialized() {
		t.Fatalf("surface initialized before any mode set")
	}
	if _, ok := bios.Snapshot(); ok {
		t.Fatalf("Snapshot should be unavailable for caller surfaces")
	}
	if _, err := bios.Frame(); err == nil {
		t.Fatalf("expected error from Frame")
	}
}

func TestDisableVESA(t *testing.T) {
	bios, err := New(Options{InitialMode: 3, DisableVESA: true, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var regs Registers
	regs.SetReg16(AX, 0x4F02)
	regs.SetReg16(BX, 0x0101)
	if err := bios.Interrupt(&regs); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if bios.State().Mode != 0x03 {
		t.Fatalf("mode changed to %s", bios.State().Mode)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	bios, err := New(Options{InitialMode: 0x03, Logger: testLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, err := bios.Frame()
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	got, err := UnmarshalFrame(MarshalFrame(f))
	if err != nil {
		t.Fatalf("UnmarshalFrame: %v", err)
	}
	if got.Mode != 0x03 || got.Snapshot.Cols != 80 || got.Snapshot.Rows != 25 {
		t.Fatalf("frame = mode %#x %dx%d", got.Mode, got.Snapshot.Cols, got.Snapshot.Rows)
	}
}

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, DisableTimestamp: true, NoColor: true})
}
