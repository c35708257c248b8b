package script

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/pslog"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/display/memsurface"
	"pkt.systems/vgabios/internal/int10"
	"pkt.systems/vgabios/internal/vga"
)

func TestYAMLScriptWritesText(t *testing.T) {
	r, a := newRunner(t)
	script := `
calls:
  - name: set mode
    ax: 0x0003
  - text: "OK Ω"
  - name: cursor
    ax: 0x0300
`
	if err := r.RunYAML(context.Background(), []byte(script)); err != nil {
		t.Fatalf("RunYAML: %v", err)
	}
	want := []byte{'O', 'K', ' ', 0xEA}
	for i, ch := range want {
		got, attr, err := a.CharAt(i, 0)
		if err != nil || got != ch || attr != 0x07 {
			t.Fatalf("cell %d = %#02x/%#02x (%v), want %#02x/0x07", i, got, attr, err, ch)
		}
	}
	results := r.Results()
	last := results[len(results)-1]
	if last.Name != "cursor" || last.Out.Reg16(cpu.DX) != 0x0004 {
		t.Fatalf("last result = %s DX=%#04x", last.Name, last.Out.Reg16(cpu.DX))
	}
}

func TestYAMLPokeFeedsWriteString(t *testing.T) {
	r, a := newRunner(t)
	script := `
calls:
  - ax: 0x0003
  - name: stage
    poke:
      addr: 0x20000
      text: "Hi"
  - name: write string
    ax: 0x1301
    bx: 0x001E
    cx: 2
    dx: 0x0105
    es: 0x2000
    bp: 0
`
	if err := r.RunYAML(context.Background(), []byte(script)); err != nil {
		t.Fatalf("RunYAML: %v", err)
	}
	if n := len(r.Results()); n != 2 {
		t.Fatalf("results = %d, want 2 (poke-only step issues no call)", n)
	}
	if ch, attr, _ := a.CharAt(5, 1); ch != 'H' || attr != 0x1E {
		t.Fatalf("cell = %q/%#02x", ch, attr)
	}
	if pos := a.Cursor(0); pos != (vga.Position{Col: 7, Row: 1}) {
		t.Fatalf("cursor = %+v", pos)
	}
}

func TestYAMLCallFailureIsRecorded(t *testing.T) {
	r, _ := newRunner(t)
	if err := r.RunYAML(context.Background(), []byte("calls:\n  - name: bogus\n    ax: 0x9900\n")); err != nil {
		t.Fatalf("RunYAML: %v", err)
	}
	res := r.Results()[0]
	if !errors.Is(res.Err, vga.ErrUnsupported) || !res.Out.Carry() {
		t.Fatalf("result = %+v", res)
	}
}

func TestParseYAMLRejectsBadScripts(t *testing.T) {
	if _, err := ParseYAML([]byte("calls:\n  - axx: 1\n")); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := ParseYAML([]byte("calls:\n  - poke: {addr: 0, bytes: [300]}\n")); err == nil {
		t.Fatalf("expected error for out of range byte")
	}
	doc, err := ParseYAML(nil)
	if err != nil || len(doc.Calls) != 0 {
		t.Fatalf("empty script = %+v, %v", doc, err)
	}
}

func TestLuaScriptDrivesPixels(t *testing.T) {
	r, a := newRunner(t)
	src := `
int10(0x0013)
int10(0x0C0F, 0, 10, 20)
local ax, bx, cx, dx, es, di, bp, carry = int10(0x0D00, 0, 10, 20)
if ax % 256 ~= 15 then error("pixel read " .. ax) end
if carry then error("carry set") end
poke(0x30000, 1, 2, "A")
if peek(0x30002) ~= 65 then error("peek") end
`
	if err := r.RunLua(context.Background(), "pixels.lua", src); err != nil {
		t.Fatalf("RunLua: %v", err)
	}
	if a.State().Mode != 0x13 {
		t.Fatalf("mode = %s", a.State().Mode)
	}
	if v, err := a.Pixel(10, 20); err != nil || v != 15 {
		t.Fatalf("pixel = %d, %v", v, err)
	}
}

func TestLuaPrintText(t *testing.T) {
	r, a := newRunner(t)
	if err := r.RunLua(context.Background(), "text.lua", `int10(3) print_text("OK", 0x1F)`); err != nil {
		t.Fatalf("RunLua: %v", err)
	}
	for i, ch := range []byte("OK") {
		if got, attr, _ := a.CharAt(i, 0); got != ch || attr != 0x1F {
			t.Fatalf("cell %d = %q/%#02x", i, got, attr)
		}
	}
}

func TestLuaErrors(t *testing.T) {
	r, _ := newRunner(t)
	if err := r.RunLua(context.Background(), "bad.lua", "int10("); err == nil {
		t.Fatalf("expected syntax error")
	}
	err := r.RunLua(context.Background(), "poke.lua", "poke(0, 300)")
	if err == nil || !strings.Contains(err.Error(), "byte out of range") {
		t.Fatalf("err = %v", err)
	}
	if err := r.RunLua(context.Background(), "os.lua", "os.exit(1)"); err == nil {
		t.Fatalf("expected os library to be unavailable")
	}
}

func TestLuaHonoursContext(t *testing.T) {
	r, _ := newRunner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.RunLua(ctx, "loop.lua", "while true do end"); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

func TestRunFileByExtension(t *testing.T) {
	r, a := newRunner(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "mode.yml")
	if err := os.WriteFile(path, []byte("calls:\n  - ax: 0x0001\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := r.RunFile(context.Background(), path); err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if st := a.State(); st.Mode != 0x01 || st.Columns != 40 {
		t.Fatalf("state = %s %dx%d", st.Mode, st.Columns, st.Rows)
	}

	other := filepath.Join(dir, "calls.txt")
	if err := os.WriteFile(other, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := r.RunFile(context.Background(), other); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
}

func TestObserveSeesEveryCall(t *testing.T) {
	_, a := newRunner(t)
	mem := cpu.NewFlatMemory(0)
	d := int10.New(a, int10.Options{Memory: mem, Logger: pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})})
	var seen []uint16
	r := New(d, mem, Options{Observe: func(res Result) { seen = append(seen, res.In.Reg16(cpu.AX)) }})
	if err := r.RunYAML(context.Background(), []byte("calls:\n  - ax: 3\n  - text: hi\n")); err != nil {
		t.Fatalf("RunYAML: %v", err)
	}
	want := []uint16{0x0003, 0x0300, 0x1301}
	if len(seen) != len(want) {
		t.Fatalf("seen = %#x, want %#x", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %#x, want %#x", seen, want)
		}
	}
}

func newRunner(t *testing.T) (*Runner, *vga.Adapter) {
	t.Helper()
	var buf bytes.Buffer
	logger := pslog.NewWithOptions(&buf, pslog.Options{Mode: pslog.ModeStructured, DisableTimestamp: true, NoColor: true})
	a := vga.NewAdapter(memsurface.New(), vga.Options{Logger: logger})
	mem := cpu.NewFlatMemory(0)
	d := int10.New(a, int10.Options{Memory: mem, Logger: logger})
	return New(d, mem, Options{Logger: logger}), a
}
