// Package script drives the INT 10h dispatcher from call scripts, either
// YAML documents listing register sets or Lua programs.
package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/int10"
)

// DefaultScratchSegment is the guest segment text writes are staged in.
const DefaultScratchSegment = 0x9000

// textChunk bounds a single AH=13h write.
const textChunk = 0x1000

// Options configures a Runner.
type Options struct {
	// ScratchSegment is where text is staged before AH=13h. Zero uses
	// DefaultScratchSegment.
	ScratchSegment uint16
	// Observe, when set, runs after every call.
	Observe func(Result)
	Logger  pslog.Logger
}

// Result is the outcome of one interrupt call.
type Result struct {
	Name string
	In   cpu.Registers
	Out  cpu.Registers
	Err  error
}

// Runner executes calls against a dispatcher and records their results.
// Call failures are recorded, not returned: a BIOS call that fails is part of
// the script's observable behaviour.
type Runner struct {
	d       *int10.Dispatcher
	mem     cpu.Memory
	scratch uint16
	observe func(Result)
	logger  pslog.Logger
	results []Result
}

// New returns a Runner. mem backs poke/peek and staged text; it should be
// the memory the dispatcher was built with.
func New(d *int10.Dispatcher, mem cpu.Memory, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = pslog.LoggerFromEnv()
	}
	if opts.ScratchSegment == 0 {
		opts.ScratchSegment = DefaultScratchSegment
	}
	return &Runner{d: d, mem: mem, scratch: opts.ScratchSegment, observe: opts.Observe, logger: opts.Logger}
}

// Results returns the calls executed so far.
func (r *Runner) Results() []Result {
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Dispatcher returns the dispatcher the runner drives.
func (r *Runner) Dispatcher() *int10.Dispatcher {
	return r.d
}

// Call issues one interrupt with the given registers.
func (r *Runner) Call(name string, in cpu.Registers) Result {
	out := in
	err := r.d.Handle(&out)
	res := Result{Name: name, In: in, Out: out, Err: err}
	r.results = append(r.results, res)
	if name != "" {
		r.logger.Debug("script call", "name", name, "ax", fmt.Sprintf("0x%04X", in.Reg16(cpu.AX)), "carry", out.Carry())
	}
	if r.observe != nil {
		r.observe(res)
	}
	return res
}

// Text writes CP437 bytes at the page 0 cursor with teletype semantics and
// advances the cursor. The bytes go through AH=13h so characters that look
// like the VBE marker in AL are not misrouted.
func (r *Runner) Text(data []byte, attr uint8) error {
	if r.mem == nil {
		return fmt.Errorf("text write needs guest memory")
	}
	for len(data) > 0 {
		n := min(len(data), textChunk)
		chunk := data[:n]
		data = data[n:]

		var q cpu.Registers
		q.SetReg16(cpu.AX, 0x0300)
		cur := r.Call("", q)
		if cur.Err != nil {
			return cur.Err
		}

		cpu.StoreBytes(r.mem, cpu.Linear(r.scratch, 0), chunk)
		var w cpu.Registers
		w.SetReg16(cpu.AX, 0x1301)
		w.SetReg16(cpu.BX, uint16(attr))
		w.SetReg16(cpu.CX, uint16(n))
		w.SetReg16(cpu.DX, cur.Out.Reg16(cpu.DX))
		w.SetReg16(cpu.ES, r.scratch)
		w.SetReg16(cpu.BP, 0)
		if res := r.Call("", w); res.Err != nil {
			return res.Err
		}
	}
	return nil
}

// Poke copies bytes into guest memory.
func (r *Runner) Poke(addr uint32, data []byte) error {
	if r.mem == nil {
		return fmt.Errorf("poke needs guest memory")
	}
	cpu.StoreBytes(r.mem, addr, data)
	return nil
}

// Peek reads a guest memory byte. Without memory it reads zero.
func (r *Runner) Peek(addr uint32) byte {
	if r.mem == nil {
		return 0
	}
	return r.mem.Load8(addr)
}

// RunFile executes a script, choosing the format by file extension.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".lua":
		return r.RunLua(ctx, filepath.Base(path), string(data))
	case ".yaml", ".yml":
		return r.RunYAML(ctx, data)
	default:
		return fmt.Errorf("unknown script type %q (want .yaml, .yml or .lua)", filepath.Ext(path))
	}
}
