package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/render"
)

// luaRegs is the argument and return order of int10().
var luaRegs = []cpu.Reg{cpu.AX, cpu.BX, cpu.CX, cpu.DX, cpu.ES, cpu.DI, cpu.BP}

// RunLua executes a Lua program. The program sees these globals besides the
// base, table, string and math libraries:
//
//	int10(ax, bx, cx, dx [, es, di, bp]) -> ax, bx, cx, dx, es, di, bp, carry
//	poke(addr, byte-or-string...)
//	peek(addr) -> byte
//	print_text(s [, attr])
func (r *Runner) RunLua(ctx context.Context, name, src string) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return fmt.Errorf("lua %s: open %s: %w", name, lib.name, err)
		}
	}
	L.SetContext(ctx)

	call := 0
	L.SetGlobal("int10", L.NewFunction(func(L *lua.LState) int {
		var in cpu.Registers
		in.SetReg16(cpu.AX, luaWord(L, 1, false))
		for i, reg := range luaRegs[1:] {
			in.SetReg16(reg, luaWord(L, i+2, true))
		}
		res := r.Call(fmt.Sprintf("%s:%d", name, call), in)
		call++
		for _, reg := range luaRegs {
			L.Push(lua.LNumber(res.Out.Reg16(reg)))
		}
		L.Push(lua.LBool(res.Out.Carry()))
		return len(luaRegs) + 1
	}))
	L.SetGlobal("poke", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		var data []byte
		for i := 2; i <= L.GetTop(); i++ {
			switch v := L.Get(i).(type) {
			case lua.LString:
				data = append(data, render.Encode(string(v))...)
			case lua.LNumber:
				if v < 0 || v > 0xFF {
					L.ArgError(i, "byte out of range")
				}
				data = append(data, byte(v))
			default:
				L.ArgError(i, "byte or string expected")
			}
		}
		if err := r.Poke(addr, data); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}))
	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(r.Peek(uint32(L.CheckInt64(1)))))
		return 1
	}))
	L.SetGlobal("print_text", L.NewFunction(func(L *lua.LState) int {
		s := L.CheckString(1)
		attr := L.OptInt(2, defaultTextAttr)
		if err := r.Text(render.Encode(s), uint8(attr)); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}))

	if err := L.DoString(src); err != nil {
		return fmt.Errorf("lua %s: %w", name, err)
	}
	return nil
}

func luaWord(L *lua.LState, n int, optional bool) uint16 {
	var v int
	if optional {
		v = L.OptInt(n, 0)
	} else {
		v = L.CheckInt(n)
	}
	if v < 0 || v > 0xFFFF {
		L.ArgError(n, "register value out of range")
	}
	return uint16(v)
}
