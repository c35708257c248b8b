package cpu

// Reg names a 16-bit register of the guest register file.
type Reg uint8

// Registers visible to BIOS services.
const (
	AX Reg = iota
	BX
	CX
	DX
	SI
	DI
	BP
	ES
	numRegs
)

var regNames = [numRegs]string{"AX", "BX", "CX", "DX", "SI", "DI", "BP", "ES"}

func (r Reg) String() string {
	if r >= numRegs {
		return "??"
	}
	return regNames[r]
}

// RegisterFile is the register context of a trapped interrupt. The CPU
// emulator owns it; BIOS services read inputs from it and write results back.
type RegisterFile interface {
	Reg16(r Reg) uint16
	SetReg16(r Reg, v uint16)
	Carry() bool
	SetCarry(v bool)
}

// Registers is a plain RegisterFile, used by scripts and tests.
type Registers struct {
	regs  [numRegs]uint16
	carry bool
}

// Reg16 returns the value of r.
func (r *Registers) Reg16(reg Reg) uint16 {
	if reg >= numRegs {
		return 0
	}
	return r.regs[reg]
}

// SetReg16 stores v into r.
func (r *Registers) SetReg16(reg Reg, v uint16) {
	if reg >= numRegs {
		return
	}
	r.regs[reg] = v
}

// Carry reports the carry flag.
func (r *Registers) Carry() bool {
	return r.carry
}

// SetCarry updates the carry flag.
func (r *Registers) SetCarry(v bool) {
	r.carry = v
}

// View adds 8-bit half accessors on top of a RegisterFile.
type View struct {
	RegisterFile
}

func (v View) AX() uint16 { return v.Reg16(AX) }
func (v View) BX() uint16 { return v.Reg16(BX) }
func (v View) CX() uint16 { return v.Reg16(CX) }
func (v View) DX() uint16 { return v.Reg16(DX) }
func (v View) DI() uint16 { return v.Reg16(DI) }
func (v View) BP() uint16 { return v.Reg16(BP) }
func (v View) ES() uint16 { return v.Reg16(ES) }

func (v View) SetAX(x uint16) { v.SetReg16(AX, x) }
func (v View) SetBX(x uint16) { v.SetReg16(BX, x) }
func (v View) SetCX(x uint16) { v.SetReg16(CX, x) }
func (v View) SetDX(x uint16) { v.SetReg16(DX, x) }
func (v View) SetDI(x uint16) { v.SetReg16(DI, x) }
func (v View) SetBP(x uint16) { v.SetReg16(BP, x) }
func (v View) SetES(x uint16) { v.SetReg16(ES, x) }

func (v View) AL() byte { return lo(v.Reg16(AX)) }
func (v View) AH() byte { return hi(v.Reg16(AX)) }
func (v View) BL() byte { return lo(v.Reg16(BX)) }
func (v View) BH() byte { return hi(v.Reg16(BX)) }
func (v View) CL() byte { return lo(v.Reg16(CX)) }
func (v View) CH() byte { return hi(v.Reg16(CX)) }
func (v View) DL() byte { return lo(v.Reg16(DX)) }
func (v View) DH() byte { return hi(v.Reg16(DX)) }

func (v View) SetAL(b byte) { v.setLo(AX, b) }
func (v View) SetAH(b byte) { v.setHi(AX, b) }
func (v View) SetBL(b byte) { v.setLo(BX, b) }
func (v View) SetBH(b byte) { v.setHi(BX, b) }
func (v View) SetCL(b byte) { v.setLo(CX, b) }
func (v View) SetCH(b byte) { v.setHi(CX, b) }
func (v View) SetDL(b byte) { v.setLo(DX, b) }
func (v View) SetDH(b byte) { v.setHi(DX, b) }

func (v View) setLo(r Reg, b byte) {
	v.SetReg16(r, v.Reg16(r)&0xFF00|uint16(b))
}

func (v View) setHi(r Reg, b byte) {
	v.SetReg16(r, v.Reg16(r)&0x00FF|uint16(b)<<8)
}

func lo(v uint16) byte { return byte(v & 0xFF) }
func hi(v uint16) byte { return byte(v >> 8) }
