package int10

import (
	"pkt.systems/vgabios/internal/cpu"
	"pkt.systems/vgabios/internal/vga"
)

// VbeInfoBlock layout.
const (
	InfoBlockSize = 512

	infoSignature    = 0x00
	infoVersion      = 0x04
	infoOEMString    = 0x06
	infoCapabilities = 0x0A
	infoModeList     = 0x0E
	infoTotalMemory  = 0x12

	// The mode list and OEM string live in the reserved tail of the block.
	infoModeListData = 0x100
	infoOEMData      = 0x1C0

	vbeVersion      = 0x0200
	vbeCapabilities = 0xFFFFFFFD
	vbeOEM          = "vgabios VBE 2.0"
)

// ModeInfoBlock layout.
const (
	ModeInfoSize = 256

	miAttributes  = 0x00
	miWinAAttrs   = 0x02
	miGranularity = 0x04
	miWinSize     = 0x06
	miWinASegment = 0x08
	miPitch       = 0x10
	miXRes        = 0x12
	miYRes        = 0x14
	miXCharSize   = 0x16
	miYCharSize   = 0x17
	miPlanes      = 0x18
	miBPP         = 0x19
	miBanks       = 0x1A
	miMemoryModel = 0x1B
	miImagePages  = 0x1D
	miReserved    = 0x1E
	miRedMask     = 0x1F
)

// Mode attribute bits.
const (
	modeSupported = 1 << 0
	modeExtInfo   = 1 << 1
	modeTTY       = 1 << 2
	modeColor     = 1 << 3
	modeGraphics  = 1 << 4
)

// Memory models.
const (
	modelText   = 0x00
	modelPlanar = 0x03
	modelPacked = 0x04
	modelDirect = 0x06
)

func writeInfoBlock(m cpu.Memory, seg, off uint16, videoKB int, modes []vga.ModeDescriptor) {
	base := cpu.Linear(seg, off)
	cpu.StoreBytes(m, base, make([]byte, InfoBlockSize))
	cpu.StoreBytes(m, base+infoSignature, []byte("VESA"))
	cpu.Store16(m, base+infoVersion, vbeVersion)
	cpu.Store32(m, base+infoOEMString, farPointerAt(seg, off, infoOEMData))
	cpu.Store32(m, base+infoCapabilities, vbeCapabilities)
	cpu.Store32(m, base+infoModeList, farPointerAt(seg, off, infoModeListData))
	cpu.Store16(m, base+infoTotalMemory, uint16(videoKB/64))

	addr := base + infoModeListData
	for _, mode := range modes {
		cpu.Store16(m, addr, uint16(mode.ID))
		addr += 2
	}
	cpu.Store16(m, addr, 0xFFFF)
	cpu.StoreBytes(m, base+infoOEMData, append([]byte(vbeOEM), 0))
}

// farPointerAt returns a far pointer to seg:off+delta. An offset past the end
// of the segment is carried into the segment so the pointer still addresses
// the same linear byte.
func farPointerAt(seg, off uint16, delta uint32) uint32 {
	end := uint32(off) + delta
	if end <= 0xFFFF {
		return cpu.FarPointer(seg, uint16(end))
	}
	return cpu.FarPointer(seg+uint16(end>>4), uint16(end&0x0F))
}

func writeModeInfoBlock(m cpu.Memory, seg, off uint16, desc vga.ModeDescriptor) {
	base := cpu.Linear(seg, off)
	cpu.StoreBytes(m, base, make([]byte, ModeInfoSize))

	attrs := uint16(modeSupported | modeExtInfo | modeTTY | modeColor)
	segment := uint16(0xB800)
	if !desc.Text() {
		attrs |= modeGraphics
		segment = 0xA000
	}
	cpu.Store16(m, base+miAttributes, attrs)
	m.Store8(base+miWinAAttrs, 0x07)
	cpu.Store16(m, base+miGranularity, 64)
	cpu.Store16(m, base+miWinSize, 64)
	cpu.Store16(m, base+miWinASegment, segment)
	cpu.Store16(m, base+miPitch, uint16(pitch(desc)))
	cpu.Store16(m, base+miXRes, uint16(desc.Width))
	cpu.Store16(m, base+miYRes, uint16(desc.Height))
	m.Store8(base+miXCharSize, 8)
	m.Store8(base+miYCharSize, uint8(desc.CharHeight()))
	planes := uint8(1)
	if !desc.Text() && desc.Depth == 4 {
		planes = 4
	}
	m.Store8(base+miPlanes, planes)
	m.Store8(base+miBPP, uint8(desc.Depth))
	m.Store8(base+miBanks, 1)
	m.Store8(base+miMemoryModel, memoryModel(desc))
	m.Store8(base+miImagePages, 0)
	m.Store8(base+miReserved, 1)
	cpu.StoreBytes(m, base+miRedMask, colorMasks(desc.Depth))
}

func pitch(desc vga.ModeDescriptor) int {
	switch {
	case desc.Text():
		return desc.Width * 2
	case desc.Depth == 4:
		return desc.Width / 8
	case desc.Depth == 8:
		return desc.Width
	case desc.Depth <= 16:
		return desc.Width * 2
	default:
		return desc.Width * 3
	}
}

func memoryModel(desc vga.ModeDescriptor) uint8 {
	switch {
	case desc.Text():
		return modelText
	case desc.Depth == 4:
		return modelPlanar
	case desc.Depth == 8:
		return modelPacked
	default:
		return modelDirect
	}
}

// colorMasks returns red, green, blue and reserved mask size/position pairs.
func colorMasks(depth int) []byte {
	switch depth {
	case 15:
		return []byte{5, 10, 5, 5, 5, 0, 1, 15}
	case 16:
		return []byte{5, 11, 6, 5, 5, 0, 0, 0}
	case 24:
		return []byte{8, 16, 8, 8, 8, 0, 0, 0}
	default:
		return make([]byte, 8)
	}
}
