package cpu

// Memory is the guest physical address space as seen by BIOS services that
// exchange data blocks with the caller (VBE info blocks, DAC tables, strings).
type Memory interface {
	Load8(addr uint32) byte
	Store8(addr uint32, v byte)
}

// DefaultMemorySize covers conventional memory and the high memory area.
const DefaultMemorySize = 0x110000

// FlatMemory is a byte-addressed guest memory. Accesses past the end read as
// zero and discard writes.
type FlatMemory []byte

// NewFlatMemory allocates size bytes of guest memory.
func NewFlatMemory(size int) FlatMemory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	return make(FlatMemory, size)
}

// Load8 reads one byte.
func (m FlatMemory) Load8(addr uint32) byte {
	if uint64(addr) >= uint64(len(m)) {
		return 0
	}
	return m[addr]
}

// Store8 writes one byte.
func (m FlatMemory) Store8(addr uint32, v byte) {
	if uint64(addr) >= uint64(len(m)) {
		return
	}
	m[addr] = v
}

// Linear converts a real-mode segment:offset pair to a linear address.
func Linear(seg, off uint16) uint32 {
	return uint32(seg)<<4 + uint32(off)
}

// FarPointer packs seg:off the way real-mode structures store it.
func FarPointer(seg, off uint16) uint32 {
	return uint32(seg)<<16 | uint32(off)
}

// Load16 reads a little-endian word.
func Load16(m Memory, addr uint32) uint16 {
	return uint16(m.Load8(addr)) | uint16(m.Load8(addr+1))<<8
}

// Load32 reads a little-endian double word.
func Load32(m Memory, addr uint32) uint32 {
	return uint32(Load16(m, addr)) | uint32(Load16(m, addr+2))<<16
}

// Store16 writes a little-endian word.
func Store16(m Memory, addr uint32, v uint16) {
	m.Store8(addr, byte(v))
	m.Store8(addr+1, byte(v>>8))
}

// Store32 writes a little-endian double word.
func Store32(m Memory, addr uint32, v uint32) {
	Store16(m, addr, uint16(v))
	Store16(m, addr+2, uint16(v>>16))
}

// StoreBytes copies p to addr.
func StoreBytes(m Memory, addr uint32, p []byte) {
	for i, b := range p {
		m.Store8(addr+uint32(i), b)
	}
}

// LoadBytes copies n bytes starting at addr.
func LoadBytes(m Memory, addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = m.Load8(addr + uint32(i))
	}
	return out
}
