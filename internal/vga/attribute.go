package vga

// Attribute is a text-mode attribute byte: bits 0-3 foreground, bits 4-6
// background, bit 7 blink.
type Attribute uint8

// DefaultAttribute is light gray on black.
const DefaultAttribute Attribute = 0x07

// MakeAttribute packs colour indexes and the blink bit.
func MakeAttribute(fg, bg uint8, blink bool) Attribute {
	a := Attribute(fg&0x0F | (bg&0x07)<<4)
	if blink {
		a |= 0x80
	}
	return a
}

// Foreground returns the foreground colour index.
func (a Attribute) Foreground() uint8 {
	return uint8(a) & 0x0F
}

// Background returns the background colour index.
func (a Attribute) Background() uint8 {
	return (uint8(a) & 0x70) >> 4
}

// Blink reports the blink bit.
func (a Attribute) Blink() bool {
	return a&0x80 != 0
}
