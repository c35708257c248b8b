package render

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/encoding/charmap"
)

// cp437Low holds the glyphs the IBM PC ROM font shows for the control range.
var cp437Low = [32]rune{
	' ', '☺', '☻', '♥', '♦', '♣', '♠', '•', '◘', '○', '◙', '♂', '♀', '♪', '♫', '☼',
	'►', '◄', '↕', '‼', '¶', '§', '▬', '↨', '↑', '↓', '→', '←', '∟', '↔', '▲', '▼',
}

// Glyph maps a code page 437 character byte to the rune a terminal should
// show for it. Anything that would not occupy exactly one cell becomes '?'.
func Glyph(b byte) rune {
	var r rune
	switch {
	case b < 0x20:
		r = cp437Low[b]
	case b == 0x7F:
		r = '⌂'
	default:
		r = charmap.CodePage437.DecodeByte(b)
	}
	if runewidth.RuneWidth(r) != 1 {
		return '?'
	}
	return r
}

// Encode maps a string to code page 437 bytes. Runes without a CP437 form
// become '?'.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := encodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

func encodeRune(r rune) (byte, bool) {
	if r < 0x80 && r != 0x7F {
		return byte(r), true
	}
	if r == '⌂' {
		return 0x7F, true
	}
	if b, ok := charmap.CodePage437.EncodeRune(r); ok {
		return b, true
	}
	for i, g := range cp437Low {
		if g == r && i != 0 {
			return byte(i), true
		}
	}
	return 0, false
}
