package protocol

import (
	"fmt"
	"image/color"

	"google.golang.org/protobuf/encoding/protowire"

	"pkt.systems/vgabios/internal/display"
)

// Snapshot field numbers.
const (
	snapKind    protowire.Number = 1
	snapCols    protowire.Number = 2
	snapRows    protowire.Number = 3
	snapWidth   protowire.Number = 4
	snapHeight  protowire.Number = 5
	snapDepth   protowire.Number = 6
	snapCursor  protowire.Number = 7
	snapBorder  protowire.Number = 8
	snapColors  protowire.Number = 9
	snapChars   protowire.Number = 10
	snapFG      protowire.Number = 11
	snapBG      protowire.Number = 12
	snapBlink   protowire.Number = 13
	snapPixels  protowire.Number = 14
	snapPalette protowire.Number = 15

	cursorX protowire.Number = 1
	cursorY protowire.Number = 2
)

// maxCells bounds decoded grids so a corrupt frame cannot allocate unbounded
// memory. 2048x2048 covers every mode in the table.
const maxCells = 2048 * 2048

// AppendSnapshot appends the wire form of s to b.
func AppendSnapshot(b []byte, s display.Snapshot) []byte {
	b = appendVarint(b, snapKind, uint64(s.Kind))
	b = appendVarint(b, snapCols, uint64(s.Cols))
	b = appendVarint(b, snapRows, uint64(s.Rows))
	b = appendVarint(b, snapWidth, uint64(s.Width))
	b = appendVarint(b, snapHeight, uint64(s.Height))
	b = appendVarint(b, snapDepth, uint64(s.Depth))

	var cur []byte
	cur = appendVarint(cur, cursorX, uint64(s.Cursor.X))
	cur = appendVarint(cur, cursorY, uint64(s.Cursor.Y))
	b = protowire.AppendTag(b, snapCursor, protowire.BytesType)
	b = protowire.AppendBytes(b, cur)

	b = appendVarint(b, snapBorder, uint64(s.Border))
	b = appendPacked(b, snapColors, len(s.Colors), func(i int) uint64 { return packRGB(s.Colors[i]) })

	if len(s.Cells) > 0 {
		chars := make([]byte, len(s.Cells))
		blink := make([]byte, len(s.Cells))
		for i, c := range s.Cells {
			chars[i] = c.Char
			if c.Blink {
				blink[i] = 1
			}
		}
		b = protowire.AppendTag(b, snapChars, protowire.BytesType)
		b = protowire.AppendBytes(b, chars)
		b = appendPacked(b, snapFG, len(s.Cells), func(i int) uint64 { return uint64(s.Cells[i].FG) })
		b = appendPacked(b, snapBG, len(s.Cells), func(i int) uint64 { return uint64(s.Cells[i].BG) })
		b = protowire.AppendTag(b, snapBlink, protowire.BytesType)
		b = protowire.AppendBytes(b, blink)
	}
	b = appendPacked(b, snapPixels, len(s.Pixels), func(i int) uint64 { return uint64(s.Pixels[i]) })
	b = appendPacked(b, snapPalette, len(s.Palette), func(i int) uint64 { return packRGB(s.Palette[i]) })
	return b
}

// MarshalSnapshot encodes s.
func MarshalSnapshot(s display.Snapshot) []byte {
	return AppendSnapshot(nil, s)
}

// UnmarshalSnapshot decodes a snapshot produced by MarshalSnapshot. Unknown
// fields are skipped.
func UnmarshalSnapshot(b []byte) (display.Snapshot, error) {
	var (
		s            display.Snapshot
		chars, blink []byte
		fg, bg       []uint64
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return display.Snapshot{}, fmt.Errorf("snapshot tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		var err error
		switch {
		case typ == protowire.VarintType:
			var v uint64
			v, b, err = consumeVarint(b)
			if err != nil {
				return display.Snapshot{}, fmt.Errorf("snapshot field %d: %w", num, err)
			}
			switch num {
			case snapKind:
				s.Kind = display.Kind(v)
			case snapCols:
				s.Cols = int(v)
			case snapRows:
				s.Rows = int(v)
			case snapWidth:
				s.Width = int(v)
			case snapHeight:
				s.Height = int(v)
			case snapDepth:
				s.Depth = int(v)
			case snapBorder:
				s.Border = display.HostColor(v)
			}
		case typ == protowire.BytesType:
			var field []byte
			field, b, err = consumeBytes(b)
			if err != nil {
				return display.Snapshot{}, fmt.Errorf("snapshot field %d: %w", num, err)
			}
			switch num {
			case snapCursor:
				s.Cursor, err = decodeCursor(field)
			case snapColors:
				s.Colors, err = decodeColors(field)
			case snapChars:
				chars = field
			case snapFG:
				fg, err = decodePacked(field)
			case snapBG:
				bg, err = decodePacked(field)
			case snapBlink:
				blink = field
			case snapPixels:
				var raw []uint64
				raw, err = decodePacked(field)
				s.Pixels = make([]uint32, len(raw))
				for i, v := range raw {
					s.Pixels[i] = uint32(v)
				}
			case snapPalette:
				s.Palette, err = decodeColors(field)
			}
			if err != nil {
				return display.Snapshot{}, fmt.Errorf("snapshot field %d: %w", num, err)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return display.Snapshot{}, fmt.Errorf("snapshot field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if len(chars) > 0 {
		if len(fg) != len(chars) || len(bg) != len(chars) || len(blink) != len(chars) {
			return display.Snapshot{}, fmt.Errorf("snapshot cell arrays disagree: %d chars, %d fg, %d bg, %d blink", len(chars), len(fg), len(bg), len(blink))
		}
		s.Cells = make([]display.Cell, len(chars))
		for i := range chars {
			s.Cells[i] = display.Cell{Char: chars[i], FG: display.HostColor(fg[i]), BG: display.HostColor(bg[i]), Blink: blink[i] != 0}
		}
	}
	if err := validate(s); err != nil {
		return display.Snapshot{}, err
	}
	return s, nil
}

func validate(s display.Snapshot) error {
	if s.Cols < 0 || s.Rows < 0 || s.Cols*s.Rows > maxCells {
		return fmt.Errorf("snapshot text geometry %dx%d out of range", s.Cols, s.Rows)
	}
	if s.Width < 0 || s.Height < 0 || s.Width*s.Height > maxCells {
		return fmt.Errorf("snapshot graphics geometry %dx%d out of range", s.Width, s.Height)
	}
	if len(s.Cells) != 0 && len(s.Cells) != s.Cols*s.Rows {
		return fmt.Errorf("snapshot has %d cells for %dx%d", len(s.Cells), s.Cols, s.Rows)
	}
	if len(s.Pixels) != 0 && len(s.Pixels) != s.Width*s.Height {
		return fmt.Errorf("snapshot has %d pixels for %dx%d", len(s.Pixels), s.Width, s.Height)
	}
	return nil
}

func decodeCursor(b []byte) (display.Cursor, error) {
	var c display.Cursor
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return c, protowire.ParseError(n)
		}
		b = b[n:]
		if typ != protowire.VarintType {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return c, protowire.ParseError(n)
			}
			b = b[n:]
			continue
		}
		v, rest, err := consumeVarint(b)
		if err != nil {
			return c, err
		}
		b = rest
		switch num {
		case cursorX:
			c.X = int(v)
		case cursorY:
			c.Y = int(v)
		}
	}
	return c, nil
}

func decodeColors(b []byte) ([]color.RGBA, error) {
	raw, err := decodePacked(b)
	if err != nil {
		return nil, err
	}
	out := make([]color.RGBA, len(raw))
	for i, v := range raw {
		out[i] = color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
	}
	return out, nil
}

func decodePacked(b []byte) ([]uint64, error) {
	var out []uint64
	for len(b) > 0 {
		if len(out) >= maxCells {
			return nil, fmt.Errorf("packed field exceeds %d entries", maxCells)
		}
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}

func consumeVarint(b []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, b, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func consumeBytes(b []byte) ([]byte, []byte, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, b, protowire.ParseError(n)
	}
	return v, b[n:], nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendPacked(b []byte, num protowire.Number, n int, at func(int) uint64) []byte {
	if n == 0 {
		return b
	}
	var inner []byte
	for i := 0; i < n; i++ {
		inner = protowire.AppendVarint(inner, at(i))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, inner)
}

func packRGB(c color.RGBA) uint64 {
	return uint64(c.R)<<16 | uint64(c.G)<<8 | uint64(c.B)
}
