package vga

import (
	"fmt"
	"sort"

	"pkt.systems/vgabios/internal/display"
)

// ModeID is a legacy or VBE video mode number.
type ModeID uint16

func (m ModeID) String() string {
	if m >= 0x100 {
		return fmt.Sprintf("0x%03X", uint16(m))
	}
	return fmt.Sprintf("0x%02X", uint16(m))
}

// VBE reports whether the id lies in the VBE-numbered range.
func (m ModeID) VBE() bool {
	return m >= 0x100
}

// ModeDescriptor describes one entry of the mode table. For text modes Width
// and Height are columns and rows.
type ModeDescriptor struct {
	ID     ModeID       `json:"id"`
	Kind   display.Kind `json:"-"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Depth  int          `json:"depth"`
	Name   string       `json:"name"`
}

// Text reports whether the mode is a character-cell mode.
func (d ModeDescriptor) Text() bool {
	return d.Kind == display.KindText
}

// Columns returns the text columns of the mode. Graphics modes use an
// 8-pixel character cell.
func (d ModeDescriptor) Columns() int {
	if d.Text() {
		return d.Width
	}
	return d.Width / 8
}

// Rows returns the text rows of the mode.
func (d ModeDescriptor) Rows() int {
	if d.Text() {
		return d.Height
	}
	return d.Height / d.CharHeight()
}

// CharHeight returns the character cell height in scan lines.
func (d ModeDescriptor) CharHeight() int {
	switch {
	case d.Text():
		return 16
	case d.Height <= 200:
		return 8
	case d.Height <= 350:
		return 14
	default:
		return 16
	}
}

func text(id ModeID, cols, rows int, name string) ModeDescriptor {
	return ModeDescriptor{ID: id, Kind: display.KindText, Width: cols, Height: rows, Depth: 4, Name: name}
}

func graphics(id ModeID, w, h, depth int, name string) ModeDescriptor {
	return ModeDescriptor{ID: id, Kind: display.KindGraphics, Width: w, Height: h, Depth: depth, Name: name}
}

var modeTable = map[ModeID]ModeDescriptor{
	0x00: text(0x00, 40, 25, "40x25 text"),
	0x01: text(0x01, 40, 25, "40x25 text"),
	0x02: text(0x02, 80, 25, "80x25 text"),
	0x03: text(0x03, 80, 25, "80x25 text"),
	0x07: text(0x07, 80, 25, "80x25 text"),
	0x0D: graphics(0x0D, 320, 200, 4, "320x200 16-color"),
	0x0E: graphics(0x0E, 640, 200, 4, "640x200 16-color"),
	0x10: graphics(0x10, 640, 350, 4, "640x350 16-color"),
	0x12: graphics(0x12, 640, 480, 4, "640x480 16-color"),
	0x13: graphics(0x13, 320, 200, 8, "320x200 256-color"),

	0x100: graphics(0x100, 640, 400, 8, "640x400 256-color"),
	0x101: graphics(0x101, 640, 480, 8, "640x480 256-color"),
	0x102: graphics(0x102, 800, 600, 4, "800x600 16-color"),
	0x103: graphics(0x103, 800, 600, 8, "800x600 256-color"),
	0x104: graphics(0x104, 1024, 768, 4, "1024x768 16-color"),
	0x105: graphics(0x105, 1024, 768, 8, "1024x768 256-color"),
	0x106: graphics(0x106, 1280, 1024, 4, "1280x1024 16-color"),
	0x107: graphics(0x107, 1280, 1024, 8, "1280x1024 256-color"),
	0x108: text(0x108, 80, 60, "80x60 text"),
	0x109: text(0x109, 132, 25, "132x25 text"),
	0x10A: text(0x10A, 132, 43, "132x43 text"),
	0x10B: text(0x10B, 132, 50, "132x50 text"),
	0x10C: text(0x10C, 132, 60, "132x60 text"),
	0x10D: graphics(0x10D, 320, 200, 15, "320x200 15bpp"),
	0x10E: graphics(0x10E, 320, 200, 16, "320x200 16bpp"),
	0x10F: graphics(0x10F, 320, 200, 24, "320x200 24bpp"),
	0x110: graphics(0x110, 640, 480, 15, "640x480 15bpp"),
	0x111: graphics(0x111, 640, 480, 16, "640x480 16bpp"),
	0x112: graphics(0x112, 640, 480, 24, "640x480 24bpp"),
	0x113: graphics(0x113, 800, 600, 15, "800x600 15bpp"),
	0x114: graphics(0x114, 800, 600, 16, "800x600 16bpp"),
	0x115: graphics(0x115, 800, 600, 24, "800x600 24bpp"),
	0x116: graphics(0x116, 1024, 768, 15, "1024x768 15bpp"),
	0x117: graphics(0x117, 1024, 768, 16, "1024x768 16bpp"),
	0x118: graphics(0x118, 1024, 768, 24, "1024x768 24bpp"),
	0x119: graphics(0x119, 1280, 1024, 15, "1280x1024 15bpp"),
	0x11A: graphics(0x11A, 1280, 1024, 16, "1280x1024 16bpp"),
	0x11B: graphics(0x11B, 1280, 1024, 24, "1280x1024 24bpp"),
}

// LookupMode resolves a mode id against the mode table.
func LookupMode(id ModeID) (ModeDescriptor, bool) {
	d, ok := modeTable[id]
	return d, ok
}

// Modes returns the whole mode table ordered by id.
func Modes() []ModeDescriptor {
	out := make([]ModeDescriptor, 0, len(modeTable))
	for _, d := range modeTable {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VBEModes returns the VBE-numbered modes ordered by id.
func VBEModes() []ModeDescriptor {
	var out []ModeDescriptor
	for _, d := range Modes() {
		if d.ID.VBE() {
			out = append(out, d)
		}
	}
	return out
}
