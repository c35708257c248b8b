package vga

// MaxPages is the number of addressable display pages.
const MaxPages = 8

// DefaultCursorType is the BIOS underline cursor (start line 6, end line 7).
const DefaultCursorType uint16 = 0x0607

// Position is a text cell coordinate.
type Position struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// State is the adapter's register-like state, the part of the BIOS data area
// the video services read and write.
type State struct {
	Mode        ModeID             `json:"mode"`
	Columns     int                `json:"columns"`
	Rows        int                `json:"rows"`
	CursorPos   [MaxPages]Position `json:"cursor_pos"`
	CursorType  uint16             `json:"cursor_type"`
	CurrentPage uint8              `json:"current_page"`

	// ModeOptions bit 0 disables cursor emulation; bits 5-6 encode video
	// memory size.
	ModeOptions uint8 `json:"mode_options"`
	// FeatureBits holds the EGA switch and feature connector bits.
	FeatureBits uint8 `json:"feature_bits"`
	// VGASettings bit 3 disables default palette loading on mode set.
	VGASettings uint8 `json:"vga_settings"`

	BorderColor  uint8     `json:"border_color"`
	PaletteRegs  [16]uint8 `json:"palette_regs"`
	Overscan     uint8     `json:"overscan"`
	BlinkEnabled bool      `json:"blink_enabled"`
	VESAEnabled  bool      `json:"vesa_enabled"`
}

// NewState returns the power-on state: 80x25 colour text with the BIOS
// defaults for the compatibility bitfields.
func NewState() State {
	s := State{
		Mode:         0x03,
		Columns:      80,
		Rows:         25,
		CursorType:   DefaultCursorType,
		ModeOptions:  0x60,
		FeatureBits:  0x09,
		VGASettings:  0x11,
		BlinkEnabled: true,
		VESAEnabled:  true,
	}
	for i := range s.PaletteRegs {
		s.PaletteRegs[i] = uint8(i)
	}
	return s
}

// Cursor returns the stored cursor of page; out of range pages read as 0,0.
func (s *State) Cursor(page uint8) Position {
	if int(page) >= MaxPages {
		return Position{}
	}
	return s.CursorPos[page]
}

func (s *State) resetCursors() {
	s.CursorPos = [MaxPages]Position{}
	s.CurrentPage = 0
	s.CursorType = DefaultCursorType
}
