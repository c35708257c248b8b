package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"pkt.systems/vgabios/internal/display"
)

const (
	ansiClearScreen = "\x1b[2J"
	ansiHome        = "\x1b[H"
	ansiHideCursor  = "\x1b[?25l"
	ansiShowCursor  = "\x1b[?25h"
	ansiReset       = "\x1b[0m"
)

// ColorMode selects how RGB colours are encoded in SGR sequences.
type ColorMode int

// Colour encodings.
const (
	ColorTrue ColorMode = iota
	Color256
)

// ParseColorMode maps a configuration value to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truecolor", "24bit":
		return ColorTrue, nil
	case "256":
		return Color256, nil
	default:
		return ColorTrue, fmt.Errorf("unknown color mode %q", s)
	}
}

// Options controls rendering.
type Options struct {
	Color ColorMode
	// Resize emits the xterm window resize sequence for the snapshot geometry.
	Resize bool
	// ViewCols and ViewRows crop or pad the output; zero uses the snapshot
	// geometry for text and 80x25 for graphics.
	ViewCols int
	ViewRows int
}

// Snapshot renders a surface snapshot with ANSI escapes: text modes cell by
// cell, graphics modes as a half-block preview.
func Snapshot(w io.Writer, snap display.Snapshot, opts Options) error {
	switch snap.Kind {
	case display.KindText:
		return Text(w, snap, opts)
	case display.KindGraphics:
		return Graphics(w, snap, opts)
	default:
		return nil
	}
}

// Text renders a text-mode snapshot.
func Text(w io.Writer, snap display.Snapshot, opts Options) error {
	cols, rows := snap.Cols, snap.Rows
	if cols <= 0 || rows <= 0 {
		return nil
	}
	viewCols, viewRows := opts.ViewCols, opts.ViewRows
	if viewCols <= 0 {
		viewCols = cols
	}
	if viewRows <= 0 {
		viewRows = rows
	}
	if err := writePrologue(w, opts, cols, rows); err != nil {
		return err
	}

	cursorX := clampIndex(snap.Cursor.X, cols)
	cursorY := clampIndex(snap.Cursor.Y, rows)
	x0, y0 := viewportOrigin(cols, rows, viewCols, viewRows, cursorX, cursorY)

	current := renderAttr{}
	first := true
	for y := 0; y < viewRows; y++ {
		cy := y0 + y
		if _, err := io.WriteString(w, fmt.Sprintf("\x1b[%d;%dH", y+1, 1)); err != nil {
			return err
		}
		var rowBuilder strings.Builder
		for x := 0; x < viewCols; x++ {
			cx := x0 + x
			attr := renderAttr{fg: color.RGBA{A: 0xFF}, bg: color.RGBA{A: 0xFF}}
			r := ' '
			if cell, err := snap.CellAt(cx, cy); err == nil {
				r = Glyph(cell.Char)
				attr = renderAttr{fg: snap.RGB(cell.FG), bg: snap.RGB(cell.BG), blink: cell.Blink}
			}
			if first || current != attr {
				rowBuilder.WriteString(sgr(attr, opts.Color))
				current = attr
				first = false
			}
			rowBuilder.WriteRune(r)
		}
		if _, err := io.WriteString(w, rowBuilder.String()); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, ansiReset); err != nil {
		return err
	}

	if cursorX >= x0 && cursorX < x0+viewCols && cursorY >= y0 && cursorY < y0+viewRows {
		if _, err := io.WriteString(w, fmt.Sprintf("\x1b[%d;%dH", cursorY-y0+1, cursorX-x0+1)); err != nil {
			return err
		}
		_, err := io.WriteString(w, ansiShowCursor)
		return err
	}
	return nil
}

func writePrologue(w io.Writer, opts Options, cols, rows int) error {
	if opts.Resize {
		if _, err := io.WriteString(w, ResizeSequence(cols, rows)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ansiHideCursor+ansiReset+ansiClearScreen+ansiHome)
	return err
}

// ResizeSequence asks an xterm-compatible terminal to resize its text area.
func ResizeSequence(cols, rows int) string {
	return fmt.Sprintf("\x1b[8;%d;%dt", rows, cols)
}

type renderAttr struct {
	fg    color.RGBA
	bg    color.RGBA
	blink bool
}

func sgr(attr renderAttr, mode ColorMode) string {
	codes := []string{"0"}
	if attr.blink {
		codes = append(codes, "5")
	}
	codes = append(codes, colorCode(true, attr.fg, mode)...)
	codes = append(codes, colorCode(false, attr.bg, mode)...)
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorCode(fg bool, c color.RGBA, mode ColorMode) []string {
	prefix := "38"
	if !fg {
		prefix = "48"
	}
	if mode == Color256 {
		return []string{prefix, "5", strconv.Itoa(int(Index256(c)))}
	}
	return []string{prefix, "2", strconv.Itoa(int(c.R)), strconv.Itoa(int(c.G)), strconv.Itoa(int(c.B))}
}

var cubeLevels = [6]int{0, 95, 135, 175, 215, 255}

// Index256 returns the nearest xterm 256-colour palette index, choosing
// between the 6x6x6 cube and the gray ramp.
func Index256(c color.RGBA) uint8 {
	ri, gi, bi := cubeIndex(c.R), cubeIndex(c.G), cubeIndex(c.B)
	cube := 16 + 36*ri + 6*gi + bi
	cubeDist := dist(c, cubeLevels[ri], cubeLevels[gi], cubeLevels[bi])

	avg := (int(c.R) + int(c.G) + int(c.B)) / 3
	grayIdx := 0
	if avg > 238 {
		grayIdx = 23
	} else if avg > 8 {
		grayIdx = (avg - 8) / 10
	}
	level := 8 + grayIdx*10
	if dist(c, level, level, level) < cubeDist {
		return uint8(232 + grayIdx)
	}
	return uint8(cube)
}

func cubeIndex(v uint8) int {
	switch {
	case v < 48:
		return 0
	case v < 115:
		return 1
	default:
		return (int(v) - 35) / 40
	}
}

func dist(c color.RGBA, r, g, b int) int {
	dr, dg, db := int(c.R)-r, int(c.G)-g, int(c.B)-b
	return dr*dr + dg*dg + db*db
}

func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func viewportOrigin(cw, ch, vw, vh, cursorX, cursorY int) (int, int) {
	x0 := 0
	y0 := 0

	if vw < cw {
		if cursorX >= vw {
			x0 = cursorX - vw + 1
		}
		if x0 > cw-vw {
			x0 = cw - vw
		}
	}

	if vh < ch {
		if cursorY >= vh {
			y0 = cursorY - vh + 1
		}
		if y0 > ch-vh {
			y0 = ch - vh
		}
	}

	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	return x0, y0
}
