package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"

	"pkt.systems/vgabios/internal/display"
)

const (
	previewCols = 80
	previewRows = 25
	upperHalf   = '▀'
)

// Image converts a graphics snapshot to an RGBA image.
func Image(snap display.Snapshot) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, snap.Width, snap.Height))
	for y := 0; y < snap.Height; y++ {
		for x := 0; x < snap.Width; x++ {
			img.SetRGBA(x, y, snap.PixelRGB(x, y))
		}
	}
	return img
}

// PNG encodes a graphics snapshot as PNG.
func PNG(w io.Writer, snap display.Snapshot) error {
	if snap.Kind != display.KindGraphics {
		return fmt.Errorf("snapshot is not in a graphics mode")
	}
	return png.Encode(w, Image(snap))
}

// Graphics renders a graphics snapshot as a half-block preview: each cell
// shows two scaled pixel rows, the upper one as foreground.
func Graphics(w io.Writer, snap display.Snapshot, opts Options) error {
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil
	}
	cols, rows := opts.ViewCols, opts.ViewRows
	if cols <= 0 {
		cols = previewCols
	}
	if rows <= 0 {
		rows = previewRows
	}
	if err := writePrologue(w, opts, cols, rows); err != nil {
		return err
	}

	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), Image(snap), image.Rect(0, 0, snap.Width, snap.Height), draw.Src, nil)

	for y := 0; y < rows; y++ {
		if _, err := io.WriteString(w, fmt.Sprintf("\x1b[%d;%dH", y+1, 1)); err != nil {
			return err
		}
		var rowBuilder strings.Builder
		var current renderAttr
		for x := 0; x < cols; x++ {
			attr := renderAttr{fg: scaled.RGBAAt(x, 2*y), bg: scaled.RGBAAt(x, 2*y+1)}
			attr.fg.A, attr.bg.A = 0xFF, 0xFF
			if x == 0 || attr != current {
				rowBuilder.WriteString(sgr(attr, opts.Color))
				current = attr
			}
			rowBuilder.WriteRune(upperHalf)
		}
		if _, err := io.WriteString(w, rowBuilder.String()); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ansiReset)
	return err
}
