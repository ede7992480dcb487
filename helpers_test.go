package ditherfx

import (
	"bytes"
	"testing"

	"github.com/wbrown/ditherfx/imageutil"
)

var (
	blackWhite = Palette{{0, 0, 0}, {255, 255, 255}}
	fourGrays  = GrayscaleRamp(4)
	sixColors  = Palette{
		{0, 0, 0}, {255, 255, 255}, {200, 30, 30},
		{30, 160, 40}, {40, 60, 200}, {230, 210, 60},
	}
)

// grayFrame returns an opaque w×h frame filled with gray level v.
func grayFrame(w, h int, v uint8) Frame {
	img := imageutil.CreateSolidImage(w, h, v, v, v)
	return Frame{Pix: img.Pix, Width: w, Height: h}
}

// frameOf wraps an imageutil image as a frame.
func frameOf(img *imageutil.RGBAImage) Frame {
	return Frame{Pix: img.Pix, Width: img.Width(), Height: img.Height()}
}

// cloneFrame deep-copies f.
func cloneFrame(f Frame) Frame {
	return Frame{Pix: bytes.Clone(f.Pix), Width: f.Width, Height: f.Height}
}

// grid returns the frame's RGB values row by row.
func grid(f Frame) [][]RGB {
	out := make([][]RGB, f.Height)
	for y := range out {
		out[y] = make([]RGB, f.Width)
		for x := range out[y] {
			out[y][x] = rgbAt(f.Pix, f.offset(x, y))
		}
	}
	return out
}

// assertPaletteOnly fails unless every pixel of f is a member of p.
func assertPaletteOnly(t *testing.T, name string, f Frame, p Palette) {
	t.Helper()
	members := make(map[RGB]bool, len(p))
	for _, c := range p {
		members[c] = true
	}
	for o := 0; o < len(f.Pix); o += 4 {
		if c := rgbAt(f.Pix, o); !members[c] {
			t.Errorf("%s: pixel %d = %v is not in the palette", name, o/4, c)
			return
		}
	}
}

// assertAlpha fails unless every alpha byte of f equals the one in want.
func assertAlpha(t *testing.T, name string, f, want Frame) {
	t.Helper()
	for o := 3; o < len(f.Pix); o += 4 {
		if f.Pix[o] != want.Pix[o] {
			t.Errorf("%s: alpha at pixel %d = %d, want %d", name, o/4, f.Pix[o], want.Pix[o])
			return
		}
	}
}
