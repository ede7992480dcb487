package imageutil

import "math"

// Luma returns the BT.601 luminance of an RGB triple:
// Y = 0.299*R + 0.587*G + 0.114*B, in [0, 255].
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// LumaPix returns the luminance of every pixel of an RGBA buffer.
func LumaPix(pix []byte, width, height int) []float64 {
	out := make([]float64, width*height)
	for i := range out {
		o := i * 4
		out[i] = Luma(pix[o], pix[o+1], pix[o+2])
	}
	return out
}

// ClampUint8 rounds v to the nearest integer and clamps it to [0, 255].
func ClampUint8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
