package ditherfx

import (
	"github.com/wbrown/ditherfx/imageutil"
)

// RGB represents a color in the RGB color space with 8-bit channels,
// where each channel ranges from 0 to 255.
type RGB struct {
	R, G, B uint8
}

// Luma returns the perceptual brightness of the color using the BT.601
// weights 0.299, 0.587 and 0.114.
func (c RGB) Luma() float64 {
	return imageutil.Luma(c.R, c.G, c.B)
}

// toUint32 packs an RGB color into the low 24 bits of a uint32.
func (c RGB) toUint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// distanceSq returns the squared Euclidean distance between two colors in
// RGB space.
func (c RGB) distanceSq(other RGB) int {
	dr := int(c.R) - int(other.R)
	dg := int(c.G) - int(other.G)
	db := int(c.B) - int(other.B)
	return dr*dr + dg*dg + db*db
}

// rgbAt reads the color of the pixel starting at byte offset o.
func rgbAt(pix []byte, o int) RGB {
	return RGB{pix[o], pix[o+1], pix[o+2]}
}

// setRGB writes c to the pixel starting at byte offset o, leaving alpha
// untouched.
func setRGB(pix []byte, o int, c RGB) {
	pix[o] = c.R
	pix[o+1] = c.G
	pix[o+2] = c.B
}

// clampByte rounds v to the nearest integer and clamps it into [0, 255].
func clampByte(v float64) uint8 {
	return imageutil.ClampUint8(v)
}
