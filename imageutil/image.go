// Package imageutil provides pure Go image helpers used around the dither
// engine: wrapping raw RGBA frame buffers, loading and saving files,
// resizing, luminance and synthetic test images.
package imageutil

import (
	"image"
	"image/color"
	"image/draw"
)

// RGBAImage wraps image.RGBA with convenience methods for frame buffers.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new opaque-black RGBAImage of the given size.
func NewRGBAImage(width, height int) *RGBAImage {
	img := &RGBAImage{RGBA: image.NewRGBA(image.Rect(0, 0, width, height))}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

// WrapPix wraps an interleaved RGBA buffer without copying it. The buffer
// must hold exactly width*height*4 bytes; the image aliases it, so writes
// through either are visible through both.
func WrapPix(pix []byte, width, height int) *RGBAImage {
	return &RGBAImage{RGBA: &image.RGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}}
}

// RGBAImageFromImage converts any image.Image to an RGBAImage anchored at
// the origin.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	dst := &RGBAImage{RGBA: image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))}
	draw.Draw(dst.RGBA, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// Frame returns the tightly packed RGBA bytes of the image. When the image
// is already tightly packed the backing slice is returned as is.
func (img *RGBAImage) Frame() []byte {
	w, h := img.Width(), img.Height()
	if img.Stride == w*4 && len(img.Pix) == w*h*4 {
		return img.Pix
	}
	out := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		off := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
		out = append(out, img.Pix[off:off+w*4]...)
	}
	return out
}

// SetRGB sets an opaque color at (x, y).
func (img *RGBAImage) SetRGB(x, y int, r, g, b uint8) {
	img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
}

// Clone creates a deep copy of the image.
func (img *RGBAImage) Clone() *RGBAImage {
	clone := &RGBAImage{RGBA: image.NewRGBA(img.Rect)}
	copy(clone.Pix, img.Pix)
	return clone
}

// GrayImage wraps image.Gray for single-channel maps such as gradients.
type GrayImage struct {
	*image.Gray
}

// NewGrayImage creates a new GrayImage with the specified dimensions.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{
		Gray: image.NewGray(image.Rect(0, 0, width, height)),
	}
}

// GrayFromUnit builds a GrayImage from row-major values in [0, 1]. Values
// outside that range are clamped.
func GrayFromUnit(values []float64, width, height int) *GrayImage {
	gray := NewGrayImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gray.Pix[y*gray.Stride+x] = ClampUint8(values[y*width+x] * 255)
		}
	}
	return gray
}

// Width returns the image width.
func (img *GrayImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *GrayImage) Height() int {
	return img.Bounds().Dy()
}
