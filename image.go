package ditherfx

import (
	"fmt"
	"image"

	"github.com/wbrown/ditherfx/imageutil"
)

// DitherImage converts img to RGBA, anchored at the origin, and processes
// the copy with p. img itself is never modified.
func DitherImage(img image.Image, p *Processor, cfg Config) (*image.RGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("dither image: %w", ErrEmptyFrame)
	}
	dst := imageutil.RGBAImageFromImage(img)
	if err := p.Process(dst.Pix, dst.Width(), dst.Height(), cfg); err != nil {
		return nil, fmt.Errorf("dither image: %w", err)
	}
	return dst.RGBA, nil
}

// ImageFrame returns img as a tightly packed frame. RGBA images anchored at
// the origin with tightly packed pixels are aliased, not copied.
func ImageFrame(img image.Image) (Frame, error) {
	if img == nil {
		return Frame{}, fmt.Errorf("image frame: %w", ErrEmptyFrame)
	}
	var rgba *imageutil.RGBAImage
	switch v := img.(type) {
	case *imageutil.RGBAImage:
		rgba = v
	case *image.RGBA:
		rgba = &imageutil.RGBAImage{RGBA: v}
	}
	if rgba == nil || rgba.Rect.Min != (image.Point{}) {
		rgba = imageutil.RGBAImageFromImage(img)
	}
	return NewFrame(rgba.Frame(), rgba.Width(), rgba.Height())
}
