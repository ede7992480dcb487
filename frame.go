package ditherfx

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFrame is returned for nil buffers or zero-sized frames.
	ErrEmptyFrame = errors.New("ditherfx: empty frame")
	// ErrFrameSize is returned when a buffer length does not match
	// width*height*4, or when two frames being compared differ in size.
	ErrFrameSize = errors.New("ditherfx: frame size mismatch")
)

// Frame is an interleaved RGBA pixel buffer, row-major, Width*Height*4
// bytes long. The caller owns Pix; engines write into it in place and never
// reallocate it.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// NewFrame wraps pix as a frame after validating its dimensions.
func NewFrame(pix []byte, width, height int) (Frame, error) {
	f := Frame{Pix: pix, Width: width, Height: height}
	return f, f.Validate()
}

// Validate checks that the frame is non-empty and its buffer length
// matches its dimensions.
func (f Frame) Validate() error {
	if f.Pix == nil || f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrEmptyFrame, f.Width, f.Height)
	}
	if want := f.Width * f.Height * 4; len(f.Pix) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, got %d",
			ErrFrameSize, f.Width, f.Height, want, len(f.Pix))
	}
	return nil
}

// offset returns the byte offset of pixel (x, y).
func (f Frame) offset(x, y int) int {
	return (y*f.Width + x) * 4
}
