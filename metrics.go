package ditherfx

import (
	"fmt"
	"math"

	"github.com/wbrown/ditherfx/imageutil"
)

// colorSpace is the number of distinct 24-bit RGB values.
const colorSpace = 1 << 24

// SSIM stabilization constants for 8-bit data.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)
)

// Metrics is the quality report for an output frame against its source.
type Metrics struct {
	// PSNR in dB; +Inf when the frames are identical.
	PSNR float64
	// SSIM is global structural similarity in [0, 1].
	SSIM float64
	// UniqueColors counts distinct RGB values in the output frame.
	UniqueColors int
	// CompressionRatio is the percentage of the 24-bit color space the
	// output does not use.
	CompressionRatio float64
}

// Compare computes every metric for output b against source a. Both are
// RGBA buffers of the same length.
func Compare(a, b []byte) (Metrics, error) {
	psnr, err := PSNR(a, b)
	if err != nil {
		return Metrics{}, err
	}
	ssim, err := SSIM(a, b)
	if err != nil {
		return Metrics{}, err
	}
	unique := UniqueColors(b)
	return Metrics{
		PSNR:             psnr,
		SSIM:             ssim,
		UniqueColors:     unique,
		CompressionRatio: CompressionRatio(unique),
	}, nil
}

// PSNR returns the peak signal-to-noise ratio between two RGBA buffers:
// 10·log10(255²/MSE) with the MSE averaged over R, G and B. Identical
// buffers return +Inf. Alpha is ignored.
func PSNR(a, b []byte) (float64, error) {
	if err := sameSize(a, b); err != nil {
		return 0, fmt.Errorf("psnr: %w", err)
	}
	n := len(a) / 4
	mse := imageutil.CalculateMSE(imageutil.WrapPix(a, n, 1), imageutil.WrapPix(b, n, 1))
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(255*255/mse), nil
}

// SSIM returns a single global structural similarity index computed from
// the luminance of both buffers, clamped to [0, 1].
func SSIM(a, b []byte) (float64, error) {
	if err := sameSize(a, b); err != nil {
		return 0, fmt.Errorf("ssim: %w", err)
	}
	n := len(a) / 4
	la := imageutil.LumaPix(a, n, 1)
	lb := imageutil.LumaPix(b, n, 1)

	var meanA, meanB float64
	for i := range la {
		meanA += la[i]
		meanB += lb[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var varA, varB, cov float64
	for i := range la {
		da, db := la[i]-meanA, lb[i]-meanB
		varA += da * da
		varB += db * db
		cov += da * db
	}
	varA /= float64(n)
	varB /= float64(n)
	cov /= float64(n)

	num := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	den := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	return clampFloat(num/den, 0, 1), nil
}

// UniqueColors counts the distinct RGB values in an RGBA buffer.
func UniqueColors(pix []byte) int {
	seen := make(map[uint32]struct{})
	for o := 0; o+3 < len(pix); o += 4 {
		seen[rgbAt(pix, o).toUint32()] = struct{}{}
	}
	return len(seen)
}

// CompressionRatio returns (1 − unique/2²⁴) × 100.
func CompressionRatio(unique int) float64 {
	return (1 - float64(unique)/colorSpace) * 100
}

func sameSize(a, b []byte) error {
	if len(a) == 0 || len(a)%4 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrEmptyFrame, len(a))
	}
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d bytes", ErrFrameSize, len(a), len(b))
	}
	return nil
}
