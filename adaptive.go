package ditherfx

import (
	"math"
	"math/rand/v2"

	"github.com/wbrown/ditherfx/imageutil"
)

// EdgeDamping is how strongly a unit gradient suppresses diffusion in the
// adaptive engine: strength × (1 − gradient × EdgeDamping).
const EdgeDamping = 0.8

// Adaptive is Floyd-Steinberg error diffusion whose strength drops near
// edges, so detail that uniform diffusion would smear survives.
type Adaptive struct {
	// Rand drives Config.DiffusionNoise. A nil Rand uses a fixed seed.
	Rand *rand.Rand
}

// Apply dithers f in place. Gradients are measured on the untouched frame
// before the first pixel is written.
func (a Adaptive) Apply(f Frame, q *Quantizer, cfg Config) {
	grad := GradientMap(f)
	strength := cfg.DiffusionStrength
	diffuse(f, FloydSteinberg, q, cfg, newErrorShaper(cfg, a.Rand), func(i int) float64 {
		return strength * (1 - grad[i]*EdgeDamping)
	})
}

// GradientMap returns a per-pixel edge estimate in [0, 1], row-major. For
// interior pixels it is sqrt(gx² + gy²)/255 where gx and gy are the luma
// differences to the right and lower neighbors, clamped to 1. Pixels on
// any border are 0. f is only read.
func GradientMap(f Frame) []float64 {
	w, h := f.Width, f.Height
	luma := imageutil.LumaPix(f.Pix, w, h)
	grad := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			gx := luma[i+1] - luma[i]
			gy := luma[i+w] - luma[i]
			grad[i] = min(math.Sqrt(gx*gx+gy*gy)/255, 1)
		}
	}
	return grad
}
