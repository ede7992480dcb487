package ditherfx

import (
	"fmt"
	"math"

	"github.com/makeworld-the-better-one/dither/v2"
)

// KernelPoint is one neighbor of an error-diffusion kernel: the offset
// from the current pixel (DY is never negative) and its integer weight.
type KernelPoint struct {
	DX, DY int
	Weight int
}

// Kernel is a named error-diffusion template. Each point receives
// Weight/Divisor of the quantization error. Kernels are built once and
// never modified.
type Kernel struct {
	Name    string
	Divisor int
	Points  []KernelPoint
}

// Sum returns the fraction of the error the kernel passes on. It is at
// most 1 for every kernel in this package.
func (k Kernel) Sum() float64 {
	total := 0
	for _, p := range k.Points {
		total += p.Weight
	}
	return float64(total) / float64(k.Divisor)
}

// The named kernels. Tables come from the dither package and are scaled
// back to their classic integer form.
var (
	FloydSteinberg      = mustKernel("floyd-steinberg", dither.FloydSteinberg, 16)
	FalseFloydSteinberg = mustKernel("false-floyd-steinberg", dither.FalseFloydSteinberg, 8)
	Atkinson            = mustKernel("atkinson", dither.Atkinson, 8)
	Burkes              = mustKernel("burkes", dither.Burkes, 32)
	JarvisJudiceNinke   = mustKernel("jarvis-judice-ninke", dither.JarvisJudiceNinke, 48)
	Stucki              = mustKernel("stucki", dither.Stucki, 42)
	Sierra              = mustKernel("sierra", dither.Sierra, 32)
	TwoRowSierra        = mustKernel("two-row-sierra", dither.TwoRowSierra, 16)
	SierraLite          = mustKernel("sierra-lite", dither.SierraLite, 4)
)

// KernelFromMatrix converts a fractional diffusion matrix into a Kernel.
// The current pixel sits in the top row, immediately left of its first
// non-zero entry; every fraction is scaled by divisor and must land on an
// integer.
func KernelFromMatrix(name string, m dither.ErrorDiffusionMatrix, divisor int) (Kernel, error) {
	if divisor <= 0 {
		return Kernel{}, fmt.Errorf("kernel %s: divisor must be positive", name)
	}
	if len(m) == 0 {
		return Kernel{}, fmt.Errorf("kernel %s: empty matrix", name)
	}
	origin := -1
	for x, v := range m[0] {
		if v != 0 {
			origin = x - 1
			break
		}
	}
	if origin < 0 {
		return Kernel{}, fmt.Errorf("kernel %s: no current pixel in top row", name)
	}

	k := Kernel{Name: name, Divisor: divisor}
	for dy, row := range m {
		for x, v := range row {
			if v == 0 || (dy == 0 && x <= origin) {
				continue
			}
			scaled := float64(v) * float64(divisor)
			w := math.Round(scaled)
			if math.Abs(scaled-w) > 1e-3 {
				return Kernel{}, fmt.Errorf("kernel %s: weight %v is not a multiple of 1/%d", name, v, divisor)
			}
			k.Points = append(k.Points, KernelPoint{DX: x - origin, DY: dy, Weight: int(w)})
		}
	}
	if k.Sum() > 1+1e-9 {
		return Kernel{}, fmt.Errorf("kernel %s: weights sum to %v", name, k.Sum())
	}
	return k, nil
}

func mustKernel(name string, m dither.ErrorDiffusionMatrix, divisor int) Kernel {
	k, err := KernelFromMatrix(name, m, divisor)
	if err != nil {
		panic(err)
	}
	return k
}
