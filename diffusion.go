package ditherfx

import (
	"math"
	"math/rand/v2"
)

// Engine transforms a frame in place, quantizing through q.
type Engine interface {
	Apply(f Frame, q *Quantizer, cfg Config)
}

// ErrorDiffusion quantizes each pixel in scan order and pushes the
// quantization error onto not-yet-visited neighbors according to Kernel.
//
// Rows run top to bottom. With Config.Serpentine, odd rows run right to
// left and the kernel's horizontal offsets are mirrored for those rows.
// The scan is strictly sequential.
type ErrorDiffusion struct {
	Kernel Kernel
	// Rand drives Config.DiffusionNoise. A nil Rand uses a fixed seed.
	Rand *rand.Rand
}

// Apply dithers f in place.
func (e ErrorDiffusion) Apply(f Frame, q *Quantizer, cfg Config) {
	strength := cfg.DiffusionStrength
	diffuse(f, e.Kernel, q, cfg, newErrorShaper(cfg, e.Rand), func(int) float64 {
		return strength
	})
}

// diffuse is the inner loop shared by the plain and adaptive engines.
// strengthAt returns the diffusion strength for the pixel at index i
// (y*width + x).
//
// For every visited pixel the order is fixed: read the current value
// (which already carries error from earlier pixels), quantize, write the
// palette color back, then distribute the error. Targets are clamped to
// [0, 255] as they are written, so later reads always see clamped values.
func diffuse(f Frame, k Kernel, q *Quantizer, cfg Config, shape errorShaper, strengthAt func(i int) float64) {
	pix, w, h := f.Pix, f.Width, f.Height
	div := float64(k.Divisor)

	for y := 0; y < h; y++ {
		reverse := cfg.Serpentine && y%2 == 1
		for step := 0; step < w; step++ {
			x := step
			if reverse {
				x = w - 1 - step
			}
			o := f.offset(x, y)
			old := rgbAt(pix, o)

			var errs [3]float64
			s := strengthAt(y*w + x)
			if cfg.PreserveColor {
				c := q.Quantize(old, true)
				setRGB(pix, o, c)
				errs[0] = shape.apply((float64(old.R) - float64(c.R)) * s)
				errs[1] = shape.apply((float64(old.G) - float64(c.G)) * s)
				errs[2] = shape.apply((float64(old.B) - float64(c.B)) * s)
			} else {
				c := q.Quantize(old, false)
				setRGB(pix, o, c)
				e := shape.apply((old.Luma() - c.Luma()) * s)
				errs = [3]float64{e, e, e}
			}
			if errs == [3]float64{} {
				continue
			}

			for _, p := range k.Points {
				dx := p.DX
				if reverse {
					dx = -dx
				}
				tx, ty := x+dx, y+p.DY
				if tx < 0 || tx >= w || ty >= h {
					continue
				}
				t := f.offset(tx, ty)
				frac := float64(p.Weight) / div
				pix[t] = clampByte(float64(pix[t]) + errs[0]*frac)
				pix[t+1] = clampByte(float64(pix[t+1]) + errs[1]*frac)
				pix[t+2] = clampByte(float64(pix[t+2]) + errs[2]*frac)
			}
		}
	}
}

// errorShaper applies the optional ErrorGamma and DiffusionNoise
// extensions to an error value. With gamma 1 and noise 0 it is the
// identity.
type errorShaper struct {
	gamma float64
	noise float64
	rng   *rand.Rand
}

func newErrorShaper(cfg Config, rng *rand.Rand) errorShaper {
	s := errorShaper{gamma: cfg.ErrorGamma, noise: cfg.DiffusionNoise}
	if s.gamma <= 0 {
		s.gamma = 1
	}
	if s.noise > 0 && rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	s.rng = rng
	return s
}

func (s errorShaper) apply(e float64) float64 {
	if e == 0 {
		return 0
	}
	if s.gamma != 1 {
		e = math.Copysign(255*math.Pow(math.Abs(e)/255, s.gamma), e)
	}
	if s.noise > 0 {
		e *= 1 + s.noise*(2*s.rng.Float64()-1)
	}
	return e
}
