package ditherfx

// Posterize maps every pixel straight onto the palette with no dithering.
// Applying it twice gives the same frame as applying it once.
type Posterize struct {
	Workers int
}

// Apply quantizes f in place.
func (p Posterize) Apply(f Frame, q *Quantizer, cfg Config) {
	forEachRowBand(f.Height, p.Workers, func(y0, y1 int) {
		for off := f.offset(0, y0); off < f.offset(0, y1); off += 4 {
			setRGB(f.Pix, off, q.Quantize(rgbAt(f.Pix, off), cfg.PreserveColor))
		}
	})
}

// passthrough is the engine for AlgorithmNone.
type passthrough struct{}

func (passthrough) Apply(Frame, *Quantizer, Config) {}
