package ditherfx

// Ordered adds a position-dependent bias from Matrix to every pixel before
// quantizing it. No error moves between pixels, so rows are processed in
// Workers parallel bands when Workers > 1.
type Ordered struct {
	Matrix  ThresholdMatrix
	Workers int
}

// Apply dithers f in place. The bias at (x, y) is
// Matrix.At(x, y) × (255 / max(ColorCount−1, 1)) × PatternStrength × 2.
func (o Ordered) Apply(f Frame, q *Quantizer, cfg Config) {
	scale := cfg.levelStep() * cfg.PatternStrength * 2
	forEachRowBand(f.Height, o.Workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < f.Width; x++ {
				off := f.offset(x, y)
				c := rgbAt(f.Pix, off)
				bias := o.Matrix.At(x, y) * scale
				if cfg.PreserveColor {
					biased := RGB{
						clampByte(float64(c.R) + bias),
						clampByte(float64(c.G) + bias),
						clampByte(float64(c.B) + bias),
					}
					setRGB(f.Pix, off, q.NearestRGB(biased))
				} else {
					setRGB(f.Pix, off, q.Nearest(c.Luma()+bias))
				}
			}
		}
	})
}
