package ditherfx

import (
	"log/slog"
	"math"
)

// LumaLUT maps every luminance level 0..255 to the palette entry whose own
// luminance is closest to it.
type LumaLUT [256]RGB

// Quantizer maps colors onto a palette. It keeps a luminance lookup table
// that is rebuilt only when the palette content changes.
//
// A Quantizer is not safe for concurrent mutation; concurrent reads after
// Update has returned are fine.
type Quantizer struct {
	palette   Palette
	signature string
	members   map[RGB]struct{}
	lut       LumaLUT
	logger    *slog.Logger
}

// NewQuantizer creates a quantizer for p. An empty palette falls back to a
// single black entry.
func NewQuantizer(p Palette, logger *slog.Logger) *Quantizer {
	if logger == nil {
		logger = newNopLogger()
	}
	q := &Quantizer{logger: logger}
	q.Update(p)
	return q
}

// Update installs p as the active palette and reports whether the lookup
// table had to be rebuilt. Palettes are compared by Signature, so handing
// in an equal palette is cheap.
func (q *Quantizer) Update(p Palette) bool {
	if len(p) == 0 {
		if q.palette != nil && q.signature == fallbackPalette.Signature() {
			return false
		}
		q.logger.Warn("empty palette, falling back to black")
		p = fallbackPalette
	}
	sig := p.Signature()
	if q.palette != nil && sig == q.signature {
		return false
	}
	q.palette = p.Clone()
	q.signature = sig
	q.members = make(map[RGB]struct{}, len(p))
	for _, c := range q.palette {
		q.members[c] = struct{}{}
	}
	q.BuildLUT()
	q.logger.Debug("rebuilt luma lookup table", "colors", len(q.palette))
	return true
}

// BuildLUT recomputes the luminance lookup table from the current palette.
// Ties go to the entry that appears first in the palette.
func (q *Quantizer) BuildLUT() {
	lumas := make([]float64, len(q.palette))
	for i, c := range q.palette {
		lumas[i] = c.Luma()
	}
	for level := range q.lut {
		best := 0
		bestDist := math.Inf(1)
		for i, l := range lumas {
			if d := math.Abs(l - float64(level)); d < bestDist {
				best, bestDist = i, d
			}
		}
		q.lut[level] = q.palette[best]
	}
}

// Nearest returns the palette color for a luminance value. The value is
// rounded and clamped to [0, 255] first, so this is a single table read.
func (q *Quantizer) Nearest(luma float64) RGB {
	return q.lut[clampByte(luma)]
}

// NearestRGB returns the palette entry with the smallest squared Euclidean
// distance to c, ties going to the first entry. This is a linear scan and
// costs O(len(palette)) per call.
func (q *Quantizer) NearestRGB(c RGB) RGB {
	best := q.palette[0]
	bestDist := c.distanceSq(best)
	for _, p := range q.palette[1:] {
		if d := c.distanceSq(p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// Quantize maps c onto the palette. Colors that are already palette
// members are returned unchanged; otherwise preserveColor selects the full
// RGB search and its absence the luminance table.
func (q *Quantizer) Quantize(c RGB, preserveColor bool) RGB {
	if _, ok := q.members[c]; ok {
		return c
	}
	if preserveColor {
		return q.NearestRGB(c)
	}
	return q.Nearest(c.Luma())
}

// Palette returns a copy of the active palette.
func (q *Quantizer) Palette() Palette {
	return q.palette.Clone()
}

// LUT returns a copy of the luminance lookup table.
func (q *Quantizer) LUT() LumaLUT {
	return q.lut
}
