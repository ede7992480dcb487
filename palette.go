package ditherfx

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of output colors. Engines never edit a
// palette in place; a new palette replaces the old one wholesale.
type Palette []RGB

// fallbackPalette is used whenever an empty palette would otherwise be
// indexed.
var fallbackPalette = Palette{{0, 0, 0}}

// Signature returns a compact string that identifies the palette content
// and order. Two palettes with equal signatures quantize identically.
func (p Palette) Signature() string {
	var sb strings.Builder
	sb.Grow(len(p) * 6)
	for _, c := range p {
		fmt.Fprintf(&sb, "%06x", c.toUint32())
	}
	return sb.String()
}

// Clone returns a copy of the palette.
func (p Palette) Clone() Palette {
	return append(Palette(nil), p...)
}

// SortByLuma sorts the palette in place by ascending luminance, keeping
// the relative order of colors with equal luminance.
func (p Palette) SortByLuma() {
	sort.SliceStable(p, func(i, j int) bool {
		return p[i].Luma() < p[j].Luma()
	})
}

// Hex returns the palette as "#rrggbb" strings.
func (p Palette) Hex() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = colorful.Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
		}.Hex()
	}
	return out
}

// GrayscaleRamp returns n evenly spaced grays from black to white. A
// single-entry ramp is black.
func GrayscaleRamp(n int) Palette {
	if n < 1 {
		n = 1
	}
	p := make(Palette, n)
	if n == 1 {
		return p
	}
	for i := range p {
		v := uint8((i*255 + (n-1)/2) / (n - 1))
		p[i] = RGB{v, v, v}
	}
	return p
}

// ParsePalette parses colors written as "#rgb" or "#rrggbb" (the leading
// '#' is optional).
func ParsePalette(hex []string) (Palette, error) {
	p := make(Palette, 0, len(hex))
	for _, h := range hex {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid palette color %q: %w", h, err)
		}
		r, g, b := c.RGB255()
		p = append(p, RGB{r, g, b})
	}
	return p, nil
}
