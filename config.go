package ditherfx

import (
	"fmt"
	"strings"
)

// Algorithm selects the transform applied to a frame. The set is closed:
// every value maps to exactly one engine in Processor.engine.
type Algorithm int

const (
	// AlgorithmNone leaves the frame untouched.
	AlgorithmNone Algorithm = iota
	// AlgorithmPosterize quantizes every pixel without dithering.
	AlgorithmPosterize

	// Error diffusion, one value per kernel.
	AlgorithmFloydSteinberg
	AlgorithmFalseFloydSteinberg
	AlgorithmAtkinson
	AlgorithmBurkes
	AlgorithmJarvisJudiceNinke
	AlgorithmStucki
	AlgorithmSierra
	AlgorithmTwoRowSierra
	AlgorithmSierraLite

	// Ordered dithering, one value per threshold matrix.
	AlgorithmBayer2
	AlgorithmBayer4
	AlgorithmBayer8
	AlgorithmClusteredDot4
	AlgorithmClusteredDot8
	AlgorithmNoise

	// AlgorithmAdaptive is edge-aware Floyd-Steinberg diffusion.
	AlgorithmAdaptive

	algorithmCount
)

var algorithmNames = [algorithmCount]string{
	"none",
	"posterize",
	"floyd-steinberg",
	"false-floyd-steinberg",
	"atkinson",
	"burkes",
	"jarvis-judice-ninke",
	"stucki",
	"sierra",
	"two-row-sierra",
	"sierra-lite",
	"bayer2",
	"bayer4",
	"bayer8",
	"clustered-dot4",
	"clustered-dot8",
	"noise",
	"adaptive",
}

// String returns the id of the algorithm.
func (a Algorithm) String() string {
	if a.Valid() {
		return algorithmNames[a]
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a is a known algorithm.
func (a Algorithm) Valid() bool {
	return a >= 0 && a < algorithmCount
}

// Algorithms returns every algorithm in declaration order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, algorithmCount)
	for i := range out {
		out[i] = Algorithm(i)
	}
	return out
}

// ParseAlgorithm looks an algorithm up by id, case-insensitively. Unknown
// ids return AlgorithmNone and false.
func ParseAlgorithm(id string) (Algorithm, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for i, name := range algorithmNames {
		if name == id {
			return Algorithm(i), true
		}
	}
	return AlgorithmNone, false
}

// MarshalText implements encoding.TextMarshaler.
func (a Algorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown ids decode to
// AlgorithmNone rather than failing, so a stale config degrades to a
// pass-through.
func (a *Algorithm) UnmarshalText(text []byte) error {
	*a, _ = ParseAlgorithm(string(text))
	return nil
}

// MaxDiffusionStrength bounds Config.DiffusionStrength.
const MaxDiffusionStrength = 1.5

// Config is the parameter set consumed by the engines.
type Config struct {
	Algorithm Algorithm `yaml:"algorithm"`

	// DiffusionStrength scales the propagated error, 0..1.5.
	DiffusionStrength float64 `yaml:"diffusion_strength"`
	// Serpentine alternates the scan direction on odd rows.
	Serpentine bool `yaml:"serpentine"`
	// PatternStrength scales the ordered-dither bias, 0..1.
	PatternStrength float64 `yaml:"pattern_strength"`
	// ColorCount is the palette size the frame is reduced to.
	ColorCount int `yaml:"color_count"`
	// PreserveColor switches from the luminance table to a full RGB
	// nearest-palette search.
	PreserveColor bool `yaml:"preserve_color"`

	// ErrorGamma reshapes diffused error magnitudes; 1 leaves them alone.
	ErrorGamma float64 `yaml:"error_gamma"`
	// DiffusionNoise jitters diffused error by up to this fraction; 0 is off.
	DiffusionNoise float64 `yaml:"diffusion_noise"`
	// OrderedBlend is accepted for compatibility and currently has no
	// effect on any engine.
	OrderedBlend float64 `yaml:"ordered_blend"`
}

// DefaultConfig returns serpentine Floyd-Steinberg at full strength with a
// four color palette.
func DefaultConfig() Config {
	return Config{
		Algorithm:         AlgorithmFloydSteinberg,
		DiffusionStrength: 1.0,
		Serpentine:        true,
		PatternStrength:   0.5,
		ColorCount:        4,
		ErrorGamma:        1.0,
	}
}

// Normalized returns a copy with every field clamped into its working
// range: unknown algorithms become AlgorithmNone, ColorCount is at least 1
// and a non-positive ErrorGamma becomes 1.
func (c Config) Normalized() Config {
	if !c.Algorithm.Valid() {
		c.Algorithm = AlgorithmNone
	}
	c.DiffusionStrength = clampFloat(c.DiffusionStrength, 0, MaxDiffusionStrength)
	c.PatternStrength = clampFloat(c.PatternStrength, 0, 1)
	if c.ColorCount < 1 {
		c.ColorCount = 1
	}
	if !(c.ErrorGamma > 0) {
		c.ErrorGamma = 1
	}
	c.DiffusionNoise = clampFloat(c.DiffusionNoise, 0, 1)
	c.OrderedBlend = clampFloat(c.OrderedBlend, 0, 1)
	return c
}

// levelStep is the distance between adjacent quantization levels when
// ColorCount colors span 0..255. ColorCount below 2 is treated as 2 so the
// step never divides by zero.
func (c Config) levelStep() float64 {
	return 255 / float64(max(c.ColorCount-1, 1))
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo || v != v {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
