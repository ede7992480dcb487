package ditherfx

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Processor holds the state that outlives a single frame: the active
// palette with its luminance table, the noise source and statistics. Build
// one per loaded image or video and feed it frames.
//
// A Processor is not safe for concurrent use. Use a Worker to run frames
// off the calling goroutine.
type Processor struct {
	// Parallelism is the number of row bands used by engines without a
	// sequential dependency (ordered and posterize). 1 keeps everything
	// on the calling goroutine.
	Parallelism int

	initialPalette Palette
	quantizer      *Quantizer
	rng            *rand.Rand
	logger         *slog.Logger

	// Stats
	frames      int
	lutRebuilds int
	processTime time.Duration
}

// ProcessorOption is a functional option for configuring a Processor.
type ProcessorOption func(*Processor)

// NewProcessor creates a Processor with the given options. Without
// WithPalette the palette is black and white.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		Parallelism:    1,
		initialPalette: Palette{{0, 0, 0}, {255, 255, 255}},
		logger:         newNopLogger(),
		rng:            rand.New(rand.NewPCG(0x6469, 0x746865)),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.quantizer = NewQuantizer(p.initialPalette, p.logger)
	p.initialPalette = nil
	p.lutRebuilds = 1
	return p
}

// WithPalette sets the initial palette.
func WithPalette(palette Palette) ProcessorOption {
	return func(p *Processor) {
		p.initialPalette = palette.Clone()
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSeed seeds the source used for DiffusionNoise, making noisy output
// reproducible.
func WithSeed(seed uint64) ProcessorOption {
	return func(p *Processor) {
		p.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithParallelism sets the number of row bands for parallel engines.
func WithParallelism(n int) ProcessorOption {
	return func(p *Processor) {
		p.Parallelism = max(n, 1)
	}
}

// SetPalette replaces the active palette. The lookup table is rebuilt only
// if the palette content differs from the current one.
func (p *Processor) SetPalette(palette Palette) {
	if p.quantizer.Update(palette) {
		p.lutRebuilds++
	}
}

// Palette returns a copy of the active palette.
func (p *Processor) Palette() Palette {
	return p.quantizer.Palette()
}

// LUT returns a copy of the active luminance lookup table.
func (p *Processor) LUT() LumaLUT {
	return p.quantizer.LUT()
}

// Quantizer exposes the active quantizer, for callers that want to reuse
// the exact color mapping (metrics, export).
func (p *Processor) Quantizer() *Quantizer {
	return p.quantizer
}

// Process transforms pix in place using the engine selected by
// cfg.Algorithm. Only structural problems with the buffer are reported as
// errors; configuration problems are clamped or fall back to a
// pass-through.
func (p *Processor) Process(pix []byte, width, height int, cfg Config) error {
	f, err := NewFrame(pix, width, height)
	if err != nil {
		return fmt.Errorf("process: %w", err)
	}
	p.ProcessFrame(f, cfg)
	return nil
}

// ProcessFrame transforms an already validated frame in place.
func (p *Processor) ProcessFrame(f Frame, cfg Config) {
	start := time.Now()
	if !cfg.Algorithm.Valid() {
		p.logger.Debug("unknown algorithm, passing frame through",
			"algorithm", int(cfg.Algorithm))
	}
	cfg = cfg.Normalized()
	p.engine(cfg.Algorithm).Apply(f, p.quantizer, cfg)
	p.frames++
	p.processTime += time.Since(start)
}

// engine returns the engine implementing a. The switch covers every
// Algorithm value.
func (p *Processor) engine(a Algorithm) Engine {
	switch a {
	case AlgorithmPosterize:
		return Posterize{Workers: p.Parallelism}
	case AlgorithmFloydSteinberg:
		return ErrorDiffusion{Kernel: FloydSteinberg, Rand: p.rng}
	case AlgorithmFalseFloydSteinberg:
		return ErrorDiffusion{Kernel: FalseFloydSteinberg, Rand: p.rng}
	case AlgorithmAtkinson:
		return ErrorDiffusion{Kernel: Atkinson, Rand: p.rng}
	case AlgorithmBurkes:
		return ErrorDiffusion{Kernel: Burkes, Rand: p.rng}
	case AlgorithmJarvisJudiceNinke:
		return ErrorDiffusion{Kernel: JarvisJudiceNinke, Rand: p.rng}
	case AlgorithmStucki:
		return ErrorDiffusion{Kernel: Stucki, Rand: p.rng}
	case AlgorithmSierra:
		return ErrorDiffusion{Kernel: Sierra, Rand: p.rng}
	case AlgorithmTwoRowSierra:
		return ErrorDiffusion{Kernel: TwoRowSierra, Rand: p.rng}
	case AlgorithmSierraLite:
		return ErrorDiffusion{Kernel: SierraLite, Rand: p.rng}
	case AlgorithmBayer2:
		return Ordered{Matrix: Bayer2, Workers: p.Parallelism}
	case AlgorithmBayer4:
		return Ordered{Matrix: Bayer4, Workers: p.Parallelism}
	case AlgorithmBayer8:
		return Ordered{Matrix: Bayer8, Workers: p.Parallelism}
	case AlgorithmClusteredDot4:
		return Ordered{Matrix: ClusteredDot4x4, Workers: p.Parallelism}
	case AlgorithmClusteredDot8:
		return Ordered{Matrix: ClusteredDot8x8, Workers: p.Parallelism}
	case AlgorithmNoise:
		return Ordered{Matrix: Noise8, Workers: p.Parallelism}
	case AlgorithmAdaptive:
		return Adaptive{Rand: p.rng}
	default:
		return passthrough{}
	}
}

// Stats returns the number of frames processed, how many times the lookup
// table was built and the cumulative processing time.
func (p *Processor) Stats() (frames, lutRebuilds int, elapsed time.Duration) {
	return p.frames, p.lutRebuilds, p.processTime
}

// ResetStats resets all statistics counters.
func (p *Processor) ResetStats() {
	p.frames = 0
	p.lutRebuilds = 0
	p.processTime = 0
}
