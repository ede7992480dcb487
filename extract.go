package ditherfx

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wbrown/ditherfx/imageutil"
)

const (
	// DefaultSampleSize is the side of the square canvas a source is
	// downsampled to before sampling.
	DefaultSampleSize = 100
	// DefaultIterations caps Lloyd refinement.
	DefaultIterations = 15
	// ConvergenceThreshold is the largest centroid movement, in RGB units,
	// at which refinement stops early.
	ConvergenceThreshold = 0.5

	// minDistinctColors below this, a sample is too flat to cluster.
	minDistinctColors = 5
	// darkChannelLimit is the brightest channel value a sample may have
	// and still count as an unready, all-dark frame.
	darkChannelLimit = 8
	// assignChunk is the number of samples one goroutine assigns.
	assignChunk = 2048
)

// Extractor derives a palette from source content with k-means++.
type Extractor struct {
	SampleSize int
	Iterations int

	rng    *rand.Rand
	logger *slog.Logger

	// lastIterations is the number of Lloyd rounds the last Extract ran.
	lastIterations int
}

// ExtractorOption is a functional option for configuring an Extractor.
type ExtractorOption func(*Extractor)

// NewExtractor creates an Extractor with a 100×100 sample canvas and at
// most 15 refinement rounds.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		SampleSize: DefaultSampleSize,
		Iterations: DefaultIterations,
		rng:        rand.New(rand.NewPCG(0x6b6d, 0x65616e73)),
		logger:     newNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithExtractorSeed makes seeding deterministic.
func WithExtractorSeed(seed uint64) ExtractorOption {
	return func(e *Extractor) {
		e.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithIterations sets the refinement cap.
func WithIterations(n int) ExtractorOption {
	return func(e *Extractor) {
		e.Iterations = max(n, 1)
	}
}

// WithSampleSize sets the side of the downsampling canvas.
func WithSampleSize(n int) ExtractorOption {
	return func(e *Extractor) {
		e.SampleSize = max(n, 1)
	}
}

// WithExtractorLogger sets the logger used for warnings.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// ExtractImage extracts a k color palette from img. Sources larger than
// the sample canvas are downsampled to it first; smaller ones are sampled
// as they are. The flatness check runs on the source pixels, before any
// resampling.
func (e *Extractor) ExtractImage(img image.Image, k int) (Palette, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("extract: %w", ErrEmptyFrame)
	}
	src := imageutil.RGBAImageFromImage(img)
	pix := src.Frame()
	if reason, ok := degenerate(len(pix)/4, func(i int) RGB { return rgbAt(pix, i*4) }); ok {
		return e.fallback(reason, len(pix)/4, k), nil
	}
	if src.Width() > e.SampleSize || src.Height() > e.SampleSize {
		pix = imageutil.Resize(src, e.SampleSize, e.SampleSize, imageutil.InterpolationArea).Pix
	}
	return e.Extract(samplesFromPix(pix), k), nil
}

// ExtractFrame is ExtractImage for a raw RGBA buffer.
func (e *Extractor) ExtractFrame(pix []byte, width, height int, k int) (Palette, error) {
	f, err := NewFrame(pix, width, height)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return e.ExtractImage(imageutil.WrapPix(f.Pix, f.Width, f.Height), k)
}

// LastIterations returns how many refinement rounds the previous Extract
// call ran. It is 0 when the call fell back to a grayscale ramp.
func (e *Extractor) LastIterations() int {
	return e.lastIterations
}

// Extract clusters samples into k colors and returns them sorted from
// darkest to lightest. k below 1 is treated as 1. When the samples hold
// fewer than five distinct colors, or are all near black, the result is an
// evenly spaced grayscale ramp of k entries instead.
func (e *Extractor) Extract(samples []RGB, k int) Palette {
	k = max(k, 1)
	e.lastIterations = 0
	if reason, ok := degenerate(len(samples), func(i int) RGB { return samples[i] }); ok {
		return e.fallback(reason, len(samples), k)
	}

	points := make([][3]float64, len(samples))
	for i, s := range samples {
		points[i] = [3]float64{float64(s.R), float64(s.G), float64(s.B)}
	}

	centroids := e.seed(points, k)
	assign := make([]int, len(points))
	for iter := 1; iter <= e.Iterations; iter++ {
		e.lastIterations = iter
		assignNearest(points, centroids, assign)
		if moved := recompute(points, centroids, assign); moved < ConvergenceThreshold {
			break
		}
	}

	out := make(Palette, k)
	for i, c := range centroids {
		out[i] = RGB{clampByte(c[0]), clampByte(c[1]), clampByte(c[2])}
	}
	out.SortByLuma()
	e.logger.Debug("extracted palette", "colors", k, "iterations", e.lastIterations)
	return out
}

// fallback logs why clustering was skipped and returns the grayscale ramp.
func (e *Extractor) fallback(reason string, samples, k int) Palette {
	k = max(k, 1)
	e.lastIterations = 0
	e.logger.Warn("sample unsuitable for clustering, using grayscale ramp",
		"reason", reason, "samples", samples, "colors", k)
	return GrayscaleRamp(k)
}

// seed picks k initial centroids with k-means++: the first uniformly, each
// next one with probability proportional to its squared distance from the
// nearest centroid already chosen.
func (e *Extractor) seed(points [][3]float64, k int) [][3]float64 {
	centroids := make([][3]float64, 0, k)
	centroids = append(centroids, points[e.rng.IntN(len(points))])

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = distSq(p, centroids[0])
	}
	for len(centroids) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := len(points) - 1
		if total == 0 {
			next = e.rng.IntN(len(points))
		} else {
			target := e.rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target < 0 {
					next = i
					break
				}
			}
		}
		c := points[next]
		centroids = append(centroids, c)
		for i, p := range points {
			dist[i] = min(dist[i], distSq(p, c))
		}
	}
	return centroids
}

// assignNearest writes the index of the nearest centroid for every point.
// Chunks of points are assigned concurrently; each goroutine writes only
// its own slice of assign.
func assignNearest(points, centroids [][3]float64, assign []int) {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for lo := 0; lo < len(points); lo += assignChunk {
		hi := min(lo+assignChunk, len(points))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				best, bestDist := 0, math.Inf(1)
				for j, c := range centroids {
					if d := distSq(points[i], c); d < bestDist {
						best, bestDist = j, d
					}
				}
				assign[i] = best
			}
			return nil
		})
	}
	_ = g.Wait()
}

// recompute moves every centroid to the mean of its points and returns the
// largest distance any centroid moved. Centroids without points stay put.
func recompute(points, centroids [][3]float64, assign []int) float64 {
	sums := make([][3]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i, p := range points {
		c := assign[i]
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		sums[c][2] += p[2]
		counts[c]++
	}

	var moved float64
	for j := range centroids {
		if counts[j] == 0 {
			continue
		}
		n := float64(counts[j])
		next := [3]float64{sums[j][0] / n, sums[j][1] / n, sums[j][2] / n}
		moved = max(moved, math.Sqrt(distSq(next, centroids[j])))
		centroids[j] = next
	}
	return moved
}

// degenerate reports whether the n colors returned by at are too flat to
// cluster, and why.
func degenerate(n int, at func(i int) RGB) (string, bool) {
	if n == 0 {
		return "empty sample", true
	}
	distinct := make(map[RGB]struct{}, minDistinctColors)
	dark := true
	for i := 0; i < n; i++ {
		s := at(i)
		if len(distinct) < minDistinctColors {
			distinct[s] = struct{}{}
		}
		if s.R > darkChannelLimit || s.G > darkChannelLimit || s.B > darkChannelLimit {
			dark = false
		}
		if !dark && len(distinct) >= minDistinctColors {
			return "", false
		}
	}
	if dark {
		return "near-black sample", true
	}
	return "too few distinct colors", true
}

func samplesFromPix(pix []byte) []RGB {
	out := make([]RGB, 0, len(pix)/4)
	for o := 0; o+3 < len(pix); o += 4 {
		out = append(out, rgbAt(pix, o))
	}
	return out
}

func distSq(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}
