package ditherfx

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/wbrown/ditherfx/imageutil"
)

// clusteredSamples returns n jittered samples around each center and the
// exact mean of every cluster.
func clusteredSamples(centers []RGB, n int, jitter int) ([]RGB, [][3]float64) {
	rng := rand.New(rand.NewPCG(5, 6))
	var samples []RGB
	means := make([][3]float64, len(centers))
	for i, c := range centers {
		for j := 0; j < n; j++ {
			s := RGB{
				clampByte(float64(int(c.R) + rng.IntN(2*jitter+1) - jitter)),
				clampByte(float64(int(c.G) + rng.IntN(2*jitter+1) - jitter)),
				clampByte(float64(int(c.B) + rng.IntN(2*jitter+1) - jitter)),
			}
			samples = append(samples, s)
			means[i][0] += float64(s.R) / float64(n)
			means[i][1] += float64(s.G) / float64(n)
			means[i][2] += float64(s.B) / float64(n)
		}
	}
	rng.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })
	return samples, means
}

func TestExtractSeparatedClusters(t *testing.T) {
	t.Parallel()

	centers := []RGB{{20, 30, 200}, {220, 40, 40}, {60, 200, 80}, {240, 240, 230}}
	samples, means := clusteredSamples(centers, 250, 6)

	e := NewExtractor(WithExtractorSeed(1))
	p := e.Extract(samples, len(centers))
	if len(p) != len(centers) {
		t.Fatalf("got %d colors, want %d", len(p), len(centers))
	}
	if n := e.LastIterations(); n < 1 || n >= DefaultIterations {
		t.Errorf("took %d iterations, want convergence before the cap of %d", n, DefaultIterations)
	}

	for i, mean := range means {
		found := false
		for _, c := range p {
			d := math.Sqrt(distSq(mean, [3]float64{float64(c.R), float64(c.G), float64(c.B)}))
			if d <= 1.5 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no extracted color near cluster %d mean %v: %v", i, mean, p)
		}
	}

	for i := 1; i < len(p); i++ {
		if p[i].Luma() < p[i-1].Luma() {
			t.Errorf("palette not sorted by luma: %v", p)
			break
		}
	}
}

func TestExtractDegenerateSamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []RGB
		reason  string
	}{
		{"empty", nil, "empty sample"},
		{"three colors", []RGB{{200, 0, 0}, {0, 200, 0}, {0, 0, 200}, {200, 0, 0}}, "too few distinct colors"},
		{"near black", []RGB{{0, 0, 0}, {1, 2, 3}, {8, 8, 8}, {4, 0, 7}, {2, 2, 2}, {5, 6, 1}}, "near-black sample"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		e := NewExtractor(WithExtractorLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		got := e.Extract(tt.samples, 4)
		if got.Signature() != GrayscaleRamp(4).Signature() {
			t.Errorf("%s: got %v, want a 4 step grayscale ramp", tt.name, got)
		}
		if e.LastIterations() != 0 {
			t.Errorf("%s: ran %d iterations on a degenerate sample", tt.name, e.LastIterations())
		}
		if out := buf.String(); !strings.Contains(out, "level=WARN") || !strings.Contains(out, tt.reason) {
			t.Errorf("%s: warning not logged: %q", tt.name, out)
		}
	}
}

func TestExtractMoreColorsThanClusters(t *testing.T) {
	t.Parallel()

	samples := []RGB{{10, 10, 10}, {80, 20, 20}, {20, 80, 20}, {20, 20, 80}, {200, 200, 200}}
	p := NewExtractor(WithExtractorSeed(9)).Extract(samples, 8)
	if len(p) != 8 {
		t.Fatalf("got %d colors, want 8", len(p))
	}
	members := map[RGB]bool{}
	for _, s := range samples {
		members[s] = true
	}
	for _, c := range p {
		if !members[c] {
			t.Errorf("centroid %v is not one of the five sample colors", c)
		}
	}
}

func TestExtractImage(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateColorBarsImage(320, 40)
	e := NewExtractor(WithExtractorSeed(2), WithSampleSize(64), WithIterations(10))
	p, err := e.ExtractImage(img, 8)
	if err != nil {
		t.Fatalf("ExtractImage: %v", err)
	}
	if len(p) != 8 {
		t.Fatalf("got %d colors, want 8", len(p))
	}
	if e.LastIterations() > 10 {
		t.Errorf("ran %d iterations past the cap", e.LastIterations())
	}

	f, err := e.ExtractFrame(img.Pix, img.Width(), img.Height(), 3)
	if err != nil {
		t.Fatalf("ExtractFrame: %v", err)
	}
	if len(f) != 3 {
		t.Errorf("ExtractFrame gave %d colors, want 3", len(f))
	}

	if _, err := e.ExtractFrame(img.Pix[:10], 2, 2, 3); !errors.Is(err, ErrFrameSize) {
		t.Errorf("short buffer err = %v, want ErrFrameSize", err)
	}
	if _, err := e.ExtractImage(nil, 3); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("nil image err = %v, want ErrEmptyFrame", err)
	}
}

func TestExtractDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	img := imageutil.CreateColorGradientImage(100, 100)
	a, _ := NewExtractor(WithExtractorSeed(77)).ExtractImage(img, 6)
	b, _ := NewExtractor(WithExtractorSeed(77)).ExtractImage(img, 6)
	if a.Signature() != b.Signature() {
		t.Errorf("same seed gave %v and %v", a, b)
	}
}

func TestExtractFrameFewColorsSmallSource(t *testing.T) {
	t.Parallel()

	// Three flat colors in a frame smaller than the sample canvas.
	colors := []RGB{{40, 60, 200}, {195, 34, 30}, {37, 155, 40}}
	f := grayFrame(6, 6, 0)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			setRGB(f.Pix, f.offset(x, y), colors[(x/2+y)%3])
		}
	}
	before := bytes.Clone(f.Pix)

	var buf bytes.Buffer
	e := NewExtractor(WithExtractorLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	p, err := e.ExtractFrame(f.Pix, f.Width, f.Height, 4)
	if err != nil {
		t.Fatalf("ExtractFrame: %v", err)
	}
	if p.Signature() != GrayscaleRamp(4).Signature() {
		t.Errorf("got %v, want a 4 step grayscale ramp", p)
	}
	if !strings.Contains(buf.String(), "too few distinct colors") {
		t.Errorf("warning not logged: %q", buf.String())
	}
	if !bytes.Equal(f.Pix, before) {
		t.Error("ExtractFrame modified the frame")
	}
}

func TestExtractImageFewColorsLargeSource(t *testing.T) {
	t.Parallel()

	// Four wide bars: resampling to the canvas would blend their edges into
	// extra colors, but the source itself is too flat to cluster.
	img := imageutil.CreateCheckerboardImage(300, 200, 50)
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			if img.RGBAAt(x, y).R == 0 {
				img.SetRGB(x, y, 200, 20, 20)
			}
		}
	}
	p, err := NewExtractor().ExtractImage(img, 3)
	if err != nil {
		t.Fatal(err)
	}
	if p.Signature() != GrayscaleRamp(3).Signature() {
		t.Errorf("got %v, want a 3 step grayscale ramp", p)
	}
}

func TestExtractImageSmallSourceKeepsColors(t *testing.T) {
	t.Parallel()

	// A small source with enough colors is clustered as is, so every
	// centroid is one of its own colors when k matches the color count.
	img := imageutil.CreateColorBarsImage(16, 4)
	p, err := NewExtractor(WithExtractorSeed(4)).ExtractImage(img, 8)
	if err != nil {
		t.Fatal(err)
	}
	members := map[RGB]bool{}
	for o := 0; o < len(img.Pix); o += 4 {
		members[rgbAt(img.Pix, o)] = true
	}
	for _, c := range p {
		if !members[c] {
			t.Errorf("centroid %v is not a source color", c)
		}
	}
}
