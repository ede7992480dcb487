package ditherfx

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/wbrown/ditherfx/imageutil"
)

func lumaConfig(a Algorithm) Config {
	cfg := DefaultConfig()
	cfg.Algorithm = a
	cfg.Serpentine = false
	cfg.ColorCount = 2
	return cfg
}

func TestFloydSteinbergMidGray(t *testing.T) {
	t.Parallel()

	b, w := RGB{0, 0, 0}, RGB{255, 255, 255}
	tests := []struct {
		gray uint8
		want [][]RGB
	}{
		// 128 is nearer white; its error darkens the rest of the block.
		{128, [][]RGB{{w, b}, {b, w}}},
		{127, [][]RGB{{b, w}, {w, b}}},
	}
	for _, tt := range tests {
		f := grayFrame(2, 2, tt.gray)
		q := NewQuantizer(blackWhite, nil)
		ErrorDiffusion{Kernel: FloydSteinberg}.Apply(f, q, lumaConfig(AlgorithmFloydSteinberg))

		got := grid(f)
		for y := range tt.want {
			for x := range tt.want[y] {
				if got[y][x] != tt.want[y][x] {
					t.Errorf("gray %d: pixel (%d, %d) = %v, want %v", tt.gray, x, y, got[y][x], tt.want[y][x])
				}
			}
		}
	}
}

func TestSerpentineMirrorsKernel(t *testing.T) {
	t.Parallel()

	// Row 0 is black and diffuses nothing. Row 1 decides the direction.
	build := func() Frame {
		f := grayFrame(3, 2, 0)
		for x, v := range []uint8{100, 100, 60} {
			setRGB(f.Pix, f.offset(x, 1), RGB{v, v, v})
		}
		return f
	}
	b, w := RGB{0, 0, 0}, RGB{255, 255, 255}

	tests := []struct {
		serpentine bool
		want       []RGB
	}{
		{false, []RGB{b, w, b}},
		{true, []RGB{w, b, b}},
	}
	for _, tt := range tests {
		f := build()
		cfg := lumaConfig(AlgorithmFloydSteinberg)
		cfg.Serpentine = tt.serpentine
		ErrorDiffusion{Kernel: FloydSteinberg}.Apply(f, NewQuantizer(blackWhite, nil), cfg)

		row := grid(f)[1]
		for x := range tt.want {
			if row[x] != tt.want[x] {
				t.Errorf("serpentine=%v: row 1 = %v, want %v", tt.serpentine, row, tt.want)
				break
			}
		}
	}
}

func TestDiffusionKeepsPaletteAndAlpha(t *testing.T) {
	t.Parallel()

	kernels := []Kernel{
		FloydSteinberg, FalseFloydSteinberg, Atkinson, Burkes,
		JarvisJudiceNinke, Stucki, Sierra, TwoRowSierra, SierraLite,
	}
	src := frameOf(imageutil.CreateColorGradientImage(23, 17))
	// Vary alpha so any write to it shows up.
	for o := 3; o < len(src.Pix); o += 4 {
		src.Pix[o] = uint8(o * 7)
	}

	for _, k := range kernels {
		for _, preserve := range []bool{false, true} {
			for _, serpentine := range []bool{false, true} {
				f := cloneFrame(src)
				cfg := DefaultConfig()
				cfg.PreserveColor = preserve
				cfg.Serpentine = serpentine
				cfg.DiffusionStrength = MaxDiffusionStrength
				ErrorDiffusion{Kernel: k}.Apply(f, NewQuantizer(sixColors, nil), cfg)

				name := k.Name
				assertPaletteOnly(t, name, f, sixColors)
				assertAlpha(t, name, f, src)
			}
		}
	}
}

func TestDiffusionTinyFrames(t *testing.T) {
	t.Parallel()

	// Every kernel reaches past the edge of these frames.
	sizes := [][2]int{{1, 1}, {1, 5}, {5, 1}, {2, 2}}
	for _, k := range []Kernel{FloydSteinberg, JarvisJudiceNinke, Atkinson} {
		for _, s := range sizes {
			f := grayFrame(s[0], s[1], 90)
			cfg := DefaultConfig()
			ErrorDiffusion{Kernel: k}.Apply(f, NewQuantizer(blackWhite, nil), cfg)
			assertPaletteOnly(t, k.Name, f, blackWhite)
		}
	}
}

func TestZeroStrengthIsPosterize(t *testing.T) {
	t.Parallel()

	src := frameOf(imageutil.CreateGradientImage(32, 8))
	q := NewQuantizer(fourGrays, nil)

	diffused := cloneFrame(src)
	cfg := DefaultConfig()
	cfg.DiffusionStrength = 0
	ErrorDiffusion{Kernel: Stucki}.Apply(diffused, q, cfg)

	posterized := cloneFrame(src)
	Posterize{}.Apply(posterized, q, cfg)

	if !bytes.Equal(diffused.Pix, posterized.Pix) {
		t.Error("zero strength diffusion differs from posterize")
	}
}

func TestPreserveColorDiffusesPerChannel(t *testing.T) {
	t.Parallel()

	// A saturated red field dithered to red and black stays free of the
	// other primaries only when error is carried per channel.
	p := Palette{{0, 0, 0}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	f := frameOf(imageutil.CreateSolidImage(16, 16, 180, 0, 0))
	cfg := DefaultConfig()
	cfg.PreserveColor = true
	ErrorDiffusion{Kernel: FloydSteinberg}.Apply(f, NewQuantizer(p, nil), cfg)

	counts := map[RGB]int{}
	for o := 0; o < len(f.Pix); o += 4 {
		counts[rgbAt(f.Pix, o)]++
	}
	if counts[RGB{0, 255, 0}] != 0 || counts[RGB{0, 0, 255}] != 0 {
		t.Errorf("green or blue leaked into a red field: %v", counts)
	}
	if counts[RGB{255, 0, 0}] == 0 || counts[RGB{0, 0, 0}] == 0 {
		t.Errorf("expected a red/black mix, got %v", counts)
	}
}

func TestDiffusionNoiseIsSeeded(t *testing.T) {
	t.Parallel()

	src := frameOf(imageutil.CreateGradientImage(40, 10))
	cfg := DefaultConfig()
	cfg.DiffusionNoise = 0.5
	run := func(seed uint64) []byte {
		f := cloneFrame(src)
		e := ErrorDiffusion{Kernel: FloydSteinberg, Rand: rand.New(rand.NewPCG(seed, seed))}
		e.Apply(f, NewQuantizer(blackWhite, nil), cfg)
		return f.Pix
	}
	if !bytes.Equal(run(3), run(3)) {
		t.Error("same seed gave different output")
	}
}

func TestErrorShaper(t *testing.T) {
	t.Parallel()

	identity := newErrorShaper(DefaultConfig(), nil)
	for _, e := range []float64{-255, -3.5, 0, 12, 255} {
		if got := identity.apply(e); got != e {
			t.Errorf("identity shaper changed %v to %v", e, got)
		}
	}

	cfg := DefaultConfig()
	cfg.ErrorGamma = 2
	sq := newErrorShaper(cfg, nil)
	if got := sq.apply(-127.5); got > -63 || got < -64 {
		t.Errorf("gamma 2 shaped -127.5 to %v, want about -63.75", got)
	}
	if got := sq.apply(255); got != 255 {
		t.Errorf("gamma must keep full scale, got %v", got)
	}
}
