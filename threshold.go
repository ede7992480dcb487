package ditherfx

import (
	"fmt"
	"math/rand/v2"

	"github.com/makeworld-the-better-one/dither/v2"
)

// ThresholdMatrix is a small square table of ordered-dither bias values in
// [-0.5, 0.5], addressed with wrap-around so it tiles the whole frame.
type ThresholdMatrix struct {
	Name   string
	size   int
	values []float64
}

// Size returns the side length of the matrix.
func (m ThresholdMatrix) Size() int {
	return m.size
}

// At returns the bias for pixel (x, y). Coordinates wrap modulo Size,
// negative ones included.
func (m ThresholdMatrix) At(x, y int) float64 {
	x %= m.size
	if x < 0 {
		x += m.size
	}
	y %= m.size
	if y < 0 {
		y += m.size
	}
	return m.values[y*m.size+x]
}

// NewThresholdMatrix builds a matrix from rank values 0..n-1 (or any
// non-negative ranking) laid out row-major in a square. Each rank r maps to
// (r+0.5)/(maxRank+1) - 0.5.
func NewThresholdMatrix(name string, ranks [][]uint) (ThresholdMatrix, error) {
	n := len(ranks)
	if n == 0 {
		return ThresholdMatrix{}, fmt.Errorf("threshold matrix %s: empty", name)
	}
	var maxRank uint
	for _, row := range ranks {
		if len(row) != n {
			return ThresholdMatrix{}, fmt.Errorf("threshold matrix %s: not square", name)
		}
		for _, r := range row {
			maxRank = max(maxRank, r)
		}
	}
	m := ThresholdMatrix{Name: name, size: n, values: make([]float64, n*n)}
	levels := float64(maxRank) + 1
	for y, row := range ranks {
		for x, r := range row {
			m.values[y*n+x] = (float64(r)+0.5)/levels - 0.5
		}
	}
	return m, nil
}

// Bayer returns the classic recursive Bayer matrix of side n, which must be
// a power of two.
func Bayer(n int) (ThresholdMatrix, error) {
	if n < 2 || n&(n-1) != 0 {
		return ThresholdMatrix{}, fmt.Errorf("bayer: size %d is not a power of two", n)
	}
	ranks := [][]uint{{0}}
	for size := 1; size < n; size *= 2 {
		next := make([][]uint, size*2)
		for y := range next {
			next[y] = make([]uint, size*2)
		}
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				v := 4 * ranks[y][x]
				next[y][x] = v
				next[y][x+size] = v + 2
				next[y+size][x] = v + 3
				next[y+size][x+size] = v + 1
			}
		}
		ranks = next
	}
	return NewThresholdMatrix(fmt.Sprintf("bayer%d", n), ranks)
}

// NoiseMatrix returns a size×size matrix holding a pseudo-random
// permutation of the ranks 0..size²-1. It is the higher-entropy
// alternative to Bayer and is deterministic for a given seed.
func NoiseMatrix(size int, seed uint64) (ThresholdMatrix, error) {
	if size < 1 {
		return ThresholdMatrix{}, fmt.Errorf("noise: size %d must be positive", size)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(size * size)
	ranks := make([][]uint, size)
	for y := range ranks {
		ranks[y] = make([]uint, size)
		for x := range ranks[y] {
			ranks[y][x] = uint(perm[y*size+x])
		}
	}
	return NewThresholdMatrix(fmt.Sprintf("noise%d", size), ranks)
}

// Threshold matrices created once at startup.
var (
	Bayer2          = mustMatrix(Bayer(2))
	Bayer4          = mustMatrix(Bayer(4))
	Bayer8          = mustMatrix(Bayer(8))
	ClusteredDot4x4 = mustMatrix(NewThresholdMatrix("clustered-dot4", dither.ClusteredDot4x4.Matrix))
	ClusteredDot8x8 = mustMatrix(NewThresholdMatrix("clustered-dot8", dither.ClusteredDot8x8.Matrix))
	Noise8          = mustMatrix(NoiseMatrix(8, 0x5eed))
)

func mustMatrix(m ThresholdMatrix, err error) ThresholdMatrix {
	if err != nil {
		panic(err)
	}
	return m
}
