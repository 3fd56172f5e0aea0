package testutil

import (
	"testing"

	"github.com/cwbudde/algo-pdf/curve"
)

// MustCurve builds a curve or fails the test.
func MustCurve(t *testing.T, name string, r, g []float64) *curve.Curve {
	t.Helper()

	c, err := curve.New(name, r, g)
	if err != nil {
		t.Fatalf("curve %q: %v", name, err)
	}

	return c
}

// Grid returns n equally spaced values start, start+step, ...
func Grid(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	return out
}

// Sampled evaluates fn over the grid.
func Sampled(fn func(float64) float64, grid []float64) []float64 {
	out := make([]float64, len(grid))
	for i, x := range grid {
		out[i] = fn(x)
	}

	return out
}
