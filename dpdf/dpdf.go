// Package dpdf computes differential pair distribution functions.
//
// A dPDF is the weighted difference g_a(r) - w·g_b(r) over the common
// r range of two curves. When the grids differ, the subtrahend is
// linearly interpolated onto the minuend's grid; points outside the
// overlap are dropped, never zero-padded, and extrapolation is never
// performed.
package dpdf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/cwbudde/algo-pdf/curve"
)

// Errors returned by the difference engine.
var (
	ErrNoOverlap        = errors.New("dpdf: r ranges do not overlap")
	ErrEmptyOverlap     = errors.New("dpdf: no minuend grid points inside the overlap")
	ErrInsufficientData = errors.New("dpdf: both curves need at least two points")
	ErrBadWeight        = errors.New("dpdf: weight must be finite")
)

// Alignment methods recorded in the result's provenance.
const (
	MethodSharedGrid   = "shared-grid"
	MethodInterpolated = "interpolated"
)

// Difference computes minuend - weight·subtrahend over the overlapping
// r range. The result is a fresh curve whose provenance names both
// sources, the weight, and the alignment method, so it can be
// recomputed deterministically after either source transforms.
func Difference(minuend, subtrahend *curve.Curve, weight float64) (*curve.Curve, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return nil, ErrBadWeight
	}

	if minuend.Len() < 2 || subtrahend.Len() < 2 {
		return nil, ErrInsufficientData
	}

	lo := math.Max(minuend.RMin(), subtrahend.RMin())
	hi := math.Min(minuend.RMax(), subtrahend.RMax())

	if lo > hi {
		return nil, ErrNoOverlap
	}

	// Result grid: the minuend's points inside the overlap.
	aR := minuend.R()
	aG := minuend.G()

	// The ranges intersect, but a narrow overlap may still fall between
	// two minuend grid points.
	start := minuend.IndexAtOrAbove(lo)
	end := minuend.IndexAtOrBelow(hi)

	if start < 0 || end < 0 || start > end {
		return nil, ErrEmptyOverlap
	}

	r := aR[start : end+1]
	ag := aG[start : end+1]

	bVals, method, err := subtrahendOn(r, subtrahend)
	if err != nil {
		return nil, err
	}

	g := make([]float64, len(r))
	floats.AddScaledTo(g, ag, -weight, bVals)

	name := fmt.Sprintf("d(%s - %g*%s)", minuend.Name(), weight, subtrahend.Name())

	out, err := curve.New(name, r, g, curve.WithProvenance(curve.Provenance{
		Format:  curve.FormatDerived,
		Sources: []string{minuend.Name(), subtrahend.Name()},
		Method:  method,
		Weight:  weight,
	}))
	if err != nil {
		return nil, fmt.Errorf("dpdf: %w", err)
	}

	return out, nil
}

// Subtract is the plain difference, weight 1.
func Subtract(minuend, subtrahend *curve.Curve) (*curve.Curve, error) {
	return Difference(minuend, subtrahend, 1)
}

// subtrahendOn returns the subtrahend's g values on the target grid.
// If the grids coincide exactly the values are taken verbatim;
// otherwise each target r is linearly interpolated between the two
// bracketing subtrahend points.
func subtrahendOn(r []float64, b *curve.Curve) ([]float64, string, error) {
	bR := b.R()
	bG := b.G()

	if sharedGrid(r, bR) {
		i := b.IndexAtOrAbove(r[0])
		return bG[i : i+len(r)], MethodSharedGrid, nil
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(bR, bG); err != nil {
		return nil, "", fmt.Errorf("dpdf: aligning grids: %w", err)
	}

	out := make([]float64, len(r))
	for i, x := range r {
		out[i] = pl.Predict(x)
	}

	return out, MethodInterpolated, nil
}

// sharedGrid reports whether every target r is present verbatim as a
// contiguous run of the subtrahend grid.
func sharedGrid(r, bR []float64) bool {
	if len(r) == 0 || len(bR) < len(r) {
		return false
	}

	// Locate r[0] in bR.
	start := -1

	for i, v := range bR {
		if v == r[0] {
			start = i
			break
		}

		if v > r[0] {
			return false
		}
	}

	if start < 0 || start+len(r) > len(bR) {
		return false
	}

	for i := range r {
		if bR[start+i] != r[i] {
			return false
		}
	}

	return true
}
