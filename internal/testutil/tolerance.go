package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails the test when the two series differ in
// length or any pair of samples lies farther apart than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("series length: got %d, want %d", len(got), len(want))
	}

	for i := range want {
		if d := math.Abs(got[i] - want[i]); d > eps {
			t.Fatalf("sample %d: got %v, want %v (|diff| %v exceeds %v)", i, got[i], want[i], d, eps)
		}
	}
}

// RequireFinite fails the test when the series contains a NaN or Inf
// sample.
func RequireFinite(t *testing.T, series []float64) {
	t.Helper()

	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d is not finite: %v", i, v)
		}
	}
}
