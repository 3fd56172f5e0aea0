package extrema

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-pdf/internal/testutil"
)

func TestFind_UnimodalParabola(t *testing.T) {
	// y = -(x-5)^2 sampled at 0..10 step 1: one maximum at x=5.
	r := testutil.Grid(0, 1, 11)
	g := testutil.Sampled(func(x float64) float64 { return -(x - 5) * (x - 5) }, r)

	points, err := Find(testutil.MustCurve(t, "parabola", r, g))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("points: got %d (%v), want 1", len(points), points)
	}

	p := points[0]

	if p.Kind != Maximum || p.R != 5 || p.G != 0 {
		t.Errorf("got %+v, want maximum at (5, 0)", p)
	}
}

func TestFind_MonotonicIsEmpty(t *testing.T) {
	r := testutil.Grid(0, 1, 10)
	g := testutil.Sampled(func(x float64) float64 { return 2 * x }, r)

	points, err := Find(testutil.MustCurve(t, "line", r, g))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(points) != 0 {
		t.Errorf("points: got %v, want none", points)
	}
}

func TestFind_MixedSeries(t *testing.T) {
	c := testutil.MustCurve(t, "mixed",
		[]float64{1, 2, 3, 4, 5, 6},
		[]float64{0, 1, -1, 5, 4, 7})

	maxima, err := Maxima(c)
	if err != nil {
		t.Fatalf("Maxima: %v", err)
	}

	if len(maxima) != 2 {
		t.Fatalf("maxima: got %v, want 2", maxima)
	}

	if maxima[0].R != 2 || maxima[0].G != 1 || maxima[1].R != 4 || maxima[1].G != 5 {
		t.Errorf("maxima: got %+v, want (2,1) and (4,5)", maxima)
	}

	minima, err := Minima(c)
	if err != nil {
		t.Fatalf("Minima: %v", err)
	}

	if len(minima) != 2 {
		t.Fatalf("minima: got %v, want 2", minima)
	}

	if minima[0].R != 3 || minima[0].G != -1 || minima[1].R != 5 || minima[1].G != 4 {
		t.Errorf("minima: got %+v, want (3,-1) and (5,4)", minima)
	}
}

func TestFind_EdgesNeverReported(t *testing.T) {
	// Endpoints are the largest/smallest values but must not appear.
	c := testutil.MustCurve(t, "edges",
		[]float64{0, 1, 2, 3},
		[]float64{9, 1, 2, -5})

	points, err := Find(c)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	for _, p := range points {
		if p.Index == 0 || p.Index == c.Len()-1 {
			t.Errorf("edge point reported: %+v", p)
		}
	}
}

func TestFind_PlateauMidpoint(t *testing.T) {
	// Flat top of width 3: indices 2..4, midpoint 3.
	c := testutil.MustCurve(t, "plateau",
		[]float64{0, 1, 2, 3, 4, 5, 6},
		[]float64{0, 1, 2, 2, 2, 1, 0})

	points, err := Find(c)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(points) != 1 {
		t.Fatalf("points: got %v, want 1", points)
	}

	if points[0].Index != 3 || points[0].Kind != Maximum {
		t.Errorf("got %+v, want maximum at index 3", points[0])
	}
}

func TestFind_PlateauMidpointRoundsDown(t *testing.T) {
	// Flat top of width 2: indices 2..3, midpoint rounds down to 2.
	c := testutil.MustCurve(t, "plateau2",
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{0, 1, 2, 2, 1, 0})

	points, err := Find(c)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(points) != 1 || points[0].Index != 2 {
		t.Errorf("got %v, want single maximum at index 2", points)
	}
}

func TestFind_ToleranceCollapsesNoise(t *testing.T) {
	// Ripple of ±0.001 on a peak: without tolerance three maxima,
	// with tolerance one.
	c := testutil.MustCurve(t, "noisy",
		[]float64{0, 1, 2, 3, 4, 5, 6},
		[]float64{0, 1, 1.001, 1, 1.001, 1, 0})

	loose, err := Find(c, WithTolerance(0.01))
	if err != nil {
		t.Fatalf("Find with tolerance: %v", err)
	}

	if len(loose) != 1 {
		t.Errorf("with tolerance: got %v, want 1 extremum", loose)
	}

	strict, err := Find(c)
	if err != nil {
		t.Fatalf("Find strict: %v", err)
	}

	if len(strict) <= 1 {
		t.Errorf("strict: got %v, want multiple extrema", strict)
	}
}

func TestFind_ProminenceFilter(t *testing.T) {
	// A tall peak at index 2 and a shallow wiggle around index 5.
	c := testutil.MustCurve(t, "wiggly",
		[]float64{0, 1, 2, 3, 4, 5, 6, 7},
		[]float64{0, 5, 10, 2, 2.2, 2.4, 2.2, 0})

	all, err := Find(c)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	filtered, err := Find(c, WithMinProminence(1))
	if err != nil {
		t.Fatalf("Find with prominence: %v", err)
	}

	if len(filtered) >= len(all) {
		t.Fatalf("prominence filter removed nothing: %v", filtered)
	}

	for _, p := range filtered {
		if p.Prominence < 1 {
			t.Errorf("kept below-threshold candidate: %+v", p)
		}
	}

	// The dominant peak must survive.
	found := false

	for _, p := range filtered {
		if p.Index == 2 && p.Kind == Maximum {
			found = true
		}
	}

	if !found {
		t.Errorf("dominant maximum missing from %v", filtered)
	}
}

func TestFind_AdjacentSameKindAfterFiltering(t *testing.T) {
	// Two maxima separated by a shallow dip: with prominence filtering
	// the dip's minimum disappears and two maxima become adjacent.
	// That is documented behavior, not a defect.
	c := testutil.MustCurve(t, "twin",
		[]float64{0, 1, 2, 3, 4},
		[]float64{0, 5, 4.9, 5, 0})

	points, err := Find(c, WithMinProminence(0.5))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("points: got %v, want 2", points)
	}

	if points[0].Kind != Maximum || points[1].Kind != Maximum {
		t.Errorf("got %+v, want two adjacent maxima", points)
	}
}

func TestFind_InsufficientData(t *testing.T) {
	c := testutil.MustCurve(t, "tiny", []float64{0, 1}, []float64{0, 1})

	if _, err := Find(c); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("got %v, want ErrInsufficientData", err)
	}
}

func TestFind_AscendingOrder(t *testing.T) {
	r := testutil.Grid(0, 0.1, 201)
	g := testutil.Sampled(func(x float64) float64 { return math.Sin(x) }, r)

	points, err := Find(testutil.MustCurve(t, "sine", r, g))
	if err != nil {
		t.Fatalf("Find: %v", err)
	}

	for i := 1; i < len(points); i++ {
		if points[i].R <= points[i-1].R {
			t.Fatalf("extrema out of order at %d: %v", i, points)
		}
	}

	if len(points) < 5 {
		t.Errorf("expected several extrema over 20 rad of sine, got %v", len(points))
	}
}
