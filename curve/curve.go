package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Errors returned by curve operations.
var (
	ErrLengthMismatch = errors.New("curve: r and g must have the same length")
	ErrEmpty          = errors.New("curve: at least one point required")
	ErrUnordered      = errors.New("curve: r values must be strictly increasing")
	ErrNonFinite      = errors.New("curve: series contains NaN or Inf")
	ErrBadParameter   = errors.New("curve: transform parameter must be finite")
	ErrAxisMismatch   = errors.New("curve: r axes do not match")
	ErrTooShort       = errors.New("curve: at least two points required")
	ErrOutOfRange     = errors.New("curve: r value outside the curve range")
	ErrDegenerateFit  = errors.New("curve: fit window has zero signal")
	ErrNothingToUndo  = errors.New("curve: transform history is empty")
)

// Format tags the provenance of a curve's data.
type Format string

// Known provenance formats.
const (
	FormatUnknown   Format = ""
	FormatPDFgetX3  Format = "pdfgetx3"
	FormatTwoColumn Format = "two-column"
	FormatDerived   Format = "derived"
)

// Metadata holds header fields extracted from a recognized file format.
// It is never mutated after parsing.
type Metadata map[string]string

// Clone returns an independent copy of the metadata.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}

	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// Provenance records where a curve came from and, for derived curves,
// how it was produced.
type Provenance struct {
	Format  Format   `json:"format"`
	Path    string   `json:"path,omitempty"`
	Sources []string `json:"sources,omitempty"`
	Method  string   `json:"method,omitempty"`
	Weight  float64  `json:"weight,omitempty"`
}

// Point is a single (r, g) sample of a curve.
type Point struct {
	R float64
	G float64
}

// Curve is an ordered G(r) series with strictly increasing r values.
// The originally ingested series is retained so the current state can
// always be reproduced by replaying the transform history.
type Curve struct {
	name    string
	r, g    []float64
	baseR   []float64
	baseG   []float64
	history []Transform
	meta    Metadata
	prov    Provenance
}

// Option mutates a Curve at construction time.
type Option func(*Curve)

// WithMetadata attaches parsed header metadata.
func WithMetadata(m Metadata) Option {
	return func(c *Curve) { c.meta = m.Clone() }
}

// WithProvenance records the curve's origin.
func WithProvenance(p Provenance) Option {
	return func(c *Curve) { c.prov = p }
}

// New creates a curve from the given series. The slices are copied.
// r must be strictly increasing and both series must be finite.
func New(name string, r, g []float64, opts ...Option) (*Curve, error) {
	if len(r) != len(g) {
		return nil, ErrLengthMismatch
	}

	if len(r) == 0 {
		return nil, ErrEmpty
	}

	for i := range r {
		if math.IsNaN(r[i]) || math.IsInf(r[i], 0) || math.IsNaN(g[i]) || math.IsInf(g[i], 0) {
			return nil, ErrNonFinite
		}

		if i > 0 && r[i] <= r[i-1] {
			return nil, ErrUnordered
		}
	}

	c := &Curve{
		name:  name,
		r:     append([]float64(nil), r...),
		g:     append([]float64(nil), g...),
		baseR: append([]float64(nil), r...),
		baseG: append([]float64(nil), g...),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// Name returns the curve's label.
func (c *Curve) Name() string { return c.name }

// Rename sets the curve's label.
func (c *Curve) Rename(name string) { c.name = name }

// Len returns the number of points.
func (c *Curve) Len() int { return len(c.r) }

// R returns a copy of the r values.
func (c *Curve) R() []float64 { return append([]float64(nil), c.r...) }

// G returns a copy of the g values.
func (c *Curve) G() []float64 { return append([]float64(nil), c.g...) }

// Point returns the i-th point. Panics if i is out of range.
func (c *Curve) Point(i int) Point { return Point{R: c.r[i], G: c.g[i]} }

// Points returns the series as a slice of points, ready for plotting.
func (c *Curve) Points() []Point {
	out := make([]Point, len(c.r))
	for i := range out {
		out[i] = Point{R: c.r[i], G: c.g[i]}
	}

	return out
}

// RMin returns the smallest r value.
func (c *Curve) RMin() float64 { return c.r[0] }

// RMax returns the largest r value.
func (c *Curve) RMax() float64 { return c.r[len(c.r)-1] }

// Metadata returns the header metadata captured at parse time.
func (c *Curve) Metadata() Metadata { return c.meta.Clone() }

// Provenance returns the curve's origin record.
func (c *Curve) Provenance() Provenance { return c.prov }

// SetProvenance replaces the origin record. The session uses this to
// swap display names for stable ids in derived-curve provenance.
func (c *Curve) SetProvenance(p Provenance) { c.prov = p }

// Equal reports whether both curves have the same series within tol.
func (c *Curve) Equal(o *Curve, tol float64) bool {
	if c.Len() != o.Len() {
		return false
	}

	for i := range c.r {
		if math.Abs(c.r[i]-o.r[i]) > tol || math.Abs(c.g[i]-o.g[i]) > tol {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the curve, including its base series and
// transform history.
func (c *Curve) Clone() *Curve {
	return &Curve{
		name:    c.name,
		r:       append([]float64(nil), c.r...),
		g:       append([]float64(nil), c.g...),
		baseR:   append([]float64(nil), c.baseR...),
		baseG:   append([]float64(nil), c.baseG...),
		history: append([]Transform(nil), c.history...),
		meta:    c.meta.Clone(),
		prov:    c.prov,
	}
}

// Add returns the pointwise sum of two curves sharing the same r axis.
func (c *Curve) Add(o *Curve) (*Curve, error) {
	if !c.sameAxis(o) {
		return nil, ErrAxisMismatch
	}

	g := make([]float64, len(c.g))
	floats.AddTo(g, c.g, o.g)

	return New(fmt.Sprintf("%s + %s", c.name, o.name), c.r, g,
		WithProvenance(Provenance{
			Format:  FormatDerived,
			Sources: []string{c.name, o.name},
			Method:  "sum",
		}))
}

// Distance returns the maximum absolute deviation between two curves
// sharing the same r axis.
func (c *Curve) Distance(o *Curve) (float64, error) {
	if !c.sameAxis(o) {
		return 0, ErrAxisMismatch
	}

	diff := make([]float64, len(c.g))
	floats.SubTo(diff, c.g, o.g)

	return floats.Norm(diff, math.Inf(1)), nil
}

// FitTo scales the curve so that it matches ref in the least-squares
// sense over the full shared r axis, and returns the applied factor.
// The factor is recorded in the transform history like any other scale.
func (c *Curve) FitTo(ref *Curve) (float64, error) {
	return c.FitToRange(ref, math.Inf(-1), math.Inf(1))
}

// FitToRange is like [Curve.FitTo] but restricts the residual to the
// window [rmin, rmax]. The window bounds snap inward to the nearest
// grid points; the whole curve is still scaled.
func (c *Curve) FitToRange(ref *Curve, rmin, rmax float64) (float64, error) {
	if !c.sameAxis(ref) {
		return 0, ErrAxisMismatch
	}

	lo := c.IndexAtOrAbove(rmin)
	hi := c.IndexAtOrBelow(rmax)

	if lo < 0 || hi < 0 || lo > hi {
		return 0, ErrOutOfRange
	}

	denom := floats.Dot(c.g[lo:hi+1], c.g[lo:hi+1])
	if denom == 0 {
		return 0, ErrDegenerateFit
	}

	factor := floats.Dot(c.g[lo:hi+1], ref.g[lo:hi+1]) / denom

	if _, err := c.Scale(factor); err != nil {
		return 0, err
	}

	return factor, nil
}

// IndexAtOrAbove returns the first index whose r is >= rmin,
// or -1 if rmin lies beyond the last point.
func (c *Curve) IndexAtOrAbove(rmin float64) int {
	i := sort.SearchFloat64s(c.r, rmin)
	if i == len(c.r) {
		return -1
	}

	return i
}

// IndexAtOrBelow returns the last index whose r is <= rmax,
// or -1 if rmax lies before the first point.
func (c *Curve) IndexAtOrBelow(rmax float64) int {
	i := sort.SearchFloat64s(c.r, rmax)
	if i < len(c.r) && c.r[i] == rmax {
		return i
	}

	return i - 1
}

// InsertPointLinear inserts a new point at r using linear interpolation
// between the two bracketing points. r must lie strictly inside the
// curve's range and must not collide with an existing grid point.
// The point is inserted into the base series and the transform history
// is replayed, so replaying remains exact.
func (c *Curve) InsertPointLinear(r float64) error {
	if c.Len() < 2 {
		return ErrTooShort
	}

	baseR, i, err := c.locateInsertion(r)
	if err != nil {
		return err
	}

	t := (baseR - c.baseR[i-1]) / (c.baseR[i] - c.baseR[i-1])
	baseG := c.baseG[i-1] + t*(c.baseG[i]-c.baseG[i-1])

	c.insertBase(i, baseR, baseG)
	c.replay()

	return nil
}

// InsertPointPolynomial inserts a new point at r, interpolating its g
// value with the Lagrange polynomial through the degree+1 base points
// nearest to r. Degree 1 matches [Curve.InsertPointLinear]; higher
// degrees reproduce polynomial data of that degree exactly.
func (c *Curve) InsertPointPolynomial(r float64, degree int) error {
	if degree < 1 {
		return ErrBadParameter
	}

	if c.Len() < degree+1 {
		return ErrTooShort
	}

	baseR, i, err := c.locateInsertion(r)
	if err != nil {
		return err
	}

	// Grow the support window [lo, hi) around the insertion point,
	// always taking the closer next grid point.
	lo, hi := i, i
	for hi-lo < degree+1 {
		switch {
		case lo == 0:
			hi++
		case hi == len(c.baseR):
			lo--
		case baseR-c.baseR[lo-1] <= c.baseR[hi]-baseR:
			lo--
		default:
			hi++
		}
	}

	baseG := lagrangeAt(c.baseR[lo:hi], c.baseG[lo:hi], baseR)

	c.insertBase(i, baseR, baseG)
	c.replay()

	return nil
}

// locateInsertion validates r and maps it onto the base grid, returning
// the base-axis value and the insertion index.
func (c *Curve) locateInsertion(r float64) (float64, int, error) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, 0, ErrBadParameter
	}

	if r <= c.r[0] || r >= c.r[len(c.r)-1] {
		return 0, 0, ErrOutOfRange
	}

	// The base grid may be offset from the current one by shifts.
	baseR := r - c.totalShift()

	i := sort.SearchFloat64s(c.baseR, baseR)
	if i < len(c.baseR) && c.baseR[i] == baseR {
		return 0, 0, ErrUnordered
	}

	return baseR, i, nil
}

func (c *Curve) insertBase(i int, r, g float64) {
	c.baseR = append(c.baseR, 0)
	copy(c.baseR[i+1:], c.baseR[i:])
	c.baseR[i] = r

	c.baseG = append(c.baseG, 0)
	copy(c.baseG[i+1:], c.baseG[i:])
	c.baseG[i] = g
}

// lagrangeAt evaluates the Lagrange polynomial through (xs, ys) at x.
func lagrangeAt(xs, ys []float64, x float64) float64 {
	var sum float64

	for j := range xs {
		term := ys[j]

		for k := range xs {
			if k != j {
				term *= (x - xs[k]) / (xs[j] - xs[k])
			}
		}

		sum += term
	}

	return sum
}

func (c *Curve) sameAxis(o *Curve) bool {
	if c.Len() != o.Len() {
		return false
	}

	for i := range c.r {
		if c.r[i] != o.r[i] {
			return false
		}
	}

	return true
}

func (c *Curve) totalShift() float64 {
	var dx float64

	for _, t := range c.history {
		if t.Op == OpShift {
			dx += t.Value
		}
	}

	return dx
}

// scale kernel shared by Apply and replay.
func scaleInto(g []float64, factor float64) {
	vecmath.ScaleBlock(g, g, factor)
}
