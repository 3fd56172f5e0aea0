package extrema

import (
	"errors"

	"github.com/cwbudde/algo-pdf/curve"
)

// ErrInsufficientData is returned for curves with fewer than 3 points,
// which cannot contain an interior extremum.
var ErrInsufficientData = errors.New("extrema: curve must have at least 3 points")

// Kind classifies an extremum.
type Kind int

// Extremum kinds.
const (
	Maximum Kind = iota
	Minimum
)

// String returns "maximum" or "minimum".
func (k Kind) String() string {
	if k == Minimum {
		return "minimum"
	}

	return "maximum"
}

// Point is one detected extremum. Index refers to the curve's series at
// the time of the scan; any later transform invalidates it.
type Point struct {
	Index      int
	R          float64
	G          float64
	Kind       Kind
	Prominence float64
}

// Find scans the curve for local maxima and minima, in ascending r
// order. Runs of samples equal within the configured tolerance collapse
// to a single extremum at the run's midpoint (rounding down), and edge
// points are never reported. After prominence filtering two extrema of
// the same kind may end up adjacent; that is expected, not a defect.
func Find(c *curve.Curve, opts ...Option) ([]Point, error) {
	if c.Len() < 3 {
		return nil, ErrInsufficientData
	}

	cfg := ApplyOptions(opts...)
	g := c.G()

	var out []Point

	i := 0
	for i < len(g) {
		// Extend the plateau: successive neighbors within tolerance.
		j := i
		for j+1 < len(g) && abs(g[j+1]-g[j]) <= cfg.Tolerance {
			j++
		}

		if i > 0 && j < len(g)-1 {
			mid := (i + j) / 2

			var kind Kind

			switch {
			case g[i-1] < g[i] && g[j+1] < g[j]:
				kind = Maximum
			case g[i-1] > g[i] && g[j+1] > g[j]:
				kind = Minimum
			default:
				i = j + 1
				continue
			}

			prom := prominence(g, i, j, kind)
			if cfg.MinProminence <= 0 || prom >= cfg.MinProminence {
				out = append(out, Point{
					Index:      mid,
					R:          c.Point(mid).R,
					G:          g[mid],
					Kind:       kind,
					Prominence: prom,
				})
			}
		}

		i = j + 1
	}

	return out, nil
}

// Maxima returns only the local maxima of the curve.
func Maxima(c *curve.Curve, opts ...Option) ([]Point, error) {
	return filtered(c, Maximum, opts)
}

// Minima returns only the local minima of the curve.
func Minima(c *curve.Curve, opts ...Option) ([]Point, error) {
	return filtered(c, Minimum, opts)
}

func filtered(c *curve.Curve, kind Kind, opts []Option) ([]Point, error) {
	all, err := Find(c, opts...)
	if err != nil {
		return nil, err
	}

	out := all[:0]
	for _, p := range all {
		if p.Kind == kind {
			out = append(out, p)
		}
	}

	return out, nil
}

// prominence computes the vertical drop from the run [i, j] to its key
// saddle: on each side, the lowest value between the run and the
// nearest strictly higher sample (or the series edge); the saddle is
// the higher of the two sides. Minima are handled by mirroring.
func prominence(g []float64, i, j int, kind Kind) float64 {
	v := g[i]
	if kind == Minimum {
		// Mirror so minima reuse the maximum-side logic.
		v = -v
	}

	side := func(start, step int) float64 {
		base := v

		for k := start; k >= 0 && k < len(g); k += step {
			y := g[k]
			if kind == Minimum {
				y = -y
			}

			if y > v {
				break
			}

			if y < base {
				base = y
			}
		}

		return base
	}

	left := side(i-1, -1)
	right := side(j+1, +1)

	saddle := left
	if right > saddle {
		saddle = right
	}

	return v - saddle
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
