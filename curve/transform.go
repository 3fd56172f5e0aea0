package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Op identifies a transform operation.
type Op string

// Transform operations.
const (
	OpScale  Op = "scale"  // multiply all g values
	OpOffset Op = "offset" // add to all g values
	OpShift  Op = "shift"  // add to all r values
)

// Transform is one recorded history entry.
type Transform struct {
	Op    Op      `json:"op"`
	Value float64 `json:"value"`
}

// Scale multiplies all g values by factor and records the transform.
// A factor of 0 is permitted but returns a warning, since it degenerates
// the curve; rejecting it would make legitimate histories unreplayable.
func (c *Curve) Scale(factor float64) ([]string, error) {
	return c.Apply(Transform{Op: OpScale, Value: factor})
}

// Offset adds dy to all g values and records the transform.
func (c *Curve) Offset(dy float64) ([]string, error) {
	return c.Apply(Transform{Op: OpOffset, Value: dy})
}

// Shift adds dx to all r values and records the transform. A uniform
// shift preserves ordering, so no re-sort is needed.
func (c *Curve) Shift(dx float64) ([]string, error) {
	return c.Apply(Transform{Op: OpShift, Value: dx})
}

// Apply performs a transform, appends it to the history, and returns
// any non-fatal warnings. Derived artifacts (extrema, difference
// curves) computed before the call are stale afterwards.
func (c *Curve) Apply(t Transform) ([]string, error) {
	warnings, err := c.apply(t)
	if err != nil {
		return nil, err
	}

	c.history = append(c.history, t)

	return warnings, nil
}

// apply mutates the current series without recording history.
func (c *Curve) apply(t Transform) ([]string, error) {
	if math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return nil, ErrBadParameter
	}

	switch t.Op {
	case OpScale:
		scaleInto(c.g, t.Value)

		if t.Value == 0 {
			return []string{fmt.Sprintf("curve %q: scale factor 0 degenerates the curve", c.name)}, nil
		}

		return nil, nil

	case OpOffset:
		floats.AddConst(t.Value, c.g)
		return nil, nil

	case OpShift:
		floats.AddConst(t.Value, c.r)
		return nil, nil

	default:
		return nil, fmt.Errorf("curve: unknown transform op %q", t.Op)
	}
}

// History returns a copy of the applied transforms in order.
func (c *Curve) History() []Transform {
	return append([]Transform(nil), c.history...)
}

// Undo removes the most recent transform and rebuilds the series by
// replaying the remaining history against the original ingested data.
func (c *Curve) Undo() error {
	if len(c.history) == 0 {
		return ErrNothingToUndo
	}

	c.history = c.history[:len(c.history)-1]
	c.replay()

	return nil
}

// ResetTransforms clears the history and restores the original series.
func (c *Curve) ResetTransforms() {
	c.history = c.history[:0]
	c.replay()
}

// replay rebuilds the current series from the base series and history.
// All recorded entries were validated when first applied.
func (c *Curve) replay() {
	c.r = append(c.r[:0], c.baseR...)
	c.g = append(c.g[:0], c.baseG...)

	for _, t := range c.history {
		_, _ = c.apply(t)
	}
}

// Snapshot is the serializable form of a curve: the originally ingested
// series plus the transform history needed to reproduce the current
// state.
type Snapshot struct {
	Name       string      `json:"name"`
	R          []float64   `json:"r"`
	G          []float64   `json:"g"`
	History    []Transform `json:"history,omitempty"`
	Metadata   Metadata    `json:"metadata,omitempty"`
	Provenance Provenance  `json:"provenance"`
}

// Snapshot captures the curve for serialization.
func (c *Curve) Snapshot() Snapshot {
	return Snapshot{
		Name:       c.name,
		R:          append([]float64(nil), c.baseR...),
		G:          append([]float64(nil), c.baseG...),
		History:    append([]Transform(nil), c.history...),
		Metadata:   c.meta.Clone(),
		Provenance: c.prov,
	}
}

// FromSnapshot reconstructs a curve by validating the base series and
// replaying the recorded history.
func FromSnapshot(s Snapshot) (*Curve, error) {
	c, err := New(s.Name, s.R, s.G,
		WithMetadata(s.Metadata),
		WithProvenance(s.Provenance))
	if err != nil {
		return nil, err
	}

	for _, t := range s.History {
		if _, err := c.Apply(t); err != nil {
			return nil, fmt.Errorf("curve: replaying history: %w", err)
		}
	}

	return c, nil
}
