// Package curve provides the in-memory representation of a pair
// distribution function G(r) and its transform operations.
//
// A [Curve] is an ordered series of (r, g) points with strictly
// increasing, finite r values. Transforms (scale, offset, shift) mutate
// the current series and are recorded in an append-only history, so the
// current state is always reproducible by replaying the history against
// the originally ingested series:
//
//	c, _ := curve.New("sample", r, g)
//	c.Scale(2)
//	c.Offset(-0.5)
//	c.Undo() // back to the scaled state, no re-parse needed
//
// Derived artifacts computed from a curve (extrema, difference curves)
// become stale as soon as a transform is applied and must be recomputed
// by the caller; the curve itself keeps no derived caches.
package curve
