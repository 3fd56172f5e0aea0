package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-pdf/curve"
	"github.com/cwbudde/algo-pdf/dpdf"
	"github.com/cwbudde/algo-pdf/extrema"
	"github.com/cwbudde/algo-pdf/grfile"
)

// ErrNotFound is returned when an id does not name a loaded curve.
var ErrNotFound = errors.New("session: no curve with that id")

// DependencyError blocks removal of a curve that other curves are
// derived from. Dependents lists the blocking ids.
type DependencyError struct {
	ID         string
	Dependents []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("session: curve %s has dependents: %s", e.ID, strings.Join(e.Dependents, ", "))
}

// entry couples a curve with the recipe needed to recompute it when a
// source changes. diff is nil for loaded curves.
type entry struct {
	curve *curve.Curve
	diff  *diffSpec
}

type diffSpec struct {
	minuend    string
	subtrahend string
	weight     float64
}

// Session owns every loaded and derived curve, keyed by a stable id
// assigned at load time. It assumes single-writer access; callers
// needing concurrency must serialize externally.
type Session struct {
	entries map[string]*entry
	order   []string
}

// New creates an empty session.
func New() *Session {
	return &Session{entries: make(map[string]*entry)}
}

// Load parses raw file content and registers the resulting curve.
// It returns the assigned id and any non-fatal parser warnings.
// On error the session is unchanged.
func (s *Session) Load(data []byte, path string) (string, []string, error) {
	res, err := grfile.Parse(data, path)
	if err != nil {
		return "", nil, err
	}

	id := s.put(res.Curve, nil)

	return id, res.Warnings, nil
}

// Add registers an externally constructed curve and returns its id.
func (s *Session) Add(c *curve.Curve) string {
	return s.put(c, nil)
}

// Curve returns the curve with the given id. The session retains
// ownership; after any mutating call, re-fetch by id rather than
// holding the pointer.
func (s *Session) Curve(id string) (*curve.Curve, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}

	return e.curve, nil
}

// IDs returns all ids in load order.
func (s *Session) IDs() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of curves in the session.
func (s *Session) Len() int { return len(s.order) }

// Transform applies a transform to the identified curve and eagerly
// recomputes every difference curve derived from it (directly or
// transitively), keeping their ids stable and replaying any transforms
// previously applied to them. All warnings are returned. The call is
// atomic: if the transform is invalid, or any dependent difference can
// no longer be computed (a shift can destroy the grid overlap), nothing
// is mutated.
func (s *Session) Transform(id string, t curve.Transform) ([]string, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Work against copies; commit only after everything succeeded.
	probe := e.curve.Clone()
	warnings, err := probe.Apply(t)
	if err != nil {
		return nil, err
	}

	staged := map[string]*curve.Curve{id: probe}

	depWarnings, err := s.recomputeDependents(id, staged)
	if err != nil {
		return nil, err
	}

	warnings = append(warnings, depWarnings...)

	for sid, c := range staged {
		s.entries[sid].curve = c
	}

	return warnings, nil
}

// Difference computes minuend - weight·subtrahend and registers the
// result, returning its id. The recipe is retained so the curve is
// recomputed whenever either source transforms.
func (s *Session) Difference(minuendID, subtrahendID string, weight float64) (string, error) {
	a, err := s.Curve(minuendID)
	if err != nil {
		return "", err
	}

	b, err := s.Curve(subtrahendID)
	if err != nil {
		return "", err
	}

	d, err := dpdf.Difference(a, b, weight)
	if err != nil {
		return "", err
	}

	stampSources(d, minuendID, subtrahendID)

	return s.put(d, &diffSpec{minuend: minuendID, subtrahend: subtrahendID, weight: weight}), nil
}

// Extrema computes the identified curve's extrema on demand. Nothing is
// cached: the result reflects the curve's current transform state.
func (s *Session) Extrema(id string, opts ...extrema.Option) ([]extrema.Point, error) {
	c, err := s.Curve(id)
	if err != nil {
		return nil, err
	}

	return extrema.Find(c, opts...)
}

// Remove deletes the identified curve. If other curves are derived from
// it, removal fails with a *DependencyError listing them and the
// session is unchanged; use [Session.RemoveCascade] to delete the whole
// subtree.
func (s *Session) Remove(id string) error {
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}

	if deps := s.dependentsOf(id); len(deps) > 0 {
		return &DependencyError{ID: id, Dependents: deps}
	}

	s.delete(id)

	return nil
}

// RemoveCascade deletes the identified curve and, recursively, every
// curve derived from it. It returns the removed ids in removal order.
func (s *Session) RemoveCascade(id string) ([]string, error) {
	if _, ok := s.entries[id]; !ok {
		return nil, ErrNotFound
	}

	var removed []string

	var walk func(string)
	walk = func(cur string) {
		for _, dep := range s.dependentsOf(cur) {
			walk(dep)
		}

		s.delete(cur)
		removed = append(removed, cur)
	}

	walk(id)

	return removed, nil
}

func (s *Session) put(c *curve.Curve, spec *diffSpec) string {
	id := uuid.NewString()
	s.entries[id] = &entry{curve: c, diff: spec}
	s.order = append(s.order, id)

	return id
}

func (s *Session) delete(id string) {
	delete(s.entries, id)

	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// dependentsOf lists ids of difference curves using id as a source,
// in load order.
func (s *Session) dependentsOf(id string) []string {
	var out []string

	for _, candidate := range s.order {
		e := s.entries[candidate]
		if e.diff != nil && (e.diff.minuend == id || e.diff.subtrahend == id) {
			out = append(out, candidate)
		}
	}

	return out
}

// recomputeDependents rebuilds every difference curve reachable from
// id into staged, walking breadth-first so chained differences see
// fresh sources. Transforms the user applied to a difference curve are
// replayed onto the rebuilt series, so its history survives the
// recompute. Committed session state is never touched.
func (s *Session) recomputeDependents(id string, staged map[string]*curve.Curve) ([]string, error) {
	lookup := func(cid string) (*curve.Curve, error) {
		if c, ok := staged[cid]; ok {
			return c, nil
		}

		return s.Curve(cid)
	}

	var warnings []string

	queue := s.dependentsOf(id)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		e := s.entries[cur]

		a, err := lookup(e.diff.minuend)
		if err != nil {
			return nil, err
		}

		b, err := lookup(e.diff.subtrahend)
		if err != nil {
			return nil, err
		}

		d, err := dpdf.Difference(a, b, e.diff.weight)
		if err != nil {
			return nil, fmt.Errorf("session: recomputing %s: %w", cur, err)
		}

		stampSources(d, e.diff.minuend, e.diff.subtrahend)
		d.Rename(e.curve.Name())

		for _, t := range e.curve.History() {
			w, err := d.Apply(t)
			if err != nil {
				return nil, fmt.Errorf("session: reapplying transforms of %s: %w", cur, err)
			}

			warnings = append(warnings, w...)
		}

		staged[cur] = d

		queue = append(queue, s.dependentsOf(cur)...)
	}

	return warnings, nil
}

// stampSources rewrites a difference curve's provenance to reference
// session ids instead of display names.
func stampSources(d *curve.Curve, minuendID, subtrahendID string) {
	p := d.Provenance()
	p.Sources = []string{minuendID, subtrahendID}
	d.SetProvenance(p)
}
