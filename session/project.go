package session

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zlib"

	"github.com/cwbudde/algo-pdf/curve"
)

// projectVersion is bumped on incompatible .pvp layout changes.
const projectVersion = 1

type projectFile struct {
	Version int            `json:"version"`
	Curves  []projectCurve `json:"curves"`
}

type projectCurve struct {
	ID       string         `json:"id"`
	Snapshot curve.Snapshot `json:"curve"`
	Diff     *projectDiff   `json:"diff,omitempty"`
}

type projectDiff struct {
	Minuend    string  `json:"minuend"`
	Subtrahend string  `json:"subtrahend"`
	Weight     float64 `json:"weight"`
}

// SaveProject writes the whole session as a zlib-compressed JSON array
// (the .pvp project format): every curve's base series, transform
// history, metadata, and difference recipe, so loading reproduces the
// session exactly, ids included.
func (s *Session) SaveProject(w io.Writer) error {
	pf := projectFile{Version: projectVersion}

	for _, id := range s.order {
		e := s.entries[id]

		pc := projectCurve{ID: id, Snapshot: e.curve.Snapshot()}
		if e.diff != nil {
			pc.Diff = &projectDiff{
				Minuend:    e.diff.minuend,
				Subtrahend: e.diff.subtrahend,
				Weight:     e.diff.weight,
			}
		}

		pf.Curves = append(pf.Curves, pc)
	}

	data, err := sonic.Marshal(pf)
	if err != nil {
		return fmt.Errorf("session: encoding project: %w", err)
	}

	zw := zlib.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("session: compressing project: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("session: compressing project: %w", err)
	}

	return nil
}

// LoadProject reads a .pvp project and reconstructs a fresh session.
// Curve series are rebuilt by replaying each stored transform history
// against its base series.
func LoadProject(r io.Reader) (*Session, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("session: decompressing project: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("session: decompressing project: %w", err)
	}

	var pf projectFile
	if err := sonic.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("session: decoding project: %w", err)
	}

	if pf.Version != projectVersion {
		return nil, fmt.Errorf("session: unsupported project version %d", pf.Version)
	}

	s := New()

	for _, pc := range pf.Curves {
		c, err := curve.FromSnapshot(pc.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("session: restoring curve %s: %w", pc.ID, err)
		}

		var spec *diffSpec
		if pc.Diff != nil {
			if _, ok := s.entries[pc.Diff.Minuend]; !ok {
				return nil, fmt.Errorf("session: curve %s references missing source %s", pc.ID, pc.Diff.Minuend)
			}

			if _, ok := s.entries[pc.Diff.Subtrahend]; !ok {
				return nil, fmt.Errorf("session: curve %s references missing source %s", pc.ID, pc.Diff.Subtrahend)
			}

			spec = &diffSpec{
				minuend:    pc.Diff.Minuend,
				subtrahend: pc.Diff.Subtrahend,
				weight:     pc.Diff.Weight,
			}
		}

		s.entries[pc.ID] = &entry{curve: c, diff: spec}
		s.order = append(s.order, pc.ID)
	}

	return s, nil
}
