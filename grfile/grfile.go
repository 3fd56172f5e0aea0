package grfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/cwbudde/algo-pdf/curve"
)

// ParseError is returned when no numeric data at all could be extracted
// from a file.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("grfile: %s", e.Reason)
	}

	return fmt.Sprintf("grfile: %s: %s", e.Path, e.Reason)
}

// Result is the outcome of parsing one file. Warnings collect non-fatal
// conditions (skipped lines, reordered points); a file with a few
// corrupt lines still loads.
type Result struct {
	Curve    *curve.Curve
	Format   curve.Format
	Warnings []string
}

// comment prefixes skipped silently in both header and data blocks.
var commentPrefixes = []string{"#", "//", ";"}

// startDataMarker begins the data block of a PDFgetX3 .gr file.
const startDataMarker = "start data"

// Parse inspects the content and extracts a curve. Files written by
// PDFgetX3 (an INI-style [DEFAULT] header terminated by a "#### start
// data" marker) yield full metadata; anything else falls back to
// line-by-line two-column extraction with empty metadata. The file
// extension is never consulted.
func Parse(data []byte, path string) (*Result, error) {
	name := baseName(path)

	if header, rest, ok := splitKnownFormat(data); ok {
		return parseKnown(header, rest, name, path)
	}

	pairs, warnings := extractPairs(data)

	return finish(pairs, warnings, name, path, curve.FormatTwoColumn, nil)
}

// ReadFile reads and parses the file at path.
func ReadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grfile: %w", err)
	}

	return Parse(data, path)
}

// Write emits the curve's current series as two-column text, one
// "r g" pair per line, the format PDFgetX3 tooling reads back.
func Write(w io.Writer, c *curve.Curve) error {
	bw := bufio.NewWriter(w)

	for _, p := range c.Points() {
		if _, err := fmt.Fprintf(bw, "%g %g\n", p.R, p.G); err != nil {
			return fmt.Errorf("grfile: writing series: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("grfile: writing series: %w", err)
	}

	return nil
}

// splitKnownFormat detects the PDFgetX3 layout: a [DEFAULT] section
// line somewhere before a comment line containing the start-data
// marker. It returns the header bytes and the data block.
func splitKnownFormat(data []byte) (header, rest []byte, ok bool) {
	var sawSection bool

	offset := 0
	for _, line := range bytes.SplitAfter(data, []byte("\n")) {
		trimmed := strings.TrimSpace(string(line))

		if trimmed == "[DEFAULT]" {
			sawSection = true
		}

		if sawSection && strings.HasPrefix(trimmed, "#") && strings.Contains(trimmed, startDataMarker) {
			return data[:offset], data[offset+len(line):], true
		}

		offset += len(line)
	}

	return nil, nil, false
}

func parseKnown(header, rest []byte, name, path string) (*Result, error) {
	meta, metaWarnings := parseHeader(header)
	pairs, warnings := extractPairs(rest)

	return finish(pairs, append(metaWarnings, warnings...), name, path, curve.FormatPDFgetX3, meta)
}

// parseHeader reads the [DEFAULT] key = value block. A malformed header
// degrades to empty metadata with a warning; the data block still loads.
func parseHeader(header []byte) (curve.Metadata, []string) {
	f, err := ini.Load(header)
	if err != nil {
		return nil, []string{fmt.Sprintf("unreadable header, metadata dropped: %v", err)}
	}

	meta := curve.Metadata{}

	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			meta[key.Name()] = key.Value()
		}
	}

	return meta, nil
}

type pair struct {
	r, g float64
}

// extractPairs applies the fallback tokenizer to every line: exactly
// two whitespace-separated numeric tokens, both finite. Blank lines and
// comment lines are skipped silently; other non-matching lines produce
// a warning.
func extractPairs(data []byte) ([]pair, []string) {
	var (
		pairs    []pair
		warnings []string
	)

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" || isComment(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			warnings = append(warnings, fmt.Sprintf("line %d: skipped, want two columns, got %d", lineNo, len(fields)))
			continue
		}

		r, errR := strconv.ParseFloat(fields[0], 64)
		g, errG := strconv.ParseFloat(fields[1], 64)

		if errR != nil || errG != nil || !finite(r) || !finite(g) {
			warnings = append(warnings, fmt.Sprintf("line %d: skipped, non-numeric data", lineNo))
			continue
		}

		pairs = append(pairs, pair{r: r, g: g})
	}

	return pairs, warnings
}

// finish orders the pairs, collapses duplicate r values, and builds the
// curve with its provenance.
func finish(pairs []pair, warnings []string, name, path string, format curve.Format, meta curve.Metadata) (*Result, error) {
	if len(pairs) == 0 {
		return nil, &ParseError{Path: path, Reason: "no numeric x/y pairs found"}
	}

	if !sort.SliceIsSorted(pairs, func(i, j int) bool { return pairs[i].r < pairs[j].r }) {
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].r < pairs[j].r })
		warnings = append(warnings, "points were not in ascending r order and have been sorted")
	}

	deduped := pairs[:1]
	for _, p := range pairs[1:] {
		if p.r == deduped[len(deduped)-1].r {
			warnings = append(warnings, fmt.Sprintf("duplicate r value %g dropped, first occurrence kept", p.r))
			continue
		}

		deduped = append(deduped, p)
	}

	r := make([]float64, len(deduped))
	g := make([]float64, len(deduped))

	for i, p := range deduped {
		r[i] = p.r
		g[i] = p.g
	}

	opts := []curve.Option{
		curve.WithProvenance(curve.Provenance{Format: format, Path: path}),
	}
	if meta != nil {
		opts = append(opts, curve.WithMetadata(meta))
	}

	c, err := curve.New(name, r, g, opts...)
	if err != nil {
		return nil, fmt.Errorf("grfile: %s: %w", path, err)
	}

	return &Result{Curve: c, Format: format, Warnings: warnings}, nil
}

func isComment(line string) bool {
	for _, p := range commentPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}

	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func baseName(path string) string {
	if path == "" {
		return "unnamed"
	}

	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}

	if base == "" {
		return "unnamed"
	}

	return base
}
