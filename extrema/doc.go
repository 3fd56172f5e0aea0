// Package extrema locates local maxima and minima in PDF curves.
//
// Detection is a single neighbor-comparison scan with two knobs for
// noisy data: a plateau tolerance that collapses runs of near-equal
// samples into one extremum, and an optional minimum prominence that
// discards shallow wiggles. Results are ordered by ascending r and are
// invalidated by any transform of the scanned curve.
package extrema
