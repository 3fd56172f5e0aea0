// Package grfile parses and writes .gr pair-distribution-function
// files.
//
// Two layouts are recognized by content inspection (the file extension
// is never authoritative):
//
//   - PDFgetX3 output: an INI-style [DEFAULT] header with key = value
//     lines, terminated by a "#### start data" comment marker, followed
//     by rows of two whitespace-separated floats. The header is
//     captured as curve metadata.
//   - Generic two-column text: every line is independently tested as
//     two numeric tokens separated by whitespace; comment lines
//     (#, //, ;) and blank lines are skipped.
//
// Parsing is lenient: malformed lines are dropped with a warning and
// the parse only fails when no valid pairs remain.
package grfile
