// Command grinfo inspects PDF curve files (.gr).
//
// Usage:
//
//	grinfo [flags] file [file ...]
//
// It prints a summary per file and can list header metadata and local
// extrema.
//
// Examples:
//
//	grinfo sample.gr
//	grinfo -meta sample.gr
//	grinfo -extrema -eps 1e-6 -prominence 0.05 a.gr b.gr
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/algo-pdf/extrema"
	"github.com/cwbudde/algo-pdf/grfile"
)

func main() {
	showMeta := flag.Bool("meta", false, "print header metadata")
	showExtrema := flag.Bool("extrema", false, "print local extrema")
	eps := flag.Float64("eps", 0, "plateau tolerance for extrema detection")
	prominence := flag.Float64("prominence", 0, "minimum prominence for extrema (0 disables)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: grinfo [flags] file [file ...]\n\n")
		fmt.Fprintf(os.Stderr, "Inspects PDF curve files produced by PDFgetX3 or generic two-column text.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  grinfo sample.gr\n")
		fmt.Fprintf(os.Stderr, "  grinfo -extrema -prominence 0.05 a.gr b.gr\n")
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	exitCode := 0

	for _, path := range paths {
		if err := inspect(path, *showMeta, *showExtrema, *eps, *prominence); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

func inspect(path string, showMeta, showExtrema bool, eps, prominence float64) error {
	res, err := grfile.ReadFile(path)
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", path, w)
	}

	c := res.Curve
	fmt.Printf("%s: %s, %d points, r = [%g, %g]\n", path, res.Format, c.Len(), c.RMin(), c.RMax())

	if showMeta {
		printMeta(c.Metadata())
	}

	if showExtrema {
		if err := printExtrema(res, eps, prominence); err != nil {
			return err
		}
	}

	return nil
}

func printMeta(meta map[string]string) {
	if len(meta) == 0 {
		fmt.Println("  no header metadata")
		return
	}

	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%s\n", k, meta[k])
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printExtrema(res *grfile.Result, eps, prominence float64) error {
	points, err := extrema.Find(res.Curve,
		extrema.WithTolerance(eps),
		extrema.WithMinProminence(prominence))
	if err != nil {
		return err
	}

	if len(points) == 0 {
		fmt.Println("  no extrema")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  kind\tr\tG(r)\tprominence\n")

	for _, p := range points {
		fmt.Fprintf(tw, "  %s\t%.6g\t%.6g\t%.6g\n", p.Kind, p.R, p.G, p.Prominence)
	}

	return tw.Flush()
}
