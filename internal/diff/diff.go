// Package diff compares generated artifacts with the files already on disk.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// Result holds the result of a unified diff computation.
type Result struct {
	Unified        string
	HasDifferences bool
	Hunks          []string
	OldLabel       string
	NewLabel       string
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions returns the default diff options.
func DefaultOptions() Options {
	return Options{
		OldLabel: "existing",
		NewLabel: "generated",
		Context:  3,
	}
}

// Compute computes a unified diff between two documents.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	res := &Result{
		Unified:        unified,
		HasDifferences: unified != "",
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
	}

	if res.HasDifferences {
		res.Hunks = extractHunks(unified)
	}

	return res, nil
}

// extractHunks splits unified diff output at every "@@" line. The file
// header stays attached to the first hunk.
func extractHunks(unified string) []string {
	var (
		hunks   []string
		current strings.Builder
	)

	for _, line := range strings.Split(strings.TrimSuffix(unified, "\n"), "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 && strings.Contains(current.String(), "@@") {
			hunks = append(hunks, current.String())
			current.Reset()
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

// Write writes a formatted diff to w, colouring lines when useColor is set.
func Write(w io.Writer, res *Result, useColor bool) {
	if !res.HasDifferences {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(res.Unified, "\n"), "\n") {
		if !useColor {
			_, _ = fmt.Fprintln(w, line)
			continue
		}

		writeColorLine(w, line)
	}
}

func writeColorLine(w io.Writer, line string) {
	attr, ok := lineAttribute(line)
	if !ok {
		_, _ = fmt.Fprintln(w, line)
		return
	}

	c := color.New(attr)
	c.EnableColor()
	_, _ = c.Fprintln(w, line)
}

func lineAttribute(line string) (color.Attribute, bool) {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return color.Bold, true
	case strings.HasPrefix(line, "@@"):
		return color.FgCyan, true
	case strings.HasPrefix(line, "-"):
		return color.FgRed, true
	case strings.HasPrefix(line, "+"):
		return color.FgGreen, true
	default:
		return 0, false
	}
}

// splitLines splits s into lines that keep their trailing newline, as
// difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	return strings.SplitAfter(s, "\n")
}
