package diff

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hupe1980/odoo2mod/internal/pipeline"
)

// Status describes how a generated artifact relates to the file on disk.
type Status string

// Artifact statuses.
const (
	StatusUnchanged Status = "unchanged"
	StatusModified  Status = "modified"
	StatusNew       Status = "new"
)

// FileDiff is the comparison of one artifact.
type FileDiff struct {
	// Path is relative to the compared directory.
	Path   string
	Status Status
	Result *Result
}

// Artifacts compares every artifact of res with the file of the same
// relative path below dir. A missing file counts as empty.
func Artifacts(res *pipeline.Result, dir string, opts Options) ([]FileDiff, error) {
	diffs := make([]FileDiff, 0, len(res.Artifacts))

	for _, a := range res.Artifacts {
		existing, err := os.ReadFile(filepath.Join(dir, a.Path)) //nolint:gosec // path below the output dir
		status := StatusModified

		switch {
		case errors.Is(err, fs.ErrNotExist):
			status = StatusNew
		case err != nil:
			return nil, fmt.Errorf("reading %s: %w", a.Path, err)
		}

		o := opts
		o.OldLabel = filepath.ToSlash(filepath.Join(opts.OldLabel, a.Path))
		o.NewLabel = filepath.ToSlash(filepath.Join(opts.NewLabel, a.Path))

		r, err := Compute(string(existing), string(a.Data), o)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Path, err)
		}

		if !r.HasDifferences {
			status = StatusUnchanged
		}

		diffs = append(diffs, FileDiff{Path: a.Path, Status: status, Result: r})
	}

	return diffs, nil
}

// HasDifferences reports whether any artifact differs from disk.
func HasDifferences(diffs []FileDiff) bool {
	for _, d := range diffs {
		if d.Status != StatusUnchanged {
			return true
		}
	}

	return false
}

// WriteAll writes the diffs of all changed artifacts to w.
func WriteAll(w io.Writer, diffs []FileDiff, useColor bool) {
	if !HasDifferences(diffs) {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, d := range diffs {
		if d.Status == StatusUnchanged {
			continue
		}

		Write(w, d.Result, useColor)
	}
}
