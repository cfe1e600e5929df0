package watch

import (
	"fmt"
	"slices"
	"strings"
)

// ArtifactChange describes an artifact that appeared or disappeared
// between two consecutive runs.
type ArtifactChange struct {
	// Kind is "added" or "removed".
	Kind string
	Path string
}

// ArtifactDiff compares the artifact paths of two runs. Changes are
// sorted by path.
func ArtifactDiff(prev, curr []string) []ArtifactChange {
	var changes []ArtifactChange

	for _, p := range prev {
		if !slices.Contains(curr, p) {
			changes = append(changes, ArtifactChange{Kind: "removed", Path: p})
		}
	}

	for _, p := range curr {
		if !slices.Contains(prev, p) {
			changes = append(changes, ArtifactChange{Kind: "added", Path: p})
		}
	}

	slices.SortFunc(changes, func(a, b ArtifactChange) int {
		return strings.Compare(a.Path, b.Path)
	})

	return changes
}

// ArtifactDiffSummary returns a one-line summary of changes.
func ArtifactDiffSummary(changes []ArtifactChange) string {
	var added, removed int

	for _, c := range changes {
		switch c.Kind {
		case "added":
			added++
		case "removed":
			removed++
		}
	}

	if added == 0 && removed == 0 {
		return "no artifact changes"
	}

	parts := make([]string, 0, 2)

	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d artifact(s) added", added))
	}

	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d artifact(s) removed", removed))
	}

	return strings.Join(parts, ", ")
}
