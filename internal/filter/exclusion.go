package filter

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/hupe1980/odoo2mod/internal/grouping"
	"github.com/hupe1980/odoo2mod/internal/record"
)

// IDFilter excludes records whose id matches any of the given patterns.
// Patterns use path.Match syntax, e.g. "view_*_tree".
type IDFilter struct {
	patterns []string
}

// NewIDFilter creates a filter that excludes records by id pattern. It
// fails on a malformed pattern.
func NewIDFilter(patterns []string) (*IDFilter, error) {
	for _, p := range patterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid record pattern %q: %w", p, err)
		}
	}

	return &IDFilter{patterns: patterns}, nil
}

// Apply filters out records whose id matches.
func (f *IDFilter) Apply(_ context.Context, records []*record.Record) (*Result, error) {
	r := &Result{}

	for _, rec := range records {
		if p, ok := f.match(rec.ID); ok {
			r.Excluded = append(r.Excluded, ExcludedRecord{
				Record: rec,
				Reason: fmt.Sprintf("excluded by record pattern: %s", p),
			})
		} else {
			r.Included = append(r.Included, rec)
		}
	}

	return r, nil
}

func (f *IDFilter) match(id string) (string, bool) {
	for _, p := range f.patterns {
		// Patterns were checked in NewIDFilter.
		if ok, _ := path.Match(p, id); ok {
			return p, true
		}
	}

	return "", false
}

// ModelFilter excludes views and actions targeting one of the given
// models. Models may be given as "res.partner" or as the group key
// "res_partner". Records of other types pass unchanged.
type ModelFilter struct {
	keys map[string]bool
}

// NewModelFilter creates a filter that excludes records by target model.
func NewModelFilter(models []string) *ModelFilter {
	m := make(map[string]bool, len(models))

	for _, model := range models {
		if key := strings.ReplaceAll(strings.TrimSpace(model), ".", "_"); key != "" {
			m[key] = true
		}
	}

	return &ModelFilter{keys: m}
}

// Apply filters out records whose key field names an excluded model.
func (f *ModelFilter) Apply(_ context.Context, records []*record.Record) (*Result, error) {
	r := &Result{}

	for _, rec := range records {
		keyField := rec.Type.KeyField()
		if keyField == "" {
			r.Included = append(r.Included, rec)
			continue
		}

		if key, ok := grouping.Key(rec, keyField); ok && f.keys[key] {
			r.Excluded = append(r.Excluded, ExcludedRecord{
				Record: rec,
				Reason: fmt.Sprintf("excluded by model: %s", key),
			})
		} else {
			r.Included = append(r.Included, rec)
		}
	}

	return r, nil
}
