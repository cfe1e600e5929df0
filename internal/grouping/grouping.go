// Package grouping buckets records by a key derived from a type-specific
// field and merges the view and action passes into per-key groups.
package grouping

import (
	"sort"
	"strings"

	"github.com/hupe1980/odoo2mod/internal/record"
)

// Category labels a list of records inside a Group.
type Category string

// Categories in render order.
const (
	CategoryViews   Category = "views"
	CategoryActions Category = "act_windows"
)

// Key derives the group key of r from the field named keyField: its text
// with every "." replaced by "_". It reports false when the field is
// missing or its text is empty.
func Key(r *record.Record, keyField string) (string, bool) {
	f, ok := r.Field(keyField)
	if !ok {
		return "", false
	}

	text := strings.TrimSpace(f.Text)
	if text == "" {
		return "", false
	}

	return strings.ReplaceAll(text, ".", "_"), true
}

// Classify buckets records by Key. Records without a usable key are dropped
// and reported. Within a bucket, records keep their input order.
func Classify(records []*record.Record, keyField string) (map[string][]*record.Record, []*record.MissingKeyFieldWarning) {
	buckets := make(map[string][]*record.Record)

	var skipped []*record.MissingKeyFieldWarning

	for _, r := range records {
		key, ok := Key(r, keyField)
		if !ok {
			skipped = append(skipped, &record.MissingKeyFieldWarning{
				RecordID: r.ID,
				Type:     r.Type,
				KeyField: keyField,
			})

			continue
		}

		buckets[key] = append(buckets[key], r)
	}

	return buckets, skipped
}

// Group holds the records that share a key, split by category.
type Group struct {
	Key     string
	Views   []*record.Record
	Actions []*record.Record
}

// Records returns all views followed by all actions.
func (g *Group) Records() []*record.Record {
	out := make([]*record.Record, 0, len(g.Views)+len(g.Actions))
	out = append(out, g.Views...)

	return append(out, g.Actions...)
}

// Category returns the record list for c.
func (g *Group) Category(c Category) []*record.Record {
	switch c {
	case CategoryViews:
		return g.Views
	case CategoryActions:
		return g.Actions
	default:
		return nil
	}
}

// ArtifactName returns the base name of the artifact rendered for g.
func (g *Group) ArtifactName() string {
	return ArtifactName(g.Key)
}

// ArtifactName maps a group key to its artifact base name.
func ArtifactName(key string) string {
	return key + "_views"
}

// Groups is the merged result of the view and action passes.
type Groups struct {
	byKey map[string]*Group
}

// Merge combines the view and action buckets by key. A key present in only
// one pass still yields a Group, with an empty list for the other category.
func Merge(views, actions map[string][]*record.Record) *Groups {
	gs := &Groups{byKey: make(map[string]*Group, len(views)+len(actions))}

	for key, recs := range views {
		g := gs.ensure(key)
		g.Views = append(g.Views, recs...)
	}

	for key, recs := range actions {
		g := gs.ensure(key)
		g.Actions = append(g.Actions, recs...)
	}

	return gs
}

func (gs *Groups) ensure(key string) *Group {
	g, ok := gs.byKey[key]
	if !ok {
		g = &Group{
			Key:     key,
			Views:   []*record.Record{},
			Actions: []*record.Record{},
		}
		gs.byKey[key] = g
	}

	return g
}

// Len returns the number of groups.
func (gs *Groups) Len() int { return len(gs.byKey) }

// Get returns the group for key.
func (gs *Groups) Get(key string) (*Group, bool) {
	g, ok := gs.byKey[key]
	return g, ok
}

// Keys returns the sorted group keys.
func (gs *Groups) Keys() []string {
	keys := make([]string, 0, len(gs.byKey))
	for k := range gs.byKey {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// All returns every group sorted by key.
func (gs *Groups) All() []*Group {
	keys := gs.Keys()
	out := make([]*Group, len(keys))

	for i, k := range keys {
		out[i] = gs.byKey[k]
	}

	return out
}
