// Package projection filters and reorders the fields of a record according
// to a per-type policy.
//
// Projection is pure: the input record is never modified and a new record
// with a replaced field list is returned.
package projection

import (
	"slices"

	"github.com/hupe1980/odoo2mod/internal/record"
)

// Policy describes how a record's fields are projected.
type Policy struct {
	// Order lists field names in their desired output order. Fields not
	// listed keep their relative order and follow all listed fields.
	Order []string `json:"order,omitempty"`

	// Exclude lists field names that are removed. Exclusion wins over Order.
	Exclude []string `json:"exclude,omitempty"`
}

// Project applies p to r. See the package-level Project.
func (p Policy) Project(r *record.Record) *record.Record {
	return Project(r, p.Order, p.Exclude)
}

// Project removes every field whose name is in excluded and stably sorts
// the rest by the position of their name in order. Names absent from order
// sort as len(order), so they keep their original relative order after all
// ordered fields. Repeated names are kept.
func Project(r *record.Record, order, excluded []string) *record.Record {
	rank := make(map[string]int, len(order))

	for i, name := range order {
		if _, seen := rank[name]; !seen {
			rank[name] = i
		}
	}

	keyOf := func(f record.Field) int {
		if i, ok := rank[f.Name]; ok {
			return i
		}

		return len(order)
	}

	fields := make([]record.Field, 0, len(r.Fields))

	for _, f := range r.Fields {
		if slices.Contains(excluded, f.Name) {
			continue
		}

		fields = append(fields, f)
	}

	slices.SortStableFunc(fields, func(a, b record.Field) int {
		return keyOf(a) - keyOf(b)
	})

	return r.WithFields(fields)
}

// Policies maps record types to their projection policy.
type Policies map[record.Type]Policy

// DefaultPolicies returns the built-in view and action policies.
func DefaultPolicies() Policies {
	return Policies{
		record.TypeView: {
			Order:   []string{"name", "model", "inherit_id", "priority", "groups_id", "arch"},
			Exclude: []string{"mode", "type", "key", "active", "groups_id"},
		},
		record.TypeAction: {
			Order: []string{"name", "res_model", "view_mode", "domain", "filter", "context", "target", "help"},
			Exclude: []string{
				"view_id", "binding_model_id", "search_view_id", "binding_view_types",
				"binding_type", "type", "limit", "usage", "groups_id",
			},
		},
	}
}

// Project applies the policy for r's type. Records of a type without a
// policy come back as an unchanged copy.
func (ps Policies) Project(r *record.Record) *record.Record {
	p, ok := ps[r.Type]
	if !ok {
		return r.WithFields(append([]record.Field(nil), r.Fields...))
	}

	return p.Project(r)
}

// ProjectAll projects every record in records.
func (ps Policies) ProjectAll(records []*record.Record) []*record.Record {
	out := make([]*record.Record, len(records))
	for i, r := range records {
		out[i] = ps.Project(r)
	}

	return out
}
