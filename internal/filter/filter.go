package filter

import (
	"context"

	"github.com/hupe1980/odoo2mod/internal/record"
)

// Filter is the interface for all record filters. Filters are stateless:
// they receive a set of records and return a result without modifying
// shared state.
type Filter interface {
	// Apply runs the filter on the given records and returns a result.
	Apply(ctx context.Context, records []*record.Record) (*Result, error)
}

// ExcludedRecord records a record that was excluded by a filter.
type ExcludedRecord struct {
	Record *record.Record
	// Reason is a human-readable explanation for the exclusion.
	Reason string
}

// Result holds the outcome of a filter application.
type Result struct {
	Included []*record.Record
	Excluded []ExcludedRecord
}

// Chain applies multiple filters sequentially, passing the included
// records from each filter as input to the next.
type Chain struct {
	filters []Filter
}

// NewChain creates a filter chain from the given filters. Nil filters are
// skipped.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}

	for _, f := range filters {
		if f != nil {
			c.filters = append(c.filters, f)
		}
	}

	return c
}

// Len returns the number of filters in the chain.
func (c *Chain) Len() int { return len(c.filters) }

// Apply runs all filters in order, accumulating excluded records.
func (c *Chain) Apply(ctx context.Context, records []*record.Record) (*Result, error) {
	combined := &Result{}
	current := records

	for _, f := range c.filters {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r, err := f.Apply(ctx, current)
		if err != nil {
			return nil, err
		}

		current = r.Included
		combined.Excluded = append(combined.Excluded, r.Excluded...)
	}

	combined.Included = current

	return combined, nil
}
