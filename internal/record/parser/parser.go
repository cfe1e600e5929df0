// Package parser reads Odoo data documents and turns their <record>
// entries into record.Record values.
package parser

import (
	"context"
	"fmt"

	"github.com/beevik/etree"

	"github.com/hupe1980/odoo2mod/internal/record"
)

// Parser parses a data document into records of one type.
type Parser interface {
	Parse(ctx context.Context, doc []byte, t record.Type) (*Result, error)
}

// compile-time interface conformance check.
var _ Parser = (*DefaultParser)(nil)

// Result holds the records selected from a document together with the
// records that were skipped for lacking their key field.
type Result struct {
	Records []*record.Record
	Skipped []*record.MissingKeyFieldWarning
}

// DefaultParser is the default implementation of the Parser interface.
type DefaultParser struct {
	source string
}

// Option configures a DefaultParser.
type Option func(*DefaultParser)

// WithSource names the document in error messages.
func WithSource(name string) Option {
	return func(p *DefaultParser) {
		p.source = name
	}
}

// NewParser creates a new DefaultParser.
func NewParser(opts ...Option) *DefaultParser {
	p := &DefaultParser{}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse selects the top-level <record> entries whose model equals t.
// A document not wrapped in <odoo> yields a *record.FormatError. Records
// of a grouped type that lack their key field are reported in
// Result.Skipped rather than failing the parse.
func (p *DefaultParser) Parse(ctx context.Context, doc []byte, t record.Type) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.name(), err)
	}

	root := tree.Root()
	if root == nil {
		return nil, &record.FormatError{Source: p.source}
	}

	if root.Tag != record.WrapperTag || root.Space != "" {
		return nil, &record.FormatError{Source: p.source, Tag: root.FullTag()}
	}

	res := &Result{}
	keyField := t.KeyField()

	for _, el := range root.SelectElements("record") {
		if el.SelectAttrValue("model", "") != string(t) {
			continue
		}

		rec := parseRecord(el, t)

		if keyField != "" {
			if _, ok := rec.Field(keyField); !ok {
				res.Skipped = append(res.Skipped, &record.MissingKeyFieldWarning{
					RecordID: rec.ID,
					Type:     t,
					KeyField: keyField,
				})

				continue
			}
		}

		res.Records = append(res.Records, rec)
	}

	return res, nil
}

func (p *DefaultParser) name() string {
	if p.source == "" {
		return "document"
	}

	return p.source
}

// parseRecord converts a <record> element, keeping attributes and fields in
// source order. Comments and non-field child elements are kept as
// record.Extra; whitespace between children is dropped.
func parseRecord(el *etree.Element, t record.Type) *record.Record {
	rec := &record.Record{
		ID:   el.SelectAttrValue("id", ""),
		Type: t,
	}

	for _, a := range el.Attr {
		rec.Attrs = append(rec.Attrs, record.Attr{Key: a.FullKey(), Value: a.Value})
	}

	for _, child := range el.Child {
		if f, ok := child.(*etree.Element); ok && f.Tag == "field" {
			rec.Fields = append(rec.Fields, record.NewField(f))
			continue
		}

		if c := record.CopyToken(child); c != nil {
			rec.Extra = append(rec.Extra, c)
		}
	}

	return rec
}
