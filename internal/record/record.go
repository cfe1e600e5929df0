// Package record provides the generic configuration record model shared by
// the parser, projector, grouper and serializers.
//
// A [Record] is one <record> entry of an Odoo data document. Its [Field]
// values are immutable; projection replaces a record's field list wholesale
// through [Record.WithFields].
package record

import "github.com/beevik/etree"

// WrapperTag is the root element every input document must carry.
const WrapperTag = "odoo"

// Type is the record-type discriminator, i.e. the Odoo model of a <record>.
type Type string

// Supported record types.
const (
	TypeView       Type = "ir.ui.view"
	TypeAction     Type = "ir.actions.act_window"
	TypeMenuItem   Type = "ir.ui.menu"
	TypeAccessRule Type = "ir.model.access"
)

// Types returns all supported record types in pipeline order.
func Types() []Type {
	return []Type{TypeView, TypeAction, TypeMenuItem, TypeAccessRule}
}

// KeyField returns the name of the field a record of this type must carry
// to be grouped. Types that are never grouped return "".
func (t Type) KeyField() string {
	switch t {
	case TypeView:
		return "model"
	case TypeAction:
		return "res_model"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// Attr is an attribute of a <record> element, kept in source order.
type Attr struct {
	Key   string
	Value string
}

// Field is a named sub-element of a Record.
type Field struct {
	// Name is the value of the name attribute.
	Name string

	// Text is the raw character data of the element (may be empty).
	Text string

	// Ref is the ref attribute, a reference to another record's id.
	Ref string

	// Eval is the eval attribute, a literal source-level expression.
	Eval string

	// elem is the full source element, including nested markup such as
	// view architectures. Nil for fields built in code.
	elem *etree.Element
}

// NewField builds a Field from a <field> element. The element is copied so
// later changes to the source tree do not leak into the record.
func NewField(el *etree.Element) Field {
	return Field{
		Name: el.SelectAttrValue("name", ""),
		Text: el.Text(),
		Ref:  el.SelectAttrValue("ref", ""),
		Eval: el.SelectAttrValue("eval", ""),
		elem: el.Copy(),
	}
}

// Element returns a fresh copy of the field as a <field> element.
func (f Field) Element() *etree.Element {
	if f.elem != nil {
		return f.elem.Copy()
	}

	el := etree.NewElement("field")
	el.CreateAttr("name", f.Name)

	if f.Ref != "" {
		el.CreateAttr("ref", f.Ref)
	}

	if f.Eval != "" {
		el.CreateAttr("eval", f.Eval)
	}

	if f.Text != "" {
		el.SetText(f.Text)
	}

	return el
}

// Record is one configuration entry.
type Record struct {
	// ID is the record's xml id, referenced by other records' ref fields.
	ID string

	// Type is fixed at creation.
	Type Type

	// Attrs are the attributes of the <record> element in source order.
	// When empty, Element emits id and model only.
	Attrs []Attr

	// Fields in source order (or projected order).
	Fields []Field

	// Extra holds the other children of the <record> element, comments and
	// non-field elements, in source order. Projection leaves them alone and
	// Element emits them after the fields.
	Extra []etree.Token
}

// New creates a record of the given type.
func New(id string, t Type, fields ...Field) *Record {
	return &Record{ID: id, Type: t, Fields: fields}
}

// Field returns the first field with the given name.
func (r *Record) Field(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// WithFields returns a copy of r whose field list is replaced by fields.
func (r *Record) WithFields(fields []Field) *Record {
	return &Record{
		ID:     r.ID,
		Type:   r.Type,
		Attrs:  append([]Attr(nil), r.Attrs...),
		Fields: fields,
		Extra:  append([]etree.Token(nil), r.Extra...),
	}
}

// FieldNames returns the names of all fields in order.
func (r *Record) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}

	return names
}

// Element renders the record as a <record> element.
func (r *Record) Element() *etree.Element {
	el := etree.NewElement("record")

	if len(r.Attrs) == 0 {
		el.CreateAttr("id", r.ID)
		el.CreateAttr("model", string(r.Type))
	}

	for _, a := range r.Attrs {
		el.CreateAttr(a.Key, a.Value)
	}

	for _, f := range r.Fields {
		el.AddChild(f.Element())
	}

	for _, t := range r.Extra {
		if c := CopyToken(t); c != nil {
			el.AddChild(c)
		}
	}

	return el
}

// CopyToken returns a detached copy of an element or comment token. Other
// token kinds yield nil.
func CopyToken(t etree.Token) etree.Token {
	switch t := t.(type) {
	case *etree.Element:
		return t.Copy()
	case *etree.Comment:
		return etree.NewComment(t.Data)
	default:
		return nil
	}
}
