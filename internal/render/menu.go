package render

import (
	"regexp"
	"strings"

	"github.com/hupe1980/odoo2mod/internal/record"
)

// refListTokens are removed from a groups_id eval expression, in order:
// list open, list close, ref( open, its close, quotes, spaces.
var refListTokens = []string{"[(6, 0, [", "])]", "ref(", ")", "'", `"`, " "}

// refListPattern recognizes the one literal shape DecodeRefList handles:
// [(6, 0, [ref('a'), ref('b')])].
var (
	refListPattern = regexp.MustCompile(`^\[\(6, 0, \[(.*)\]\)\]$`)
	refItemPattern = regexp.MustCompile(`^ref\(\s*['"][\w.]+['"]\s*\)$`)
)

// DecodeRefList turns a groups_id expression such as
// "[(6, 0, [ref('group_a'), ref('group_b')])]" into "group_a,group_b".
// It is a fixed sequence of substring removals, not an expression parser.
func DecodeRefList(expr string) string {
	for _, tok := range refListTokens {
		expr = strings.ReplaceAll(expr, tok, "")
	}

	return expr
}

// IsRefList reports whether expr has the exact shape DecodeRefList is
// written for. Other shapes still decode, but possibly into garbage.
func IsRefList(expr string) bool {
	m := refListPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return false
	}

	inner := strings.TrimSpace(m[1])
	if inner == "" {
		return true
	}

	for _, item := range strings.Split(inner, ",") {
		if !refItemPattern.MatchString(strings.TrimSpace(item)) {
			return false
		}
	}

	return true
}

// MenuItemAttrs derives the <menuitem> attributes of r in fixed order:
// id, name, parent, sequence, groups, action. Only id is always present.
func MenuItemAttrs(r *record.Record) []record.Attr {
	attrs := []record.Attr{{Key: "id", Value: r.ID}}

	add := func(key, value string) {
		if value != "" {
			attrs = append(attrs, record.Attr{Key: key, Value: value})
		}
	}

	if f, ok := r.Field("name"); ok {
		add("name", strings.TrimSpace(f.Text))
	}

	if f, ok := r.Field("parent_id"); ok {
		add("parent", f.Ref)
	}

	if f, ok := r.Field("sequence"); ok {
		add("sequence", strings.TrimSpace(f.Text))
	}

	if f, ok := r.Field("groups_id"); ok && f.Eval != "" {
		add("groups", DecodeRefList(f.Eval))
	}

	if f, ok := r.Field("action"); ok {
		add("action", f.Ref)
	}

	return attrs
}

// attrEscaper escapes attribute values the way etree's canonical writer
// does. Whitespace control characters become character references so a
// parser does not normalize them to spaces.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\t", "&#9;",
	"\n", "&#10;",
	"\r", "&#13;",
)

// RenderMenuItems renders every menu record of records as a self-closing
// <menuitem> inside one <odoo> element. Records of other types are ignored.
func RenderMenuItems(records []*record.Record, header string) []byte {
	var b strings.Builder

	b.WriteString(XMLDeclaration)
	b.WriteByte('\n')

	if header != "" {
		b.WriteString(strings.TrimRight(header, "\n"))
		b.WriteByte('\n')
	}

	b.WriteString("<" + record.WrapperTag + ">\n")

	for _, r := range records {
		if r.Type != record.TypeMenuItem {
			continue
		}

		b.WriteString("    <menuitem")

		for _, a := range MenuItemAttrs(r) {
			b.WriteString("\n        ")
			b.WriteString(a.Key)
			b.WriteString(`="`)
			b.WriteString(attrEscaper.Replace(a.Value))
			b.WriteString(`"`)
		}

		b.WriteString(" />\n\n")
	}

	b.WriteString("</" + record.WrapperTag + ">\n")

	return []byte(b.String())
}
