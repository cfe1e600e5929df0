package render

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/hupe1980/odoo2mod/internal/grouping"
	"github.com/hupe1980/odoo2mod/internal/record"
)

// XMLDeclaration starts every XML artifact.
const XMLDeclaration = "<?xml version='1.0' encoding='utf-8'?>"

// indentSpaces is the indentation width of hierarchical artifacts.
const indentSpaces = 4

// RenderGroup renders all views of g followed by all of its actions.
func RenderGroup(g *grouping.Group, header string) ([]byte, error) {
	return RenderRecords(g.Records(), header)
}

// RenderRecords renders records under one <odoo> element. The output is
// the XML declaration, the header block (when non-empty) and the indented
// body. Blank lines in the body are dropped and exactly one blank line
// follows each closing </record> tag.
func RenderRecords(records []*record.Record, header string) ([]byte, error) {
	doc := etree.NewDocument()
	// Quotes stay literal in text and attribute values (domains, contexts).
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true

	root := etree.NewElement(record.WrapperTag)
	doc.SetRoot(root)

	for _, r := range records {
		root.AddChild(r.Element())
	}

	doc.Indent(indentSpaces)

	body, err := doc.WriteToString()
	if err != nil {
		return nil, fmt.Errorf("serializing records: %w", err)
	}

	var b strings.Builder

	b.WriteString(XMLDeclaration)
	b.WriteByte('\n')

	if header != "" {
		b.WriteString(strings.TrimRight(header, "\n"))
		b.WriteByte('\n')
	}

	b.WriteString(spaceRecords(body))
	b.WriteByte('\n')

	return []byte(b.String()), nil
}

// spaceRecords strips blank lines from body and inserts one blank line
// after every line that closes a record.
func spaceRecords(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		out = append(out, line)

		if strings.HasSuffix(strings.TrimSpace(line), "</record>") {
			out = append(out, "")
		}
	}

	return strings.Join(out, "\n")
}
