package render

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/odoo2mod/internal/grouping"
	"github.com/hupe1980/odoo2mod/internal/record"
)

const testHeader = "<!-- generated -->"

func partnerView() *record.Record {
	return record.New("view_partner_form", record.TypeView,
		record.Field{Name: "name", Text: "res.partner.form"},
		record.Field{Name: "model", Text: "res.partner"},
	)
}

func partnerAction() *record.Record {
	return record.New("action_partner", record.TypeAction,
		record.Field{Name: "name", Text: "Partners"},
		record.Field{Name: "res_model", Text: "res.partner"},
	)
}

func TestRenderGroup_ByteForByte(t *testing.T) {
	g := &grouping.Group{
		Key:     "res_partner",
		Views:   []*record.Record{partnerView()},
		Actions: []*record.Record{partnerAction()},
	}

	got, err := RenderGroup(g, testHeader)
	require.NoError(t, err)

	want := `<?xml version='1.0' encoding='utf-8'?>
<!-- generated -->
<odoo>
    <record id="view_partner_form" model="ir.ui.view">
        <field name="name">res.partner.form</field>
        <field name="model">res.partner</field>
    </record>

    <record id="action_partner" model="ir.actions.act_window">
        <field name="name">Partners</field>
        <field name="res_model">res.partner</field>
    </record>

</odoo>
`
	assert.Equal(t, want, string(got))
}

func TestRenderRecords_Deterministic(t *testing.T) {
	a, err := RenderRecords([]*record.Record{partnerView(), partnerView()}, testHeader)
	require.NoError(t, err)

	b, err := RenderRecords([]*record.Record{partnerView(), partnerView()}, testHeader)
	require.NoError(t, err)

	assert.Equal(t, a, b)

	lines := strings.Split(string(a), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "</record>" {
			require.Less(t, i+1, len(lines))
			assert.Empty(t, lines[i+1], "blank line expected after line %d", i)
			require.Less(t, i+2, len(lines))
			assert.NotEmpty(t, lines[i+2], "only one blank line expected after line %d", i)
		}
	}

	assert.Equal(t, 2, strings.Count(string(a), "</record>\n\n"))
}

func TestRenderRecords_NestedArch(t *testing.T) {
	view := record.New("view_partner_tree", record.TypeView,
		record.Field{Name: "name", Text: "res.partner.tree"},
	)
	view.Attrs = []record.Attr{
		{Key: "id", Value: "view_partner_tree"},
		{Key: "model", Value: "ir.ui.view"},
		{Key: "context", Value: "{'lang': 'en_US'}"},
	}

	got, err := RenderRecords([]*record.Record{view}, "")
	require.NoError(t, err)

	s := string(got)
	assert.True(t, strings.HasPrefix(s, XMLDeclaration+"\n<odoo>\n"), "empty header is omitted")
	assert.Contains(t, s, `context="{'lang': 'en_US'}"`)
	assert.NotContains(t, s, "\n\n\n")
	assert.True(t, strings.HasSuffix(s, "</record>\n\n</odoo>\n"))
}

func TestRenderRecords_StripsSourceBlankLines(t *testing.T) {
	r := record.New("v", record.TypeView, record.Field{Name: "model", Text: "a.b"})

	got, err := RenderRecords([]*record.Record{r}, testHeader+"\n\n")
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(string(got), "\n\n"))
}

func TestRenderRecords_KeepsCommentsAfterFields(t *testing.T) {
	r := partnerView()
	r.Extra = []etree.Token{etree.NewComment(" keep me ")}

	got, err := RenderRecords([]*record.Record{r}, "")
	require.NoError(t, err)

	want := XMLDeclaration + `
<odoo>
    <record id="view_partner_form" model="ir.ui.view">
        <field name="name">res.partner.form</field>
        <field name="model">res.partner</field>
        <!-- keep me -->
    </record>

</odoo>
`
	assert.Equal(t, want, string(got))
}

func TestRenderRecords_Empty(t *testing.T) {
	got, err := RenderRecords(nil, testHeader)
	require.NoError(t, err)
	assert.Equal(t, XMLDeclaration+"\n"+testHeader+"\n<odoo/>\n", string(got))
}

func TestSpaceRecords(t *testing.T) {
	in := "<odoo>\n\n  <record>\n  </record>\n   \n  <record/>\n</odoo>\n"
	assert.Equal(t, "<odoo>\n  <record>\n  </record>\n\n  <record/>\n</odoo>", spaceRecords(in))
}
