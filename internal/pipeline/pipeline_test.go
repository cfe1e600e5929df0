package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/odoo2mod/internal/filter"
	"github.com/hupe1980/odoo2mod/internal/logging"
	"github.com/hupe1980/odoo2mod/internal/projection"
	"github.com/hupe1980/odoo2mod/internal/record"
	"github.com/hupe1980/odoo2mod/internal/render"
)

const viewsXML = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="view_partner_form" model="ir.ui.view">
        <field name="type">form</field>
        <field name="name">res.partner.form</field>
        <field name="priority">16</field>
        <field name="model">res.partner</field>
    </record>
    <record id="view_order_tree" model="ir.ui.view">
        <field name="name">sale.order.tree</field>
        <field name="model">sale.order</field>
    </record>
    <record id="view_without_model" model="ir.ui.view">
        <field name="name">broken</field>
    </record>
</odoo>
`

const actionsXML = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="action_partner" model="ir.actions.act_window">
        <field name="view_id" ref="view_partner_form"/>
        <field name="res_model">res.partner</field>
        <field name="view_mode">tree,form</field>
        <field name="name">Partners</field>
    </record>
</odoo>
`

const menusXML = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="menu_partner" model="ir.ui.menu">
        <field name="name">Partners</field>
        <field name="parent_id" ref="base.menu_root"/>
        <field name="action" ref="action_partner"/>
        <field name="groups_id" eval="[(6, 0, [ref('base.group_user')])]"/>
    </record>
</odoo>
`

const accessXML = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="access_partner_user" model="ir.model.access">
        <field name="name">partner user</field>
        <field name="model_id" ref="model_res_partner"/>
        <field name="group_id" ref="base.group_user"/>
        <field name="perm_read" eval="True"/>
        <field name="perm_write" eval="True"/>
    </record>
</odoo>
`

func testSources() Sources {
	return Sources{
		record.TypeView:       {Name: "views.xml", Data: []byte(viewsXML)},
		record.TypeAction:     {Name: "actions.xml", Data: []byte(actionsXML)},
		record.TypeMenuItem:   {Name: "menus.xml", Data: []byte(menusXML)},
		record.TypeAccessRule: {Name: "access.xml", Data: []byte(accessXML)},
	}
}

func quietContext() context.Context {
	return logging.NewContext(context.Background(), logging.Discard())
}

func artifactByPath(t *testing.T, res *Result, path string) Artifact {
	t.Helper()

	for _, a := range res.Artifacts {
		if a.Path == path {
			return a
		}
	}

	require.Failf(t, "artifact not found", "path %s", path)

	return Artifact{}
}

// ---------------------------------------------------------------------------
// Build
// ---------------------------------------------------------------------------

func TestBuild_PartnerGroup(t *testing.T) {
	res, err := Build(quietContext(), testSources(), DefaultOptions())
	require.NoError(t, err)

	a := artifactByPath(t, res, filepath.Join("views", "res_partner_views.xml"))
	assert.Equal(t, KindViews, a.Kind)
	assert.Equal(t, "res_partner", a.Key)
	assert.Equal(t, 2, a.Records)

	want := `<?xml version='1.0' encoding='utf-8'?>
<!-- This file was generated automatically -->
<odoo>
    <record id="view_partner_form" model="ir.ui.view">
        <field name="name">res.partner.form</field>
        <field name="model">res.partner</field>
        <field name="priority">16</field>
    </record>

    <record id="action_partner" model="ir.actions.act_window">
        <field name="name">Partners</field>
        <field name="res_model">res.partner</field>
        <field name="view_mode">tree,form</field>
    </record>

</odoo>
`
	assert.Equal(t, want, string(a.Data))
}

func TestBuild_AllArtifacts(t *testing.T) {
	res, err := Build(quietContext(), testSources(), DefaultOptions())
	require.NoError(t, err)

	var paths []string
	for _, a := range res.Artifacts {
		paths = append(paths, a.Path)
	}

	assert.Equal(t, []string{
		filepath.Join("views", "res_partner_views.xml"),
		filepath.Join("views", "sale_order_views.xml"),
		filepath.Join("views", "menu.xml"),
		filepath.Join("security", "ir.model.access.csv"),
	}, paths)

	assert.Equal(t, []string{"res_partner", "sale_order"}, res.Groups.Keys())
	assert.Equal(t, 2, res.Counts[record.TypeView])
	assert.Equal(t, 1, res.Counts[record.TypeAction])
	assert.Equal(t, 1, res.Counts[record.TypeMenuItem])
	assert.Equal(t, 1, res.Counts[record.TypeAccessRule])

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "view_without_model", res.Skipped[0].RecordID)
}

func TestBuild_ViewOnlyGroupHasNoActions(t *testing.T) {
	res, err := Build(quietContext(), testSources(), DefaultOptions())
	require.NoError(t, err)

	g, ok := res.Groups.Get("sale_order")
	require.True(t, ok)
	assert.Len(t, g.Views, 1)
	assert.Empty(t, g.Actions)
}

func TestBuild_MenuAndAccess(t *testing.T) {
	res, err := Build(quietContext(), testSources(), DefaultOptions())
	require.NoError(t, err)

	menu := artifactByPath(t, res, filepath.Join("views", "menu.xml"))
	assert.Equal(t, KindMenu, menu.Kind)
	assert.Contains(t, string(menu.Data), `        groups="base.group_user"`)
	assert.Contains(t, string(menu.Data), `        parent="base.menu_root"`)

	access := artifactByPath(t, res, filepath.Join("security", "ir.model.access.csv"))
	assert.Equal(t, KindAccess, access.Kind)
	assert.Equal(t,
		"id,name,model_id:id,group_id:id,perm_read,perm_write,perm_create,perm_unlink\n"+
			"access_partner_user,partner user,model_res_partner,base.group_user,1,1,0,0\n",
		string(access.Data))
}

func TestBuild_OnlyPresentInputs(t *testing.T) {
	src := Sources{record.TypeView: {Name: "views.xml", Data: []byte(viewsXML)}}

	res, err := Build(quietContext(), src, DefaultOptions())
	require.NoError(t, err)

	for _, a := range res.Artifacts {
		assert.Equal(t, KindViews, a.Kind)
	}

	assert.Len(t, res.Artifacts, 2)
}

func TestBuild_FormatError(t *testing.T) {
	src := Sources{record.TypeView: {Name: "views.xml", Data: []byte(`<openerp/>`)}}

	_, err := Build(quietContext(), src, DefaultOptions())
	require.Error(t, err)

	var fe *record.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "openerp", fe.Tag)
}

func TestBuild_MissingAccessAttribute(t *testing.T) {
	src := testSources()
	src[record.TypeAccessRule] = Source{Name: "access.xml", Data: []byte(`<odoo>
    <record id="access_broken" model="ir.model.access">
        <field name="name">broken</field>
        <field name="model_id" ref="model_res_partner"/>
    </record>
</odoo>`)}

	res, err := Build(quietContext(), src, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, res)

	var me *render.MissingRequiredAttributeError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "access_broken", me.RecordID)
	assert.Equal(t, "group_id", me.Field)
}

func TestBuild_WarnsOnUnexpectedGroupsExpression(t *testing.T) {
	var buf bytes.Buffer

	ctx := logging.NewContext(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	src := Sources{record.TypeMenuItem: {Name: "menus.xml", Data: []byte(`<odoo>
    <record id="menu_odd" model="ir.ui.menu">
        <field name="groups_id" eval="[(4, ref('base.group_user'))]"/>
    </record>
</odoo>`)}}

	_, err := Build(ctx, src, DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "unexpected groups_id expression")
	assert.Contains(t, buf.String(), "menu_odd")
}

func TestBuild_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(quietContext())
	cancel()

	_, err := Build(ctx, testSources(), DefaultOptions())
	require.ErrorIs(t, err, context.Canceled)
}

// ---------------------------------------------------------------------------
// Run / Write
// ---------------------------------------------------------------------------

func writeInputs(t *testing.T) Inputs {
	t.Helper()

	dir := t.TempDir()
	in := Inputs{
		Views:   filepath.Join(dir, "views.xml"),
		Actions: filepath.Join(dir, "actions.xml"),
		Menus:   filepath.Join(dir, "menus.xml"),
		Access:  filepath.Join(dir, "access.xml"),
	}

	for path, content := range map[string]string{
		in.Views: viewsXML, in.Actions: actionsXML, in.Menus: menusXML, in.Access: accessXML,
	} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return in
}

func TestRunAndWrite(t *testing.T) {
	opts := DefaultOptions()
	opts.Inputs = writeInputs(t)

	res, err := Run(quietContext(), opts)
	require.NoError(t, err)

	out := t.TempDir()

	written, err := Write(quietContext(), res, out)
	require.NoError(t, err)
	assert.Len(t, written, 4)

	for _, a := range res.Artifacts {
		data, err := os.ReadFile(filepath.Join(out, a.Path))
		require.NoError(t, err)
		assert.Equal(t, a.Data, data)
	}
}

func TestRun_MissingInput(t *testing.T) {
	opts := DefaultOptions()
	opts.Inputs = Inputs{Views: filepath.Join(t.TempDir(), "missing.xml")}

	_, err := Run(quietContext(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading ir.ui.view input")
}

func TestInputs_Paths(t *testing.T) {
	in := Inputs{Views: "v.xml", Access: "a.xml"}
	assert.Equal(t, []string{"v.xml", "a.xml"}, in.Paths())
	assert.Empty(t, Inputs{}.Paths())
}

func TestBuild_Filter(t *testing.T) {
	idf, err := filter.NewIDFilter([]string{"view_order_*"})
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Filter = filter.NewChain(idf, filter.NewModelFilter(nil))

	res, err := Build(quietContext(), testSources(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"res_partner"}, res.Groups.Keys())
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "view_order_tree", res.Excluded[0].Record.ID)
	assert.Equal(t, 2, res.Counts[record.TypeView], "counts include excluded records")
}

func TestBuild_PolicyExcludingKeyFieldKeepsGroups(t *testing.T) {
	opts := DefaultOptions()
	opts.Policies = projection.Policies{
		record.TypeView:   {Exclude: []string{"model"}},
		record.TypeAction: {Exclude: []string{"res_model"}},
	}

	res, err := Build(quietContext(), testSources(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"res_partner", "sale_order"}, res.Groups.Keys())
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "view_without_model", res.Skipped[0].RecordID)

	a := artifactByPath(t, res, filepath.Join("views", "res_partner_views.xml"))
	assert.Equal(t, 2, a.Records)
	assert.NotContains(t, string(a.Data), `name="model"`)
	assert.NotContains(t, string(a.Data), `name="res_model"`)
	assert.Contains(t, string(a.Data), `<record id="action_partner" model="ir.actions.act_window">`)
}
