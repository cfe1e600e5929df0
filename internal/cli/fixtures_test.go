package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testViews = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="view_partner_form" model="ir.ui.view">
        <field name="name">res.partner.form</field>
        <field name="type">form</field>
        <field name="model">res.partner</field>
    </record>
    <record id="view_order_tree" model="ir.ui.view">
        <field name="name">sale.order.tree</field>
        <field name="model">sale.order</field>
    </record>
    <record id="view_without_model" model="ir.ui.view">
        <field name="name">orphan</field>
    </record>
</odoo>
`

const testActions = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="action_partner" model="ir.actions.act_window">
        <field name="name">Partners</field>
        <field name="res_model">res.partner</field>
        <field name="view_id" ref="view_partner_form"/>
    </record>
</odoo>
`

const testMenus = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="menu_partner" model="ir.ui.menu">
        <field name="name">Partners</field>
        <field name="action" ref="action_partner"/>
    </record>
</odoo>
`

const testAccess = `<?xml version="1.0" encoding="utf-8"?>
<odoo>
    <record id="access_partner_user" model="ir.model.access">
        <field name="name">partner user</field>
        <field name="model_id" ref="model_res_partner"/>
        <field name="group_id" ref="base.group_user"/>
        <field name="perm_read" eval="True"/>
    </record>
</odoo>
`

type testInputs struct {
	dir     string
	views   string
	actions string
	menus   string
	access  string
}

// writeTestInputs writes the four input documents to a temporary directory.
func writeTestInputs(t *testing.T) testInputs {
	t.Helper()

	dir := t.TempDir()
	in := testInputs{
		dir:     dir,
		views:   filepath.Join(dir, "views.xml"),
		actions: filepath.Join(dir, "actions.xml"),
		menus:   filepath.Join(dir, "menus.xml"),
		access:  filepath.Join(dir, "access.xml"),
	}

	writeFile(t, in.views, testViews)
	writeFile(t, in.actions, testActions)
	writeFile(t, in.menus, testMenus)
	writeFile(t, in.access, testAccess)

	return in
}

func (in testInputs) args(cmd string, extra ...string) []string {
	args := []string{
		cmd,
		"--views", in.views,
		"--actions", in.actions,
		"--menus", in.menus,
		"--access", in.access,
	}

	return append(args, extra...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
