// Package render serializes records into the three artifact formats:
//
//   - Hierarchical markup (xml.go): one <odoo> document per group with
//     4-space indentation and a blank line after every </record>.
//
//   - Flattened attributes (menu.go): one self-closing <menuitem> per menu
//     record, attributes one per line, including decoding of the groups_id
//     reference list.
//
//   - Tabular rows (access.go): the ir.model.access CSV table with 0/1
//     permission flags.
//
// Every renderer builds its output fully in memory and returns it; writing
// is left to the caller.
package render
