package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/hupe1980/odoo2mod/internal/record"
)

// AccessHeader is the header row of the access table.
var AccessHeader = []string{
	"id", "name", "model_id:id", "group_id:id",
	"perm_read", "perm_write", "perm_create", "perm_unlink",
}

// MissingRequiredAttributeError reports an access rule that cannot be
// turned into a row because a required field or attribute is absent.
type MissingRequiredAttributeError struct {
	RecordID string
	Field    string
	// Attribute is "ref" for reference fields, empty for the field itself.
	Attribute string
}

func (e *MissingRequiredAttributeError) Error() string {
	if e.Attribute == "" {
		return fmt.Sprintf("access rule %q: missing required field %q", e.RecordID, e.Field)
	}

	return fmt.Sprintf("access rule %q: field %q has no %s", e.RecordID, e.Field, e.Attribute)
}

// AccessRow is one row of the access table.
type AccessRow struct {
	ID     string
	Name   string
	Model  string
	Group  string
	Read   bool
	Write  bool
	Create bool
	Unlink bool
}

// NewAccessRow flattens an access rule. name, model_id's ref and group_id's
// ref are required. A permission is set only when its field's eval is
// exactly "True".
func NewAccessRow(r *record.Record) (AccessRow, error) {
	row := AccessRow{ID: r.ID}

	name, ok := r.Field("name")
	if !ok {
		return AccessRow{}, &MissingRequiredAttributeError{RecordID: r.ID, Field: "name"}
	}

	row.Name = strings.TrimSpace(name.Text)

	var err error

	if row.Model, err = requiredRef(r, "model_id"); err != nil {
		return AccessRow{}, err
	}

	if row.Group, err = requiredRef(r, "group_id"); err != nil {
		return AccessRow{}, err
	}

	row.Read = permFlag(r, "perm_read")
	row.Write = permFlag(r, "perm_write")
	row.Create = permFlag(r, "perm_create")
	row.Unlink = permFlag(r, "perm_unlink")

	return row, nil
}

func requiredRef(r *record.Record, field string) (string, error) {
	f, ok := r.Field(field)
	if !ok {
		return "", &MissingRequiredAttributeError{RecordID: r.ID, Field: field}
	}

	if f.Ref == "" {
		return "", &MissingRequiredAttributeError{RecordID: r.ID, Field: field, Attribute: "ref"}
	}

	return f.Ref, nil
}

func permFlag(r *record.Record, field string) bool {
	f, ok := r.Field(field)
	return ok && f.Eval == "True"
}

// Values returns the row's cells in header order.
func (row AccessRow) Values() []string {
	return []string{
		row.ID, row.Name, row.Model, row.Group,
		flag(row.Read), flag(row.Write), flag(row.Create), flag(row.Unlink),
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// RenderAccessTable renders the access rules of records as CSV with the
// fixed header row. Values containing commas, quotes or newlines are
// quoted. Records of other types are ignored.
func RenderAccessTable(records []*record.Record) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(AccessHeader); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, r := range records {
		if r.Type != record.TypeAccessRule {
			continue
		}

		row, err := NewAccessRow(r)
		if err != nil {
			return nil, err
		}

		if err := w.Write(row.Values()); err != nil {
			return nil, fmt.Errorf("writing row %s: %w", r.ID, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing access table: %w", err)
	}

	return buf.Bytes(), nil
}
