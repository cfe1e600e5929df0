package record

import "fmt"

// FormatError reports an input document whose root element is not the
// expected wrapper. It is fatal for the run.
type FormatError struct {
	// Source names the document (usually a file path). May be empty.
	Source string
	// Tag is the root tag found, empty when the document has no root.
	Tag string
}

func (e *FormatError) Error() string {
	src := e.Source
	if src == "" {
		src = "document"
	}

	if e.Tag == "" {
		return fmt.Sprintf("%s: no root element, the document must be wrapped in <%s>", src, WrapperTag)
	}

	return fmt.Sprintf("%s: root element is <%s>, the document must be wrapped in <%s>", src, e.Tag, WrapperTag)
}

// MissingKeyFieldWarning reports a record that lacks its type's grouping
// key field (or carries it with empty text). The record is skipped; the run
// continues.
type MissingKeyFieldWarning struct {
	RecordID string
	Type     Type
	KeyField string
}

func (w *MissingKeyFieldWarning) Error() string {
	return fmt.Sprintf("record %q (%s) has no %q field, skipped", w.RecordID, w.Type, w.KeyField)
}
