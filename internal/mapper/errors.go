package mapper

import "fmt"

// SchemaMismatchError reports a JSON shape that does not match the known
// schemas: a nested object with no schema, or a required part missing.
type SchemaMismatchError struct {
	Path   string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("mapper: schema mismatch at %q: %s", e.Path, e.Reason)
}

// FieldMismatchError reports a scalar field that the target table does not
// declare, or whose JSON type does not fit the column.
type FieldMismatchError struct {
	Table  string
	Field  string
	Reason string
}

func (e *FieldMismatchError) Error() string {
	return fmt.Sprintf("mapper: field mismatch on %s.%s: %s", e.Table, e.Field, e.Reason)
}
