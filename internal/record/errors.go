package record

import "fmt"

// FieldError reports a value that cannot be encoded into its field.
type FieldError struct {
	Record Type
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("record %s, field '%s': %s (value: '%v')", e.Record, e.Field, e.Reason, e.Value)
}
