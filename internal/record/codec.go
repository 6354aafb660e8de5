// =============================================================================
// CSB 34-11 Remittance - Record Codec
// =============================================================================
//
// The codec turns a record type and a map of field values into one encoded
// line. Fields are written in layout order with no separators; the line is
// always exactly RecordLen characters followed by the line terminator.
//
// ERROR HANDLING:
//   Any value that cannot be represented in its field is reported as a
//   *FieldError. The codec never silently drops a numeric digit; only Alpha
//   fields are truncated.
//
// =============================================================================

package record

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrUnknownRecordType is returned for a record type without a layout.
var ErrUnknownRecordType = errors.New("unknown record type")

// DefaultTerminator ends every record.
const DefaultTerminator = "\r\n"

// Fields holds the values of one record keyed by field name.
type Fields map[string]any

// Codec builds fixed-width records.
type Codec struct {
	terminator string
}

// Option configures a Codec.
type Option func(*Codec)

// WithTerminator overrides the record terminator.
func WithTerminator(terminator string) Option {
	return func(c *Codec) {
		c.terminator = terminator
	}
}

// New creates a Codec.
func New(opts ...Option) *Codec {
	c := &Codec{terminator: DefaultTerminator}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build encodes one record.
//
// PARAMETERS:
//   - t: The record type.
//   - fields: The values of the variable fields of the layout.
//
// RETURNS:
//   - The encoded record, terminator included.
//   - A *FieldError when a value does not fit its field, or
//     ErrUnknownRecordType.
func (c *Codec) Build(t Type, fields Fields) ([]byte, error) {
	layout, ok := layouts[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRecordType, t)
	}

	known := make(map[string]bool, len(layout))
	var buffer bytes.Buffer
	buffer.Grow(RecordLen + len(c.terminator))

	for _, field := range layout {
		known[field.Name] = true

		value, err := format(field, fields[field.Name])
		if err != nil {
			return nil, &FieldError{Record: t, Field: field.Name, Value: fields[field.Name], Reason: err.Error()}
		}
		buffer.WriteString(value)
	}

	// Catch values for fields the layout does not have.
	for name, value := range fields {
		if !known[name] {
			return nil, &FieldError{Record: t, Field: name, Value: value, Reason: "field is not part of the record"}
		}
	}

	if buffer.Len() != RecordLen {
		return nil, fmt.Errorf("record %s encoded to %d characters, want %d", t, buffer.Len(), RecordLen)
	}

	buffer.WriteString(c.terminator)
	return buffer.Bytes(), nil
}
