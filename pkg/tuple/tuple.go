// Package tuple provides the record layer: schemas, tuples, and their
// fixed-width serialization used by the page storage formats.
package tuple

import (
	"fmt"
	"io"
	"strings"

	"slotdb/pkg/types"
)

// Tuple represents a row of data in the database.
type Tuple struct {
	TupleDesc *TupleDescription // Schema of this tuple
	fields    []types.Field     // The actual field values
	RecordID  *RecordID         // Where this tuple is stored (nil if not stored)
}

// NewTuple creates a new tuple with the given schema and unset fields.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField sets the value of the ith field, validating its type against the schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}

	expectedType, _ := t.TupleDesc.TypeAtIndex(i)
	if field.Type() != expectedType {
		return fmt.Errorf("field type mismatch: expected %v, got %v", expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the value of the ith field.
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(t.fields))
	}
	return t.fields[i], nil
}

// Serialize writes the fields of this tuple in schema order. Every field must
// be set; partial tuples cannot be stored.
func (t *Tuple) Serialize(w io.Writer) error {
	for i, field := range t.fields {
		if field == nil {
			return fmt.Errorf("cannot serialize tuple with unset field %d", i)
		}
		if err := field.Serialize(w); err != nil {
			return fmt.Errorf("failed to serialize field %d: %w", i, err)
		}
	}
	return nil
}

// Parse reads one tuple of the given schema from r.
func Parse(r io.Reader, td *TupleDescription) (*Tuple, error) {
	t := NewTuple(td)
	for i, fieldType := range td.Types {
		field, err := types.ParseField(r, fieldType)
		if err != nil {
			return nil, fmt.Errorf("failed to parse field %d: %w", i, err)
		}
		t.fields[i] = field
	}
	return t, nil
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, field := range t.fields {
		if field != nil {
			parts[i] = field.String()
		} else {
			parts[i] = "null"
		}
	}
	return strings.Join(parts, "\t")
}
