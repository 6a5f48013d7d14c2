package tuple

import (
	"fmt"
	"slices"
	"strings"

	"slotdb/pkg/types"
)

// TupleDescription describes the schema of a tuple: the types of its fields
// in order, plus optional field names.
type TupleDescription struct {
	Types      []types.Type
	FieldNames []string
}

// NewTupleDesc creates a new TupleDescription given field types and optional
// field names. If fieldNames is nil, fields have no names.
func NewTupleDesc(fieldTypes []types.Type, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, fmt.Errorf("must provide at least one field type")
	}

	if fieldNames != nil && len(fieldNames) != len(fieldTypes) {
		return nil, fmt.Errorf("field names length (%d) must match field types length (%d)",
			len(fieldNames), len(fieldTypes))
	}

	return &TupleDescription{
		Types:      slices.Clone(fieldTypes),
		FieldNames: slices.Clone(fieldNames),
	}, nil
}

// NumFields returns the number of fields in this schema.
func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// TypeAtIndex returns the type of the ith field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}
	return td.Types[i], nil
}

// GetFieldName returns the name of the ith field, or the empty string if no
// names were provided.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", fmt.Errorf("field index %d out of bounds [0, %d)", i, len(td.Types))
	}

	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

// GetSize returns the number of bytes a serialized tuple of this schema
// occupies. All field types are fixed width, so this is a constant per schema.
func (td *TupleDescription) GetSize() int {
	size := 0
	for _, t := range td.Types {
		s, err := t.Size()
		if err != nil {
			continue
		}
		size += s
	}
	return size
}

// Equals checks whether two schemas have identical field types.
// Field names are not part of schema identity.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil {
		return false
	}
	return slices.Equal(td.Types, other.Types)
}

func (td *TupleDescription) String() string {
	parts := make([]string, len(td.Types))
	for i, t := range td.Types {
		name := ""
		if td.FieldNames != nil {
			name = td.FieldNames[i]
		}
		parts[i] = fmt.Sprintf("%s(%s)", t.String(), name)
	}
	return strings.Join(parts, ", ")
}
