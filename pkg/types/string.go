package types

import (
	"encoding/binary"
	"io"
	"strings"
)

// StringMaxSize is the fixed on-disk capacity of a string field in bytes.
const StringMaxSize = 128

// StringField represents a string field with a fixed on-disk footprint.
// Values longer than StringMaxSize are truncated at construction.
type StringField struct {
	Value string
}

func NewStringField(value string) *StringField {
	if len(value) > StringMaxSize {
		value = value[:StringMaxSize]
	}
	return &StringField{Value: value}
}

// Serialize writes a 4-byte length prefix followed by the value padded with
// zero bytes to StringMaxSize.
func (f *StringField) Serialize(w io.Writer) error {
	buf := make([]byte, 4+StringMaxSize)
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(f.Value))) // #nosec G115
	copy(buf[4:], f.Value)
	_, err := w.Write(buf)
	return err
}

func (f *StringField) Compare(op Predicate, other Field) (bool, error) {
	otherField, ok := other.(*StringField)
	if !ok {
		return false, nil
	}

	cmp := strings.Compare(f.Value, otherField.Value)

	switch op {
	case Equals:
		return cmp == 0, nil
	case LessThan:
		return cmp < 0, nil
	case GreaterThan:
		return cmp > 0, nil
	case LessThanOrEqual:
		return cmp <= 0, nil
	case GreaterThanOrEqual:
		return cmp >= 0, nil
	case NotEqual:
		return cmp != 0, nil
	default:
		return false, nil
	}
}

func (f *StringField) Type() Type {
	return StringType
}

func (f *StringField) String() string {
	return f.Value
}

func (f *StringField) Equals(other Field) bool {
	otherField, ok := other.(*StringField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}
