package types

import (
	"encoding/binary"
	"io"
	"strconv"
)

// IntField represents a 64-bit signed integer field.
type IntField struct {
	Value int64
}

func NewIntField(value int64) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	bytes := make([]byte, 8)
	binary.BigEndian.PutUint64(bytes, uint64(f.Value)) // #nosec G115
	_, err := w.Write(bytes)
	return err
}

func (f *IntField) Compare(op Predicate, other Field) (bool, error) {
	otherField, ok := other.(*IntField)
	if !ok {
		return false, nil
	}

	switch op {
	case Equals:
		return f.Value == otherField.Value, nil
	case LessThan:
		return f.Value < otherField.Value, nil
	case GreaterThan:
		return f.Value > otherField.Value, nil
	case LessThanOrEqual:
		return f.Value <= otherField.Value, nil
	case GreaterThanOrEqual:
		return f.Value >= otherField.Value, nil
	case NotEqual:
		return f.Value != otherField.Value, nil
	default:
		return false, nil
	}
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *IntField) Equals(other Field) bool {
	otherField, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherField.Value
}
