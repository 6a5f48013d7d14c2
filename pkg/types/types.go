// Package types defines the field value types stored in tuples and the
// predicates used to compare them.
package types

import "fmt"

type Type int

const (
	IntType Type = iota
	StringType
)

// String returns a string representation of the type.
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// Size returns the number of bytes a serialized field of this type occupies.
// All fields are fixed width: integers are 8 bytes, strings are a 4-byte
// length prefix followed by StringMaxSize bytes of content.
func (t Type) Size() (int, error) {
	switch t {
	case IntType:
		return 8, nil
	case StringType:
		return 4 + StringMaxSize, nil
	default:
		return 0, fmt.Errorf("unknown type %d", t)
	}
}

type Predicate int

const (
	Equals Predicate = iota
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="
	case LessThan:
		return "<"
	case GreaterThan:
		return ">"
	case LessThanOrEqual:
		return "<="
	case GreaterThanOrEqual:
		return ">="
	case NotEqual:
		return "!="
	default:
		return "UNKNOWN"
	}
}
