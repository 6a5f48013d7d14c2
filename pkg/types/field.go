package types

import "io"

// Field is the value of a single tuple column. Implementations are fixed
// width on disk so pages can compute slot offsets without scanning.
type Field interface {
	// Serialize writes the fixed-width on-disk representation of this field.
	Serialize(w io.Writer) error

	// Compare evaluates this field against another under the given predicate.
	Compare(op Predicate, other Field) (bool, error)

	// Type returns the type of this field.
	Type() Type

	// Equals checks value equality with another field.
	Equals(other Field) bool

	String() string
}
