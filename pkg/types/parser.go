package types

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ParseField reads one fixed-width field of the given type from r.
func ParseField(r io.Reader, t Type) (Field, error) {
	switch t {
	case IntType:
		return parseIntField(r)
	case StringType:
		return parseStringField(r)
	default:
		return nil, fmt.Errorf("cannot parse unknown type %d", t)
	}
}

func parseIntField(r io.Reader) (*IntField, error) {
	buf := make([]byte, 8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read int field: %w", err)
	}
	return NewIntField(int64(binary.BigEndian.Uint64(buf))), nil // #nosec G115
}

func parseStringField(r io.Reader) (*StringField, error) {
	buf := make([]byte, 4+StringMaxSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("failed to read string field: %w", err)
	}

	length := binary.BigEndian.Uint32(buf[0:4])
	if length > StringMaxSize {
		return nil, fmt.Errorf("string field length %d exceeds maximum %d", length, StringMaxSize)
	}

	return NewStringField(string(buf[4 : 4+length])), nil
}
