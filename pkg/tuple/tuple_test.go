package tuple

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotdb/pkg/primitives"
	"slotdb/pkg/types"
)

func twoFieldDesc(t *testing.T) *TupleDescription {
	t.Helper()
	td, err := NewTupleDesc(
		[]types.Type{types.IntType, types.StringType},
		[]string{"id", "name"},
	)
	require.NoError(t, err)
	return td
}

func TestNewTupleDescValidation(t *testing.T) {
	_, err := NewTupleDesc(nil, nil)
	assert.Error(t, err)

	_, err = NewTupleDesc([]types.Type{types.IntType}, []string{"a", "b"})
	assert.Error(t, err)

	td, err := NewTupleDesc([]types.Type{types.IntType}, nil)
	require.NoError(t, err)
	name, err := td.GetFieldName(0)
	require.NoError(t, err)
	assert.Equal(t, "", name)
}

func TestTupleDescSize(t *testing.T) {
	td := twoFieldDesc(t)

	intSize, err := types.IntType.Size()
	require.NoError(t, err)
	strSize, err := types.StringType.Size()
	require.NoError(t, err)
	assert.Equal(t, intSize+strSize, td.GetSize())
}

func TestTupleDescEqualsIgnoresNames(t *testing.T) {
	td := twoFieldDesc(t)

	unnamed, err := NewTupleDesc([]types.Type{types.IntType, types.StringType}, nil)
	require.NoError(t, err)
	assert.True(t, td.Equals(unnamed))

	reordered, err := NewTupleDesc([]types.Type{types.StringType, types.IntType}, nil)
	require.NoError(t, err)
	assert.False(t, td.Equals(reordered))
	assert.False(t, td.Equals(nil))
}

func TestSetFieldValidatesTypeAndBounds(t *testing.T) {
	tup := NewTuple(twoFieldDesc(t))

	assert.Error(t, tup.SetField(0, types.NewStringField("wrong")))
	assert.Error(t, tup.SetField(2, types.NewIntField(1)))
	assert.Error(t, tup.SetField(-1, types.NewIntField(1)))

	require.NoError(t, tup.SetField(0, types.NewIntField(1)))
	require.NoError(t, tup.SetField(1, types.NewStringField("ok")))

	field, err := tup.GetField(1)
	require.NoError(t, err)
	assert.Equal(t, "ok", field.String())
}

func TestSerializeRejectsUnsetField(t *testing.T) {
	tup := NewTuple(twoFieldDesc(t))
	require.NoError(t, tup.SetField(0, types.NewIntField(1)))

	var buf bytes.Buffer
	assert.Error(t, tup.Serialize(&buf))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	td := twoFieldDesc(t)
	tup := NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(7)))
	require.NoError(t, tup.SetField(1, types.NewStringField("alice")))

	var buf bytes.Buffer
	require.NoError(t, tup.Serialize(&buf))
	assert.Equal(t, td.GetSize(), buf.Len())

	parsed, err := Parse(&buf, td)
	require.NoError(t, err)
	assert.Equal(t, tup.String(), parsed.String())
}

func TestRecordIDEquals(t *testing.T) {
	pid := primitives.NewPageID(1, 2)
	rid := NewRecordID(pid, 3)

	assert.True(t, rid.Equals(NewRecordID(primitives.NewPageID(1, 2), 3)))
	assert.False(t, rid.Equals(NewRecordID(primitives.NewPageID(1, 2), 4)))
	assert.False(t, rid.Equals(NewRecordID(primitives.NewPageID(9, 2), 3)))
	assert.False(t, rid.Equals(nil))
}
