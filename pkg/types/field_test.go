package types

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntFieldCompare(t *testing.T) {
	three := NewIntField(3)
	five := NewIntField(5)

	got, err := three.Compare(LessThan, five)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = three.Compare(GreaterThanOrEqual, five)
	require.NoError(t, err)
	assert.False(t, got)

	got, err = three.Compare(NotEqual, five)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = three.Compare(Equals, NewIntField(3))
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompareAcrossTypesIsFalse(t *testing.T) {
	got, err := NewIntField(3).Compare(Equals, NewStringField("3"))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestIntFieldSerializeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	original := NewIntField(-42)
	require.NoError(t, original.Serialize(&buf))

	size, err := IntType.Size()
	require.NoError(t, err)
	assert.Equal(t, size, buf.Len())

	parsed, err := ParseField(&buf, IntType)
	require.NoError(t, err)
	assert.True(t, original.Equals(parsed))
}

func TestStringFieldSerializeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	original := NewStringField("hello")
	require.NoError(t, original.Serialize(&buf))

	size, err := StringType.Size()
	require.NoError(t, err)
	assert.Equal(t, size, buf.Len())

	parsed, err := ParseField(&buf, StringType)
	require.NoError(t, err)
	assert.Equal(t, "hello", parsed.String())
	assert.True(t, original.Equals(parsed))
}

func TestStringFieldTruncatesAtMaxSize(t *testing.T) {
	long := strings.Repeat("x", StringMaxSize+10)
	field := NewStringField(long)
	assert.Len(t, field.Value, StringMaxSize)
}

func TestParseRejectsCorruptStringLength(t *testing.T) {
	buf := make([]byte, 4+StringMaxSize)
	buf[0] = 0xff // length prefix far beyond StringMaxSize

	_, err := ParseField(bytes.NewReader(buf), StringType)
	assert.Error(t, err)
}

func TestStringFieldCompareOrdering(t *testing.T) {
	apple := NewStringField("apple")
	banana := NewStringField("banana")

	got, err := apple.Compare(LessThan, banana)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = banana.Compare(GreaterThan, apple)
	require.NoError(t, err)
	assert.True(t, got)
}
