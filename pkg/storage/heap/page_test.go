package heap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
	"slotdb/pkg/types"
)

func intDesc(t *testing.T) *tuple.TupleDescription {
	t.Helper()
	td, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"v"})
	require.NoError(t, err)
	return td
}

func intTuple(t *testing.T, td *tuple.TupleDescription, v int64) *tuple.Tuple {
	t.Helper()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(v)))
	return tup
}

func TestSlotCountForIntSchema(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	// 8-byte tuples plus one header bit each: floor(4096*8 / 65).
	assert.Equal(t, 504, hp.GetNumSlots())
	assert.Equal(t, 504, hp.GetNumEmptySlots())
}

func TestInsertAssignsRecordID(t *testing.T) {
	td := intDesc(t)
	pid := primitives.NewPageID(1, 3)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)

	tup := intTuple(t, td, 42)
	require.NoError(t, hp.InsertTuple(tup))

	require.NotNil(t, tup.RecordID)
	assert.True(t, tup.RecordID.PageID.Equals(pid))
	assert.Equal(t, primitives.SlotID(0), tup.RecordID.SlotNum)
	assert.Equal(t, hp.GetNumSlots()-1, hp.GetNumEmptySlots())
}

func TestInsertRejectsSchemaMismatch(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	otherDesc, err := tuple.NewTupleDesc([]types.Type{types.StringType}, []string{"s"})
	require.NoError(t, err)
	other := tuple.NewTuple(otherDesc)
	require.NoError(t, other.SetField(0, types.NewStringField("x")))

	assert.Error(t, hp.InsertTuple(other))
}

func TestInsertIntoFullPage(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	for i := 0; i < hp.GetNumSlots(); i++ {
		require.NoError(t, hp.InsertTuple(intTuple(t, td, int64(i))))
	}
	require.Equal(t, 0, hp.GetNumEmptySlots())

	assert.Error(t, hp.InsertTuple(intTuple(t, td, -1)))
}

func TestDeleteClearsSlotAndRecordID(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	tup := intTuple(t, td, 7)
	require.NoError(t, hp.InsertTuple(tup))
	require.NoError(t, hp.DeleteTuple(tup))

	assert.Nil(t, tup.RecordID)
	assert.Equal(t, hp.GetNumSlots(), hp.GetNumEmptySlots())

	// Deleting again fails: the record ID is gone.
	assert.Error(t, hp.DeleteTuple(tup))
}

func TestDeleteRejectsForeignTuple(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	foreign := intTuple(t, td, 1)
	foreign.RecordID = tuple.NewRecordID(primitives.NewPageID(1, 9), 0)
	assert.Error(t, hp.DeleteTuple(foreign))
}

func TestSerializeParseRoundTrip(t *testing.T) {
	td := intDesc(t)
	pid := primitives.NewPageID(1, 0)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)

	// Occupy a couple of non-adjacent slots.
	first := intTuple(t, td, 10)
	second := intTuple(t, td, 20)
	third := intTuple(t, td, 30)
	require.NoError(t, hp.InsertTuple(first))
	require.NoError(t, hp.InsertTuple(second))
	require.NoError(t, hp.InsertTuple(third))
	require.NoError(t, hp.DeleteTuple(second))

	reparsed, err := NewHeapPage(pid, hp.GetPageData(), td)
	require.NoError(t, err)

	tuples := reparsed.Tuples()
	require.Len(t, tuples, 2)
	f0, err := tuples[0].GetField(0)
	require.NoError(t, err)
	f1, err := tuples[1].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "10", f0.String())
	assert.Equal(t, "30", f1.String())
}

func TestDirtyTracking(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	require.Nil(t, hp.IsDirty())

	tid := primitives.NewTransactionID()
	hp.MarkDirty(true, tid)
	assert.Equal(t, tid, hp.IsDirty())

	hp.MarkDirty(false, nil)
	assert.Nil(t, hp.IsDirty())
}

func TestBeforeImageRevertsToLoadTimeContent(t *testing.T) {
	td := intDesc(t)
	pid := primitives.NewPageID(1, 0)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)
	emptyData := hp.GetPageData()

	require.NoError(t, hp.InsertTuple(intTuple(t, td, 99)))

	before := hp.GetBeforeImage()
	require.NotNil(t, before)
	assert.True(t, bytes.Equal(emptyData, before.GetPageData()))
	assert.Nil(t, before.IsDirty())
}

func TestSetBeforeImageRebaselines(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)

	require.NoError(t, hp.InsertTuple(intTuple(t, td, 5)))
	committed := hp.GetPageData()
	hp.SetBeforeImage()

	require.NoError(t, hp.InsertTuple(intTuple(t, td, 6)))

	before := hp.GetBeforeImage()
	require.NotNil(t, before)
	assert.True(t, bytes.Equal(committed, before.GetPageData()))
}

func TestPageDataSize(t *testing.T) {
	td := intDesc(t)
	hp, err := NewEmptyHeapPage(primitives.NewPageID(1, 0), td)
	require.NoError(t, err)
	assert.Len(t, hp.GetPageData(), page.PageSize)
}

func TestSerializeSkipsUnserializableTupleSlot(t *testing.T) {
	td := intDesc(t)
	pid := primitives.NewPageID(1, 0)
	hp, err := NewEmptyHeapPage(pid, td)
	require.NoError(t, err)

	// A tuple with an unset field cannot be serialized; its slot must read
	// as free, not as an occupied slot of zero bytes.
	require.NoError(t, hp.InsertTuple(tuple.NewTuple(td)))
	require.NoError(t, hp.InsertTuple(intTuple(t, td, 9)))

	reparsed, err := NewHeapPage(pid, hp.GetPageData(), td)
	require.NoError(t, err)

	tuples := reparsed.Tuples()
	require.Len(t, tuples, 1)
	field, err := tuples[0].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "9", field.String())
}
