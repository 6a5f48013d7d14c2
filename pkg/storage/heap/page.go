// Package heap implements the table storage collaborators of the buffer
// pool: heap files of fixed-size pages, each holding fixed-width tuples
// tracked by a slot-usage bitmap in the page header.
package heap

import (
	"bytes"
	"fmt"
	"sync"

	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// HeapPage is a single page of a heap file and implements page.Page.
//
// Page layout:
//   - Header: a bitmap with one bit per slot; bit set means the slot holds a tuple.
//   - Slots: numSlots fixed-width tuple slots, zero-filled when empty.
//
// The slot count is chosen so that header plus slots fit in page.PageSize:
// numSlots = floor(PageSize * 8 / (tupleSize * 8 + 1)).
type HeapPage struct {
	pid       primitives.PageID
	tupleDesc *tuple.TupleDescription
	tuples    []*tuple.Tuple
	numSlots  int
	dirtier   *primitives.TransactionID
	oldData   []byte // before-image used to revert the page on abort
	mutex     sync.RWMutex
}

// NewHeapPage creates a HeapPage by deserializing raw page data. The initial
// before-image is the data as read.
func NewHeapPage(pid primitives.PageID, data []byte, td *tuple.TupleDescription) (*HeapPage, error) {
	if len(data) != page.PageSize {
		return nil, fmt.Errorf("invalid page data size: expected %d, got %d", page.PageSize, len(data))
	}

	hp := &HeapPage{
		pid:       pid,
		tupleDesc: td,
		oldData:   make([]byte, page.PageSize),
	}

	hp.numSlots = slotsPerPage(td)
	hp.tuples = make([]*tuple.Tuple, hp.numSlots)

	if err := hp.parsePageData(data); err != nil {
		return nil, err
	}

	copy(hp.oldData, data)
	return hp, nil
}

// NewEmptyHeapPage creates a fresh all-empty page, used when reading past the
// end of a file or after allocating a new page.
func NewEmptyHeapPage(pid primitives.PageID, td *tuple.TupleDescription) (*HeapPage, error) {
	return NewHeapPage(pid, make([]byte, page.PageSize), td)
}

func slotsPerPage(td *tuple.TupleDescription) int {
	tupleSize := td.GetSize()
	return (page.PageSize * 8) / (tupleSize*8 + 1)
}

func headerSize(numSlots int) int {
	return (numSlots + 7) / 8
}

func (hp *HeapPage) parsePageData(data []byte) error {
	header := data[:headerSize(hp.numSlots)]
	tupleSize := hp.tupleDesc.GetSize()
	slotStart := headerSize(hp.numSlots)

	for slot := 0; slot < hp.numSlots; slot++ {
		if header[slot/8]&(1<<(slot%8)) == 0 {
			continue
		}

		offset := slotStart + slot*tupleSize
		t, err := tuple.Parse(bytes.NewReader(data[offset:offset+tupleSize]), hp.tupleDesc)
		if err != nil {
			return fmt.Errorf("failed to parse tuple in slot %d: %w", slot, err)
		}

		t.RecordID = tuple.NewRecordID(hp.pid, primitives.SlotID(slot))
		hp.tuples[slot] = t
	}

	return nil
}

// GetID returns the identifier of this page.
func (hp *HeapPage) GetID() primitives.PageID {
	return hp.pid
}

// IsDirty returns the transaction that last dirtied this page, or nil if clean.
func (hp *HeapPage) IsDirty() *primitives.TransactionID {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.dirtier
}

// MarkDirty sets the dirty state of this page.
func (hp *HeapPage) MarkDirty(dirty bool, tid *primitives.TransactionID) {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = nil
	}
}

// GetPageData serializes this page: header bitmap first, then every used
// slot's tuple, empty slots zero-filled.
func (hp *HeapPage) GetPageData() []byte {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()
	return hp.serialize()
}

func (hp *HeapPage) serialize() []byte {
	data := make([]byte, page.PageSize)
	header := data[:headerSize(hp.numSlots)]
	tupleSize := hp.tupleDesc.GetSize()
	slotStart := headerSize(hp.numSlots)

	for slot, t := range hp.tuples {
		if t == nil {
			continue
		}

		var buf bytes.Buffer
		if err := t.Serialize(&buf); err != nil {
			// Leave the slot marked free rather than claiming zero-filled
			// bytes as a stored tuple.
			continue
		}
		header[slot/8] |= 1 << (slot % 8)
		copy(data[slotStart+slot*tupleSize:], buf.Bytes())
	}

	return data
}

// GetBeforeImage returns a clean page holding this page's pre-transaction content.
func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	before, err := NewHeapPage(hp.pid, hp.oldData, hp.tupleDesc)
	if err != nil {
		return nil
	}
	return before
}

// SetBeforeImage captures the current content as the new before-image,
// called when the transaction that wrote this page commits.
func (hp *HeapPage) SetBeforeImage() {
	hp.mutex.Lock()
	defer hp.mutex.Unlock()
	copy(hp.oldData, hp.serialize())
}

// GetNumSlots returns the total number of tuple slots on this page.
func (hp *HeapPage) GetNumSlots() int {
	return hp.numSlots
}

// GetNumEmptySlots returns the count of unoccupied tuple slots.
func (hp *HeapPage) GetNumEmptySlots() int {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	empty := 0
	for _, t := range hp.tuples {
		if t == nil {
			empty++
		}
	}
	return empty
}

// InsertTuple stores t in the first empty slot and assigns its RecordID.
func (hp *HeapPage) InsertTuple(t *tuple.Tuple) error {
	if t == nil {
		return fmt.Errorf("tuple cannot be nil")
	}
	if !t.TupleDesc.Equals(hp.tupleDesc) {
		return fmt.Errorf("tuple schema does not match page schema")
	}

	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	for slot, existing := range hp.tuples {
		if existing != nil {
			continue
		}

		t.RecordID = tuple.NewRecordID(hp.pid, primitives.SlotID(slot))
		hp.tuples[slot] = t
		return nil
	}

	return fmt.Errorf("page %s is full", hp.pid.String())
}

// DeleteTuple removes t from its slot, clearing its RecordID. The tuple must
// actually be stored on this page.
func (hp *HeapPage) DeleteTuple(t *tuple.Tuple) error {
	if t == nil || t.RecordID == nil {
		return fmt.Errorf("tuple has no record ID")
	}
	if !t.RecordID.PageID.Equals(hp.pid) {
		return fmt.Errorf("tuple %s is not on page %s", t.RecordID.String(), hp.pid.String())
	}

	hp.mutex.Lock()
	defer hp.mutex.Unlock()

	slot := int(t.RecordID.SlotNum)
	if slot < 0 || slot >= hp.numSlots {
		return fmt.Errorf("slot %d out of range [0, %d)", slot, hp.numSlots)
	}
	if hp.tuples[slot] == nil {
		return fmt.Errorf("slot %d is already empty", slot)
	}

	hp.tuples[slot] = nil
	t.RecordID = nil
	return nil
}

// Tuples returns a snapshot of the tuples stored on this page, in slot order.
func (hp *HeapPage) Tuples() []*tuple.Tuple {
	hp.mutex.RLock()
	defer hp.mutex.RUnlock()

	ts := make([]*tuple.Tuple, 0, hp.numSlots)
	for _, t := range hp.tuples {
		if t != nil {
			ts = append(ts, t)
		}
	}
	return ts
}
