package execution

import (
	"fmt"

	"slotdb/pkg/memory"
	"slotdb/pkg/primitives"
	"slotdb/pkg/tuple"
	"slotdb/pkg/types"
)

// Delete removes every tuple produced by its child and emits a single
// one-column tuple holding the number of deletions. The work happens
// eagerly at Open: the child is fully drained and each tuple deleted
// through the buffer pool before the first HasNext.
type Delete struct {
	base       *BaseIterator
	tid        *primitives.TransactionID
	child      DbIterator
	pool       *memory.PageStore
	resultDesc *tuple.TupleDescription
	count      int
	emitted    bool
}

func NewDelete(tid *primitives.TransactionID, child DbIterator, pool *memory.PageStore) (*Delete, error) {
	if child == nil {
		return nil, fmt.Errorf("child iterator cannot be nil")
	}
	if pool == nil {
		return nil, fmt.Errorf("page store cannot be nil")
	}

	resultDesc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"count"})
	if err != nil {
		return nil, err
	}

	d := &Delete{
		tid:        tid,
		child:      child,
		pool:       pool,
		resultDesc: resultDesc,
	}
	d.base = NewBaseIterator(d.readNext)
	return d, nil
}

// Open drains the child and performs all deletions.
func (d *Delete) Open() error {
	if err := d.child.Open(); err != nil {
		return err
	}

	d.count = 0
	d.emitted = false
	for {
		hasNext, err := d.child.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}

		t, err := d.child.Next()
		if err != nil {
			return err
		}
		if err := d.pool.DeleteTuple(d.tid, t); err != nil {
			return err
		}
		d.count++
	}

	d.base.MarkOpened()
	return nil
}

func (d *Delete) readNext() (*tuple.Tuple, error) {
	if d.emitted {
		return nil, nil
	}
	d.emitted = true

	result := tuple.NewTuple(d.resultDesc)
	if err := result.SetField(0, types.NewIntField(int64(d.count))); err != nil {
		return nil, err
	}
	return result, nil
}

func (d *Delete) HasNext() (bool, error) { return d.base.HasNext() }

func (d *Delete) Next() (*tuple.Tuple, error) { return d.base.Next() }

// Rewind re-arms the count tuple. The deletions themselves are not redone.
func (d *Delete) Rewind() error {
	d.emitted = false
	d.base.MarkOpened()
	return nil
}

func (d *Delete) GetTupleDesc() *tuple.TupleDescription {
	return d.resultDesc
}

func (d *Delete) Close() error {
	if d.child != nil {
		d.child.Close()
	}
	return d.base.Close()
}
