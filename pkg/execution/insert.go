package execution

import (
	"fmt"

	"slotdb/pkg/dberr"
	"slotdb/pkg/memory"
	"slotdb/pkg/primitives"
	"slotdb/pkg/tuple"
	"slotdb/pkg/types"
)

// Insert adds every tuple produced by its child to a target table and emits
// a single one-column tuple holding the number of insertions. Like Delete,
// it drains its child eagerly at Open. The child's schema must match the
// target table's; a mismatch is a usage error caught at construction.
type Insert struct {
	base       *BaseIterator
	tid        *primitives.TransactionID
	child      DbIterator
	pool       *memory.PageStore
	tableID    primitives.TableID
	resultDesc *tuple.TupleDescription
	count      int
	emitted    bool
}

func NewInsert(tid *primitives.TransactionID, child DbIterator, tableID primitives.TableID, tm *memory.TableManager, pool *memory.PageStore) (*Insert, error) {
	if child == nil {
		return nil, fmt.Errorf("child iterator cannot be nil")
	}
	if tm == nil {
		return nil, fmt.Errorf("table manager cannot be nil")
	}
	if pool == nil {
		return nil, fmt.Errorf("page store cannot be nil")
	}

	tableDesc, err := tm.GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if !tableDesc.Equals(child.GetTupleDesc()) {
		return nil, dberr.UsageError("NewInsert",
			"child schema %s does not match table schema %s",
			child.GetTupleDesc().String(), tableDesc.String())
	}

	resultDesc, err := tuple.NewTupleDesc([]types.Type{types.IntType}, []string{"count"})
	if err != nil {
		return nil, err
	}

	ins := &Insert{
		tid:        tid,
		child:      child,
		pool:       pool,
		tableID:    tableID,
		resultDesc: resultDesc,
	}
	ins.base = NewBaseIterator(ins.readNext)
	return ins, nil
}

// Open drains the child and performs all insertions.
func (ins *Insert) Open() error {
	if err := ins.child.Open(); err != nil {
		return err
	}

	ins.count = 0
	ins.emitted = false
	for {
		hasNext, err := ins.child.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}

		t, err := ins.child.Next()
		if err != nil {
			return err
		}
		if err := ins.pool.InsertTuple(ins.tid, ins.tableID, t); err != nil {
			return err
		}
		ins.count++
	}

	ins.base.MarkOpened()
	return nil
}

func (ins *Insert) readNext() (*tuple.Tuple, error) {
	if ins.emitted {
		return nil, nil
	}
	ins.emitted = true

	result := tuple.NewTuple(ins.resultDesc)
	if err := result.SetField(0, types.NewIntField(int64(ins.count))); err != nil {
		return nil, err
	}
	return result, nil
}

func (ins *Insert) HasNext() (bool, error) { return ins.base.HasNext() }

func (ins *Insert) Next() (*tuple.Tuple, error) { return ins.base.Next() }

// Rewind re-arms the count tuple. The insertions themselves are not redone.
func (ins *Insert) Rewind() error {
	ins.emitted = false
	ins.base.MarkOpened()
	return nil
}

func (ins *Insert) GetTupleDesc() *tuple.TupleDescription {
	return ins.resultDesc
}

func (ins *Insert) Close() error {
	if ins.child != nil {
		ins.child.Close()
	}
	return ins.base.Close()
}
