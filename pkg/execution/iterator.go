// Package execution contains the pull-based operators that consume pages
// through the buffer pool: sequential scan, insert, and delete. Operators
// follow the open / hasNext / next / rewind / close iterator contract; all
// of them are plain structs wired together by the caller.
package execution

import (
	"fmt"

	"slotdb/pkg/tuple"
)

// DbIterator is the operator contract. Open must be called before HasNext
// or Next; Rewind restarts the sequence from the beginning.
type DbIterator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*tuple.Tuple, error)
	Rewind() error
	Close() error
	GetTupleDesc() *tuple.TupleDescription
}

// ReadNextFunc reads the next tuple from an operator's source, returning
// nil with no error when the source is exhausted.
type ReadNextFunc func() (*tuple.Tuple, error)

// BaseIterator supplies the lookahead caching and open-state bookkeeping
// shared by every operator. Concrete operators embed it and hand it their
// readNext function.
type BaseIterator struct {
	nextTuple    *tuple.Tuple
	opened       bool
	readNextFunc ReadNextFunc
}

func NewBaseIterator(readNextFunc ReadNextFunc) *BaseIterator {
	return &BaseIterator{
		readNextFunc: readNextFunc,
	}
}

// HasNext reports whether another tuple is available, caching it so the
// following Next does not read the source twice.
func (it *BaseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, fmt.Errorf("iterator not opened")
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return false, err
		}
	}
	return it.nextTuple != nil, nil
}

// Next returns the next tuple, consuming the cached lookahead if present.
func (it *BaseIterator) Next() (*tuple.Tuple, error) {
	if !it.opened {
		return nil, fmt.Errorf("iterator not opened")
	}

	if it.nextTuple == nil {
		var err error
		it.nextTuple, err = it.readNextFunc()
		if err != nil {
			return nil, err
		}
		if it.nextTuple == nil {
			return nil, fmt.Errorf("no more tuples")
		}
	}

	result := it.nextTuple
	it.nextTuple = nil
	return result, nil
}

func (it *BaseIterator) Close() error {
	it.nextTuple = nil
	it.opened = false
	return nil
}

// MarkOpened flags the iterator as usable and clears any stale lookahead.
func (it *BaseIterator) MarkOpened() {
	it.opened = true
	it.nextTuple = nil
}
