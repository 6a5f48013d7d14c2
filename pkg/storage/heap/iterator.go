package heap

import (
	"fmt"

	"slotdb/pkg/concurrency/transaction"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// fileIterator walks every tuple in a heap-formatted file page by page.
// Pages are fetched through the pool with read permission so scans take
// shared locks like any other access.
type fileIterator struct {
	file        page.DbFile
	tid         *primitives.TransactionID
	pool        page.PageFetcher
	currentPgNo primitives.PageNumber
	tuples      []*tuple.Tuple
	tupleIndex  int
	opened      bool
}

// NewFileIterator returns an iterator over every tuple stored in file.
func NewFileIterator(file page.DbFile, tid *primitives.TransactionID, pool page.PageFetcher) page.DbFileIterator {
	return &fileIterator{
		file: file,
		tid:  tid,
		pool: pool,
	}
}

func (it *fileIterator) Open() error {
	if it.opened {
		return fmt.Errorf("iterator already open")
	}
	it.opened = true
	it.currentPgNo = 0
	it.tuples = nil
	it.tupleIndex = 0
	return nil
}

// HasNext reports whether another tuple remains, loading pages forward as
// needed and skipping pages with no used slots.
func (it *fileIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, fmt.Errorf("iterator not open")
	}

	for {
		if it.tupleIndex < len(it.tuples) {
			return true, nil
		}

		numPages, err := it.file.NumPages()
		if err != nil {
			return false, err
		}
		if it.currentPgNo >= numPages {
			return false, nil
		}

		if err := it.loadPage(it.currentPgNo); err != nil {
			return false, err
		}
		it.currentPgNo++
	}
}

func (it *fileIterator) Next() (*tuple.Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, fmt.Errorf("no more tuples")
	}

	t := it.tuples[it.tupleIndex]
	it.tupleIndex++
	return t, nil
}

func (it *fileIterator) Rewind() error {
	if !it.opened {
		return fmt.Errorf("iterator not open")
	}
	it.currentPgNo = 0
	it.tuples = nil
	it.tupleIndex = 0
	return nil
}

func (it *fileIterator) Close() error {
	it.opened = false
	it.tuples = nil
	return nil
}

func (it *fileIterator) loadPage(pageNo primitives.PageNumber) error {
	pid := primitives.NewPageID(it.file.GetID(), pageNo)
	pg, err := it.pool.GetPage(it.tid, pid, transaction.ReadOnly)
	if err != nil {
		return err
	}

	heapPage, ok := pg.(*HeapPage)
	if !ok {
		return fmt.Errorf("page %s is not a heap page", pid.String())
	}

	it.tuples = heapPage.Tuples()
	it.tupleIndex = 0
	return nil
}
