package execution

import (
	"fmt"

	"slotdb/pkg/memory"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// SeqScan reads every tuple of a table in page order. Pages are fetched
// through the buffer pool with read-only permission, so the scan holds
// shared locks for the scanning transaction.
type SeqScan struct {
	base         *BaseIterator
	tid          *primitives.TransactionID
	tableID      primitives.TableID
	fileIter     page.DbFileIterator
	tupleDesc    *tuple.TupleDescription
	tableManager *memory.TableManager
	pool         page.PageFetcher
}

// NewSeqScan creates a scan over the given table. The scan is not usable
// until Open is called.
func NewSeqScan(tid *primitives.TransactionID, tableID primitives.TableID, tm *memory.TableManager, pool page.PageFetcher) (*SeqScan, error) {
	if tm == nil {
		return nil, fmt.Errorf("table manager cannot be nil")
	}
	if pool == nil {
		return nil, fmt.Errorf("page fetcher cannot be nil")
	}

	tupleDesc, err := tm.GetTupleDesc(tableID)
	if err != nil {
		return nil, err
	}

	ss := &SeqScan{
		tid:          tid,
		tableID:      tableID,
		tupleDesc:    tupleDesc,
		tableManager: tm,
		pool:         pool,
	}
	ss.base = NewBaseIterator(ss.readNext)
	return ss, nil
}

func (ss *SeqScan) Open() error {
	dbFile, err := ss.tableManager.GetDbFile(ss.tableID)
	if err != nil {
		return err
	}

	ss.fileIter = dbFile.Iterator(ss.tid, ss.pool)
	if err := ss.fileIter.Open(); err != nil {
		return fmt.Errorf("failed to open file iterator: %v", err)
	}

	ss.base.MarkOpened()
	return nil
}

func (ss *SeqScan) readNext() (*tuple.Tuple, error) {
	if ss.fileIter == nil {
		return nil, fmt.Errorf("file iterator not initialized")
	}

	hasNext, err := ss.fileIter.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, nil
	}
	return ss.fileIter.Next()
}

func (ss *SeqScan) HasNext() (bool, error) { return ss.base.HasNext() }

func (ss *SeqScan) Next() (*tuple.Tuple, error) { return ss.base.Next() }

// Rewind restarts the scan from the table's first page.
func (ss *SeqScan) Rewind() error {
	if ss.fileIter == nil {
		return fmt.Errorf("scan not opened")
	}
	if err := ss.fileIter.Rewind(); err != nil {
		return err
	}
	ss.base.MarkOpened()
	return nil
}

func (ss *SeqScan) GetTupleDesc() *tuple.TupleDescription {
	return ss.tupleDesc
}

func (ss *SeqScan) Close() error {
	if ss.fileIter != nil {
		ss.fileIter.Close()
		ss.fileIter = nil
	}
	return ss.base.Close()
}
