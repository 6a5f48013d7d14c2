package heap

import (
	"fmt"

	"slotdb/pkg/concurrency/transaction"
	"slotdb/pkg/dberr"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// GrowableFile is a tuple file that can grow by one zero-filled page at the
// end. Both the disk-backed and the in-memory heap formats satisfy it, which
// lets them share the insert and delete algorithms below.
type GrowableFile interface {
	page.DbFile
	AllocateNewPage() (primitives.PageNumber, error)
}

// AddTupleToFile stores t in the first page of file with a free slot,
// allocating a new page when every existing page is full. Pages are fetched
// through the pool with write permission, so the insert happens on the cached
// instance under an exclusive lock.
func AddTupleToFile(file GrowableFile, tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageFetcher) ([]page.Page, error) {
	numPages, err := file.NumPages()
	if err != nil {
		return nil, dberr.StorageFailure(err, "AddTuple", "failed to determine page count")
	}

	for pageNo := primitives.PageNumber(0); pageNo < numPages; pageNo++ {
		heapPage, err := fetchHeapPage(file, tid, pageNo, pool)
		if err != nil {
			return nil, err
		}

		if heapPage.GetNumEmptySlots() == 0 {
			continue
		}

		if err := heapPage.InsertTuple(t); err != nil {
			return nil, err
		}
		return []page.Page{heapPage}, nil
	}

	// Every existing page is full; grow the file by one page.
	newPageNo, err := file.AllocateNewPage()
	if err != nil {
		return nil, dberr.StorageFailure(err, "AddTuple", "failed to allocate new page")
	}

	heapPage, err := fetchHeapPage(file, tid, newPageNo, pool)
	if err != nil {
		return nil, err
	}

	if err := heapPage.InsertTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{heapPage}, nil
}

// DeleteTupleFromFile removes t from the page recorded in its RecordID,
// fetched through the pool with write permission.
func DeleteTupleFromFile(file page.DbFile, tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageFetcher) (page.Page, error) {
	if t == nil || t.RecordID == nil {
		return nil, dberr.UsageError("DeleteTuple", "tuple has no record ID")
	}
	if t.RecordID.PageID.GetTableID() != file.GetID() {
		return nil, dberr.UsageError("DeleteTuple", "tuple %s does not belong to table %d",
			t.RecordID.String(), file.GetID())
	}

	pg, err := pool.GetPage(tid, t.RecordID.PageID, transaction.ReadWrite)
	if err != nil {
		return nil, err
	}

	heapPage, ok := pg.(*HeapPage)
	if !ok {
		return nil, fmt.Errorf("page %s is not a heap page", t.RecordID.PageID.String())
	}

	if err := heapPage.DeleteTuple(t); err != nil {
		return nil, dberr.UsageError("DeleteTuple", "%v", err)
	}
	return heapPage, nil
}

func fetchHeapPage(file page.DbFile, tid *primitives.TransactionID, pageNo primitives.PageNumber, pool page.PageFetcher) (*HeapPage, error) {
	pid := primitives.NewPageID(file.GetID(), pageNo)
	pg, err := pool.GetPage(tid, pid, transaction.ReadWrite)
	if err != nil {
		return nil, err
	}

	heapPage, ok := pg.(*HeapPage)
	if !ok {
		return nil, fmt.Errorf("page %s is not a heap page", pid.String())
	}
	return heapPage, nil
}
