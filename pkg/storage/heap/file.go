package heap

import (
	"io"

	"slotdb/pkg/dberr"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// HeapFile stores the pages of one table in a single OS file, numbered
// sequentially from 0. It implements page.DbFile.
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
}

// NewHeapFile opens (creating if needed) a heap file at the given path.
func NewHeapFile(filePath primitives.Filepath, td *tuple.TupleDescription) (*HeapFile, error) {
	baseFile, err := page.NewBaseFile(filePath)
	if err != nil {
		return nil, err
	}

	return &HeapFile{
		BaseFile:  baseFile,
		tupleDesc: td,
	}, nil
}

// GetTupleDesc returns the schema of the tuples stored in this file.
func (hf *HeapFile) GetTupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage reads the specified page from disk. Reading past the end of the
// file yields a fresh empty page. This performs physical I/O and is normally
// reached only through the buffer pool.
func (hf *HeapFile) ReadPage(pid primitives.PageID) (page.Page, error) {
	if pid.GetTableID() != hf.GetID() {
		return nil, dberr.UsageError("ReadPage", "page %s does not belong to table %d", pid.String(), hf.GetID())
	}

	pageData, err := hf.ReadPageData(pid.PageNo())
	if err != nil {
		if err == io.EOF {
			return NewEmptyHeapPage(pid, hf.tupleDesc)
		}
		return nil, dberr.StorageFailure(err, "ReadPage", "failed to read page %s", pid.String())
	}

	return NewHeapPage(pid, pageData, hf.tupleDesc)
}

// WritePage writes the given page to disk at its designated location.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return dberr.UsageError("WritePage", "page cannot be nil")
	}

	if err := hf.WritePageData(p.GetID().PageNo(), p.GetPageData()); err != nil {
		return dberr.StorageFailure(err, "WritePage", "failed to write page %s", p.GetID().String())
	}
	return nil
}

// AddTuple stores t in the first page with a free slot, allocating a new page
// at the end of the file when every existing page is full.
func (hf *HeapFile) AddTuple(tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageFetcher) ([]page.Page, error) {
	return AddTupleToFile(hf, tid, t, pool)
}

// DeleteTuple removes t from the page recorded in its RecordID.
func (hf *HeapFile) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageFetcher) (page.Page, error) {
	return DeleteTupleFromFile(hf, tid, t, pool)
}

// Iterator returns an iterator over every tuple in this file, fetching pages
// through the pool with read permission.
func (hf *HeapFile) Iterator(tid *primitives.TransactionID, pool page.PageFetcher) page.DbFileIterator {
	return NewFileIterator(hf, tid, pool)
}
