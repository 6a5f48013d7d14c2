// Package memfs provides a purely in-memory table file with the same page
// format and locking behavior as the disk-backed heap file. It backs tests
// and scratch tables that should never touch the filesystem.
package memfs

import (
	"github.com/dsnet/golib/memfile"
	"github.com/sasha-s/go-deadlock"

	"slotdb/pkg/dberr"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/heap"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// File stores heap-formatted pages in a growable memory buffer.
type File struct {
	mutex     deadlock.RWMutex
	data      *memfile.File
	tableID   primitives.TableID
	tupleDesc *tuple.TupleDescription
	numPages  primitives.PageNumber
}

// NewFile creates an empty in-memory table with the given identity and schema.
func NewFile(tableID primitives.TableID, td *tuple.TupleDescription) *File {
	return &File{
		data:      memfile.New(make([]byte, 0)),
		tableID:   tableID,
		tupleDesc: td,
	}
}

func (f *File) GetID() primitives.TableID {
	return f.tableID
}

func (f *File) GetTupleDesc() *tuple.TupleDescription {
	return f.tupleDesc
}

func (f *File) NumPages() (primitives.PageNumber, error) {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	return f.numPages, nil
}

// ReadPage returns the heap page at pid. Reading past the current end of the
// buffer yields a fresh empty page, matching the disk-backed file.
func (f *File) ReadPage(pid primitives.PageID) (page.Page, error) {
	if pid.GetTableID() != f.tableID {
		return nil, dberr.UsageError("ReadPage", "page %s does not belong to table %d",
			pid.String(), f.tableID)
	}

	f.mutex.RLock()
	defer f.mutex.RUnlock()

	if pid.PageNo() >= f.numPages {
		return heap.NewEmptyHeapPage(pid, f.tupleDesc)
	}

	pageData := make([]byte, page.PageSize)
	offset := int64(pid.PageNo()) * int64(page.PageSize)
	if _, err := f.data.ReadAt(pageData, offset); err != nil {
		return nil, dberr.StorageFailure(err, "ReadPage", "failed to read page %s", pid.String())
	}
	return heap.NewHeapPage(pid, pageData, f.tupleDesc)
}

// WritePage persists p into the buffer, growing it as needed.
func (f *File) WritePage(p page.Page) error {
	pid := p.GetID()
	if pid.GetTableID() != f.tableID {
		return dberr.UsageError("WritePage", "page %s does not belong to table %d",
			pid.String(), f.tableID)
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	offset := int64(pid.PageNo()) * int64(page.PageSize)
	if _, err := f.data.WriteAt(p.GetPageData(), offset); err != nil {
		return dberr.StorageFailure(err, "WritePage", "failed to write page %s", pid.String())
	}
	if pid.PageNo() >= f.numPages {
		f.numPages = pid.PageNo() + 1
	}
	return nil
}

// AllocateNewPage appends a zero-filled page and returns its page number.
func (f *File) AllocateNewPage() (primitives.PageNumber, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	newPageNo := f.numPages
	offset := int64(newPageNo) * int64(page.PageSize)
	if _, err := f.data.WriteAt(make([]byte, page.PageSize), offset); err != nil {
		return 0, dberr.StorageFailure(err, "AllocateNewPage", "failed to extend table %d", f.tableID)
	}
	f.numPages++
	return newPageNo, nil
}

func (f *File) AddTuple(tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageFetcher) ([]page.Page, error) {
	return heap.AddTupleToFile(f, tid, t, pool)
}

func (f *File) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple, pool page.PageFetcher) (page.Page, error) {
	return heap.DeleteTupleFromFile(f, tid, t, pool)
}

func (f *File) Iterator(tid *primitives.TransactionID, pool page.PageFetcher) page.DbFileIterator {
	return heap.NewFileIterator(f, tid, pool)
}

func (f *File) Close() error {
	return nil
}
