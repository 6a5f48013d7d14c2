package page

import (
	"slotdb/pkg/concurrency/transaction"
	"slotdb/pkg/primitives"
	"slotdb/pkg/tuple"
)

// PageFetcher grants access to pages under the locking protocol. The buffer
// pool implements it; table files use it so that structural mutations only
// ever touch pages fetched with the appropriate permission.
type PageFetcher interface {
	GetPage(tid *primitives.TransactionID, pid primitives.PageID, perm transaction.Permissions) (Page, error)
}

// DbFileIterator iterates over the tuples stored in a database file.
type DbFileIterator interface {
	// Open prepares the iterator for use.
	Open() error

	// HasNext reports whether more tuples are available.
	HasNext() (bool, error)

	// Next returns the next tuple in the iteration.
	Next() (*tuple.Tuple, error)

	// Rewind resets the iterator to the beginning.
	Rewind() error

	// Close releases any resources held by the iterator.
	Close() error
}

// DbFile is the backing-store representation of one table: a sequence of
// fixed-size pages holding tuples of a single schema. ReadPage and WritePage
// are raw I/O and are normally reached only through the buffer pool; AddTuple
// and DeleteTuple fetch the pages they mutate through the supplied
// PageFetcher so every affected page is held with write permission.
type DbFile interface {
	// ReadPage reads the specified page from the backing store.
	ReadPage(pid primitives.PageID) (Page, error)

	// WritePage persists a page to the backing store at its designated location.
	WritePage(p Page) error

	// AddTuple stores t in this file within the given transaction, returning
	// every page modified by the operation.
	AddTuple(tid *primitives.TransactionID, t *tuple.Tuple, pool PageFetcher) ([]Page, error)

	// DeleteTuple removes t, located by its RecordID, returning the modified page.
	DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple, pool PageFetcher) (Page, error)

	// Iterator returns an iterator over all tuples in this file, fetching
	// pages through pool with read permission.
	Iterator(tid *primitives.TransactionID, pool PageFetcher) DbFileIterator

	// GetID returns the unique identifier of this file.
	GetID() primitives.TableID

	// NumPages returns the number of pages currently in this file.
	NumPages() (primitives.PageNumber, error)

	// GetTupleDesc returns the schema of the tuples stored in this file.
	GetTupleDesc() *tuple.TupleDescription

	// Close releases the underlying resources. Further operations fail.
	Close() error
}
