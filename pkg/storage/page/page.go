// Package page defines the page abstraction shared by the buffer pool and
// the on-disk storage formats, plus the page-granular file I/O they build on.
package page

import (
	"slotdb/pkg/primitives"
)

const (
	// PageSize is the size of each page in bytes (4KB).
	PageSize = 4096
)

// Page represents a page resident in the buffer pool. Pages may be "dirty",
// indicating they have been modified since last written to disk. The page
// cache exclusively owns page instances; callers mutate them in place through
// the reference handed out by the buffer pool.
type Page interface {
	// GetID returns the identifier of this page.
	GetID() primitives.PageID

	// IsDirty returns the transaction that last dirtied this page, or nil if clean.
	IsDirty() *primitives.TransactionID

	// MarkDirty sets the dirty state of this page. A page is dirty iff its
	// dirtying transaction is set, so marking clean passes a nil tid.
	MarkDirty(dirty bool, tid *primitives.TransactionID)

	// GetPageData returns a byte array representing the contents of this page,
	// used to serialize the page to disk. Always PageSize bytes.
	GetPageData() []byte

	// GetBeforeImage returns a clean page holding this page's content as of
	// the start of the current dirtying transaction's modifications. Used to
	// revert the page on abort.
	GetBeforeImage() Page

	// SetBeforeImage copies the current content into the before-image.
	// Called when a transaction that wrote this page commits.
	SetBeforeImage()
}
