package transaction

import (
	"fmt"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"slotdb/pkg/primitives"
)

// Context encapsulates all state for a single transaction. It is the single
// source of truth for what the transaction has touched: which pages it holds
// locks on and with what permission, and which pages it has dirtied. The
// buffer pool consults it at commit/abort to find the pages to flush or
// revert.
type Context struct {
	ID *primitives.TransactionID

	status    Status
	startTime time.Time
	endTime   time.Time
	mutex     sync.RWMutex

	// Maps each accessed page to the permission it was requested with.
	// A ReadWrite access is never downgraded by a later ReadOnly one.
	lockedPages map[primitives.PageID]Permissions

	// Pages this transaction has modified.
	dirtyPages mapset.Set[primitives.PageID]
}

// NewContext creates the context for a freshly started transaction.
func NewContext(tid *primitives.TransactionID) *Context {
	return &Context{
		ID:          tid,
		status:      StatusActive,
		startTime:   time.Now(),
		lockedPages: make(map[primitives.PageID]Permissions),
		dirtyPages:  mapset.NewThreadUnsafeSet[primitives.PageID](),
	}
}

// IsActive reports whether the transaction has neither committed nor aborted.
func (tc *Context) IsActive() bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status == StatusActive
}

// Status returns the transaction's lifecycle state.
func (tc *Context) Status() Status {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.status
}

// SetStatus updates the transaction status, recording the end time when the
// transaction reaches a terminal state.
func (tc *Context) SetStatus(status Status) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.status = status
	if status == StatusCommitted || status == StatusAborted {
		tc.endTime = time.Now()
	}
}

// RecordPageAccess records that this transaction accessed a page with the
// given permission. Write access sticks: once recorded ReadWrite, a later
// ReadOnly access does not weaken it.
func (tc *Context) RecordPageAccess(pid primitives.PageID, perm Permissions) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if existing, exists := tc.lockedPages[pid]; exists && existing == ReadWrite {
		return
	}
	tc.lockedPages[pid] = perm
}

// ForgetPageAccess drops the access record for a page whose lock was released
// early via the buffer pool's releasePage escape hatch.
func (tc *Context) ForgetPageAccess(pid primitives.PageID) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	delete(tc.lockedPages, pid)
}

// MarkPageDirty records that this transaction modified a page.
func (tc *Context) MarkPageDirty(pid primitives.PageID) {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()
	tc.dirtyPages.Add(pid)
}

// DirtyPages returns a snapshot of the pages this transaction has modified.
func (tc *Context) DirtyPages() []primitives.PageID {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.dirtyPages.ToSlice()
}

// HasDirtied reports whether this transaction modified the given page.
func (tc *Context) HasDirtied(pid primitives.PageID) bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.dirtyPages.Contains(pid)
}

// LockedPages returns a snapshot of every page this transaction has accessed.
func (tc *Context) LockedPages() []primitives.PageID {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	pages := make([]primitives.PageID, 0, len(tc.lockedPages))
	for pid := range tc.lockedPages {
		pages = append(pages, pid)
	}
	return pages
}

// PagePermission returns the permission a page was accessed with, if any.
func (tc *Context) PagePermission(pid primitives.PageID) (Permissions, bool) {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	perm, exists := tc.lockedPages[pid]
	return perm, exists
}

// Duration returns how long the transaction has been running, or ran.
func (tc *Context) Duration() time.Duration {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	endTime := tc.endTime
	if endTime.IsZero() {
		endTime = time.Now()
	}
	return endTime.Sub(tc.startTime)
}

func (tc *Context) String() string {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	return fmt.Sprintf("Transaction %s [Status=%s, Dirty=%d, Locked=%d]",
		tc.ID.String(), tc.status.String(), tc.dirtyPages.Cardinality(), len(tc.lockedPages))
}
