package memory

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"slotdb/pkg/concurrency/lock"
	"slotdb/pkg/concurrency/transaction"
	"slotdb/pkg/dberr"
	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
	"slotdb/pkg/tuple"
)

// DefaultRetryInterval is the sleep between lock attempts when none is
// given at construction.
const DefaultRetryInterval = 10 * time.Millisecond

// PageStore is the buffer pool: every page access in the engine goes through
// it. It acquires the page lock for the requesting transaction, serves the
// page from the cache or loads it from the backing file, and evicts under
// capacity pressure, flushing dirty victims first (a steal policy).
//
// On commit it flushes the transaction's dirty pages and re-baselines their
// before-images; on abort it reverts them in memory from the retained
// before-images, with no disk write. This combination is only safe when a
// transaction whose dirty pages were stolen to disk does not subsequently
// abort after another transaction has depended on that flushed data; callers
// needing stronger guarantees must layer durable logging above this pool.
type PageStore struct {
	tableManager  *TableManager
	lockManager   *lock.LockManager
	cache         PageCache
	transactions  map[*primitives.TransactionID]*transaction.Context
	mutex         deadlock.RWMutex
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewPageStore builds a buffer pool over the given catalog. Capacity is the
// page count the cache may hold and must be positive. A non-positive
// retryInterval falls back to DefaultRetryInterval; a nil logger is
// replaced with a no-op one.
func NewPageStore(tm *TableManager, capacity int, retryInterval time.Duration, logger *zap.Logger) (*PageStore, error) {
	if tm == nil {
		return nil, dberr.UsageError("NewPageStore", "table manager cannot be nil")
	}
	if capacity <= 0 {
		return nil, dberr.UsageError("NewPageStore", "cache capacity must be positive, got %d", capacity)
	}
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PageStore{
		tableManager:  tm,
		lockManager:   lock.NewLockManager(logger),
		cache:         NewLRUPageCache(capacity),
		transactions:  make(map[*primitives.TransactionID]*transaction.Context),
		retryInterval: retryInterval,
		logger:        logger,
	}, nil
}

// GetPage fetches a page on behalf of tid, taking a shared lock for
// ReadOnly and an exclusive lock for ReadWrite. When the lock is contended
// the call sleeps and retries, checking for a wait-for cycle each round; a
// detected deadlock aborts the wait with a transaction-aborted error, after
// which the caller must drive TransactionComplete(tid, false).
func (p *PageStore) GetPage(tid *primitives.TransactionID, pid primitives.PageID, perm transaction.Permissions) (page.Page, error) {
	if tid == nil {
		return nil, dberr.UsageError("GetPage", "transaction ID cannot be nil")
	}

	for !p.lockManager.Acquire(tid, pid, perm) {
		if p.lockManager.DetectDeadlock(tid, pid) {
			return nil, dberr.TransactionAborted("GetPage",
				"deadlock detected: %s waiting for page %s", tid.String(), pid.String())
		}
		time.Sleep(p.retryInterval)
	}

	p.trackPageAccess(tid, pid, perm)

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if cached, exists := p.cache.Get(pid); exists {
		return cached, nil
	}

	dbFile, err := p.tableManager.GetDbFile(pid.GetTableID())
	if err != nil {
		return nil, err
	}

	loaded, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}

	if evicted := p.cache.Put(pid, loaded); evicted != nil {
		if err := p.flushEvicted(evicted); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}

// ReleasePage drops tid's lock on a single page before transaction end.
// This breaks two-phase locking, so it is intended only for callers that
// know the early release is safe. Releasing a lock that is not held is a
// usage error.
func (p *PageStore) ReleasePage(tid *primitives.TransactionID, pid primitives.PageID) error {
	if tid == nil {
		return dberr.UsageError("ReleasePage", "transaction ID cannot be nil")
	}

	if !p.lockManager.Release(tid, pid) {
		return dberr.UsageError("ReleasePage", "%s holds no lock on page %s", tid.String(), pid.String())
	}

	p.mutex.Lock()
	if ctx, exists := p.transactions[tid]; exists {
		ctx.ForgetPageAccess(pid)
	}
	p.mutex.Unlock()
	return nil
}

// TransactionComplete ends tid. With commit true every page it dirtied is
// flushed to the backing store and its before-image re-baselined; with
// commit false every such page is reverted in the cache to its before-image
// and no disk write occurs. All locks are then released atomically. The call
// is safe for transactions the store has never seen, so the abort path after
// a failed GetPage always works.
//
// A flush failure during commit returns a storage error and leaves the
// transaction live, its locks held; the caller may then abort it to revert
// the pages that never reached disk.
func (p *PageStore) TransactionComplete(tid *primitives.TransactionID, commit bool) error {
	if tid == nil {
		return dberr.UsageError("TransactionComplete", "transaction ID cannot be nil")
	}

	p.mutex.Lock()
	ctx, exists := p.transactions[tid]
	if !exists {
		p.mutex.Unlock()
		p.lockManager.ReleaseAll(tid)
		return nil
	}

	if commit {
		if err := p.commitPages(tid, ctx); err != nil {
			// The transaction is still live: its context and locks stay in
			// place so the caller can drive TransactionComplete(tid, false)
			// and revert whatever was not flushed.
			p.mutex.Unlock()
			return err
		}
		ctx.SetStatus(transaction.StatusCommitted)
	} else {
		p.revertPages(tid, ctx)
		ctx.SetStatus(transaction.StatusAborted)
	}
	delete(p.transactions, tid)
	p.mutex.Unlock()

	p.lockManager.ReleaseAll(tid)

	p.logger.Debug("transaction complete",
		zap.String("transaction", tid.String()),
		zap.Bool("commit", commit),
		zap.Duration("duration", ctx.Duration()))
	return nil
}

// dirtyPageIDs collects the pages to commit or revert for tid: those the
// context recorded through InsertTuple/DeleteTuple, plus any cached page
// whose dirtier is tid. The second set catches pages mutated in place
// through the reference GetPage handed out.
func (p *PageStore) dirtyPageIDs(tid *primitives.TransactionID, ctx *transaction.Context) []primitives.PageID {
	dirty := mapset.NewThreadUnsafeSet(ctx.DirtyPages()...)
	for _, cached := range p.cache.AllPages() {
		if cached.IsDirty() == tid {
			dirty.Add(cached.GetID())
		}
	}
	return dirty.ToSlice()
}

// commitPages flushes every cached page the transaction dirtied and
// re-baselines its before-image. A page already evicted was flushed at
// eviction time and needs nothing here.
func (p *PageStore) commitPages(tid *primitives.TransactionID, ctx *transaction.Context) error {
	for _, pid := range p.dirtyPageIDs(tid, ctx) {
		cached, exists := p.cache.Get(pid)
		if !exists {
			continue
		}

		if err := p.writePage(cached); err != nil {
			return err
		}
		cached.MarkDirty(false, nil)
		cached.SetBeforeImage()
	}
	return nil
}

// revertPages restores every cached page the transaction dirtied to its
// before-image, in place in the cache. A dirtied page no longer cached was
// stolen to disk by eviction; its loss to the revert is the documented
// limitation of the steal policy.
func (p *PageStore) revertPages(tid *primitives.TransactionID, ctx *transaction.Context) {
	for _, pid := range p.dirtyPageIDs(tid, ctx) {
		cached, exists := p.cache.Get(pid)
		if !exists {
			continue
		}

		before := cached.GetBeforeImage()
		if before == nil {
			p.cache.Discard(pid)
			p.logger.Warn("no before-image during abort, page discarded",
				zap.String("page", pid.String()))
			continue
		}
		p.cache.Put(pid, before)
	}
}

// FlushAllPages writes every dirty cached page to its backing store and
// marks it clean. Note the pool's eviction policy already steals dirty
// pages to disk, so this call is consistent with normal operation rather
// than an isolation violation on its own.
func (p *PageStore) FlushAllPages() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	for _, cached := range p.cache.AllPages() {
		if cached.IsDirty() == nil {
			continue
		}
		if err := p.writePage(cached); err != nil {
			return err
		}
		cached.MarkDirty(false, nil)
	}
	return nil
}

// DiscardPage removes a page from the cache without flushing. Callers use
// it when the backing slot has been removed or reused and the cached
// content must never be served again.
func (p *PageStore) DiscardPage(pid primitives.PageID) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.cache.Discard(pid)
}

// InsertTuple adds t to the given table under tid and marks every affected
// page dirty. The table file fetches its pages back through this pool with
// write permission, so no separate locking happens here.
func (p *PageStore) InsertTuple(tid *primitives.TransactionID, tableID primitives.TableID, t *tuple.Tuple) error {
	if tid == nil {
		return dberr.UsageError("InsertTuple", "transaction ID cannot be nil")
	}

	dbFile, err := p.tableManager.GetDbFile(tableID)
	if err != nil {
		return err
	}

	modifiedPages, err := dbFile.AddTuple(tid, t, p)
	if err != nil {
		return err
	}

	return p.markPagesDirty(tid, modifiedPages)
}

// DeleteTuple removes t from its table under tid, locating the page through
// the tuple's record ID, and marks the affected page dirty.
func (p *PageStore) DeleteTuple(tid *primitives.TransactionID, t *tuple.Tuple) error {
	if tid == nil {
		return dberr.UsageError("DeleteTuple", "transaction ID cannot be nil")
	}
	if t == nil || t.RecordID == nil {
		return dberr.UsageError("DeleteTuple", "tuple has no record ID")
	}

	dbFile, err := p.tableManager.GetDbFile(t.RecordID.PageID.GetTableID())
	if err != nil {
		return err
	}

	modifiedPage, err := dbFile.DeleteTuple(tid, t, p)
	if err != nil {
		return err
	}

	return p.markPagesDirty(tid, []page.Page{modifiedPage})
}

func (p *PageStore) HoldsLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	return p.lockManager.HoldsLock(tid, pid)
}

// Close flushes every dirty page. Locks and transaction state are left
// alone; callers should have completed their transactions first.
func (p *PageStore) Close() error {
	return p.FlushAllPages()
}

func (p *PageStore) trackPageAccess(tid *primitives.TransactionID, pid primitives.PageID, perm transaction.Permissions) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ctx, exists := p.transactions[tid]
	if !exists {
		ctx = transaction.NewContext(tid)
		p.transactions[tid] = ctx
	}
	ctx.RecordPageAccess(pid, perm)
}

func (p *PageStore) markPagesDirty(tid *primitives.TransactionID, pages []page.Page) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	ctx, exists := p.transactions[tid]
	if !exists {
		ctx = transaction.NewContext(tid)
		p.transactions[tid] = ctx
	}

	for _, pg := range pages {
		pg.MarkDirty(true, tid)
		ctx.MarkPageDirty(pg.GetID())
		if evicted := p.cache.Put(pg.GetID(), pg); evicted != nil {
			if err := p.flushEvicted(evicted); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushEvicted writes an evicted page to its backing store when dirty.
// A failure here propagates to the caller: dropping a dirty page on the
// floor would silently corrupt the table.
func (p *PageStore) flushEvicted(evicted page.Page) error {
	dirtier := evicted.IsDirty()
	p.logger.Debug("evicting page",
		zap.String("page", evicted.GetID().String()),
		zap.Bool("dirty", dirtier != nil))

	if dirtier == nil {
		return nil
	}

	if err := p.writePage(evicted); err != nil {
		return err
	}
	evicted.MarkDirty(false, nil)
	return nil
}

func (p *PageStore) writePage(pg page.Page) error {
	pid := pg.GetID()
	dbFile, err := p.tableManager.GetDbFile(pid.GetTableID())
	if err != nil {
		return err
	}

	if err := dbFile.WritePage(pg); err != nil {
		p.logger.Error("page flush failed",
			zap.String("page", pid.String()),
			zap.Error(err))
		return err
	}
	return nil
}
