package lock

import (
	"time"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"slotdb/pkg/concurrency/transaction"
	"slotdb/pkg/primitives"
)

// LockManager grants and releases page locks for transactions. Every method
// is a short critical section under a single mutex; Acquire never blocks.
// When a lock cannot be granted the caller is expected to check for deadlock
// and otherwise sleep and retry, so a waiter's sleep never holds up other
// transactions' lock traffic.
type LockManager struct {
	table     *LockTable
	waitGraph *WaitGraph
	mutex     deadlock.RWMutex
	logger    *zap.Logger
}

func NewLockManager(logger *zap.Logger) *LockManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockManager{
		table:     NewLockTable(),
		waitGraph: NewWaitGraph(),
		logger:    logger,
	}
}

func lockTypeFor(perm transaction.Permissions) LockType {
	if perm == transaction.ReadWrite {
		return ExclusiveLock
	}
	return SharedLock
}

// Acquire attempts to grant tid a lock on pid in the mode implied by perm.
// It returns true when the lock is held on return, either because it was
// already sufficient, was upgraded in place, or was granted fresh. It
// returns false without blocking when another transaction's lock conflicts.
func (lm *LockManager) Acquire(tid *primitives.TransactionID, pid primitives.PageID, perm transaction.Permissions) bool {
	if tid == nil {
		return false
	}
	lockType := lockTypeFor(perm)

	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	if lm.table.HasSufficientLock(tid, pid, lockType) {
		lm.waitGraph.ClearWaiting(tid)
		return true
	}

	if lockType == ExclusiveLock && lm.table.HasLockType(tid, pid, SharedLock) {
		if lm.soleHolder(tid, pid) {
			lm.table.UpgradeLock(tid, pid)
			lm.waitGraph.ClearWaiting(tid)
			return true
		}
		lm.waitGraph.SetWaiting(tid, pid)
		return false
	}

	if lm.canGrant(tid, pid, lockType) {
		lm.table.AddLock(tid, pid, lockType)
		lm.waitGraph.ClearWaiting(tid)
		return true
	}

	lm.waitGraph.SetWaiting(tid, pid)
	return false
}

// DetectDeadlock reports whether tid, currently waiting for pid, is part of
// a wait-for cycle. The caller should abort tid when this returns true.
func (lm *LockManager) DetectDeadlock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	cycle := lm.waitGraph.HasCycleFrom(tid, pid, lm.table.GetPageLocks)
	if cycle {
		lm.waitGraph.ClearWaiting(tid)
		lm.logger.Warn("deadlock detected",
			zap.String("transaction", tid.String()),
			zap.String("page", pid.String()),
			zap.Duration("oldest_grant", lm.oldestGrantAge(pid)))
	}
	return cycle
}

// oldestGrantAge reports how long the longest-standing lock on pid has been
// held, giving the deadlock log a sense of how stale the contention is.
func (lm *LockManager) oldestGrantAge(pid primitives.PageID) time.Duration {
	var oldest time.Time
	for _, l := range lm.table.GetPageLocks(pid) {
		if oldest.IsZero() || l.GrantTime.Before(oldest) {
			oldest = l.GrantTime
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return time.Since(oldest)
}

// Release removes tid's lock on pid, reporting whether one was held.
func (lm *LockManager) Release(tid *primitives.TransactionID, pid primitives.PageID) bool {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	return lm.table.ReleaseLock(tid, pid)
}

// ReleaseAll atomically removes every lock held by tid and forgets any wait
// record, returning the pages that were locked.
func (lm *LockManager) ReleaseAll(tid *primitives.TransactionID) []primitives.PageID {
	lm.mutex.Lock()
	defer lm.mutex.Unlock()

	lm.waitGraph.ClearWaiting(tid)
	return lm.table.ReleaseAllLocks(tid)
}

func (lm *LockManager) HoldsLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	return lm.table.HoldsLock(tid, pid)
}

func (lm *LockManager) IsPageLocked(pid primitives.PageID) bool {
	lm.mutex.RLock()
	defer lm.mutex.RUnlock()

	return lm.table.IsPageLocked(pid)
}

// canGrant evaluates lock compatibility. An exclusive request needs no other
// transaction holding anything on the page; a shared request needs no other
// transaction holding exclusive.
func (lm *LockManager) canGrant(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) bool {
	locks := lm.table.GetPageLocks(pid)
	if len(locks) == 0 {
		return true
	}

	if lockType == ExclusiveLock {
		for _, lock := range locks {
			if lock.TID != tid {
				return false
			}
		}
		return true
	}

	for _, lock := range locks {
		if lock.TID != tid && lock.LockType == ExclusiveLock {
			return false
		}
	}
	return true
}

func (lm *LockManager) soleHolder(tid *primitives.TransactionID, pid primitives.PageID) bool {
	for _, lock := range lm.table.GetPageLocks(pid) {
		if lock.TID != tid {
			return false
		}
	}
	return true
}
