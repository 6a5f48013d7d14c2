package lock

import (
	"slotdb/pkg/primitives"
)

// LockTable is the dual-index bookkeeping for granted locks: which locks sit
// on each page, and which pages each transaction holds locks on. It carries
// no synchronization of its own; the LockManager serializes every call.
type LockTable struct {
	pageLocks        map[primitives.PageID][]*Lock
	transactionLocks map[*primitives.TransactionID]map[primitives.PageID]LockType
}

func NewLockTable() *LockTable {
	return &LockTable{
		pageLocks:        make(map[primitives.PageID][]*Lock),
		transactionLocks: make(map[*primitives.TransactionID]map[primitives.PageID]LockType),
	}
}

// HasSufficientLock checks if the transaction already holds a lock on the
// page that satisfies the requested mode. An exclusive lock satisfies any
// request; a shared lock satisfies only a shared request.
func (lt *LockTable) HasSufficientLock(tid *primitives.TransactionID, pid primitives.PageID, reqLockType LockType) bool {
	transactionPages, exists := lt.transactionLocks[tid]
	if !exists {
		return false
	}

	currentLockType, hasPage := transactionPages[pid]
	if !hasPage {
		return false
	}

	if currentLockType == ExclusiveLock {
		return true
	}

	return currentLockType == SharedLock && reqLockType == SharedLock
}

func (lt *LockTable) HasLockType(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) bool {
	if txPages, exists := lt.transactionLocks[tid]; exists {
		if currentLock, hasPage := txPages[pid]; hasPage {
			return currentLock == lockType
		}
	}
	return false
}

func (lt *LockTable) HoldsLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	if txPages, exists := lt.transactionLocks[tid]; exists {
		_, hasPage := txPages[pid]
		return hasPage
	}
	return false
}

func (lt *LockTable) GetPageLocks(pid primitives.PageID) []*Lock {
	return lt.pageLocks[pid]
}

func (lt *LockTable) IsPageLocked(pid primitives.PageID) bool {
	locks, exists := lt.pageLocks[pid]
	return exists && len(locks) > 0
}

func (lt *LockTable) AddLock(tid *primitives.TransactionID, pid primitives.PageID, lockType LockType) {
	lock := NewLock(tid, lockType)
	lt.pageLocks[pid] = append(lt.pageLocks[pid], lock)

	if lt.transactionLocks[tid] == nil {
		lt.transactionLocks[tid] = make(map[primitives.PageID]LockType)
	}
	lt.transactionLocks[tid][pid] = lockType
}

// UpgradeLock promotes the transaction's shared lock on the page to
// exclusive. The caller must have verified the transaction is the sole
// holder.
func (lt *LockTable) UpgradeLock(tid *primitives.TransactionID, pid primitives.PageID) {
	for _, lock := range lt.pageLocks[pid] {
		if lock.TID == tid {
			lock.LockType = ExclusiveLock
			break
		}
	}

	lt.transactionLocks[tid][pid] = ExclusiveLock
}

// ReleaseLock removes the transaction's lock on the page, reporting whether
// one existed.
func (lt *LockTable) ReleaseLock(tid *primitives.TransactionID, pid primitives.PageID) bool {
	txPages, exists := lt.transactionLocks[tid]
	if !exists {
		return false
	}
	if _, hasPage := txPages[pid]; !hasPage {
		return false
	}

	if locks, ok := lt.pageLocks[pid]; ok {
		newLocks := make([]*Lock, 0, len(locks))
		for _, lock := range locks {
			if lock.TID != tid {
				newLocks = append(newLocks, lock)
			}
		}
		if len(newLocks) > 0 {
			lt.pageLocks[pid] = newLocks
		} else {
			delete(lt.pageLocks, pid)
		}
	}

	delete(txPages, pid)
	if len(txPages) == 0 {
		delete(lt.transactionLocks, tid)
	}
	return true
}

// ReleaseAllLocks removes every lock held by the transaction and returns the
// pages that were affected.
func (lt *LockTable) ReleaseAllLocks(tid *primitives.TransactionID) []primitives.PageID {
	txPages, exists := lt.transactionLocks[tid]
	if !exists {
		return nil
	}

	affectedPages := make([]primitives.PageID, 0, len(txPages))
	for pid := range txPages {
		affectedPages = append(affectedPages, pid)
	}

	for _, pid := range affectedPages {
		if locks, ok := lt.pageLocks[pid]; ok {
			newLocks := make([]*Lock, 0, len(locks))
			for _, lock := range locks {
				if lock.TID != tid {
					newLocks = append(newLocks, lock)
				}
			}
			if len(newLocks) > 0 {
				lt.pageLocks[pid] = newLocks
			} else {
				delete(lt.pageLocks, pid)
			}
		}
	}

	delete(lt.transactionLocks, tid)
	return affectedPages
}
