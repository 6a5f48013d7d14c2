// Package lock implements page-level two-phase locking for slotdb's
// concurrency control layer.
//
// # Overview
//
// Two lock modes are supported:
//
//   - [SharedLock]: required to read a page; compatible with other shared locks.
//   - [ExclusiveLock]: required to write a page; incompatible with all other locks.
//
// A transaction holding a shared lock may upgrade it in place to exclusive
// provided no other transaction holds any lock on that page. Downgrading is
// never permitted.
//
// # Components
//
// [LockManager] is the single public entry point. It coordinates:
//
//   - [LockTable]: dual-index tracking which pages each transaction holds
//     locks on, and which transactions hold locks on each page.
//   - [WaitGraph]: per-transaction record of the page each blocked
//     transaction waits for, from which wait-for edges are derived during
//     cycle checks. An edge A→B means A is waiting for a lock held by B;
//     a cycle indicates a deadlock.
//
// # Acquisition Flow
//
// [LockManager.Acquire] never blocks. It grants immediately when the
// compatibility rules allow (including the upgrade case) and otherwise
// records the wait and returns false. The buffer pool then calls
// [LockManager.DetectDeadlock]; a detected cycle means the requesting
// transaction must abort, otherwise the pool sleeps for its retry interval
// and calls Acquire again. Keeping the sleep outside the manager's mutex
// means one waiter never stalls other transactions' lock operations.
//
// Locks are released all at once through [LockManager.ReleaseAll] at commit
// or abort. [LockManager.Release] exists for the rare caller that knows a
// single early release is safe.
package lock
