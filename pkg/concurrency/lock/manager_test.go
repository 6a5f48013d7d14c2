package lock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"slotdb/pkg/concurrency/transaction"
	"slotdb/pkg/primitives"
)

func testPage(n primitives.PageNumber) primitives.PageID {
	return primitives.NewPageID(primitives.TableID(1), n)
}

func TestAcquireSharedThenShared(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadOnly))
	require.True(t, lm.Acquire(t2, pid, transaction.ReadOnly))

	assert.True(t, lm.HoldsLock(t1, pid))
	assert.True(t, lm.HoldsLock(t2, pid))
}

func TestExclusiveBlocksAllModes(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadWrite))

	assert.False(t, lm.Acquire(t2, pid, transaction.ReadOnly))
	assert.False(t, lm.Acquire(t2, pid, transaction.ReadWrite))
	assert.False(t, lm.HoldsLock(t2, pid))
}

func TestSharedBlocksExclusiveFromOthers(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadOnly))
	assert.False(t, lm.Acquire(t2, pid, transaction.ReadWrite))
}

func TestAcquireIsIdempotent(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadWrite))
	require.True(t, lm.Acquire(t1, pid, transaction.ReadWrite))
	require.True(t, lm.Acquire(t1, pid, transaction.ReadOnly))
}

func TestUpgradeWhenSoleHolder(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadOnly))
	require.True(t, lm.Acquire(t1, pid, transaction.ReadWrite))

	t2 := primitives.NewTransactionID()
	assert.False(t, lm.Acquire(t2, pid, transaction.ReadOnly))
}

func TestUpgradeDeniedWithOtherSharedHolder(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadOnly))
	require.True(t, lm.Acquire(t2, pid, transaction.ReadOnly))

	assert.False(t, lm.Acquire(t1, pid, transaction.ReadWrite))
	// The shared lock survives the denied upgrade.
	assert.True(t, lm.HoldsLock(t1, pid))
}

func TestReleaseReportsMissingLock(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	pid := testPage(0)

	assert.False(t, lm.Release(t1, pid))

	require.True(t, lm.Acquire(t1, pid, transaction.ReadOnly))
	assert.True(t, lm.Release(t1, pid))
	assert.False(t, lm.HoldsLock(t1, pid))
	assert.False(t, lm.Release(t1, pid))
}

func TestReleaseAllFreesEveryPage(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	pids := []primitives.PageID{testPage(0), testPage(1), testPage(2)}

	for _, pid := range pids {
		require.True(t, lm.Acquire(t1, pid, transaction.ReadWrite))
	}

	released := lm.ReleaseAll(t1)
	assert.Len(t, released, len(pids))
	for _, pid := range pids {
		assert.False(t, lm.HoldsLock(t1, pid))
		assert.False(t, lm.IsPageLocked(pid))
	}

	t2 := primitives.NewTransactionID()
	for _, pid := range pids {
		assert.True(t, lm.Acquire(t2, pid, transaction.ReadWrite))
	}
}

func TestDetectDeadlockTwoTransactionCycle(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pageA := testPage(0)
	pageB := testPage(1)

	require.True(t, lm.Acquire(t1, pageA, transaction.ReadWrite))
	require.True(t, lm.Acquire(t2, pageB, transaction.ReadWrite))

	// Each now requests the other's page; neither grant succeeds.
	require.False(t, lm.Acquire(t1, pageB, transaction.ReadWrite))
	require.False(t, lm.Acquire(t2, pageA, transaction.ReadWrite))

	assert.True(t, lm.DetectDeadlock(t2, pageA))
}

func TestDetectDeadlockThreeTransactionCycle(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	t3 := primitives.NewTransactionID()
	pageA := testPage(0)
	pageB := testPage(1)
	pageC := testPage(2)

	require.True(t, lm.Acquire(t1, pageA, transaction.ReadWrite))
	require.True(t, lm.Acquire(t2, pageB, transaction.ReadWrite))
	require.True(t, lm.Acquire(t3, pageC, transaction.ReadWrite))

	require.False(t, lm.Acquire(t1, pageB, transaction.ReadWrite))
	require.False(t, lm.Acquire(t2, pageC, transaction.ReadWrite))
	require.False(t, lm.Acquire(t3, pageA, transaction.ReadWrite))

	assert.True(t, lm.DetectDeadlock(t3, pageA))
}

func TestNoDeadlockOnPlainContention(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pid := testPage(0)

	require.True(t, lm.Acquire(t1, pid, transaction.ReadWrite))
	require.False(t, lm.Acquire(t2, pid, transaction.ReadWrite))

	// t1 is not waiting on anything, so no cycle exists.
	assert.False(t, lm.DetectDeadlock(t2, pid))

	lm.ReleaseAll(t1)
	assert.True(t, lm.Acquire(t2, pid, transaction.ReadWrite))
}

func TestWaitClearedAfterGrant(t *testing.T) {
	lm := NewLockManager(nil)
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pageA := testPage(0)
	pageB := testPage(1)

	require.True(t, lm.Acquire(t1, pageA, transaction.ReadWrite))
	require.False(t, lm.Acquire(t2, pageA, transaction.ReadWrite))

	lm.ReleaseAll(t1)
	require.True(t, lm.Acquire(t2, pageA, transaction.ReadWrite))

	// t2 no longer waits for pageA; a fresh waiter on pageB must not see a
	// stale cycle through t2.
	require.True(t, lm.Acquire(t1, pageB, transaction.ReadWrite))
	require.False(t, lm.Acquire(t2, pageB, transaction.ReadWrite))
	assert.False(t, lm.DetectDeadlock(t2, pageB))
}

func TestDeadlockLogReportsGrantAge(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lm := NewLockManager(zap.New(core))
	t1 := primitives.NewTransactionID()
	t2 := primitives.NewTransactionID()
	pageA := testPage(0)
	pageB := testPage(1)

	require.True(t, lm.Acquire(t1, pageA, transaction.ReadWrite))
	require.True(t, lm.Acquire(t2, pageB, transaction.ReadWrite))
	require.False(t, lm.Acquire(t1, pageB, transaction.ReadWrite))
	require.False(t, lm.Acquire(t2, pageA, transaction.ReadWrite))

	require.True(t, lm.DetectDeadlock(t2, pageA))

	entries := logs.FilterMessage("deadlock detected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()

	age, ok := fields["oldest_grant"].(time.Duration)
	require.True(t, ok)
	assert.Greater(t, age, time.Duration(0))
}
