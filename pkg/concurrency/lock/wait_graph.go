package lock

import (
	mapset "github.com/deckarep/golang-set/v2"

	"slotdb/pkg/primitives"
)

// WaitGraph records which page each blocked transaction is currently waiting
// for. The wait-for edges themselves are not materialized; they are derived
// on demand from the lock table during cycle checks, so the graph always
// reflects the current holders. The LockManager serializes every call.
type WaitGraph struct {
	waitingFor map[*primitives.TransactionID]primitives.PageID
}

func NewWaitGraph() *WaitGraph {
	return &WaitGraph{
		waitingFor: make(map[*primitives.TransactionID]primitives.PageID),
	}
}

// SetWaiting marks tid as blocked on pid. A transaction waits on at most one
// page at a time, so a second call overwrites the first.
func (wg *WaitGraph) SetWaiting(tid *primitives.TransactionID, pid primitives.PageID) {
	wg.waitingFor[tid] = pid
}

// ClearWaiting removes tid's wait record, if any.
func (wg *WaitGraph) ClearWaiting(tid *primitives.TransactionID) {
	delete(wg.waitingFor, tid)
}

// HasCycleFrom reports whether a wait-for cycle passes through start, given
// that start is waiting for pid. It walks from the holders of pid through
// whatever pages those holders are themselves waiting for, using holdersOf
// to resolve the current lock holders of a page. A path that reaches a
// holder equal to start closes the cycle.
func (wg *WaitGraph) HasCycleFrom(start *primitives.TransactionID, pid primitives.PageID, holdersOf func(primitives.PageID) []*Lock) bool {
	visited := mapset.NewThreadUnsafeSet[*primitives.TransactionID]()

	frontier := make([]*primitives.TransactionID, 0)
	for _, held := range holdersOf(pid) {
		if held.TID != start {
			frontier = append(frontier, held.TID)
		}
	}

	for len(frontier) > 0 {
		current := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if visited.Contains(current) {
			continue
		}
		visited.Add(current)

		waitPid, isWaiting := wg.waitingFor[current]
		if !isWaiting {
			continue
		}

		for _, held := range holdersOf(waitPid) {
			if held.TID == start {
				return true
			}
			frontier = append(frontier, held.TID)
		}
	}

	return false
}
