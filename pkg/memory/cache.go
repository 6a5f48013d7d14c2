// Package memory holds the buffer pool: the bounded page cache, the
// PageStore façade that every page access flows through, and the table
// catalog it resolves backing files from.
package memory

import (
	"sync"

	"slotdb/pkg/primitives"
	"slotdb/pkg/storage/page"
)

// PageCache stores pages in memory up to a fixed capacity. It knows nothing
// about transactions, locks, or durability; eviction hands the displaced
// page back to the caller, which decides whether it must be flushed.
type PageCache interface {
	// Get retrieves a page by its ID, marking it as recently used.
	Get(pid primitives.PageID) (page.Page, bool)

	// Put stores a page, marking it as recently used. If the cache was at
	// capacity and the ID was not already present, the least recently used
	// page is evicted and returned; otherwise the return is nil.
	Put(pid primitives.PageID, p page.Page) page.Page

	// Discard removes a page without any flush. Does nothing if absent.
	Discard(pid primitives.PageID)

	// Size returns the current number of cached pages.
	Size() int

	// Capacity returns the maximum number of cached pages.
	Capacity() int

	// AllPageIDs returns a snapshot of the cached page IDs in LRU order,
	// least recently used first.
	AllPageIDs() []primitives.PageID

	// AllPages returns a snapshot of the cached pages in LRU order.
	AllPages() []page.Page
}

// node is an entry in the recency list.
type node struct {
	pid  primitives.PageID
	page page.Page
	prev *node
	next *node
}

// LRUPageCache is a map plus doubly linked recency list, giving O(1) Get,
// Put, and Discard. Inserting past capacity evicts the least recently used
// entry and returns it to the caller.
type LRUPageCache struct {
	capacity int
	cache    map[primitives.PageID]*node
	head     *node // most recently used end
	tail     *node // least recently used end
	mutex    sync.RWMutex
}

// NewLRUPageCache creates an LRU cache holding at most capacity pages.
// Capacity must be positive; the PageStore constructor enforces that.
func NewLRUPageCache(capacity int) *LRUPageCache {
	head := &node{}
	tail := &node{}
	head.next = tail
	tail.prev = head

	return &LRUPageCache{
		capacity: capacity,
		cache:    make(map[primitives.PageID]*node),
		head:     head,
		tail:     tail,
	}
}

func (c *LRUPageCache) addToFront(n *node) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *LRUPageCache) removeNode(n *node) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *LRUPageCache) moveToFront(n *node) {
	c.removeNode(n)
	c.addToFront(n)
}

func (c *LRUPageCache) Get(pid primitives.PageID) (page.Page, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[pid]; exists {
		c.moveToFront(n)
		return n.page, true
	}
	return nil, false
}

// Put stores p under pid. An existing entry is updated in place. A fresh
// insert at capacity evicts the least recently used entry after the insert
// itself has been counted as a use, and the evicted page is returned.
func (c *LRUPageCache) Put(pid primitives.PageID, p page.Page) page.Page {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[pid]; exists {
		n.page = p
		c.moveToFront(n)
		return nil
	}

	newNode := &node{
		pid:  pid,
		page: p,
	}
	c.cache[pid] = newNode
	c.addToFront(newNode)

	if len(c.cache) <= c.capacity {
		return nil
	}

	victim := c.tail.prev
	c.removeNode(victim)
	delete(c.cache, victim.pid)
	return victim.page
}

func (c *LRUPageCache) Discard(pid primitives.PageID) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if n, exists := c.cache[pid]; exists {
		delete(c.cache, pid)
		c.removeNode(n)
	}
}

func (c *LRUPageCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cache)
}

func (c *LRUPageCache) Capacity() int {
	return c.capacity
}

func (c *LRUPageCache) AllPageIDs() []primitives.PageID {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	pids := make([]primitives.PageID, 0, len(c.cache))
	for current := c.tail.prev; current != c.head; current = current.prev {
		pids = append(pids, current.pid)
	}
	return pids
}

func (c *LRUPageCache) AllPages() []page.Page {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	pages := make([]page.Page, 0, len(c.cache))
	for current := c.tail.prev; current != c.head; current = current.prev {
		pages = append(pages, current.page)
	}
	return pages
}
