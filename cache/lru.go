package cache

import "sync"

// lruNode is an entry of an LRU, linked from most to least recently used.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// LRU is a bounded map that drops its least recently used entry when a
// Set would exceed the limit. It holds bookkeeping data, not GPU objects:
// evicted values are handed to the optional OnEvict callback and
// otherwise forgotten.
//
// LRU is safe for concurrent use and must not be copied after creation.
type LRU[K comparable, V any] struct {
	// OnEvict, if set, is called with every entry dropped by the limit,
	// under the LRU lock.
	OnEvict func(K, V)

	mu        sync.Mutex
	entries   map[K]*lruNode[K, V]
	head      *lruNode[K, V]
	tail      *lruNode[K, V]
	limit     int
	evictions uint64
}

// NewLRU creates an LRU holding at most limit entries. A limit of 0
// means unbounded.
func NewLRU[K comparable, V any](limit int) *LRU[K, V] {
	return &LRU[K, V]{entries: make(map[K]*lruNode[K, V]), limit: limit}
}

// Get returns the value of key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	return n.value, true
}

// Set stores value under key as the most recently used entry.
func (c *LRU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	n := &lruNode[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)
	for c.limit > 0 && len(c.entries) > c.limit {
		old := c.tail
		c.unlink(old)
		delete(c.entries, old.key)
		c.evictions++
		if c.OnEvict != nil {
			c.OnEvict(old.key, old.value)
		}
	}
}

// Delete removes key and reports whether it was present.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.entries, key)
	return true
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the entry count and the number of entries dropped by the
// limit.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Evictions: c.evictions}
}

func (c *LRU[K, V]) pushFront(n *lruNode[K, V]) {
	n.prev, n.next = nil, c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *LRU[K, V]) moveToFront(n *lruNode[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *LRU[K, V]) unlink(n *lruNode[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
