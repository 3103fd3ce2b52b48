package cache

import (
	"sync"
	"time"
)

// Stats are lifetime counters of a cache.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is implemented by LRU and ShardedLRU.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Delete(key K)
	Len() int
	Stats() Stats
}

var (
	_ Cache[string, int] = (*LRU[string, int])(nil)
	_ Cache[string, int] = (*ShardedLRU[string, int])(nil)
)

type node[K comparable, V any] struct {
	key        K
	value      V
	expiresAt  time.Time
	prev, next *node[K, V]
}

// LRU is a bounded least-recently-used map with optional per-entry TTL.
// A non-positive TTL keeps entries until capacity evicts them.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	nodes    map[K]*node[K, V]
	// root.next is the most recently used entry, root.prev the least.
	root  node[K, V]
	stats Stats
	nowFn func() time.Time
}

func NewLRU[K comparable, V any](capacity int, ttl time.Duration) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	c := &LRU[K, V]{
		capacity: capacity,
		ttl:      ttl,
		nodes:    make(map[K]*node[K, V], capacity),
		nowFn:    time.Now,
	}
	c.root.next = &c.root
	c.root.prev = &c.root
	return c
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if ok && !n.expiresAt.IsZero() && c.nowFn().After(n.expiresAt) {
		c.remove(n)
		ok = false
	}
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	c.stats.Hits++
	return n.value, true
}

func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = c.nowFn().Add(c.ttl)
	}
	if n, ok := c.nodes[key]; ok {
		n.value = value
		n.expiresAt = expiresAt
		c.moveToFront(n)
		return
	}
	if len(c.nodes) >= c.capacity {
		c.remove(c.root.prev)
		c.stats.Evictions++
	}
	n := &node[K, V]{key: key, value: value, expiresAt: expiresAt}
	c.nodes[key] = n
	c.insertFront(n)
}

func (c *LRU[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[key]; ok {
		c.remove(n)
	}
}

// Len counts stored entries, including expired ones not yet reclaimed.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *LRU[K, V]) insertFront(n *node[K, V]) {
	n.prev = &c.root
	n.next = c.root.next
	c.root.next.prev = n
	c.root.next = n
}

func (c *LRU[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if c.root.next == n {
		return
	}
	c.unlink(n)
	c.insertFront(n)
}

func (c *LRU[K, V]) remove(n *node[K, V]) {
	c.unlink(n)
	delete(c.nodes, n.key)
}
