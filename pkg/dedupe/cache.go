package dedupe

import (
	"sync"
)

// DefaultMaxEntries bounds a cache when no explicit ceiling is given.
const DefaultMaxEntries = 1000

// Cache remembers string ids so the pipeline can drop duplicates (re-delivered
// messages, double-fired finalize timers). It is bounded: once the ceiling is
// exceeded the oldest half of the entries is evicted in a single batch, in
// insertion order. This is intentionally not an LRU — eviction ignores how
// recently an id was looked up, which keeps the structure a plain map plus a
// slice. The trade-off: a duplicate arriving long after its entry was evicted
// is re-admitted.
type Cache struct {
	mu      sync.Mutex
	maxSize int
	seen    map[string]struct{}
	order   []string
}

// NewCache creates a bounded cache. A non-positive maxSize falls back to
// DefaultMaxEntries.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	return &Cache{
		maxSize: maxSize,
		seen:    make(map[string]struct{}),
	}
}

// MarkSeen records id and reports whether it was already present. The check
// and the insert happen under one lock so concurrent callers cannot both see
// "new" for the same id.
func (c *Cache) MarkSeen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return true
	}
	c.add(id)
	return false
}

// Seen reports whether id is currently remembered.
func (c *Cache) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.seen[id]
	return ok
}

// Add records id without reporting prior presence.
func (c *Cache) Add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return
	}
	c.add(id)
}

// Len returns the number of remembered ids.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.order)
}

// add must be called with c.mu held.
func (c *Cache) add(id string) {
	c.seen[id] = struct{}{}
	c.order = append(c.order, id)

	if len(c.order) <= c.maxSize {
		return
	}

	// Batch eviction: drop the oldest half in one go.
	half := len(c.order) / 2
	for _, old := range c.order[:half] {
		delete(c.seen, old)
	}
	remaining := make([]string, len(c.order)-half)
	copy(remaining, c.order[half:])
	c.order = remaining
}
