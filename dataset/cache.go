package dataset

import (
	"sync"

	"github.com/hupe1980/metrigo/metric"
)

type cacheKey struct{ lo, hi int }

// Cache is a lock-guarded distance cache keyed by index pairs. For symmetric
// metrics the key is canonicalized to (min, max) so a single entry serves
// both query orders. Each dataset owns its own Cache; caches are never
// shared between datasets.
//
// Concurrent lookups of a missing key may compute the same distance twice;
// that is harmless because insertion is idempotent.
type Cache[D metric.Number] struct {
	symmetric bool

	mu sync.Mutex
	m  map[cacheKey]D
}

// NewCache creates an empty cache. symmetric controls key canonicalization
// and should match the metric's HasSymmetry.
func NewCache[D metric.Number](symmetric bool) *Cache[D] {
	return &Cache[D]{symmetric: symmetric, m: make(map[cacheKey]D)}
}

func (c *Cache[D]) key(i, j int) cacheKey {
	if c.symmetric && j < i {
		i, j = j, i
	}
	return cacheKey{lo: i, hi: j}
}

// Get returns the cached distance for (i, j) if present.
func (c *Cache[D]) Get(i, j int) (D, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.m[c.key(i, j)]
	return d, ok
}

// Put stores the distance for (i, j).
func (c *Cache[D]) Put(i, j int, d D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[c.key(i, j)] = d
}

// Len returns the number of cached entries.
func (c *Cache[D]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Clear removes all entries.
func (c *Cache[D]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.m)
}
