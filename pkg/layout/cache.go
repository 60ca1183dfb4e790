package layout

import (
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/starmap/pkg/metrics"
	"github.com/vanderheijden86/starmap/pkg/model"
)

// DefaultCacheTTL is the default time-to-live for cached results.
const DefaultCacheTTL = 5 * time.Minute

// DefaultCacheEntries bounds how many distinct inputs are remembered.
const DefaultCacheEntries = 8

// Cache memoizes layout results keyed by input hash.
// Thread-safe for concurrent access. Results are shared and must not be modified.
type Cache struct {
	mu         sync.RWMutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int
	group      singleflight.Group
	now        func() time.Time
}

type cacheEntry struct {
	result     *Result
	computedAt time.Time
	accessedAt time.Time
}

// NewCache creates a cache with the given TTL. A non-positive ttl uses DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: DefaultCacheEntries,
		now:        time.Now,
	}
}

// Key combines the data and config hashes.
func Key(nodes []model.Node, cfg Config) string {
	return ComputeDataHash(nodes) + "|" + ComputeConfigHash(cfg)
}

// GetByKey returns a cached result if present and fresh.
func (c *Cache) GetByKey(key string) (*Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	now := c.now()
	if now.Sub(e.computedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	e.accessedAt = now
	c.entries[key] = e
	return e.result, true
}

// SetByKey stores a result, evicting the least recently used entries over capacity.
func (c *Cache) SetByKey(key string, res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = cacheEntry{result: res, computedAt: now, accessedAt: now}
	c.evictLocked()
}

func (c *Cache) evictLocked() {
	if len(c.entries) <= c.maxEntries {
		return
	}
	type item struct {
		key string
		t   time.Time
	}
	items := make([]item, 0, len(c.entries))
	for k, e := range c.entries {
		items = append(items, item{key: k, t: e.accessedAt})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].t.Equal(items[j].t) {
			return items[i].key < items[j].key
		}
		return items[i].t.Before(items[j].t)
	})
	for len(c.entries) > c.maxEntries && len(items) > 0 {
		delete(c.entries, items[0].key)
		items = items[1:]
	}
}

// Invalidate clears the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CachedEngine wraps an Engine and consults a Cache before computing.
// Concurrent calls for the same input share one computation.
type CachedEngine struct {
	*Engine
	cache *Cache
}

// NewCachedEngine returns an engine backed by cache. A nil cache gets a fresh one.
func NewCachedEngine(e *Engine, cache *Cache) *CachedEngine {
	if cache == nil {
		cache = NewCache(DefaultCacheTTL)
	}
	return &CachedEngine{Engine: e, cache: cache}
}

// Compute returns the cached result for nodes when available and reports whether it
// was a cache hit.
func (ce *CachedEngine) Compute(nodes []model.Node) (*Result, bool) {
	key := Key(nodes, ce.cfg)
	if res, ok := ce.cache.GetByKey(key); ok {
		metrics.LayoutCache.Hit()
		return res, true
	}
	metrics.LayoutCache.Miss()

	v, _, _ := ce.cache.group.Do(key, func() (any, error) {
		if res, ok := ce.cache.GetByKey(key); ok {
			return res, nil
		}
		res := ce.Engine.Compute(nodes)
		ce.cache.SetByKey(key, res)
		return res, nil
	})
	return v.(*Result), false
}

// Cache returns the backing cache.
func (ce *CachedEngine) Cache() *Cache {
	return ce.cache
}
