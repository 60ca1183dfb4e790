package metrics

import "sync/atomic"

// CacheMetric counts hits and misses for a named cache.
type CacheMetric struct {
	name   string
	hits   atomic.Int64
	misses atomic.Int64
}

func newCacheMetric(name string) *CacheMetric {
	return &CacheMetric{name: name}
}

// Hit records a cache hit.
func (m *CacheMetric) Hit() {
	if !enabled {
		return
	}
	m.hits.Add(1)
}

// Miss records a cache miss.
func (m *CacheMetric) Miss() {
	if !enabled {
		return
	}
	m.misses.Add(1)
}

// Name returns the metric name.
func (m *CacheMetric) Name() string {
	return m.name
}

// Stats returns a snapshot of the counters.
func (m *CacheMetric) Stats() CacheStats {
	hits := m.hits.Load()
	misses := m.misses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return CacheStats{Name: m.name, Hits: hits, Misses: misses, HitRatio: ratio}
}

// Reset clears the counters.
func (m *CacheMetric) Reset() {
	m.hits.Store(0)
	m.misses.Store(0)
}

// CacheStats holds a snapshot of cache counters.
type CacheStats struct {
	Name     string  `json:"name"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// LayoutCache tracks the layout memo cache.
var LayoutCache = newCacheMetric("layout_cache")

// AllCacheMetrics returns all registered cache metrics.
func AllCacheMetrics() []*CacheMetric {
	return []*CacheMetric{LayoutCache}
}

// AllCacheStats returns stats for cache metrics that saw traffic.
func AllCacheStats() []CacheStats {
	var stats []CacheStats
	for _, m := range AllCacheMetrics() {
		s := m.Stats()
		if s.Hits+s.Misses > 0 {
			stats = append(stats, s)
		}
	}
	return stats
}

// Snapshot bundles every metric with data, ready for JSON output.
type Snapshot struct {
	Timings []TimingStats `json:"timings"`
	Caches  []CacheStats  `json:"caches,omitempty"`
}

// TakeSnapshot returns the current metrics.
func TakeSnapshot() Snapshot {
	return Snapshot{Timings: AllTimingStats(), Caches: AllCacheStats()}
}
