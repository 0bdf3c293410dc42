package completion

import (
	"sync"
	"time"

	"github.com/NikolaiRadke/AI.duino-sub001/pkg/telemetry/metrics"
)

// Cache defaults. All are overridable through CacheConfig.
const (
	DefaultCacheTTL      = time.Hour
	DefaultCacheCapacity = 100
	DefaultSweepInterval = 5 * time.Minute

	cacheMetricName = "completion"
)

// CacheConfig tunes the completion cache.
type CacheConfig struct {
	TTL           time.Duration
	Capacity      int
	SweepInterval time.Duration
}

// DefaultCacheConfig returns the standard cache tuning.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:           DefaultCacheTTL,
		Capacity:      DefaultCacheCapacity,
		SweepInterval: DefaultSweepInterval,
	}
}

type cacheEntry struct {
	value        string
	createdAt    time.Time
	lastAccessAt time.Time
	hitCount     int
}

// CacheStats is a point-in-time view of cache effectiveness.
type CacheStats struct {
	Entries   int
	Hits      int64
	Misses    int64
	Evictions int64
}

// Cache is a bounded, TTL-limited completion store. Entries older than
// the TTL are never returned, even when still physically present; a
// background sweep purges them so memory stays bounded for keys that
// are never looked up again.
type Cache struct {
	cfg     CacheConfig
	metrics *metrics.Metrics

	mu        sync.Mutex
	entries   map[string]*cacheEntry
	hits      int64
	misses    int64
	evictions int64

	sweepStop chan struct{}
	stopOnce  sync.Once

	now func() time.Time
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithCacheMetrics wires prometheus cache metrics.
func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *Cache) { c.metrics = m }
}

// NewCache creates a cache and starts its background sweep. Call Stop
// when the cache is no longer needed.
func NewCache(cfg CacheConfig, opts ...CacheOption) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCacheCapacity
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	c := &Cache{
		cfg:       cfg,
		entries:   make(map[string]*cacheEntry),
		sweepStop: make(chan struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.sweepLoop()
	return c
}

// Get returns the cached value for key, or false for missing or
// expired entries. A hit refreshes the access time.
func (c *Cache) Get(key string) (string, bool) {
	if key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.now().Sub(entry.createdAt) > c.cfg.TTL {
		c.misses++
		c.metrics.RecordCacheMiss(cacheMetricName)
		return "", false
	}

	entry.lastAccessAt = c.now()
	entry.hitCount++
	c.hits++
	c.metrics.RecordCacheHit(cacheMetricName)
	return entry.value, true
}

// Set stores a completion under key, evicting the least-recently-
// accessed entry first when the cache is at capacity. Empty keys are
// ignored; they mark context-dependent completions that must not be
// reused.
func (c *Cache) Set(key, value string) {
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.Capacity {
		c.evictOldestLocked()
	}

	now := c.now()
	c.entries[key] = &cacheEntry{
		value:        value,
		createdAt:    now,
		lastAccessAt: now,
	}
	c.metrics.SetCacheEntries(cacheMetricName, len(c.entries))
}

// Cleanup removes every expired entry immediately, independent of the
// sweep schedule. It returns the number of entries removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleanupLocked()
}

// cleanupLocked snapshots expired keys before deleting so the map is
// not mutated while being iterated. Caller must hold c.mu.
func (c *Cache) cleanupLocked() int {
	now := c.now()
	var expired []string
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.cfg.TTL {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		delete(c.entries, key)
		c.evictions++
		c.metrics.RecordCacheEviction(cacheMetricName)
	}
	c.metrics.SetCacheEntries(cacheMetricName, len(c.entries))
	return len(expired)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.metrics.SetCacheEntries(cacheMetricName, 0)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Stop halts the background sweep. Stop is idempotent.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.sweepStop) })
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.sweepStop:
			return
		}
	}
}

// evictOldestLocked removes the least-recently-accessed entry.
// Caller must hold c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAccess time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.lastAccessAt.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = entry.lastAccessAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
		c.metrics.RecordCacheEviction(cacheMetricName)
	}
}
