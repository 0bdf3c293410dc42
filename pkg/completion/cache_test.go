package completion

import (
	"fmt"
	"testing"
	"time"
)

func newTestCache(t *testing.T, cfg CacheConfig) *Cache {
	t.Helper()
	c := NewCache(cfg)
	t.Cleanup(c.Stop)
	return c
}

func TestCacheGetSet(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig())

	if _, ok := c.Get("method:sensor"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("method:sensor", "readTemperature();")
	got, ok := c.Get("method:sensor")
	if !ok || got != "readTemperature();" {
		t.Errorf("Get = %q, %v; want hit", got, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestCacheIgnoresEmptyKey(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig())

	c.Set("", "context-dependent completion")
	if c.Stats().Entries != 0 {
		t.Error("empty key must not be stored")
	}
	if _, ok := c.Get(""); ok {
		t.Error("empty key must never hit")
	}
}

func TestCacheExpiresWithoutAnyTouch(t *testing.T) {
	c := newTestCache(t, CacheConfig{TTL: time.Hour, SweepInterval: time.Hour})

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("comment:blink led fast", "digitalWrite(13, HIGH);")

	c.now = func() time.Time { return base.Add(time.Hour + time.Second) }
	if _, ok := c.Get("comment:blink led fast"); ok {
		t.Error("expired entry must not be returned")
	}
}

func TestCacheHitRefreshesAccessNotExpiry(t *testing.T) {
	c := newTestCache(t, CacheConfig{TTL: time.Hour, SweepInterval: time.Hour})

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("func:average", "return (a + b) / 2;")

	// Repeated hits do not extend the TTL; age is measured from set.
	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, ok := c.Get("func:average"); !ok {
		t.Fatal("expected hit before expiry")
	}
	c.now = func() time.Time { return base.Add(61 * time.Minute) }
	if _, ok := c.Get("func:average"); ok {
		t.Error("hit must not extend entry lifetime")
	}
}

func TestCacheEvictsLeastRecentlyAccessed(t *testing.T) {
	c := newTestCache(t, CacheConfig{Capacity: 3, TTL: time.Hour, SweepInterval: time.Hour})

	base := time.Now()
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	// Touch a and c so b becomes the least recently accessed.
	c.Get("a")
	c.Get("c")

	c.Set("d", "4")

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %q to survive eviction", key)
		}
	}
	if got := c.Stats(); got.Entries != 3 || got.Evictions != 1 {
		t.Errorf("stats = %+v, want 3 entries and exactly 1 eviction", got)
	}
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	c := newTestCache(t, CacheConfig{Capacity: 2, TTL: time.Hour, SweepInterval: time.Hour})

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated")

	if got := c.Stats(); got.Entries != 2 || got.Evictions != 0 {
		t.Errorf("stats = %+v, want no eviction on overwrite", got)
	}
	if got, _ := c.Get("a"); got != "updated" {
		t.Errorf("overwrite lost: got %q", got)
	}
}

func TestCacheCleanupRemovesExpiredOnly(t *testing.T) {
	c := newTestCache(t, CacheConfig{TTL: time.Hour, SweepInterval: time.Hour})

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("old", "1")

	c.now = func() time.Time { return base.Add(50 * time.Minute) }
	c.Set("fresh", "2")

	c.now = func() time.Time { return base.Add(70 * time.Minute) }
	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Cleanup removed %d entries, want 1", removed)
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("fresh entry removed by cleanup")
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t, DefaultCacheConfig())

	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("key-%d", i), "value")
	}
	c.Clear()
	if got := c.Stats().Entries; got != 0 {
		t.Errorf("entries after Clear = %d, want 0", got)
	}
}

func TestCacheStopIdempotent(t *testing.T) {
	c := NewCache(DefaultCacheConfig())
	c.Stop()
	c.Stop()
}
