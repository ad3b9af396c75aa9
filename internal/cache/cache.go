// Package cache provides an in-memory read-through cache keyed by entity
// type plus an optional sub-key. Entries expire after a single global TTL
// and a whole type can be invalidated at once after a mutation. The cache is
// advisory: consumers must fall back to the repository on any miss, and it
// never survives a process restart.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultTTL is the global entry lifetime used by New when no TTL is given.
const DefaultTTL = 5 * time.Minute

type entry struct {
	typ        string
	value      any
	insertedAt time.Time
}

// Cache is a TTL cache with type-scoped invalidation. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates a cache with the given TTL; ttl <= 0 selects DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// cacheKey joins type and sub-key. The separator cannot appear in either
// part, so per-id and per-page variants of one type get independent slots.
func cacheKey(typ, sub string) string {
	return typ + "\x1f" + sub
}

// Set stores value under (typ, sub). An empty sub is the type's default slot.
func (c *Cache) Set(typ, sub string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(typ, sub)] = entry{typ: typ, value: value, insertedAt: c.now()}
}

// Lookup returns the raw value under (typ, sub), evicting it first when its
// age exceeds the TTL.
func (c *Cache) Lookup(typ, sub string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey(typ, sub)
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, k)
		return nil, false
	}
	return e.value, true
}

// InvalidateType removes every entry of the given type, whatever its
// sub-key. Called after any mutation of that entity family so the next read
// is forced through the repository.
func (c *Cache) InvalidateType(typ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := typ + "\x1f"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of live entries, counting expired ones until they
// are evicted by a read.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Get returns the typed value under (typ, sub). A stored value of a
// different type is a miss.
func Get[T any](c *Cache, typ, sub string) (T, bool) {
	var zero T
	v, ok := c.Lookup(typ, sub)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// GetOrLoad returns the cached value under (typ, sub) or, on miss, calls
// load, stores the result, and returns it. Load errors are returned without
// populating the cache.
func GetOrLoad[T any](c *Cache, typ, sub string, load func() (T, error)) (T, error) {
	if v, ok := Get[T](c, typ, sub); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Set(typ, sub, v)
	return v, nil
}
