package cache

// Cache is a generic write-through cache with hit/miss statistics.
// Entries are never evicted implicitly.
//
// Cache is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	entries map[K]V
	hits    uint64
	misses  uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]V),
	}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores a value, replacing any previous value for key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.entries[key] = value
}

// GetOrCreate returns the cached value for key or creates and stores it.
// created reports whether create ran. When create fails nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (value V, created bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, false, nil
	}

	v, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.entries[key] = v
	return v, true, nil
}

// Delete removes an entry from the cache.
// Returns the removed value and true if the entry was found.
func (c *Cache[K, V]) Delete(key K) (V, bool) {
	v, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	return v, ok
}

// DeleteFunc removes every entry for which match returns true, calling
// onDelete (if non-nil) for each removed entry. Returns the number removed.
func (c *Cache[K, V]) DeleteFunc(match func(K, V) bool, onDelete func(K, V)) int {
	n := 0
	for k, v := range c.entries {
		if !match(k, v) {
			continue
		}
		delete(c.entries, k)
		if onDelete != nil {
			onDelete(k, v)
		}
		n++
	}
	return n
}

// Clear removes all entries, calling onDelete (if non-nil) for each.
// Statistics are kept.
func (c *Cache[K, V]) Clear(onDelete func(K, V)) {
	entries := c.entries
	c.entries = make(map[K]V)
	if onDelete == nil {
		return
	}
	for k, v := range entries {
		onDelete(k, v)
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	s := Stats{
		Len:    len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that found nothing.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0.0 to 1.0.
	HitRate float64
}
