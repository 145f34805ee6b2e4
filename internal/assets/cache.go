// Package assets loads collision octrees for meshes, preferring pre-baked
// .oct files and falling back to incremental, time-boxed generation.
package assets

// Cache is a simple in-memory cache for loaded assets. It is not safe for
// concurrent use.
type Cache[V any] struct {
	data map[string]V

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Peek retrieves an item without touching the statistics.
func (c *Cache[V]) Peek(key string) (V, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.data[key] = v
}

// Delete removes an item from cache.
func (c *Cache[V]) Delete(key string) {
	delete(c.data, key)
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	return c.hits, c.misses
}
