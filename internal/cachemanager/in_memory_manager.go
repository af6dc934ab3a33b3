package cachemanager

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/rl1809/catalog/internal/logging"
)

// InMemoryCacheManager is a typed, non-expiring go-cache with atomic get-or-create.
// Entries live until Flush; the janitor is disabled.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
	// mu serializes the miss path so a builder runs at most once per key.
	mu sync.Mutex
}

// NewInMemoryCacheManager creates a manager tagged with useCase for log output.
func NewInMemoryCacheManager[K ~string, V any](useCase string) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves an item from the cache by its key.
func (c *InMemoryCacheManager[K, V]) Get(key K) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(string(key))
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		logging.L().Error("wrong type assertion when getting value",
			zap.String("cache", c.useCase), zap.String("key", string(key)))
		return zeroValue, false
	}
	return v, true
}

// GetOrCreate returns the value stored under key, building and storing it with
// build when absent. Concurrent callers for the same key all observe the single
// stored value; created reports whether this call stored it.
func (c *InMemoryCacheManager[K, V]) GetOrCreate(key K, build func() V) (value V, created bool) {
	if v, ok := c.Get(key); ok {
		return v, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.Get(key); ok {
		return v, false
	}

	v := build()
	if err := c.cache.Add(string(key), v, gocache.NoExpiration); err != nil {
		// Only reachable if someone bypassed the miss lock with Set.
		existing, _ := c.Get(key)
		return existing, false
	}

	logging.L().Debug("cache entry created",
		zap.String("cache", c.useCase), zap.String("key", string(key)))
	return v, true
}

// Set stores value under key, replacing any existing entry.
func (c *InMemoryCacheManager[K, V]) Set(key K, value V) {
	c.cache.Set(string(key), value, gocache.NoExpiration)
}

// Len reports the number of stored entries.
func (c *InMemoryCacheManager[K, V]) Len() int {
	return c.cache.ItemCount()
}

// Flush removes every entry.
func (c *InMemoryCacheManager[K, V]) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Flush()
}
