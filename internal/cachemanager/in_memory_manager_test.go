package cachemanager

import (
	"sync"
	"sync/atomic"
	"testing"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
)

type exampleStruct struct {
	ID   int
	Name string
}

func TestNewInMemoryCacheManager(t *testing.T) {
	require.NotPanics(t, func() {
		NewInMemoryCacheManager[string, string]("test")
	})
}

func TestInMemoryCacheManager_GetExistingValue_StructType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *exampleStruct]("food-cache")
	example := &exampleStruct{Name: "apple"}
	cache.Set("ex:1", example)

	got, ok := cache.Get("ex:1")
	require.True(t, ok)
	require.Same(t, example, got)
}

func TestInMemoryCacheManager_GetWithNoExistingValue(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("food-cache")

	got, ok := cache.Get("food")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetWithExistingInvalidValueType(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("food-cache")
	cache.cache.Set("food", 123, gocache.NoExpiration)

	got, ok := cache.Get("food")
	require.False(t, ok)
	require.Empty(t, got)
}

func TestInMemoryCacheManager_GetOrCreate_ReturnsExisting(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *exampleStruct]("food-cache")

	first, created := cache.GetOrCreate("apple", func() *exampleStruct { return &exampleStruct{ID: 1} })
	require.True(t, created)

	second, created := cache.GetOrCreate("apple", func() *exampleStruct { return &exampleStruct{ID: 2} })
	require.False(t, created)
	require.Same(t, first, second)
	require.Equal(t, 1, second.ID)
}

func TestInMemoryCacheManager_GetOrCreate_Concurrent(t *testing.T) {
	cache := NewInMemoryCacheManager[string, *exampleStruct]("food-cache")

	var builds atomic.Int32
	var wg sync.WaitGroup
	results := make([]*exampleStruct, 100)

	for i := 0; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = cache.GetOrCreate("shared", func() *exampleStruct {
				builds.Add(1)
				return &exampleStruct{Name: "shared"}
			})
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), builds.Load())
	for _, r := range results {
		require.Same(t, results[0], r)
	}
}

func TestInMemoryCacheManager_Flush(t *testing.T) {
	cache := NewInMemoryCacheManager[string, string]("food-cache")
	cache.Set("a", "1")
	cache.Set("b", "2")
	require.Equal(t, 2, cache.Len())

	cache.Flush()

	require.Equal(t, 0, cache.Len())
}
