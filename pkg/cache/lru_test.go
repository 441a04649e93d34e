package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := New[string, string](&Config{MaxEntries: 10, TTL: time.Hour})

	c.Set("key1", "a")
	c.Set("key2", "b")

	val, found := c.Get("key1")
	require.True(t, found)
	assert.Equal(t, "a", val)

	val, found = c.Get("key2")
	require.True(t, found)
	assert.Equal(t, "b", val)
}

func TestLRU_NotFound(t *testing.T) {
	c := New[string, string](&Config{MaxEntries: 10, TTL: time.Hour})

	val, found := c.Get("nonexistent")
	assert.False(t, found)
	assert.Empty(t, val)
}

func TestLRU_Update(t *testing.T) {
	c := New[string, string](&Config{MaxEntries: 10, TTL: time.Hour})

	c.Set("key1", "a")
	c.Set("key1", "b")

	val, found := c.Get("key1")
	require.True(t, found)
	assert.Equal(t, "b", val)
}

func TestLRU_Eviction(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 3, TTL: time.Hour})

	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Set("key3", 3)

	// Access key1 so it is no longer the least recently used.
	c.Get("key1")

	// key4 pushes the cache over capacity; key2 is now the LRU entry.
	c.Set("key4", 4)

	_, found := c.Get("key2")
	assert.False(t, found, "expected key2 to be evicted")

	for _, k := range []string{"key1", "key3", "key4"} {
		_, found := c.Get(k)
		assert.True(t, found, "expected %s to remain", k)
	}
}

func TestLRU_Expiration(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: 20 * time.Millisecond})

	c.Set("key1", 100)

	_, found := c.Get("key1")
	require.True(t, found, "expected to find key1 before expiration")

	time.Sleep(40 * time.Millisecond)

	_, found = c.Get("key1")
	assert.False(t, found, "expected key1 to be gone after its TTL elapsed")
}

func TestLRU_NoTTL(t *testing.T) {
	c := New[string, int](&Config{MaxEntries: 10, TTL: 0})

	c.Set("key1", 100)
	time.Sleep(20 * time.Millisecond)

	_, found := c.Get("key1")
	assert.True(t, found, "a zero TTL must never expire entries")
}

func TestLRU_DefaultConfig(t *testing.T) {
	c := New[string, int](nil)

	c.Set("key1", 1)
	val, found := c.Get("key1")
	require.True(t, found)
	assert.Equal(t, 1, val)
}

func TestLRU_Concurrent(t *testing.T) {
	c := New[int, int](&Config{MaxEntries: 1000, TTL: time.Hour})

	var wg sync.WaitGroup
	n := 100
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Set(i, i*2)
		}(i)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Get(i)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		val, found := c.Get(i)
		require.True(t, found)
		assert.Equal(t, i*2, val)
	}
}
