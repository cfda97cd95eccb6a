package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("key1", "original"))
	require.NoError(t, store.Set("key1", "updated"))

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_KeepsValueTypes(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("i", int64(42)))
	require.NoError(t, store.Set("f", 2.5))

	i, _ := store.Get("i")
	f, _ := store.Get("f")
	assert.Equal(t, int64(42), i)
	assert.Equal(t, 2.5, f)
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("models.qa", "x"))
	require.NoError(t, store.Set("chunking.size", 10))

	assert.Equal(t, []string{"chunking.size", "models.qa"}, store.Keys())
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Set("k", i)
			_, _ = store.Get("k")
		}(i)
	}
	wg.Wait()
	_, ok := store.Get("k")
	assert.True(t, ok)
}
