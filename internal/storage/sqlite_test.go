package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("key1", "value1"))

	got, ok, err := store.Get("key1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value1", got)

	// Overwrite
	require.NoError(t, store.Set("key1", "value2"))
	got, ok, err = store.Get("key1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "value2", got)

	require.NoError(t, store.Delete("key1"))
	_, ok, err = store.Get("key1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))
	require.NoError(t, store.Set("c", "3"))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("durable", "yes"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get("durable")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "yes", got)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemory()

	_, ok, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set("k", "v"))
	got, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	require.NoError(t, store.Delete("k"))
	_, ok, err = store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
