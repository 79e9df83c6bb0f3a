package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	w, err := store.Create(ctx, "index.usearch")
	require.NoError(t, err)

	data := []byte("artifact bytes")
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Nothing visible before Close.
	_, err = os.Stat(filepath.Join(dir, "index.usearch"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, w.Close())

	r, err := store.Open(ctx, "index.usearch")
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be renamed away")
}

func TestLocalStore_Abort(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	w, err := store.Create(ctx, "out.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("partial"))
	require.NoError(t, err)

	require.NoError(t, w.Abort())
	assert.ErrorIs(t, w.Close(), ErrAborted)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStore_AbortKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.bin"), []byte("old"), 0o644))

	w, err := store.Create(ctx, "out.bin")
	require.NoError(t, err)
	_, _ = w.Write([]byte("new"))
	require.NoError(t, w.Abort())

	got, err := os.ReadFile(filepath.Join(dir, "out.bin"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestLocalStore_OpenMissing(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, err := store.Open(context.Background(), "nope.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_CreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(filepath.Join(dir, "a", "b"))

	w, err := store.Create(context.Background(), "x")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(filepath.Join(dir, "a", "b", "x"))
	assert.NoError(t, err)
}

func TestCounted(t *testing.T) {
	store := NewMemoryStore()
	w, err := store.Create(context.Background(), "c")
	require.NoError(t, err)

	c := NewCounted(w)
	_, err = c.Write([]byte("12345"))
	require.NoError(t, err)
	_, err = c.Write([]byte("678"))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	assert.Equal(t, int64(8), c.Bytes())
	got, ok := store.Get("c")
	require.True(t, ok)
	assert.Equal(t, "12345678", string(got))
}

func TestMemoryStore_Abort(t *testing.T) {
	store := NewMemoryStore()
	w, err := store.Create(context.Background(), "m")
	require.NoError(t, err)
	_, _ = w.Write([]byte("data"))
	require.NoError(t, w.Abort())
	assert.ErrorIs(t, w.Close(), ErrAborted)

	_, ok := store.Get("m")
	assert.False(t, ok)

	_, err = store.Open(context.Background(), "m")
	assert.ErrorIs(t, err, ErrNotFound)
}
