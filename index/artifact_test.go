package index

import (
	"bytes"
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{in: "none", want: CompressionNone},
		{in: "", want: CompressionNone},
		{in: "zstd", want: CompressionZstd},
		{in: "LZ4", want: CompressionLZ4},
		{in: "gzip", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCompression(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCompression)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			cfg := core.IndexConfig{Dimensions: 8, Metric: core.MetricIP, Scalar: core.ScalarF32, Connectivity: 12}
			ix, err := New(cfg, WithCompression(c))
			require.NoError(t, err)

			rng := rand.New(rand.NewPCG(7, 7))
			want := map[core.Key]core.Vector{}
			for i := 0; i < 300; i++ {
				key := core.Key(i * 3)
				vec := randomVector(rng, 8)
				want[key] = vec
				require.NoError(t, ix.Add(key, vec))
			}

			store := blobstore.NewMemoryStore()
			n, err := ix.Save(context.Background(), store, "index.usearch")
			require.NoError(t, err)
			data, ok := store.Get("index.usearch")
			require.True(t, ok)
			assert.Equal(t, int64(len(data)), n)

			loaded, err := Load(context.Background(), store, "index.usearch")
			require.NoError(t, err)
			got := loaded.Config()
			assert.Equal(t, cfg.Dimensions, got.Dimensions)
			assert.Equal(t, cfg.Metric, got.Metric)
			assert.Equal(t, cfg.Scalar, got.Scalar)
			assert.Equal(t, 12, got.Connectivity)
			assert.Equal(t, DefaultExpansionAdd, got.ExpansionAdd, "header records resolved values")
			assert.Equal(t, len(want), loaded.Len())
			assert.Equal(t, c, loaded.compression)

			for key, vec := range want {
				got, ok := loaded.Lookup(key)
				require.True(t, ok, "key %d", key)
				assert.Equal(t, vec, got)
			}
			assert.Len(t, loaded.Keys(), len(want))
		})
	}
}

func TestSaveLoad_Empty(t *testing.T) {
	ix, err := New(testConfig(4))
	require.NoError(t, err)

	store := blobstore.NewMemoryStore()
	n, err := ix.Save(context.Background(), store, "empty.usearch")
	require.NoError(t, err)
	assert.Positive(t, n)

	loaded, err := Load(context.Background(), store, "empty.usearch")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
	assert.Empty(t, loaded.Keys())
}

func TestSaveLoad_EmptyEveryCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			ix, err := New(testConfig(3), WithCompression(c))
			require.NoError(t, err)

			store := blobstore.NewMemoryStore()
			_, err = ix.Save(context.Background(), store, "empty.usearch")
			require.NoError(t, err)

			loaded, err := Load(context.Background(), store, "empty.usearch")
			require.NoError(t, err)
			assert.Equal(t, 0, loaded.Len())
			assert.Equal(t, c, loaded.compression)
		})
	}
}

func TestSaveFile_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "index.usearch")

	ix, err := New(testConfig(2))
	require.NoError(t, err)
	require.NoError(t, ix.Add(0, core.Vector{0.1, 0.2}))
	require.NoError(t, ix.Add(1, core.Vector{0.3, 0.4}))

	_, err = ix.SaveFile(path)
	require.NoError(t, err)

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	// Adds keep working on a loaded index.
	require.NoError(t, loaded.Add(5, core.Vector{0.5, 0.6}))
	assert.Equal(t, 3, loaded.Len())
}

func TestSave_ContextCancelled(t *testing.T) {
	ix, err := New(testConfig(2))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := blobstore.NewMemoryStore()
	_, err = ix.Save(ctx, store, "x")
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := store.Get("x")
	assert.False(t, ok)
}

func TestSave_UnwritableDestination(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	ix, err := New(testConfig(2))
	require.NoError(t, err)

	// A regular file cannot act as a parent directory.
	_, err = ix.SaveFile(filepath.Join(blocker, "index.usearch"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	store := blobstore.NewMemoryStore()
	store.Put("garbage", []byte("this is not an index artifact at all, not even close"))
	store.Put("short", []byte("VL"))

	_, err := Load(context.Background(), store, "garbage")
	assert.ErrorIs(t, err, ErrInvalidArtifact)
	assert.True(t, IsInvalidArtifact(err))

	_, err = Load(context.Background(), store, "short")
	assert.ErrorIs(t, err, ErrInvalidArtifact)

	_, err = Load(context.Background(), store, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestReadHeader(t *testing.T) {
	cfg := core.IndexConfig{Dimensions: 192, Metric: core.MetricCos, Scalar: core.ScalarF16}
	ix, err := New(cfg, WithCompression(CompressionLZ4))
	require.NoError(t, err)
	require.NoError(t, ix.Add(1, make(core.Vector, 192)))

	store := blobstore.NewMemoryStore()
	_, err = ix.Save(context.Background(), store, "a")
	require.NoError(t, err)
	data, _ := store.Get("a")

	h, err := ReadHeader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h.Count)
	assert.Equal(t, CompressionLZ4, h.Compression)
	assert.Equal(t, uint32(192), h.Dimensions)
	assert.Equal(t, uint32(DefaultConnectivity), h.Connectivity)
	assert.Equal(t, core.ScalarF16, h.IndexConfig().Scalar)

	future := bytes.Clone(data)
	future[4] = 0xff
	_, err = ReadHeader(bytes.NewReader(future))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
