// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package index wraps an HNSW graph as the sink for bulk vector ingestion.
//
// An Index accepts concurrent Add calls with distinct keys, keeps vectors in
// pre-reserved slab memory at the configured scalar precision, and serializes
// itself to a single artifact with Save.
package index

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/coder/hnsw"
	"github.com/poiesic/vecload/core"
)

const (
	// DefaultConnectivity is the graph degree used when the config leaves it at 0.
	DefaultConnectivity = 16
	// DefaultExpansionAdd is the candidate list size used while inserting.
	DefaultExpansionAdd = 128
	// DefaultExpansionSearch is the candidate list size stored for searches.
	DefaultExpansionSearch = 20

	defaultGrowth = 1024

	// innerProductName is the registered name of the inner-product distance.
	innerProductName = "vecload-ip"
)

func init() {
	hnsw.RegisterDistanceFunc(innerProductName, innerProductDistance)
}

// innerProductDistance turns inner-product similarity into a distance.
func innerProductDistance(a, b []float32) float32 {
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return 1 - dot
}

// Index is a concurrent-safe HNSW index keyed by core.Key.
type Index struct {
	cfg             core.IndexConfig
	expansionAdd    int
	expansionSearch int

	memoryLimit int64
	compression Compression
	growth      int
	logger      *slog.Logger

	slab *slab

	// mu guards everything below; the graph is not safe for concurrent use.
	mu         sync.Mutex
	graph      *hnsw.Graph[uint64]
	keys       *roaring64.Bitmap
	duplicates int
}

// New builds an empty index for cfg.
func New(cfg core.IndexConfig, opts ...Option) (*Index, error) {
	if err := core.ValidateIndexConfig(cfg); err != nil {
		return nil, err
	}

	ix := &Index{
		cfg:             cfg,
		expansionAdd:    orDefault(cfg.ExpansionAdd, DefaultExpansionAdd),
		expansionSearch: orDefault(cfg.ExpansionSearch, DefaultExpansionSearch),
		compression:     CompressionZstd,
		growth:          defaultGrowth,
		logger:          slog.Default(),
		keys:            roaring64.New(),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}
	ix.logger = ix.logger.With("component", "index")
	ix.slab = newSlab(cfg.Dimensions, ix.growth)

	g := hnsw.NewGraph[uint64]()
	g.M = orDefault(cfg.Connectivity, DefaultConnectivity)
	g.EfSearch = ix.expansionAdd
	switch cfg.Metric {
	case core.MetricCos:
		g.Distance = hnsw.CosineDistance
	default:
		g.Distance = innerProductDistance
	}
	ix.graph = g

	return ix, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Config returns the configuration the index was built with.
func (ix *Index) Config() core.IndexConfig {
	return ix.cfg
}

// HardwareAcceleration reports the SIMD extension available to distance computations.
func (ix *Index) HardwareAcceleration() string {
	return HardwareAcceleration()
}

// EstimateBytes returns a rough memory estimate for capacity vectors: the
// vectors themselves plus per-node graph links.
func (ix *Index) EstimateBytes(capacity int) int64 {
	m := int64(orDefault(ix.cfg.Connectivity, DefaultConnectivity))
	perNode := int64(ix.cfg.Dimensions)*4 + 2*m*8 + 64
	return int64(capacity) * perNode
}

// Reserve pre-allocates storage for capacity vectors. It is a sizing hint, not
// a ceiling: Add keeps working past the reservation.
func (ix *Index) Reserve(capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", ErrReservationFailed, capacity)
	}
	if capacity > 0 && ix.cfg.Dimensions > math.MaxInt/capacity {
		return fmt.Errorf("%w: %d vectors of %d dimensions overflows", ErrReservationFailed, capacity, ix.cfg.Dimensions)
	}

	need := ix.EstimateBytes(capacity)
	if ix.memoryLimit > 0 && need > ix.memoryLimit {
		return fmt.Errorf("%w: need about %d bytes, limit is %d", ErrReservationFailed, need, ix.memoryLimit)
	}

	ix.slab.reserve(capacity)
	ix.logger.Debug("reserved capacity", "vectors", capacity, "bytes", need)
	return nil
}

// Capacity returns the number of vectors the index can hold before it needs
// another slab chunk.
func (ix *Index) Capacity() int {
	return ix.Len() + ix.slab.free()
}

// Add inserts vec under key. Safe for concurrent use. Adding a key twice
// replaces the earlier vector.
func (ix *Index) Add(key core.Key, vec core.Vector) (err error) {
	if len(vec) != ix.cfg.Dimensions {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), ix.cfg.Dimensions)
	}

	slot := ix.slab.next()
	quantize(slot, vec, ix.cfg.Scalar, ix.cfg.Metric)

	k := uint64(key)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			// A partial insert can leave some of the node's layers behind.
			ix.graph.Delete(k)
			ix.keys.Remove(k)
			err = fmt.Errorf("%w: key %d: %v", ErrInsertFailed, key, r)
		}
	}()

	if !ix.keys.CheckedAdd(k) {
		ix.graph.Delete(k)
		ix.duplicates++
	}
	ix.graph.Add(hnsw.MakeNode(k, slot))
	return nil
}

// Len returns the number of vectors in the index.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.graph.Len()
}

// Duplicates returns how many Add calls replaced an existing key.
func (ix *Index) Duplicates() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.duplicates
}

// Keys returns every key in ascending order.
func (ix *Index) Keys() []core.Key {
	ix.mu.Lock()
	raw := ix.keys.ToArray()
	ix.mu.Unlock()

	keys := make([]core.Key, len(raw))
	for i, k := range raw {
		keys[i] = core.Key(k)
	}
	return keys
}

// Lookup returns the stored (quantized) vector for key.
func (ix *Index) Lookup(key core.Key) (core.Vector, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	vec, ok := ix.graph.Lookup(uint64(key))
	if !ok {
		return nil, false
	}
	return core.Vector(vec), true
}
