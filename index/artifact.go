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

package index

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/core"
)

// Artifact layout:
//
//	header (little endian, fixed size)
//	payload, compressed as named in the header:
//	  uint64 length + roaring64 key set
//	  HNSW graph export
const (
	artifactVersion uint16 = 1
	maxKeySetBytes         = 1 << 32
)

var artifactMagic = [4]byte{'V', 'L', 'I', 'X'}

// Compression selects how the artifact payload is compressed.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

// ParseCompression maps a name to a Compression.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// Header is the fixed-size preamble of an artifact.
type Header struct {
	Magic           [4]byte
	Version         uint16
	Metric          uint8
	Scalar          uint8
	Compression     Compression
	_               [3]byte
	Dimensions      uint32
	Connectivity    uint32
	ExpansionAdd    uint32
	ExpansionSearch uint32
	Count           uint64
}

// IndexConfig returns the configuration recorded in the header.
func (h Header) IndexConfig() core.IndexConfig {
	return core.IndexConfig{
		Dimensions:      int(h.Dimensions),
		Metric:          core.MetricKind(h.Metric),
		Scalar:          core.ScalarKind(h.Scalar),
		Connectivity:    int(h.Connectivity),
		ExpansionAdd:    int(h.ExpansionAdd),
		ExpansionSearch: int(h.ExpansionSearch),
	}
}

func (ix *Index) header() Header {
	return Header{
		Magic:           artifactMagic,
		Version:         artifactVersion,
		Metric:          uint8(ix.cfg.Metric),
		Scalar:          uint8(ix.cfg.Scalar),
		Compression:     ix.compression,
		Dimensions:      uint32(ix.cfg.Dimensions),
		Connectivity:    uint32(ix.graph.M),
		ExpansionAdd:    uint32(ix.expansionAdd),
		ExpansionSearch: uint32(ix.expansionSearch),
		Count:           uint64(ix.graph.Len()),
	}
}

// Save writes the index to name in store and returns the artifact size in bytes.
// It must not run concurrently with Add. The object is only committed when the
// whole artifact was written; on error it is aborted.
func (ix *Index) Save(ctx context.Context, store blobstore.Store, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	blob, err := store.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}
	counted := blobstore.NewCounted(blob)

	if err := ix.writeTo(counted); err != nil {
		_ = blob.Abort()
		return 0, err
	}
	if err := counted.Close(); err != nil {
		return 0, fmt.Errorf("failed to commit %s: %w", name, err)
	}

	ix.logger.Debug("saved index", "name", name, "bytes", counted.Bytes(), "vectors", ix.Len())
	return counted.Bytes(), nil
}

// SaveFile writes the index to a local path.
func (ix *Index) SaveFile(path string) (int64, error) {
	return ix.Save(context.Background(), blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path))
}

func (ix *Index) writeTo(w io.Writer) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	bw := bufio.NewWriterSize(w, 1<<20)
	if err := binary.Write(bw, binary.LittleEndian, ix.header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	cw, err := compressWriter(bw, ix.compression)
	if err != nil {
		return err
	}

	keySet, err := ix.keys.MarshalBinary()
	if err != nil {
		return fmt.Errorf("failed to encode key set: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, uint64(len(keySet))); err != nil {
		return err
	}
	if _, err := cw.Write(keySet); err != nil {
		return err
	}

	// The exported graph carries the search-time expansion.
	ix.graph.EfSearch = ix.expansionSearch
	err = ix.graph.Export(cw)
	ix.graph.EfSearch = ix.expansionAdd
	if err != nil {
		return fmt.Errorf("failed to export graph: %w", err)
	}

	if err := cw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadHeader reads and checks the artifact header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	if h.Magic != artifactMagic {
		return h, fmt.Errorf("%w: bad magic %q", ErrInvalidArtifact, h.Magic[:])
	}
	if h.Version > artifactVersion {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Compression > CompressionLZ4 {
		return h, fmt.Errorf("%w: %d", ErrUnknownCompression, h.Compression)
	}
	return h, nil
}

// Load reads an index saved with Save.
func Load(ctx context.Context, store blobstore.Store, name string, opts ...Option) (*Index, error) {
	rc, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, 1<<20)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithCompression(h.Compression)}, opts...)
	ix, err := New(h.IndexConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}

	dr, closeFn, err := decompressReader(br, h.Compression)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var keyLen uint64
	if err := binary.Read(dr, binary.LittleEndian, &keyLen); err != nil {
		return nil, fmt.Errorf("%w: key set length: %w", ErrInvalidArtifact, err)
	}
	if keyLen > maxKeySetBytes {
		return nil, fmt.Errorf("%w: key set of %d bytes", ErrInvalidArtifact, keyLen)
	}
	keySet := make([]byte, keyLen)
	if _, err := io.ReadFull(dr, keySet); err != nil {
		return nil, fmt.Errorf("%w: key set: %w", ErrInvalidArtifact, err)
	}
	keys := roaring64.New()
	if err := keys.UnmarshalBinary(keySet); err != nil {
		return nil, fmt.Errorf("%w: key set: %w", ErrInvalidArtifact, err)
	}

	// The graph decoder reads varints and needs an io.ByteReader, which the
	// zstd and lz4 readers are not.
	if err := ix.graph.Import(bufio.NewReader(dr)); err != nil {
		return nil, fmt.Errorf("%w: graph: %w", ErrInvalidArtifact, err)
	}
	ix.graph.EfSearch = ix.expansionAdd
	ix.keys = keys

	if n := uint64(ix.graph.Len()); n != h.Count || n != keys.GetCardinality() {
		return nil, fmt.Errorf("%w: header says %d vectors, graph has %d, key set has %d",
			ErrInvalidArtifact, h.Count, n, keys.GetCardinality())
	}
	return ix, nil
}

// LoadFile reads an index from a local path.
func LoadFile(path string, opts ...Option) (*Index, error) {
	return Load(context.Background(), blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path), opts...)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		return enc, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

func decompressReader(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}

// IsInvalidArtifact reports whether err came from decoding a damaged or foreign file.
func IsInvalidArtifact(err error) bool {
	return errors.Is(err, ErrInvalidArtifact) || errors.Is(err, ErrUnsupportedVersion)
}
