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

package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalogued entities such as runs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Key identifies a vector inside an index. The ingestion pipeline uses the
// zero-based ordinal of the source line, so keys never repeat within a run.
type Key uint64

// Vector is a fixed-length embedding.
type Vector []float32

// MetricKind selects the similarity function used to compare vectors.
type MetricKind int

const (
	// MetricCos is cosine similarity.
	MetricCos MetricKind = iota + 1
	// MetricIP is inner product.
	MetricIP
)

// ParseMetricKind maps a flag value to a MetricKind.
// "cos" (any case) selects cosine; every other value selects inner product.
func ParseMetricKind(s string) MetricKind {
	if strings.ToLower(s) == "cos" {
		return MetricCos
	}
	return MetricIP
}

func (m MetricKind) String() string {
	switch m {
	case MetricCos:
		return "cos"
	case MetricIP:
		return "ip"
	default:
		return "unknown"
	}
}

// ScalarKind is the numeric precision each vector component is stored with.
type ScalarKind int

const (
	ScalarF32 ScalarKind = iota + 1
	ScalarF16
	ScalarF64
	ScalarI8
	ScalarB1
)

// ParseScalarKind maps a flag value to a ScalarKind.
// Unrecognized values fall back to ScalarF32.
func ParseScalarKind(s string) ScalarKind {
	switch strings.ToLower(s) {
	case "f16", "16":
		return ScalarF16
	case "f64", "64":
		return ScalarF64
	case "b1", "1":
		return ScalarB1
	case "i8", "8":
		return ScalarI8
	default:
		return ScalarF32
	}
}

func (s ScalarKind) String() string {
	switch s {
	case ScalarF32:
		return "f32"
	case ScalarF16:
		return "f16"
	case ScalarF64:
		return "f64"
	case ScalarI8:
		return "i8"
	case ScalarB1:
		return "b1"
	default:
		return "unknown"
	}
}

// IndexConfig describes how an index is built. It is set once at startup and
// never mutated afterwards.
type IndexConfig struct {
	Dimensions      int
	Metric          MetricKind
	Scalar          ScalarKind
	Connectivity    int // 0 = auto
	ExpansionAdd    int // 0 = auto
	ExpansionSearch int // 0 = auto
}

// RejectReason explains why a record did not make it into the index.
type RejectReason int

const (
	RejectNone RejectReason = iota
	// RejectMalformedVector means the embedding field is not a JSON array of numbers.
	RejectMalformedVector
	// RejectMissingField means the line has fewer fields than the embedding column needs.
	RejectMissingField
	// RejectDimensionMismatch means the array decoded but has the wrong length.
	RejectDimensionMismatch
	// RejectIndexFailure means the index refused the vector.
	RejectIndexFailure
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectMalformedVector:
		return "malformed_vector"
	case RejectMissingField:
		return "missing_field"
	case RejectDimensionMismatch:
		return "dimension_mismatch"
	case RejectIndexFailure:
		return "index_failure"
	default:
		return "unknown"
	}
}

// Silent reports whether a rejection for this reason is dropped without a diagnostic.
// Only dimension mismatches are silent.
func (r RejectReason) Silent() bool {
	return r == RejectDimensionMismatch
}

// Outcome is the result of processing one record.
type Outcome struct {
	Key      Key
	Inserted bool
	Reason   RejectReason // RejectNone when Inserted
	Err      error
}

// Inserted returns the outcome of a record stored under key.
func Inserted(key Key) Outcome {
	return Outcome{Key: key, Inserted: true}
}

// Rejected returns the outcome of a record dropped for reason.
func Rejected(key Key, reason RejectReason, err error) Outcome {
	return Outcome{Key: key, Reason: reason, Err: err}
}

// RunReport summarizes one ingestion run.
type RunReport struct {
	RunID        ID
	Input        string
	Output       string
	Config       IndexConfig
	StartedAt    time.Time
	LinesCounted int // lines seen by the precount pass
	LinesRead    int // lines dispatched by the ingestion pass
	Inserted     int

	MalformedVectors  int
	MissingFields     int
	DimensionMismatch int
	IndexFailures     int
	DuplicateKeys     int // keys inserted twice; the later vector wins

	PrecountDuration time.Duration
	IngestDuration   time.Duration
	SaveDuration     time.Duration

	HardwareAcceleration string
	ArtifactBytes        int64
	SaveError            string // empty when the artifact was written
}

// Rejected returns the total number of records that were not inserted.
func (r *RunReport) Rejected() int {
	return r.MalformedVectors + r.MissingFields + r.DimensionMismatch + r.IndexFailures
}

// MinutesToIndex returns whole minutes spent in the ingestion pass.
// Sub-minute runs report 0.
func (r *RunReport) MinutesToIndex() int64 {
	return r.IngestDuration.Milliseconds() / 60_000
}

// Throughput returns inserted records per second over the ingestion pass.
func (r *RunReport) Throughput() float64 {
	if r.IngestDuration <= 0 {
		return 0
	}
	return float64(r.Inserted) / r.IngestDuration.Seconds()
}

// Count returns the counter for reason.
func (r *RunReport) Count(reason RejectReason) int {
	switch reason {
	case RejectMalformedVector:
		return r.MalformedVectors
	case RejectMissingField:
		return r.MissingFields
	case RejectDimensionMismatch:
		return r.DimensionMismatch
	case RejectIndexFailure:
		return r.IndexFailures
	default:
		return 0
	}
}
