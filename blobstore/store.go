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

package blobstore

import (
	"context"
	"io"
)

// Store is a named collection of immutable objects.
type Store interface {
	// Open returns a new reader positioned at the start of the object.
	// Every call starts an independent read.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// Create starts writing a new object. The object becomes visible only when
	// Close returns nil.
	Create(ctx context.Context, name string) (WritableBlob, error)
}

// WritableBlob is an object being written.
type WritableBlob interface {
	io.Writer
	// Close commits the object.
	Close() error
	// Abort discards the object. Calling Close after Abort returns ErrAborted.
	Abort() error
}

// countingWriter tracks bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Counted wraps a WritableBlob so the caller can read back how many bytes went
// through it.
type Counted struct {
	WritableBlob
	cw *countingWriter
}

// NewCounted wraps blob.
func NewCounted(blob WritableBlob) *Counted {
	return &Counted{WritableBlob: blob, cw: &countingWriter{w: blob}}
}

func (c *Counted) Write(p []byte) (int, error) {
	return c.cw.Write(p)
}

// Bytes returns the number of bytes written so far.
func (c *Counted) Bytes() int64 {
	return c.cw.n
}
