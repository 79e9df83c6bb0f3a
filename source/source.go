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

// Package source reads newline-delimited text from a blobstore object as a
// restartable sequence of lines.
package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/poiesic/vecload/blobstore"
)

const defaultBufferSize = 1 << 20

// Line is one decoded line of input.
type Line struct {
	// Number is the zero-based ordinal among decoded lines. Lines that fail to
	// decode are skipped and do not consume a number.
	Number int
	Text   string
}

// Source is a reopenable line sequence. Each call to ForEach starts a fresh pass
// from the beginning of the object.
type Source struct {
	store      blobstore.Store
	name       string
	bufferSize int
	logger     *slog.Logger
}

// Option configures a Source.
type Option func(*Source) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) error {
		s.logger = logger
		return nil
	}
}

// WithBufferSize sets the read buffer size in bytes.
func WithBufferSize(size int) Option {
	return func(s *Source) error {
		if size <= 0 {
			return fmt.Errorf("buffer size must be positive, got %d", size)
		}
		s.bufferSize = size
		return nil
	}
}

// New creates a Source over the object name in store.
func New(store blobstore.Store, name string, opts ...Option) (*Source, error) {
	s := &Source{
		store:      store,
		name:       name,
		bufferSize: defaultBufferSize,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "source", "source", name)
	return s, nil
}

// Open resolves location (a path, s3:// or minio:// URI) and creates a Source over it.
func Open(ctx context.Context, location string, storeOpts blobstore.Options, opts ...Option) (*Source, error) {
	store, name, err := blobstore.Resolve(ctx, location, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return New(store, name, opts...)
}

// Name returns the object name.
func (s *Source) Name() string {
	return s.name
}

// ForEach calls fn for every decoded line in order. Iteration stops on the first
// error from fn or on context cancellation, and that error is returned.
//
// A failure to open the object returns ErrOpen. A read error after the first byte
// ends the pass early; it is logged and ForEach returns nil, so lines already
// delivered stand.
func (s *Source) ForEach(ctx context.Context, fn func(Line) error) error {
	rc, err := s.store.Open(ctx, s.name)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrOpen, s.name, err)
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, s.bufferSize)
	number := 0
	skipped := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			s.logger.Warn("read error, ending pass early",
				"lines", number,
				"err", readErr)
			return nil
		}

		if len(raw) > 0 {
			text := trimEOL(raw)
			if utf8.Valid(text) {
				if err := fn(Line{Number: number, Text: string(text)}); err != nil {
					return err
				}
				number++
			} else {
				skipped++
			}
		}

		if readErr != nil {
			break
		}
	}

	if skipped > 0 {
		s.logger.Debug("skipped undecodable lines", "count", skipped)
	}
	return nil
}

// Count makes one full pass and returns the number of decoded lines.
func (s *Source) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.ForEach(ctx, func(Line) error {
		count++
		return nil
	})
	return count, err
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte{'\n'})
	return bytes.TrimSuffix(b, []byte{'\r'})
}
