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
	"fmt"
	"log/slog"
)

// Option configures an Index.
type Option func(*Index) error

// WithMemoryLimit caps the bytes Reserve may commit to. Zero means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(ix *Index) error {
		if bytes < 0 {
			return fmt.Errorf("memory limit cannot be negative, got %d", bytes)
		}
		ix.memoryLimit = bytes
		return nil
	}
}

// WithCompression sets the artifact payload compression used by Save.
func WithCompression(c Compression) Option {
	return func(ix *Index) error {
		if c > CompressionLZ4 {
			return fmt.Errorf("%w: %d", ErrUnknownCompression, c)
		}
		ix.compression = c
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Index) error {
		ix.logger = logger
		return nil
	}
}

// WithGrowth sets how many vectors each slab chunk holds once the reservation
// is used up.
func WithGrowth(vectors int) Option {
	return func(ix *Index) error {
		if vectors <= 0 {
			return fmt.Errorf("growth must be positive, got %d", vectors)
		}
		ix.growth = vectors
		return nil
	}
}
