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

import "sync"

// slab hands out fixed-size vector slots carved from large float32 chunks so
// inserts do not allocate one slice per vector.
type slab struct {
	mu     sync.Mutex
	dims   int
	growth int
	chunk  []float32
	off    int
}

func newSlab(dims, growth int) *slab {
	return &slab{dims: dims, growth: growth}
}

// free returns the number of unused slots in the current chunk.
func (s *slab) free() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (len(s.chunk) - s.off) / s.dims
}

// reserve makes sure at least n slots are available without further allocation.
func (s *slab) reserve(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if (len(s.chunk)-s.off)/s.dims >= n {
		return
	}
	s.chunk = make([]float32, n*s.dims)
	s.off = 0
}

// next returns a zeroed slot of length dims. Slots are capped so appends
// cannot spill into a neighbour.
func (s *slab) next() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.off+s.dims > len(s.chunk) {
		s.chunk = make([]float32, s.growth*s.dims)
		s.off = 0
	}
	end := s.off + s.dims
	slot := s.chunk[s.off:end:end]
	s.off = end
	return slot
}
