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
	"math"

	"github.com/poiesic/vecload/core"
	"github.com/x448/float16"
)

// quantize writes src into dst at the precision of scalar. dst and src must
// have the same length.
func quantize(dst []float32, src core.Vector, scalar core.ScalarKind, metric core.MetricKind) {
	switch scalar {
	case core.ScalarF16:
		for i, v := range src {
			dst[i] = float16.Fromfloat32(v).Float32()
		}
	case core.ScalarI8:
		copy(dst, src)
		if metric == core.MetricCos {
			normalize(dst)
		}
		for i, v := range dst {
			q := math.Round(float64(v) * 127)
			q = math.Max(-127, math.Min(127, q))
			dst[i] = float32(q) / 127
		}
	case core.ScalarB1:
		for i, v := range src {
			if v > 0 {
				dst[i] = 1
			} else {
				dst[i] = -1
			}
		}
	default:
		// f64 components are stored as float32, the graph's native precision.
		copy(dst, src)
	}
}

// normalize scales v to unit length in place. Zero vectors are left as is.
func normalize(v []float32) {
	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))
	if magnitude == 0 {
		return
	}
	for i := range v {
		v[i] /= magnitude
	}
}
