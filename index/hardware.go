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

import "golang.org/x/sys/cpu"

// HardwareAcceleration names the widest SIMD extension available on this CPU,
// or "serial" when there is none. It is informational only.
func HardwareAcceleration() string {
	switch {
	case cpu.X86.HasAVX512F:
		return "avx512"
	case cpu.X86.HasAVX2:
		return "avx2"
	case cpu.ARM64.HasSVE2:
		return "sve2"
	case cpu.ARM64.HasASIMD:
		return "neon"
	default:
		return "serial"
	}
}
