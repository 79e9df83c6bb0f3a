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

import "errors"

var (
	// ErrReservationFailed indicates the requested capacity cannot be reserved.
	ErrReservationFailed = errors.New("capacity reservation failed")

	// ErrDimensionMismatch indicates a vector of the wrong length was added.
	ErrDimensionMismatch = errors.New("vector dimensions do not match index")

	// ErrInsertFailed indicates the graph rejected a vector.
	ErrInsertFailed = errors.New("failed to insert vector")

	// ErrInvalidArtifact indicates a saved index could not be decoded.
	ErrInvalidArtifact = errors.New("invalid index artifact")

	// ErrUnsupportedVersion indicates an artifact written by a newer format version.
	ErrUnsupportedVersion = errors.New("unsupported artifact version")

	// ErrUnknownCompression indicates an unrecognized compression name or code.
	ErrUnknownCompression = errors.New("unknown compression")
)
