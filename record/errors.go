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

package record

import "errors"

var (
	// ErrMissingField indicates the line has too few delimited fields.
	ErrMissingField = errors.New("missing embedding field")

	// ErrMalformedVector indicates the embedding field is not a JSON array of numbers.
	ErrMalformedVector = errors.New("malformed vector")

	// ErrDimensionMismatch indicates the vector has the wrong number of components.
	ErrDimensionMismatch = errors.New("vector length does not match index dimensions")
)
