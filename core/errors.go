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

import "errors"

// Domain validation errors
var (
	// ErrInvalidIndexConfig indicates an IndexConfig failed validation.
	ErrInvalidIndexConfig = errors.New("invalid index config")

	// ErrInvalidDimensions indicates a non-positive vector length.
	ErrInvalidDimensions = errors.New("dimensions must be positive")

	// ErrInvalidMetric indicates an unknown MetricKind value.
	ErrInvalidMetric = errors.New("invalid metric kind")

	// ErrInvalidScalar indicates an unknown ScalarKind value.
	ErrInvalidScalar = errors.New("invalid scalar kind")

	// ErrNegativeTuning indicates a negative connectivity or expansion parameter.
	ErrNegativeTuning = errors.New("tuning parameters cannot be negative")
)
