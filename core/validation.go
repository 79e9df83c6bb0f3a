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

import "fmt"

// ValidateIndexConfig validates an IndexConfig before an index is built.
//
// Validation rules:
//   - Dimensions must be positive
//   - Metric and Scalar must be known kinds
//   - Connectivity and expansion parameters must not be negative (0 = auto)
func ValidateIndexConfig(cfg IndexConfig) error {
	if cfg.Dimensions <= 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidIndexConfig, ErrInvalidDimensions, cfg.Dimensions)
	}

	if err := ValidateMetricKind(cfg.Metric); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIndexConfig, err)
	}

	if err := ValidateScalarKind(cfg.Scalar); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIndexConfig, err)
	}

	if cfg.Connectivity < 0 || cfg.ExpansionAdd < 0 || cfg.ExpansionSearch < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidIndexConfig, ErrNegativeTuning)
	}

	return nil
}

// ValidateMetricKind validates that a MetricKind has a valid value.
func ValidateMetricKind(m MetricKind) error {
	if m != MetricCos && m != MetricIP {
		return fmt.Errorf("%w: value %d", ErrInvalidMetric, m)
	}
	return nil
}

// ValidateScalarKind validates that a ScalarKind has a valid value.
func ValidateScalarKind(s ScalarKind) error {
	if s < ScalarF32 || s > ScalarB1 {
		return fmt.Errorf("%w: value %d", ErrInvalidScalar, s)
	}
	return nil
}
