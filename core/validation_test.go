package core

import (
	"errors"
	"testing"
)

func TestValidateIndexConfig(t *testing.T) {
	valid := IndexConfig{Dimensions: 192, Metric: MetricCos, Scalar: ScalarF32}

	tests := []struct {
		name    string
		mutate  func(*IndexConfig)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*IndexConfig) {},
			wantErr: nil,
		},
		{
			name:    "valid with tuning",
			mutate:  func(c *IndexConfig) { c.Connectivity = 32; c.ExpansionAdd = 200; c.ExpansionSearch = 64 },
			wantErr: nil,
		},
		{
			name:    "zero dimensions",
			mutate:  func(c *IndexConfig) { c.Dimensions = 0 },
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "negative dimensions",
			mutate:  func(c *IndexConfig) { c.Dimensions = -3 },
			wantErr: ErrInvalidDimensions,
		},
		{
			name:    "unset metric",
			mutate:  func(c *IndexConfig) { c.Metric = 0 },
			wantErr: ErrInvalidMetric,
		},
		{
			name:    "unknown scalar",
			mutate:  func(c *IndexConfig) { c.Scalar = 99 },
			wantErr: ErrInvalidScalar,
		},
		{
			name:    "negative connectivity",
			mutate:  func(c *IndexConfig) { c.Connectivity = -1 },
			wantErr: ErrNegativeTuning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateIndexConfig(cfg)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateIndexConfig() unexpected error = %v", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateIndexConfig() expected error %v, got nil", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateIndexConfig() error = %v, want %v", err, tt.wantErr)
			}

			if !errors.Is(err, ErrInvalidIndexConfig) {
				t.Errorf("ValidateIndexConfig() error should wrap ErrInvalidIndexConfig")
			}
		})
	}
}
