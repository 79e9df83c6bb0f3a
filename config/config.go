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


package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/index"
	"github.com/poiesic/vecload/record"
)

var (
	// ErrInvalidConfig indicates a Config failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInputRequired indicates no input location was given.
	ErrInputRequired = errors.New("input is required")
)

// Duration is a time.Duration written as a Go duration string ("10s") in TOML.
type Duration time.Duration

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds everything one ingestion run needs.
type Config struct {
	// Input is a local path or an s3:// or minio:// URI.
	Input string `toml:"input"`

	// Output is where the index artifact is written. Same forms as Input.
	// Default: "index.usearch"
	Output string `toml:"output"`

	// VectorLength is the number of components every embedding must have.
	// Default: 192
	VectorLength int `toml:"vector_length"`

	// Metric is "cos" for cosine; any other value selects inner product.
	Metric string `toml:"metric"`

	// Scalar is the stored precision: f16, f64, b1, i8; anything else is f32.
	Scalar string `toml:"scalar"`

	Delimiter string `toml:"delimiter"`
	Column    int    `toml:"column"`

	// Index tuning. 0 selects the index default.
	Connectivity    int `toml:"connectivity"`
	ExpansionAdd    int `toml:"expansion_add"`
	ExpansionSearch int `toml:"expansion_search"`

	// Workers is the ingestion pool size. 0 uses one worker per CPU.
	Workers int `toml:"workers"`

	// Compression is the artifact body compression: none, zstd or lz4.
	Compression string `toml:"compression"`

	// MemoryLimit caps the reservation in bytes. 0 means unlimited.
	MemoryLimit int64 `toml:"memory_limit"`

	// Catalog is a BadgerDB directory that records runs. Empty disables it.
	Catalog string `toml:"catalog"`

	// MetricsFile receives a Prometheus textfile after the run. Empty disables it.
	MetricsFile string `toml:"metrics_file"`

	// ProgressInterval is how often progress is logged. 0 disables it.
	// Default: 10s
	ProgressInterval Duration `toml:"progress_interval"`

	S3    blobstore.S3Options    `toml:"s3"`
	MinIO blobstore.MinIOOptions `toml:"minio"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithInput sets the input location.
func WithInput(input string) ConfigOption {
	return func(c *Config) {
		c.Input = input
	}
}

// WithOutput sets the artifact location.
func WithOutput(output string) ConfigOption {
	return func(c *Config) {
		c.Output = output
	}
}

// WithVectorLength sets the expected embedding length.
func WithVectorLength(n int) ConfigOption {
	return func(c *Config) {
		c.VectorLength = n
	}
}

// WithMetric sets the similarity metric name.
func WithMetric(metric string) ConfigOption {
	return func(c *Config) {
		c.Metric = metric
	}
}

// WithScalar sets the scalar kind name.
func WithScalar(scalar string) ConfigOption {
	return func(c *Config) {
		c.Scalar = scalar
	}
}

// WithWorkers sets the ingestion pool size.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithCompression sets the artifact compression name.
func WithCompression(name string) ConfigOption {
	return func(c *Config) {
		c.Compression = name
	}
}

// WithCatalog sets the run catalog directory.
func WithCatalog(dir string) ConfigOption {
	return func(c *Config) {
		c.Catalog = dir
	}
}

// WithMetricsFile sets the Prometheus textfile path.
func WithMetricsFile(path string) ConfigOption {
	return func(c *Config) {
		c.MetricsFile = path
	}
}

// WithProgressInterval sets the progress log interval.
func WithProgressInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.ProgressInterval = Duration(interval)
	}
}

// DefaultConfig returns a Config with the defaults of the command line tool.
func DefaultConfig() *Config {
	return &Config{
		Output:           "index.usearch",
		VectorLength:     192,
		Metric:           "cos",
		Scalar:           "f32",
		Delimiter:        record.DefaultDelimiter,
		Column:           record.DefaultColumn,
		Compression:      index.CompressionZstd.String(),
		ProgressInterval: Duration(10 * time.Second),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//		WithInput("s3://embeddings/part-0001.csv"),
//		WithVectorLength(768),
//		WithScalar("f16"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: %s: %s", ErrInvalidConfig, path, strict.String())
		}
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrInputRequired)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output is required", ErrInvalidConfig)
	}
	if c.Delimiter == "" {
		return fmt.Errorf("%w: delimiter must not be empty", ErrInvalidConfig)
	}
	if c.Column < 0 {
		return fmt.Errorf("%w: column must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.MemoryLimit < 0 {
		return fmt.Errorf("%w: memory limit must not be negative", ErrInvalidConfig)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress interval must not be negative", ErrInvalidConfig)
	}
	if _, err := c.CompressionKind(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := blobstore.ParseLocation(c.Input); err != nil {
		return fmt.Errorf("%w: input: %w", ErrInvalidConfig, err)
	}
	if _, err := blobstore.ParseLocation(c.Output); err != nil {
		return fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
	}
	return core.ValidateIndexConfig(c.IndexConfig())
}

// IndexConfig returns the index settings. Metric and scalar names are mapped
// with the lenient core parsers.
func (c *Config) IndexConfig() core.IndexConfig {
	return core.IndexConfig{
		Dimensions:      c.VectorLength,
		Metric:          core.ParseMetricKind(c.Metric),
		Scalar:          core.ParseScalarKind(c.Scalar),
		Connectivity:    c.Connectivity,
		ExpansionAdd:    c.ExpansionAdd,
		ExpansionSearch: c.ExpansionSearch,
	}
}

// CompressionKind parses Compression.
func (c *Config) CompressionKind() (index.Compression, error) {
	return index.ParseCompression(c.Compression)
}

// StoreOptions returns the remote store settings.
func (c *Config) StoreOptions() blobstore.Options {
	return blobstore.Options{S3: c.S3, MinIO: c.MinIO}
}

// Fingerprint identifies the settings that shape the artifact.
// Two configs with the same fingerprint build identical indexes from the same input.
func (c *Config) Fingerprint() core.ID {
	ic := c.IndexConfig()
	return core.IDFromContent(fmt.Sprintf("%s|%d|%s|%s|%s|%d|%d|%d|%d",
		c.Input, ic.Dimensions, ic.Metric, ic.Scalar,
		c.Delimiter, c.Column,
		ic.Connectivity, ic.ExpansionAdd, ic.ExpansionSearch))
}

// LogValue implements slog.LogValuer. Credentials are omitted.
func (c *Config) LogValue() slog.Value {
	ic := c.IndexConfig()
	return slog.GroupValue(
		slog.String("input", c.Input),
		slog.String("output", c.Output),
		slog.Int("vector_length", ic.Dimensions),
		slog.String("metric", ic.Metric.String()),
		slog.String("scalar", ic.Scalar.String()),
		slog.String("delimiter", c.Delimiter),
		slog.Int("column", c.Column),
		slog.Int("connectivity", c.Connectivity),
		slog.Int("expansion_add", c.ExpansionAdd),
		slog.Int("expansion_search", c.ExpansionSearch),
		slog.Int("workers", c.Workers),
		slog.String("compression", c.Compression),
		slog.Int64("memory_limit", c.MemoryLimit),
		slog.String("catalog", c.Catalog),
		slog.String("metrics_file", c.MetricsFile),
		slog.Duration("progress_interval", c.ProgressInterval.Duration()),
	)
}
