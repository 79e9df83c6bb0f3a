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


// Package vecload loads CSV files of precomputed embeddings into an
// approximate nearest neighbor index and saves it as a single artifact.
//
// Ingest wires the pieces together from a config.Config: the line source,
// the record parser, the index, the worker pool, and the optional run catalog
// and metrics file. The sub-packages can also be used directly.
package vecload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/catalog"
	"github.com/poiesic/vecload/config"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/index"
	"github.com/poiesic/vecload/ingestion"
	"github.com/poiesic/vecload/record"
	"github.com/poiesic/vecload/source"
)

// Option configures Ingest.
type Option func(*ingestOptions)

type ingestOptions struct {
	logger   *slog.Logger
	monitors []ingestion.Monitor
}

// WithLogger sets the logger passed to every component.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *ingestOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMonitor adds a monitor next to the catalog journal and metrics.
func WithMonitor(monitor ingestion.Monitor) Option {
	return func(o *ingestOptions) {
		if monitor != nil {
			o.monitors = append(o.monitors, monitor)
		}
	}
}

// RunID derives the identifier of a run from its settings and start time.
func RunID(cfg *config.Config, startedAt time.Time) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d|%s|%s", cfg.Fingerprint(), cfg.Output, startedAt.UTC().Format(time.RFC3339Nano)))
}

// Ingest builds the index described by cfg and saves it to cfg.Output.
//
// The report is returned whenever ingestion got as far as the precount, also
// together with an error. Rejected records never make Ingest fail; an
// unreadable input, a failed reservation or a failed save do.
func Ingest(ctx context.Context, cfg *config.Config, opts ...Option) (*core.RunReport, error) {
	o := &ingestOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Info("configuration", "config", cfg)

	storeOpts := cfg.StoreOptions()
	src, err := source.Open(ctx, cfg.Input, storeOpts, source.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	parser, err := record.NewParser(cfg.VectorLength,
		record.WithDelimiter(cfg.Delimiter),
		record.WithColumn(cfg.Column))
	if err != nil {
		return nil, err
	}

	compression, err := cfg.CompressionKind()
	if err != nil {
		return nil, err
	}
	ix, err := index.New(cfg.IndexConfig(),
		index.WithMemoryLimit(cfg.MemoryLimit),
		index.WithCompression(compression),
		index.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	outStore, outName, err := blobstore.Resolve(ctx, cfg.Output, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output: %w", err)
	}

	runID := RunID(cfg, time.Now())
	monitors := o.monitors

	var metrics *ingestion.Metrics
	if cfg.MetricsFile != "" {
		metrics = ingestion.NewMetrics()
		monitors = append(monitors, metrics)
	}

	var journal *catalog.Journal
	if cfg.Catalog != "" {
		cat, err := catalog.Open(cfg.Catalog, false, logger)
		if err != nil {
			return nil, err
		}
		defer cat.Close()

		journal = cat.Journal(runID)
		defer journal.Close()
		monitors = append(monitors, journal)
	}

	pipelineOpts := []ingestion.Option{
		ingestion.WithLogger(logger),
		ingestion.WithMonitor(ingestion.Monitors(monitors...)),
		ingestion.WithProgressInterval(cfg.ProgressInterval.Duration()),
		ingestion.WithOutput(outStore, outName),
		ingestion.WithRunInfo(ingestion.RunInfo{
			ID:     runID,
			Input:  cfg.Input,
			Output: cfg.Output,
			Config: cfg.IndexConfig(),
		}),
	}
	if cfg.Workers > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(cfg.Workers))
	}

	pipeline, err := ingestion.NewPipeline(src, parser, ix, pipelineOpts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	report, runErr := pipeline.Run(ctx)

	// Metrics and the journal are kept when only the save failed.
	if report != nil && (runErr == nil || errors.Is(runErr, ingestion.ErrSaveFailed)) {
		if metrics != nil {
			if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
				logger.Warn("failed to write metrics file", "path", cfg.MetricsFile, "err", err)
			}
		}
		if journal != nil {
			if err := journal.Err(); err != nil {
				logger.Warn("failed to journal run", "run", runID, "err", err)
			}
		}
	}

	return report, runErr
}

// Inspect reads the header of the artifact at location.
func Inspect(ctx context.Context, location string, storeOpts blobstore.Options) (index.Header, error) {
	store, name, err := blobstore.Resolve(ctx, location, storeOpts)
	if err != nil {
		return index.Header{}, err
	}
	rc, err := store.Open(ctx, name)
	if err != nil {
		return index.Header{}, fmt.Errorf("failed to open %s: %w", location, err)
	}
	defer rc.Close()
	return index.ReadHeader(rc)
}

// Verify loads the whole artifact at location and checks it against its header.
func Verify(ctx context.Context, location string, storeOpts blobstore.Options) (*index.Index, error) {
	store, name, err := blobstore.Resolve(ctx, location, storeOpts)
	if err != nil {
		return nil, err
	}
	return index.Load(ctx, store, name)
}
