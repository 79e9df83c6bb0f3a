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

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/source"
)

// LineSource is a restartable sequence of decoded lines.
type LineSource interface {
	Name() string
	ForEach(ctx context.Context, fn func(source.Line) error) error
	Count(ctx context.Context) (int, error)
}

// Parser turns a line into a vector.
type Parser interface {
	Parse(text string) (core.Vector, error)
}

// Sink is the index being built. Add is called concurrently with distinct keys.
type Sink interface {
	Reserve(capacity int) error
	Add(key core.Key, vec core.Vector) error
	Save(ctx context.Context, store blobstore.Store, name string) (int64, error)
	HardwareAcceleration() string
}

// RunInfo identifies a run in reports.
type RunInfo struct {
	ID     core.ID
	Input  string
	Output string
	Config core.IndexConfig
}

// Pipeline orchestrates the precount, parallel ingestion and save of one index.
type Pipeline struct {
	source   LineSource
	parser   Parser
	sink     Sink
	pool     *ants.Pool
	poolSize int
	monitor  Monitor
	info     RunInfo
	interval time.Duration
	store    blobstore.Store
	name     string
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of workers.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := newPool(size, p.logger)
		if err != nil {
			return err
		}
		p.pool = pool
		p.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMonitor sets the run observer. Use Monitors to combine several.
func WithMonitor(monitor Monitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		p.monitor = monitor
		return nil
	}
}

// WithProgressInterval sets how often progress is logged. Zero disables it.
// Default is 10 seconds.
func WithProgressInterval(interval time.Duration) Option {
	return func(p *Pipeline) error {
		p.interval = interval
		return nil
	}
}

// WithOutput sets where Run saves the sink. Without it Run skips the save.
func WithOutput(store blobstore.Store, name string) Option {
	return func(p *Pipeline) error {
		if store == nil || name == "" {
			return errors.New("output store and name are required")
		}
		p.store = store
		p.name = name
		return nil
	}
}

// WithRunInfo sets the identity recorded in the run report.
func WithRunInfo(info RunInfo) Option {
	return func(p *Pipeline) error {
		p.info = info
		return nil
	}
}

// NewPipeline creates a pipeline that loads src into sink.
func NewPipeline(src LineSource, parser Parser, sink Sink, opts ...Option) (*Pipeline, error) {
	if src == nil {
		return nil, ErrSourceRequired
	}
	if parser == nil {
		return nil, ErrParserRequired
	}
	if sink == nil {
		return nil, ErrSinkRequired
	}

	p := &Pipeline{
		source:   src,
		parser:   parser,
		sink:     sink,
		monitor:  &noopMonitor{},
		interval: 10 * time.Second,
		info:     RunInfo{Input: src.Name()},
		logger:   slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if err := opt(p); err != nil {
			p.Release()
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	if p.pool == nil {
		size := max(runtime.NumCPU(), 1)
		pool, err := newPool(size, p.logger)
		if err != nil {
			return nil, err
		}
		p.pool = pool
		p.poolSize = size
	}

	return p, nil
}

func newPool(size int, logger *slog.Logger) (*ants.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return ants.NewPool(size,
		ants.WithLogger(antsLoggerAdapter{logger: logger}),
		ants.WithPanicHandler(func(v any) {
			logger.Error("worker panic", "panic", v)
		}),
	)
}

// antsLoggerAdapter adapts slog.Logger to the ants.Logger interface.
type antsLoggerAdapter struct {
	logger *slog.Logger
}

func (a antsLoggerAdapter) Printf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...), "source", "ants")
}

// PoolSize returns the number of workers.
func (p *Pipeline) PoolSize() int {
	return p.poolSize
}

// Precount makes one pass over the source and returns the number of decoded lines.
func (p *Pipeline) Precount(ctx context.Context) (int, time.Duration, error) {
	start := time.Now()
	count, err := p.source.Count(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return 0, elapsed, err
	}
	return count, elapsed, nil
}

// Run precounts the source, reserves capacity, ingests every line in
// parallel, waits for all workers and saves the sink.
//
// Precount, reservation and dispatch failures are fatal and returned without a
// save. A save failure is returned wrapped in ErrSaveFailed together with the
// complete report. Per-record rejections never fail the run.
func (p *Pipeline) Run(ctx context.Context) (*core.RunReport, error) {
	report := &core.RunReport{
		RunID:                p.info.ID,
		Input:                p.info.Input,
		Output:               p.info.Output,
		Config:               p.info.Config,
		StartedAt:            time.Now().UTC(),
		HardwareAcceleration: p.sink.HardwareAcceleration(),
	}
	p.logger.Info("hardware acceleration", "simd", report.HardwareAcceleration)

	count, precountElapsed, err := p.Precount(ctx)
	report.PrecountDuration = precountElapsed
	if err != nil {
		return report, err
	}
	report.LinesCounted = count
	p.monitor.Precounted(count, precountElapsed)
	p.logger.Info("precount complete", "lines", count, "elapsed_ms", precountElapsed.Milliseconds())

	if err := p.sink.Reserve(count); err != nil {
		return report, fmt.Errorf("%w: %d vectors: %w", ErrReservationFailed, count, err)
	}
	p.monitor.Reserved(count)

	dispatched, ingestElapsed, t, err := p.ingest(ctx, count)
	report.LinesRead = dispatched
	report.IngestDuration = ingestElapsed
	report.Inserted = int(t.inserted.Load())
	report.MalformedVectors = t.count(core.RejectMalformedVector)
	report.MissingFields = t.count(core.RejectMissingField)
	report.DimensionMismatch = t.count(core.RejectDimensionMismatch)
	report.IndexFailures = t.count(core.RejectIndexFailure)
	if d, ok := p.sink.(interface{ Duplicates() int }); ok {
		report.DuplicateKeys = d.Duplicates()
	}
	if err != nil {
		return report, err
	}

	p.logger.Info("ingestion complete",
		"vectors", report.Inserted,
		"rejected", report.Rejected(),
		"minutes", report.MinutesToIndex(),
		"elapsed_ms", ingestElapsed.Milliseconds())

	var saveErr error
	if p.store != nil {
		saveErr = p.save(ctx, report)
	}

	p.monitor.Finished(report)
	return report, saveErr
}

// ingest runs the second pass. A single dispatcher numbers lines and submits
// them to the pool; Submit blocks while every worker is busy.
func (p *Pipeline) ingest(ctx context.Context, total int) (int, time.Duration, *tally, error) {
	t := &tally{}
	progress := NewProgressTracker(p.logger, total, p.interval)
	progress.Start()

	start := time.Now()
	proc := &processor{
		parser:   p.parser,
		sink:     p.sink,
		monitor:  p.monitor,
		progress: progress,
		tally:    t,
		start:    start,
		logger:   p.logger,
	}

	var wg sync.WaitGroup
	dispatched := 0
	err := p.source.ForEach(ctx, func(line source.Line) error {
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			proc.process(line)
		}); err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit line %d: %w", line.Number, err)
		}
		dispatched++
		progress.Tick()
		return nil
	})

	// Barrier: every submitted task has finished before anything reads the sink.
	wg.Wait()
	elapsed := time.Since(start)
	progress.Finish()

	return dispatched, elapsed, t, err
}

func (p *Pipeline) save(ctx context.Context, report *core.RunReport) error {
	start := time.Now()
	n, err := p.sink.Save(ctx, p.store, p.name)
	report.SaveDuration = time.Since(start)
	if err != nil {
		report.SaveError = err.Error()
		p.logger.Error("failed to save index", "output", p.name, "err", err)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	report.ArtifactBytes = n
	p.logger.Info("saved index",
		"output", p.name,
		"bytes", n,
		"elapsed_ms", report.SaveDuration.Milliseconds())
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
