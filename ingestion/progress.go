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
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// ProgressTracker logs ingestion progress at most once per interval.
//
// Workers call Increment, which is a single atomic add. Only the dispatcher
// calls Tick, so reporting never makes workers wait on each other.
type ProgressTracker struct {
	logger    *slog.Logger
	total     int
	current   atomic.Int64
	startTime time.Time
	started   atomic.Bool
	sometimes *rate.Sometimes
}

// NewProgressTracker creates a tracker for total items. An interval of zero
// or less disables the periodic reports; Finish still logs.
func NewProgressTracker(logger *slog.Logger, total int, interval time.Duration) *ProgressTracker {
	p := &ProgressTracker{
		logger: logger,
		total:  total,
	}
	if interval > 0 {
		// Skip the report for the very first item.
		p.sometimes = &rate.Sometimes{Interval: interval}
		p.sometimes.Do(func() {})
	}
	return p
}

// Start begins tracking progress. Call it before handing the tracker to workers.
func (p *ProgressTracker) Start() {
	p.startTime = time.Now()
	p.current.Store(0)
	p.started.Store(true)
}

// Increment increases the current progress by delta. Safe for concurrent use.
func (p *ProgressTracker) Increment(delta int) {
	if !p.started.Load() {
		return
	}
	p.current.Add(int64(delta))
}

// Tick logs progress when the interval has passed since the last report.
// It must be called from a single goroutine.
func (p *ProgressTracker) Tick() {
	if !p.started.Load() || p.sometimes == nil {
		return
	}
	p.sometimes.Do(p.report)
}

// Current returns the number of items processed so far.
func (p *ProgressTracker) Current() int {
	return int(p.current.Load())
}

// Finish logs the final progress.
func (p *ProgressTracker) Finish() {
	if !p.started.Load() {
		return
	}
	p.report()
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	if !p.started.Load() {
		return 0
	}
	return time.Since(p.startTime)
}

func (p *ProgressTracker) report() {
	current := p.current.Load()
	elapsed := time.Since(p.startTime)
	perSecond := 0.0
	if elapsed > 0 {
		perSecond = float64(current) / elapsed.Seconds()
	}

	// The precount is only a hint; the second pass can see more lines.
	percentage := 0.0
	if p.total > 0 {
		percentage = min(float64(current)/float64(p.total)*100.0, 100.0)
	}

	p.logger.Info("progress",
		"done", current,
		"total", p.total,
		"percent", percentage,
		"records_per_sec", perSecond)
}
