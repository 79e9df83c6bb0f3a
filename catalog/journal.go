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


package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/ingestion"
)

const (
	// DefaultJournalLimit caps how many rejected lines one run journals.
	DefaultJournalLimit = 10_000

	// maxRawBytes caps the stored copy of a rejected line.
	maxRawBytes = 4096
)

// Journal is an ingestion.Monitor that persists loud rejections while the run
// is in progress and records the run report when it finishes.
// Silent rejections are counted in the report but not journaled.
type Journal struct {
	catalog *Catalog
	runID   core.ID
	limit   int
	batch   *badger.WriteBatch

	mu        sync.Mutex
	journaled int
	dropped   int
	err       error
}

var _ ingestion.Monitor = (*Journal)(nil)

// Journal returns a monitor that journals rejections of runID, up to
// DefaultJournalLimit lines.
func (c *Catalog) Journal(runID core.ID) *Journal {
	return c.JournalWithLimit(runID, DefaultJournalLimit)
}

// JournalWithLimit is like Journal with a custom cap. A limit <= 0 disables
// line journaling; the report is still recorded.
func (c *Catalog) JournalWithLimit(runID core.ID, limit int) *Journal {
	return &Journal{
		catalog: c,
		runID:   runID,
		limit:   max(limit, 0),
		batch:   c.backend.NewWriteBatch(),
	}
}

func (j *Journal) Precounted(_ int, _ time.Duration) {}
func (j *Journal) Reserved(_ int)                    {}
func (j *Journal) Inserted(_ core.Key)               {}

// Rejected journals r unless it is silent or the cap has been reached.
func (j *Journal) Rejected(r ingestion.Rejection) {
	if r.Reason.Silent() {
		return
	}

	j.mu.Lock()
	if j.journaled >= j.limit {
		j.dropped++
		j.mu.Unlock()
		return
	}
	j.journaled++
	j.mu.Unlock()

	line := RejectedLine{
		RunID:   j.runID,
		Line:    r.Line,
		Reason:  r.Reason,
		Raw:     r.Raw,
		Elapsed: r.Elapsed,
	}
	if len(line.Raw) > maxRawBytes {
		line.Raw = line.Raw[:maxRawBytes]
	}
	if r.Err != nil {
		line.Err = r.Err.Error()
	}

	if err := j.batch.Set(makeRejectionKey(j.runID, r.Line), MarshalRejectedLine(&line)); err != nil {
		j.setErr(err)
	}
}

// Finished flushes the journaled lines and records report.
func (j *Journal) Finished(report *core.RunReport) {
	if err := j.batch.Flush(); err != nil {
		j.setErr(err)
	}

	if err := j.catalog.RecordRun(context.Background(), report); err != nil {
		j.setErr(err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.catalog.logger.Info("journaled run",
		"run", report.RunID,
		"rejections", j.journaled,
		"dropped", j.dropped)
}

// Close discards unflushed lines of a run that never finished.
func (j *Journal) Close() {
	j.batch.Cancel()
}

// Journaled returns how many lines were journaled and how many were dropped
// over the cap.
func (j *Journal) Journaled() (journaled, dropped int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.journaled, j.dropped
}

// Err returns the errors hit while journaling, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Journal) setErr(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.err = errors.Join(j.err, err)
}
