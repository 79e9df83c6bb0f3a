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

	"github.com/poiesic/vecload/core"
	"github.com/poiesic/vecload/record"
	"github.com/poiesic/vecload/source"
)

// tally holds the per-run outcome counters. Workers update it concurrently;
// it is read only after the barrier.
type tally struct {
	inserted atomic.Int64
	rejected [core.RejectIndexFailure + 1]atomic.Int64
}

func (t *tally) count(reason core.RejectReason) int {
	return int(t.rejected[reason].Load())
}

// processor handles one record: parse, add to the sink, classify the outcome.
type processor struct {
	parser   Parser
	sink     Sink
	monitor  Monitor
	progress *ProgressTracker
	tally    *tally
	start    time.Time
	logger   *slog.Logger
}

func (p *processor) process(line source.Line) core.Outcome {
	key := core.Key(line.Number)

	var outcome core.Outcome
	vec, err := p.parser.Parse(line.Text)
	switch {
	case err != nil:
		outcome = core.Rejected(key, record.Classify(err), err)
	default:
		if err := p.sink.Add(key, vec); err != nil {
			outcome = core.Rejected(key, core.RejectIndexFailure, err)
		} else {
			outcome = core.Inserted(key)
		}
	}

	p.record(line, outcome)
	return outcome
}

func (p *processor) record(line source.Line, outcome core.Outcome) {
	p.progress.Increment(1)

	if outcome.Inserted {
		p.tally.inserted.Add(1)
		p.monitor.Inserted(outcome.Key)
		return
	}

	p.tally.rejected[outcome.Reason].Add(1)
	rejection := Rejection{
		Line:    line.Number,
		Raw:     line.Text,
		Reason:  outcome.Reason,
		Err:     outcome.Err,
		Elapsed: time.Since(p.start),
	}
	if !outcome.Reason.Silent() {
		p.logger.Warn("rejected record",
			"line", rejection.Line,
			"elapsed_ms", rejection.Elapsed.Milliseconds(),
			"reason", rejection.Reason.String(),
			"raw", rejection.Raw,
			"err", rejection.Err)
	}
	p.monitor.Rejected(rejection)
}
