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

// Package ingestion loads a delimited vector dump into an index.
//
// A Pipeline makes two passes over its source. The first pass only counts
// lines so the sink can reserve capacity up front. The second pass is driven
// by a single dispatcher that numbers each line and submits it to a bounded
// worker pool; workers parse the embedding column and add the vector to the
// shared sink under the line's ordinal. Once every task has finished the
// pipeline saves the sink and reports what happened.
//
// Records that cannot be indexed are rejected without stopping the run.
// Malformed vectors and missing fields are logged with the line number, the
// elapsed time and the raw line; vectors of the wrong length are dropped
// silently. Every outcome is also delivered to the configured Monitor.
//
// Example usage:
//
//	pipeline, err := ingestion.NewPipeline(src, parser, idx,
//		ingestion.WithPoolSize(8),
//		ingestion.WithOutput(store, "index.usearch"),
//	)
//	if err != nil {
//		return err
//	}
//	defer pipeline.Release()
//
//	report, err := pipeline.Run(ctx)
package ingestion
