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


// Package catalog records ingestion runs and their rejected lines in BadgerDB.
//
// Every call to the ingestion pipeline produces a core.RunReport. The catalog
// keeps those reports keyed by run ID, and a Journal keeps the lines each run
// rejected loudly, so that a failed or partial load can be examined after the
// process has exited:
//
//	cat, err := catalog.Open("./catalog", false, logger)
//	if err != nil {
//		return err
//	}
//	defer cat.Close()
//
//	journal := cat.Journal(runID)
//	pipeline, err := ingestion.NewPipeline(src, parser, ix, ingestion.WithMonitor(journal))
package catalog
