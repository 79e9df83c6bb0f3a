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
	"time"

	"github.com/poiesic/vecload/core"
)

// Rejection describes a record that did not make it into the index.
type Rejection struct {
	Line    int
	Raw     string
	Reason  core.RejectReason
	Err     error
	Elapsed time.Duration // since the start of the ingestion pass
}

// Monitor observes a pipeline run. Inserted and Rejected are called from
// worker goroutines and must be safe for concurrent use.
type Monitor interface {
	Precounted(lines int, elapsed time.Duration)
	Reserved(capacity int)
	Inserted(key core.Key)
	Rejected(r Rejection)
	Finished(report *core.RunReport)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Precounted(_ int, _ time.Duration) {}
func (n *noopMonitor) Reserved(_ int)                    {}
func (n *noopMonitor) Inserted(_ core.Key)               {}
func (n *noopMonitor) Rejected(_ Rejection)              {}
func (n *noopMonitor) Finished(_ *core.RunReport)        {}

// Monitors fans every event out to each of monitors in order.
func Monitors(monitors ...Monitor) Monitor {
	switch len(monitors) {
	case 0:
		return &noopMonitor{}
	case 1:
		return monitors[0]
	}
	return multiMonitor(monitors)
}

type multiMonitor []Monitor

func (m multiMonitor) Precounted(lines int, elapsed time.Duration) {
	for _, mon := range m {
		mon.Precounted(lines, elapsed)
	}
}

func (m multiMonitor) Reserved(capacity int) {
	for _, mon := range m {
		mon.Reserved(capacity)
	}
}

func (m multiMonitor) Inserted(key core.Key) {
	for _, mon := range m {
		mon.Inserted(key)
	}
}

func (m multiMonitor) Rejected(r Rejection) {
	for _, mon := range m {
		mon.Rejected(r)
	}
}

func (m multiMonitor) Finished(report *core.RunReport) {
	for _, mon := range m {
		mon.Finished(report)
	}
}
