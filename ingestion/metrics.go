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
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "vecload"

// Metrics is a Monitor that records run statistics as Prometheus metrics on
// its own registry. The registry can be written to a node_exporter textfile
// with WriteTextfile once the run has finished.
type Metrics struct {
	registry *prometheus.Registry

	linesCounted    prometheus.Gauge
	reserved        prometheus.Gauge
	inserted        prometheus.Counter
	rejected        *prometheus.CounterVec
	precountSeconds prometheus.Gauge
	ingestSeconds   prometheus.Gauge
	saveSeconds     prometheus.Gauge
	artifactBytes   prometheus.Gauge
	saveFailed      prometheus.Gauge
}

var _ Monitor = (*Metrics)(nil)

// NewMetrics creates the metrics and registers them on a fresh registry.
func NewMetrics() *Metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: metricsNamespace, Name: name, Help: help})
	}

	m := &Metrics{
		registry:     prometheus.NewRegistry(),
		linesCounted: gauge("lines_counted", "Lines seen by the precount pass."),
		reserved:     gauge("reserved_capacity", "Vectors reserved in the index before ingestion."),
		inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_inserted_total",
			Help:      "Records inserted into the index.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "records_rejected_total",
			Help:      "Records rejected, by reason.",
		}, []string{"reason"}),
		precountSeconds: gauge("precount_duration_seconds", "Duration of the precount pass."),
		ingestSeconds:   gauge("ingest_duration_seconds", "Duration of the ingestion pass, up to the barrier."),
		saveSeconds:     gauge("save_duration_seconds", "Duration of the index save."),
		artifactBytes:   gauge("artifact_bytes", "Size of the saved index artifact."),
		saveFailed:      gauge("save_failed", "1 if the index could not be saved."),
	}

	m.registry.MustRegister(
		m.linesCounted,
		m.reserved,
		m.inserted,
		m.rejected,
		m.precountSeconds,
		m.ingestSeconds,
		m.saveSeconds,
		m.artifactBytes,
		m.saveFailed,
	)
	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) Precounted(lines int, elapsed time.Duration) {
	m.linesCounted.Set(float64(lines))
	m.precountSeconds.Set(elapsed.Seconds())
}

func (m *Metrics) Reserved(capacity int) {
	m.reserved.Set(float64(capacity))
}

func (m *Metrics) Inserted(_ core.Key) {
	m.inserted.Inc()
}

func (m *Metrics) Rejected(r Rejection) {
	m.rejected.WithLabelValues(r.Reason.String()).Inc()
}

func (m *Metrics) Finished(report *core.RunReport) {
	m.ingestSeconds.Set(report.IngestDuration.Seconds())
	m.saveSeconds.Set(report.SaveDuration.Seconds())
	m.artifactBytes.Set(float64(report.ArtifactBytes))
	if report.SaveError != "" {
		m.saveFailed.Set(1)
	}
}
