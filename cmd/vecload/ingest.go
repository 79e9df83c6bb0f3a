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


package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/vecload"
	"github.com/poiesic/vecload/config"
	"github.com/poiesic/vecload/core"
	"github.com/urfave/cli/v2"
)

func ingestFlags() []cli.Flag {
	defaults := config.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Input CSV path or s3:// / minio:// URI",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output index path or URI",
			Value:   defaults.Output,
		},
		&cli.IntFlag{
			Name:  "vector-length",
			Usage: "Number of components in every embedding",
			Value: defaults.VectorLength,
		},
		&cli.StringFlag{
			Name:    "metric",
			Aliases: []string{"m"},
			Usage:   "Similarity metric: cos, anything else selects inner product",
			Value:   defaults.Metric,
		},
		&cli.StringFlag{
			Name:    "scalar",
			Aliases: []string{"s"},
			Usage:   "Stored precision: f16, f64, b1, i8, anything else selects f32",
			Value:   defaults.Scalar,
		},
		&cli.StringFlag{
			Name:  "delimiter",
			Usage: "Field delimiter",
			Value: defaults.Delimiter,
		},
		&cli.IntFlag{
			Name:  "column",
			Usage: "Zero-based index of the embedding field",
			Value: defaults.Column,
		},
		&cli.IntFlag{
			Name:  "connectivity",
			Usage: "Graph neighbors per node (0 = auto)",
		},
		&cli.IntFlag{
			Name:  "expansion-add",
			Usage: "Candidate list size while inserting (0 = auto)",
		},
		&cli.IntFlag{
			Name:  "expansion-search",
			Usage: "Candidate list size recorded for searches (0 = auto)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of parsing and insertion workers (0 = one per CPU)",
		},
		&cli.StringFlag{
			Name:  "compression",
			Usage: "Artifact compression: none, zstd, lz4",
			Value: defaults.Compression,
		},
		&cli.Int64Flag{
			Name:  "memory-limit",
			Usage: "Fail before ingesting if the index would need more bytes than this (0 = unlimited)",
		},
		&cli.StringFlag{
			Name:  "catalog",
			Usage: "Record the run in this BadgerDB catalog directory",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write Prometheus metrics to this textfile after the run",
		},
		&cli.DurationFlag{
			Name:  "progress-interval",
			Usage: "How often to log progress (0 = never)",
			Value: defaults.ProgressInterval.Duration(),
		},
	}
}

// buildConfig layers explicitly set flags over the config file and defaults.
func buildConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	if c.IsSet("input") {
		cfg.Input = c.String("input")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("vector-length") {
		cfg.VectorLength = c.Int("vector-length")
	}
	if c.IsSet("metric") {
		cfg.Metric = c.String("metric")
	}
	if c.IsSet("scalar") {
		cfg.Scalar = c.String("scalar")
	}
	if c.IsSet("delimiter") {
		cfg.Delimiter = c.String("delimiter")
	}
	if c.IsSet("column") {
		cfg.Column = c.Int("column")
	}
	if c.IsSet("connectivity") {
		cfg.Connectivity = c.Int("connectivity")
	}
	if c.IsSet("expansion-add") {
		cfg.ExpansionAdd = c.Int("expansion-add")
	}
	if c.IsSet("expansion-search") {
		cfg.ExpansionSearch = c.Int("expansion-search")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("compression") {
		cfg.Compression = c.String("compression")
	}
	if c.IsSet("memory-limit") {
		cfg.MemoryLimit = c.Int64("memory-limit")
	}
	if c.IsSet("catalog") {
		cfg.Catalog = c.String("catalog")
	}
	if c.IsSet("metrics-file") {
		cfg.MetricsFile = c.String("metrics-file")
	}
	if c.IsSet("progress-interval") {
		cfg.ProgressInterval = config.Duration(c.Duration("progress-interval"))
	}

	return cfg, nil
}

func ingestCommand(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := vecload.Ingest(ctx, cfg)
	if report != nil {
		printSummary(c.App.ErrWriter, report)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, r *core.RunReport) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run:              %d\n", r.RunID)
	fmt.Fprintf(w, "Input:            %s\n", r.Input)
	fmt.Fprintf(w, "Acceleration:     %s\n", r.HardwareAcceleration)
	fmt.Fprintf(w, "Lines counted:    %s (in %s)\n", humanize.Comma(int64(r.LinesCounted)), r.PrecountDuration.Round(time.Millisecond))
	fmt.Fprintf(w, "Inserted:         %s\n", humanize.Comma(int64(r.Inserted)))
	fmt.Fprintf(w, "Rejected:         %s (malformed %d, missing field %d, wrong length %d, index %d)\n",
		humanize.Comma(int64(r.Rejected())),
		r.MalformedVectors, r.MissingFields, r.DimensionMismatch, r.IndexFailures)
	if r.DuplicateKeys > 0 {
		fmt.Fprintf(w, "Replaced keys:    %s\n", humanize.Comma(int64(r.DuplicateKeys)))
	}
	fmt.Fprintf(w, "Minutes to index: %d\n", r.MinutesToIndex())
	fmt.Fprintf(w, "Throughput:       %s vectors/s\n", humanize.CommafWithDigits(r.Throughput(), 1))
	switch {
	case r.SaveError != "":
		fmt.Fprintf(w, "Save failed:      %s\n", r.SaveError)
	case r.ArtifactBytes > 0:
		fmt.Fprintf(w, "Saved:            %s (%s in %s)\n", r.Output, humanize.Bytes(uint64(r.ArtifactBytes)), r.SaveDuration.Round(time.Millisecond))
	}
}
