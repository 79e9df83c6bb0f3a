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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/vecload/blobstore"
	"github.com/poiesic/vecload/config"
	"github.com/urfave/cli/v2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "vecload",
		Usage:   "Load CSV embeddings into an approximate nearest neighbor index",
		Version: version,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML file with defaults; explicit flags take precedence",
			},
		}, ingestFlags()...),
		Before: setupLogger,
		Action: ingestCommand,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Build an index from a CSV file (the default when no command is given)",
				Action: ingestCommand,
				Flags:  ingestFlags(),
			},
			{
				Name:   "inspect",
				Usage:  "Print the header of an index artifact",
				Action: inspectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index",
						Aliases:  []string{"x"},
						Usage:    "Path or URI of the index artifact",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Load the whole artifact and check it against the header",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "List catalogued runs, or the rejected lines of one run",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "catalog",
						Usage:    "Path to the BadgerDB catalog directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "rejections",
						Usage: "Show the journaled rejections of this run ID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries to show (0 = all)",
						Value: 20,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadConfig returns the --config file over the defaults, or just the defaults.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// storeOptions returns the remote store settings of the --config file.
func storeOptions(c *cli.Context) (blobstore.Options, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return blobstore.Options{}, err
	}
	return cfg.StoreOptions(), nil
}
