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

	"github.com/dustin/go-humanize"
	"github.com/poiesic/vecload"
	"github.com/urfave/cli/v2"
)

func inspectCommand(c *cli.Context) error {
	location := c.String("index")
	opts, err := storeOptions(c)
	if err != nil {
		return err
	}

	header, err := vecload.Inspect(c.Context, location, opts)
	if err != nil {
		return fmt.Errorf("failed to read index header: %w", err)
	}

	cfg := header.IndexConfig()
	w := c.App.Writer
	fmt.Fprintf(w, "Index:            %s\n", location)
	fmt.Fprintf(w, "Format version:   %d\n", header.Version)
	fmt.Fprintf(w, "Vectors:          %s\n", humanize.Comma(int64(header.Count)))
	fmt.Fprintf(w, "Dimensions:       %d\n", cfg.Dimensions)
	fmt.Fprintf(w, "Metric:           %s\n", cfg.Metric)
	fmt.Fprintf(w, "Scalar:           %s\n", cfg.Scalar)
	fmt.Fprintf(w, "Compression:      %s\n", header.Compression)
	fmt.Fprintf(w, "Connectivity:     %d\n", cfg.Connectivity)
	fmt.Fprintf(w, "Expansion add:    %d\n", cfg.ExpansionAdd)
	fmt.Fprintf(w, "Expansion search: %d\n", cfg.ExpansionSearch)

	if !c.Bool("verify") {
		return nil
	}

	ix, err := vecload.Verify(c.Context, location, opts)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	fmt.Fprintf(w, "Verified:         %s vectors loaded\n", humanize.Comma(int64(ix.Len())))
	return nil
}
