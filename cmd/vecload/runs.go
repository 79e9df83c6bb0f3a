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
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/poiesic/vecload/catalog"
	"github.com/poiesic/vecload/core"
	"github.com/urfave/cli/v2"
)

const maxRawColumn = 60

func runsCommand(c *cli.Context) error {
	dir := c.String("catalog")
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	cat, err := catalog.Open(dir, false, nil)
	if err != nil {
		return err
	}
	defer cat.Close()

	if c.IsSet("rejections") {
		id, err := strconv.ParseUint(c.String("rejections"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", c.String("rejections"), err)
		}
		return printRejections(c, cat, core.ID(id))
	}

	reports, err := cat.Runs(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(reports) == 0 {
		fmt.Fprintln(c.App.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tINPUT\tINSERTED\tREJECTED\tMINUTES\tSTATUS")
	for _, r := range reports {
		status := "saved"
		if r.SaveError != "" {
			status = "save failed"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.RunID,
			humanize.Time(r.StartedAt),
			r.Input,
			humanize.Comma(int64(r.Inserted)),
			humanize.Comma(int64(r.Rejected())),
			r.MinutesToIndex(),
			status)
	}
	return tw.Flush()
}

func printRejections(c *cli.Context, cat *catalog.Catalog, runID core.ID) error {
	if _, err := cat.Run(c.Context, runID); err != nil {
		return err
	}

	lines, err := cat.Rejections(c.Context, runID, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list rejections: %w", err)
	}
	if len(lines) == 0 {
		fmt.Fprintf(c.App.Writer, "No rejections journaled for run %d.\n", runID)
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LINE\tREASON\tERROR\tRAW")
	for _, l := range lines {
		raw := l.Raw
		if len(raw) > maxRawColumn {
			raw = raw[:maxRawColumn] + "..."
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.Line, l.Reason, l.Err, raw)
	}
	return tw.Flush()
}
