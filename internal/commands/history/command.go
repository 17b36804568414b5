// Copyright 2025 Tom Barlow
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

package history

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/drovertools/drover/internal/cli/format"
	"github.com/drovertools/drover/internal/history"
	"github.com/spf13/cobra"
)

// NewCommand creates the history command.
func NewCommand() *cobra.Command {
	var workspace string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past runs recorded in the workspace ledger",
		Long: `History lists runs recorded in the workspace run ledger, newest first.

Every run is recorded when it starts and marked FINISH or CRASH when it
ends. A run still showing START either is in progress or was killed before
it could report.`,
		Example: `  # Last 50 runs
  drover history --dir ./data

  # Only the most recent five
  drover history --dir ./data --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := history.Open(workspace)
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			isTTY := format.IsTTY()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, format.Header("RUN\tSTATUS\tSTARTED\tTARGETS", isTTY))
			for _, run := range runs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					run.Timestamp,
					format.Status(run.Status, isTTY),
					run.StartedAt.Local().Format(time.DateTime),
					run.Targets)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workspace, "dir", "", "Path to the workspace data directory")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of runs to list")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
