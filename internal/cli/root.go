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

// Package cli assembles the drover command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/drovertools/drover/pkg/errors"
	"github.com/spf13/cobra"
)

// Version information, set from main via SetVersion.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion sets the version information (called from main).
func SetVersion(v, c, b string) {
	version, commit, buildDate = v, c, b
}

// GetVersion returns version information.
func GetVersion() (string, string, string) {
	return version, commit, buildDate
}

// NewRootCommand creates the root Cobra command for drover.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drover",
		Short: "Drover - batch workflows over versioned data files",
		Long: `Drover runs batch workflows over versioned data files.

An engine configuration declares file specs (integer codes with names,
extensions and optional tabular schemas), the tasks that consume and
produce those codes, and named workflows. Drover expands requested targets
into an execution plan, picks the right file version for every input, and
stamps every output with the run timestamp.

Run 'drover run --help' to see how to execute targets.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	return cmd
}

// ExitCode maps an error to the process exit code: 0 for nil, 2 for
// configuration problems, 130 for an interrupted run, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	var cfgErr *errors.ConfigError
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

// HandleExitError prints an error and exits with a non-zero code.
func HandleExitError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err.Error())
	os.Exit(ExitCode(err))
}
