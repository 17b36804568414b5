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

// Package runner is the entry point for host programs embedding drover.
//
// A host registers task factories for the names its engine configuration
// uses and hands control to Execute from its main function:
//
//	func main() {
//	    runner.Execute(runner.Options{
//	        Factories: engine.Factories{
//	            "generate": func() engine.Task { return &GenerateTask{} },
//	            "stats":    func() engine.Task { return &StatsTask{} },
//	        },
//	    })
//	}
//
// The resulting binary carries the full drover command tree: run, validate,
// history and version.
package runner

import (
	"github.com/drovertools/drover/internal/cli"
	"github.com/drovertools/drover/internal/commands/history"
	"github.com/drovertools/drover/internal/commands/run"
	"github.com/drovertools/drover/internal/commands/validate"
	versioncmd "github.com/drovertools/drover/internal/commands/version"
	"github.com/drovertools/drover/pkg/engine"
)

// Options configures the command tree Execute assembles.
type Options struct {
	// Factories maps engine-configuration task names to constructors.
	// A nil map is valid; the binary can then only validate task-less
	// configurations and inspect run history.
	Factories engine.Factories

	// Version, Commit and BuildDate identify the host build.
	Version   string
	Commit    string
	BuildDate string
}

// Execute assembles the drover command tree and runs it, exiting the
// process with a non-zero code on error.
func Execute(opts Options) {
	if opts.Version != "" {
		cli.SetVersion(opts.Version, opts.Commit, opts.BuildDate)
	}

	rootCmd := cli.NewRootCommand()
	rootCmd.AddCommand(run.NewCommand(opts.Factories))
	rootCmd.AddCommand(validate.NewCommand(opts.Factories))
	rootCmd.AddCommand(history.NewCommand())
	rootCmd.AddCommand(versioncmd.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
