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

package run

import (
	"io"
	"os"

	"github.com/drovertools/drover/internal/config"
	"github.com/drovertools/drover/internal/history"
	"github.com/drovertools/drover/internal/log"
	"github.com/drovertools/drover/internal/params"
	"github.com/drovertools/drover/pkg/engine"
	"github.com/spf13/cobra"
)

// options collects everything the run command needs to drive the engine.
type options struct {
	workspace  string
	targets    []string
	deps       bool
	engineFile string
	confFiles  []string
	overrides  []string
	timestamp  int64
	noLogs     bool
}

// NewCommand creates the run command. Task construction goes through the
// host-supplied factory map; the bare drover binary carries none.
func NewCommand(factories engine.Factories) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a workflow",
		Long: `Run executes the tasks producing the requested targets.

Targets are data file codes or workflow names from the engine configuration.
With --deps, upstream targets are resolved first and the plan is ordered by
code; without it, targets run in the order given.

Each run stamps its outputs with a timestamp version and records itself in
the workspace run ledger (see 'drover history').`,
		Example: `  # Example 1: Produce code 4000 and everything upstream of it
  drover run --dir ./data --targets 4000 --deps

  # Example 2: Run a named workflow as stored, no dependency expansion
  drover run --dir ./data --targets nightly

  # Example 3: Pass parameters from INI files and the command line
  drover run --dir ./data --targets 4000 --deps \
    --conf base.ini --params model.seed=42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(cmd, factories, opts)
		},
	}

	cmd.Flags().StringVar(&opts.workspace, "dir", "", "Path to the workspace data directory")
	cmd.Flags().StringSliceVar(&opts.targets, "targets", nil, "Targets to run (codes or workflow names)")
	cmd.Flags().BoolVar(&opts.deps, "deps", false, "Add upstream targets (resolve dependencies)")
	cmd.Flags().StringVar(&opts.engineFile, "engine", "engine.yaml", "Engine configuration file in YAML format")
	cmd.Flags().StringSliceVar(&opts.confFiles, "conf", nil, "Parameter file(s) in INI format")
	cmd.Flags().StringSliceVar(&opts.overrides, "params", nil, "Additional parameters as key=value")
	cmd.Flags().Int64Var(&opts.timestamp, "timestamp", 0, "Run timestamp as YYYYMMDDHHMMSS (default: now)")
	cmd.Flags().BoolVar(&opts.noLogs, "no-logs", false, "Don't write a per-run log file")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("targets")

	return cmd
}

func runTargets(cmd *cobra.Command, factories engine.Factories, opts options) error {
	timestamp := opts.timestamp
	if timestamp == 0 {
		timestamp = engine.NowTimestamp()
	}

	logCfg := log.FromEnv()
	if !opts.noLogs {
		runLog, err := log.OpenRunLog(opts.workspace, timestamp)
		if err != nil {
			return err
		}
		defer runLog.Close()
		logCfg.Output = io.MultiWriter(os.Stderr, runLog)
	}
	logger := log.WithRunContext(log.New(logCfg), timestamp, opts.workspace)

	logger.Info("setting up engine", "engine_config", opts.engineFile)
	eng := engine.New(
		engine.WithTimestamp(timestamp),
		engine.WithLogger(log.WithComponent(logger, "engine")),
	)
	if err := config.Load(opts.engineFile, factories, eng); err != nil {
		return err
	}

	targets, err := eng.ExpandTargets(opts.targets, opts.deps)
	if err != nil {
		return err
	}

	logger.Info("setting up context")
	runContext, err := params.ReadContext(opts.confFiles, opts.overrides)
	if err != nil {
		return err
	}

	ledger, err := history.Open(opts.workspace)
	if err != nil {
		return err
	}
	defer ledger.Close()

	runID, err := ledger.ReportStart(cmd.Context(), timestamp, targets, runContext)
	if err != nil {
		return err
	}

	logger.Info("running the engine", "targets", targets)
	runErr := eng.Run(cmd.Context(), opts.workspace, targets, runContext)
	if err := ledger.ReportFinish(cmd.Context(), runID, runErr == nil); err != nil {
		logger.Warn("run ledger update failed", log.Error(err))
	}
	if runErr != nil {
		logger.Error("run failed", log.Error(runErr))
		return runErr
	}

	logger.Info("run finished")
	return nil
}
