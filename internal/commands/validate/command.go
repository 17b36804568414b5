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

package validate

import (
	"io"
	"log/slog"

	"github.com/drovertools/drover/internal/config"
	"github.com/drovertools/drover/pkg/engine"
	"github.com/spf13/cobra"
)

// NewCommand creates the validate command.
func NewCommand(factories engine.Factories) *cobra.Command {
	var engineFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an engine configuration",
		Long: `Validate loads the engine configuration and reports the first problem
found: duplicate codes, output codes claimed twice, ordering violations,
references to unregistered specs, or unknown task factories. Nothing is run.`,
		Example: `  # Validate the default engine.yaml
  drover validate

  # Validate a specific configuration
  drover validate --engine pipelines/nightly.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Registration logging is noise here.
			quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
			eng := engine.New(engine.WithLogger(quiet))
			if err := config.Load(engineFile, factories, eng); err != nil {
				return err
			}
			cmd.Printf("%s: configuration OK (%d specs)\n", engineFile, len(eng.Specs()))
			return nil
		},
	}

	cmd.Flags().StringVar(&engineFile, "engine", "engine.yaml", "Engine configuration file in YAML format")

	return cmd
}
