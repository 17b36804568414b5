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

package engine

import (
	"context"

	"github.com/drovertools/drover/pkg/datafile"
	"github.com/drovertools/drover/pkg/errors"
)

// Run executes the tasks producing the given targets, in the given order.
//
// The target order is caller-supplied, typically the output of
// ExpandTargets. Each task instance runs at most once per call even when it
// appears behind several targets. Inputs are resolved to concrete file
// versions before a task starts; outputs are stamped with the run timestamp.
//
// The run context map rc is shared across all task invocations with no
// isolation. Any error a task returns propagates unmodified: no retry, no
// partial-output cleanup. Outputs written before a failure stay on disk,
// which is safe under append-only versioning.
func (e *Engine) Run(ctx context.Context, workspace string, targets []int, rc Context) error {
	if rc == nil {
		rc = Context{}
	}
	e.logger.Debug("run context assembled", "items", len(rc))

	executed := make(map[Task]struct{})
	for _, target := range targets {
		task, ok := e.tasksByTarget[target]
		if !ok {
			return &errors.UnknownTaskError{Code: target}
		}
		if _, done := executed[task]; done {
			continue
		}

		e.logger.Info("building target",
			"code", target,
			"name", e.specs[target].Name,
			"task", describeTask(task))

		inputs := make(map[int]*datafile.File)
		for _, code := range task.InputCodes() {
			file, err := e.Resolve(workspace, code, datafile.Read)
			if err != nil {
				return err
			}
			inputs[code] = file
			e.logger.Debug("input resolved", "code", code, "path", file.Path())
		}

		outputs := make(map[int]*datafile.File)
		for _, code := range task.OutputCodes() {
			file, err := e.Resolve(workspace, code, datafile.Write)
			if err != nil {
				return err
			}
			outputs[code] = file
			e.logger.Debug("output resolved", "code", code, "path", file.Path())
		}

		if err := task.Run(ctx, inputs, outputs, rc); err != nil {
			return err
		}
		executed[task] = struct{}{}
	}
	return nil
}
