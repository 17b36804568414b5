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

// Package engine orchestrates execution of data file tasks.
//
// An Engine owns three registries populated once at setup time: file specs
// by code, tasks by the output codes they produce, and named workflows.
// After setup the engine expands requested targets into an executable plan
// (ExpandTargets), resolves versioned file paths in a workspace directory,
// and drives each needed task exactly once (Run).
//
// Ordering relies on the code-space itself: every task's outputs strictly
// exceed its inputs numerically, so any ascending list of codes is a valid
// execution order without a topological sort.
package engine

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/drovertools/drover/pkg/datafile"
	"github.com/drovertools/drover/pkg/errors"
)

// Engine holds the spec, task and workflow registries and the run timestamp.
// Registries are populated during setup and read-only afterwards; construct
// one engine per run and thread it explicitly through calls.
type Engine struct {
	specs         map[int]datafile.Spec
	tasksByTarget map[int]Task
	workflows     map[string][]int
	timestamp     int64
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimestamp fixes the run timestamp (YYYYMMDDHHMMSS as an integer).
// Without it the engine stamps the current wall-clock time.
func WithTimestamp(ts int64) Option {
	return func(e *Engine) { e.timestamp = ts }
}

// WithLogger sets the structured logger used by the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		specs:         make(map[int]datafile.Spec),
		tasksByTarget: make(map[int]Task),
		workflows:     make(map[string][]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.timestamp == 0 {
		e.timestamp = NowTimestamp()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// NowTimestamp returns the current time as a YYYYMMDDHHMMSS integer, the
// version stamp embedded in produced file names.
func NowTimestamp() int64 {
	ts, _ := strconv.ParseInt(time.Now().Format("20060102150405"), 10, 64)
	return ts
}

// Timestamp returns the engine's run timestamp.
func (e *Engine) Timestamp() int64 { return e.timestamp }

// RegisterFileSpec adds a file spec to the registry.
// Registering two specs with the same code is a configuration error.
func (e *Engine) RegisterFileSpec(spec datafile.Spec) error {
	if _, ok := e.specs[spec.Code]; ok {
		return &errors.DuplicateSpecError{Code: spec.Code}
	}
	e.logger.Debug("registering file spec", "code", spec.Code, "name", spec.Name)
	e.specs[spec.Code] = spec
	return nil
}

// RegisterTask adds a task to the registry under each of its output codes.
//
// Registration fails if another task already produces one of the output
// codes, if the task's highest input code is not strictly below its lowest
// output code, or if any declared code lacks a registered spec. All are
// fatal configuration errors.
func (e *Engine) RegisterTask(task Task) error {
	for _, code := range task.OutputCodes() {
		if _, ok := e.tasksByTarget[code]; ok {
			return &errors.DuplicateOutputError{Code: code}
		}
	}

	inputs := task.InputCodes()
	outputs := task.OutputCodes()
	if len(inputs) > 0 && len(outputs) > 0 {
		maxInput := inputs[0]
		for _, code := range inputs[1:] {
			if code > maxInput {
				maxInput = code
			}
		}
		minOutput := outputs[0]
		for _, code := range outputs[1:] {
			if code < minOutput {
				minOutput = code
			}
		}
		if maxInput >= minOutput {
			return &errors.CodeOrderingError{MaxInput: maxInput, MinOutput: minOutput, Task: describeTask(task)}
		}
	}

	for _, code := range inputs {
		if _, ok := e.specs[code]; !ok {
			return &errors.UnknownSpecError{Code: code, Task: describeTask(task)}
		}
	}
	for _, code := range outputs {
		if _, ok := e.specs[code]; !ok {
			return &errors.UnknownSpecError{Code: code, Task: describeTask(task)}
		}
	}

	e.logger.Debug("registering task", "task", describeTask(task))
	for _, code := range outputs {
		e.tasksByTarget[code] = task
	}
	return nil
}

// RegisterWorkflow stores an ordered target list under a symbolic name.
// The codes are stored verbatim; they are validated against the task
// registry at resolution time, not here.
func (e *Engine) RegisterWorkflow(name string, codes []int) error {
	if _, ok := e.workflows[name]; ok {
		return &errors.DuplicateWorkflowError{Name: name}
	}
	e.logger.Debug("registering workflow", "workflow", name, "targets", codes)
	stored := make([]int, len(codes))
	copy(stored, codes)
	e.workflows[name] = stored
	return nil
}

// Spec returns the registered spec for a code.
func (e *Engine) Spec(code int) (datafile.Spec, bool) {
	spec, ok := e.specs[code]
	return spec, ok
}

// Specs returns the codes of all registered specs, in no particular order.
func (e *Engine) Specs() []int {
	codes := make([]int, 0, len(e.specs))
	for code := range e.specs {
		codes = append(codes, code)
	}
	return codes
}

// Workflow returns the stored target list for a name.
func (e *Engine) Workflow(name string) ([]int, bool) {
	codes, ok := e.workflows[name]
	return codes, ok
}

// task returns the producer of a target code.
func (e *Engine) task(target int) (Task, error) {
	task, ok := e.tasksByTarget[target]
	if !ok {
		return nil, &errors.UnknownTaskError{Code: target}
	}
	return task, nil
}
