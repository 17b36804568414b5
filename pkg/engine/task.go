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
	"fmt"

	"github.com/drovertools/drover/pkg/datafile"
)

// Context carries run-scoped parameters between tasks. The same mutable map
// is threaded through every task invocation in a run, in execution order:
// a task may read values any earlier task wrote and may overwrite values for
// later tasks. It is the only inter-task channel besides data files.
type Context map[string]interface{}

// Task describes how to produce output data files from input data files.
//
// Tasks are stateless apart from the codes they declare. The lowest output
// code must be greater than the highest input code, and at most one task
// registered in an engine may produce a given code. Task values must be
// comparable (use pointer receivers): the orchestrator deduplicates by
// instance identity so a task reachable through several of its output codes
// runs once per run.
type Task interface {
	// InputCodes returns the data file codes the task reads.
	// One data file can serve as an input for several tasks.
	InputCodes() []int

	// OutputCodes returns the data file codes the task writes.
	OutputCodes() []int

	// Run executes the task. Inputs and outputs are keyed by code and
	// resolved to concrete file versions before the call.
	Run(ctx context.Context, inputs, outputs map[int]*datafile.File, rc Context) error
}

// Factory constructs a task instance for a name used in configuration.
// Hosts supply a Factories map instead of the reflection-based class lookup
// a dynamic language would use.
type Factory func() Task

// Factories maps configuration task names to their constructors.
type Factories map[string]Factory

// describeTask renders a task's declared codes for error messages and logs.
func describeTask(t Task) string {
	return fmt.Sprintf("%v -> %v", t.InputCodes(), t.OutputCodes())
}
