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

package errors

import "fmt"

// DuplicateSpecError is returned when a file spec is registered under a code
// that already has a spec.
type DuplicateSpecError struct {
	// Code is the data file code that was registered twice
	Code int
}

// Error implements the error interface.
func (e *DuplicateSpecError) Error() string {
	return fmt.Sprintf("file spec %d already registered", e.Code)
}

// DuplicateOutputError is returned when a task declares an output code that
// another registered task already produces. At most one task may produce a
// given code.
type DuplicateOutputError struct {
	// Code is the contested output code
	Code int
}

// Error implements the error interface.
func (e *DuplicateOutputError) Error() string {
	return fmt.Sprintf("task with output %d already registered", e.Code)
}

// CodeOrderingError is returned when a task's highest input code is not
// strictly smaller than its lowest output code. The ordering rule is what
// lets a sorted target list double as an execution order.
type CodeOrderingError struct {
	// MaxInput is the task's highest declared input code
	MaxInput int

	// MinOutput is the task's lowest declared output code
	MinOutput int

	// Task is a human-readable description of the offending task
	Task string
}

// Error implements the error interface.
func (e *CodeOrderingError) Error() string {
	return fmt.Sprintf("input code %d not smaller than output code %d in task %s", e.MaxInput, e.MinOutput, e.Task)
}

// UnknownSpecError is returned when a task declares a code that has no
// registered file spec.
type UnknownSpecError struct {
	// Code is the unregistered data file code
	Code int

	// Task is a human-readable description of the task that referenced it
	Task string
}

// Error implements the error interface.
func (e *UnknownSpecError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("unregistered spec %d referenced in task %s", e.Code, e.Task)
	}
	return fmt.Sprintf("unregistered spec %d", e.Code)
}

// DuplicateWorkflowError is returned when a workflow is registered under a
// name that is already taken.
type DuplicateWorkflowError struct {
	// Name is the contested workflow name
	Name string
}

// Error implements the error interface.
func (e *DuplicateWorkflowError) Error() string {
	return fmt.Sprintf("workflow %q already registered", e.Name)
}

// InvalidTargetError is returned when a requested target is neither a
// registered workflow name nor a valid integer code.
type InvalidTargetError struct {
	// Target is the request token that could not be resolved
	Target string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("target %q is not a workflow name or data file code", e.Target)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *InvalidTargetError) Unwrap() error {
	return e.Cause
}

// UnknownTaskError is returned when a target code has no registered task
// that can produce it.
type UnknownTaskError struct {
	// Code is the target code without a producer
	Code int
}

// Error implements the error interface.
func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("no registered task that can create target %d", e.Code)
}

// NoInputFileError is returned when a read resolution finds no file version
// for a code in the workspace. Inputs are never defaulted.
type NoInputFileError struct {
	// Code is the data file code with no versions on disk
	Code int

	// Workspace is the directory that was scanned
	Workspace string
}

// Error implements the error interface.
func (e *NoInputFileError) Error() string {
	return fmt.Sprintf("no input files for code %04d in %s", e.Code, e.Workspace)
}

// ConfigError represents engine configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "specs[2].schema")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
