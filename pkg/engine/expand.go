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
	"sort"
	"strconv"

	"github.com/drovertools/drover/pkg/errors"
)

// ExpandTargets resolves workflow names and optionally adds dependencies.
//
// Each request is either a registered workflow name, which splices in that
// workflow's stored code list, or an integer code. Without dependencies the
// spliced seed list is returned verbatim: request order preserved, no
// deduplication — callers may deliberately repeat a target, and the
// orchestrator deduplicates by task instance at run time.
//
// With dependencies the seed is closed over upstream inputs depth-first and
// the result is returned sorted ascending, which the code-ordering rule
// makes a valid execution order. A dependency discovered during closure is
// allowed to have no producing task (a pure external input already on disk);
// only a requested target without a producer is an error.
func (e *Engine) ExpandTargets(requests []string, dependencies bool) ([]int, error) {
	var seed []int
	for _, request := range requests {
		if codes, ok := e.workflows[request]; ok {
			seed = append(seed, codes...)
			continue
		}
		code, err := strconv.Atoi(request)
		if err != nil {
			return nil, &errors.InvalidTargetError{Target: request, Cause: err}
		}
		seed = append(seed, code)
	}

	if !dependencies {
		return seed, nil
	}
	return e.addDependencies(seed)
}

// addDependencies expands a seed target list into its dependency closure.
//
// The seed is treated as a work stack: the last unprocessed element is taken,
// added to the result, and its producing task's input codes are pushed onto
// the front of the stack unless already collected or pending. Pushing to the
// front biases the expansion toward the most recently discovered chain.
func (e *Engine) addDependencies(seed []int) ([]int, error) {
	queue := make([]int, len(seed))
	copy(queue, seed)

	requested := make(map[int]bool, len(seed))
	for _, code := range seed {
		requested[code] = true
	}

	collected := make(map[int]bool)
	pending := make(map[int]int, len(seed))
	for _, code := range queue {
		pending[code]++
	}

	var closure []int
	for len(queue) > 0 {
		target := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		pending[target]--

		if collected[target] {
			continue
		}
		collected[target] = true
		closure = append(closure, target)

		task, ok := e.tasksByTarget[target]
		if !ok {
			if requested[target] {
				return nil, &errors.UnknownTaskError{Code: target}
			}
			// External input: nothing upstream to expand.
			continue
		}
		for _, dependency := range task.InputCodes() {
			if collected[dependency] || pending[dependency] > 0 {
				continue
			}
			queue = append([]int{dependency}, queue...)
			pending[dependency]++
		}
	}

	sort.Ints(closure)
	return closure, nil
}
