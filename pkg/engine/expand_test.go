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
	"testing"

	"github.com/drovertools/drover/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGraph registers the diamond used across expansion tests:
//
//	A: [] -> [1000, 1100]
//	B1: [1000] -> [2000]
//	B2: [1100] -> [2100]
//	D: [1000, 2000] -> [4000]
func buildGraph(t *testing.T, eng *Engine) (a, b1, b2, d *stubTask) {
	t.Helper()
	registerSpecs(t, eng, 1000, 1100, 2000, 2100, 4000)

	a = &stubTask{outputs: []int{1000, 1100}}
	b1 = &stubTask{inputs: []int{1000}, outputs: []int{2000}}
	b2 = &stubTask{inputs: []int{1100}, outputs: []int{2100}}
	d = &stubTask{inputs: []int{1000, 2000}, outputs: []int{4000}}
	for _, task := range []*stubTask{a, b1, b2, d} {
		require.NoError(t, eng.RegisterTask(task))
	}
	return a, b1, b2, d
}

func TestExpandTargetsParsesCodes(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)

	targets, err := eng.ExpandTargets([]string{"4000", "1000"}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{4000, 1000}, targets)
}

func TestExpandTargetsSplicesWorkflows(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)
	require.NoError(t, eng.RegisterWorkflow("nightly", []int{2000, 4000}))

	// The stored list comes back in stored order, unexpanded further.
	targets, err := eng.ExpandTargets([]string{"nightly"}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{2000, 4000}, targets)

	// Workflow splices concatenate with plain codes in request order.
	targets, err = eng.ExpandTargets([]string{"1000", "nightly", "5000"}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000, 4000, 5000}, targets)
}

func TestExpandTargetsRejectsMalformedTarget(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)

	_, err := eng.ExpandTargets([]string{"no-such-workflow"}, false)

	var invalid *errors.InvalidTargetError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "no-such-workflow", invalid.Target)
}

func TestExpandTargetsWithDependenciesClosesAndSorts(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)
	buildGraph(t, eng)

	targets, err := eng.ExpandTargets([]string{"4000"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000, 4000}, targets)
}

func TestExpandTargetsWithDependenciesCoversWholeGraph(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)
	buildGraph(t, eng)

	targets, err := eng.ExpandTargets([]string{"2100", "4000"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 1100, 2000, 2100, 4000}, targets)
}

func TestExpandTargetsSeedDuplicatesSurviveOnlyUnsorted(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)
	buildGraph(t, eng)

	// Without dependencies the seed list is returned verbatim.
	targets, err := eng.ExpandTargets([]string{"4000", "4000"}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{4000, 4000}, targets)

	// With dependencies the closure accumulates set-like.
	targets, err = eng.ExpandTargets([]string{"4000", "4000"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000, 4000}, targets)
}

func TestExpandTargetsFailsForTargetWithoutTask(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)
	registerSpecs(t, eng, 3000)

	// 3000 has a spec but no producing task and is itself a target.
	_, err := eng.ExpandTargets([]string{"3000"}, true)

	var unknown *errors.UnknownTaskError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 3000, unknown.Code)
}

func TestExpandTargetsAllowsExternalInputDependency(t *testing.T) {
	eng := newTestEngine(t, 20200101000000)
	registerSpecs(t, eng, 500, 600)

	// 500 has no producing task; it only ever appears as a dependency,
	// so it is collected but never expanded.
	require.NoError(t, eng.RegisterTask(&stubTask{inputs: []int{500}, outputs: []int{600}}))

	targets, err := eng.ExpandTargets([]string{"600"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{500, 600}, targets)
}
