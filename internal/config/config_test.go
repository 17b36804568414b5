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

package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/drovertools/drover/pkg/datafile"
	"github.com/drovertools/drover/pkg/engine"
	"github.com/drovertools/drover/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
specs:
  - code: 1000
    name: raw_events
    schema:
      - {name: id, type: int}
      - {name: label, type: str}
      - {name: seen, type: datetime}
  - code: 2000
    name: scores
    extension: csv.gz
    flags: [gzipped]
    delimiter: ";"
tasks:
  - score
workflows:
  nightly: [2000]
`

type configuredTask struct {
	inputs  []int
	outputs []int
}

func (t *configuredTask) InputCodes() []int  { return t.inputs }
func (t *configuredTask) OutputCodes() []int { return t.outputs }
func (t *configuredTask) Run(context.Context, map[int]*datafile.File, map[int]*datafile.File, engine.Context) error {
	return nil
}

func newEngine() *engine.Engine {
	return engine.New(
		engine.WithTimestamp(20200101000000),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func scoreFactories() engine.Factories {
	return engine.Factories{
		"score": func() engine.Task {
			return &configuredTask{inputs: []int{1000}, outputs: []int{2000}}
		},
	}
}

func TestLoadRegistersEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	eng := newEngine()
	require.NoError(t, Load(path, scoreFactories(), eng))

	spec, ok := eng.Spec(1000)
	require.True(t, ok)
	assert.Equal(t, "raw_events", spec.Name)
	assert.Equal(t, "csv", spec.Extension) // defaulted
	require.Len(t, spec.Schema, 3)
	assert.Equal(t, datafile.TypeInt, spec.Schema[0].Type)
	assert.Equal(t, datafile.TypeString, spec.Schema[1].Type)
	assert.Equal(t, datafile.TypeDateTime, spec.Schema[2].Type)

	spec, ok = eng.Spec(2000)
	require.True(t, ok)
	assert.True(t, spec.IsGzipped())
	assert.Equal(t, ';', spec.Comma())

	codes, ok := eng.Workflow("nightly")
	require.True(t, ok)
	assert.Equal(t, []int{2000}, codes)

	// The task came through the factory and was registered for its output.
	targets, err := eng.ExpandTargets([]string{"2000"}, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1000, 2000}, targets)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil, newEngine())

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("specs: [unclosed"))

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestApplyRejectsUnknownFactory(t *testing.T) {
	doc, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	err = Apply(doc, engine.Factories{}, newEngine())

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "score")
}

func TestApplyRejectsUnknownFlag(t *testing.T) {
	doc, err := Parse([]byte("specs:\n  - code: 1\n    name: x\n    flags: [zipped]\n"))
	require.NoError(t, err)

	err = Apply(doc, nil, newEngine())

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "zipped")
}

func TestApplyRejectsMultiCharacterDelimiter(t *testing.T) {
	doc, err := Parse([]byte("specs:\n  - code: 1\n    name: x\n    delimiter: '::'\n"))
	require.NoError(t, err)

	err = Apply(doc, nil, newEngine())

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestApplyRejectsUnknownFieldType(t *testing.T) {
	doc, err := Parse([]byte("specs:\n  - code: 1\n    name: x\n    schema:\n      - {name: f, type: decimal}\n"))
	require.NoError(t, err)

	err = Apply(doc, nil, newEngine())

	var cfgErr *errors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "decimal")
}

func TestApplySurfacesEngineErrors(t *testing.T) {
	doc, err := Parse([]byte("specs:\n  - {code: 1, name: a}\n  - {code: 1, name: b}\n"))
	require.NoError(t, err)

	err = Apply(doc, nil, newEngine())

	var dup *errors.DuplicateSpecError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.Code)
}
