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

// Package config loads a declarative engine configuration from YAML and
// populates an engine's spec, task and workflow registries.
//
// Tasks are named in configuration and constructed through an explicit
// factory map supplied by the host program; there is no reflection-based
// class lookup. A minimal document:
//
//	specs:
//	  - code: 1000
//	    name: raw_events
//	    schema:
//	      - {name: id, type: int}
//	      - {name: label, type: str}
//	  - code: 2000
//	    name: scores
//	    flags: [gzipped]
//	tasks:
//	  - score
//	workflows:
//	  nightly: [2000]
package config

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/drovertools/drover/pkg/datafile"
	"github.com/drovertools/drover/pkg/engine"
	"github.com/drovertools/drover/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Document is the top-level engine configuration.
type Document struct {
	// Specs declares the data file formats.
	Specs []SpecConfig `yaml:"specs"`

	// Tasks lists the factory names of the tasks to register, in order.
	Tasks []string `yaml:"tasks"`

	// Workflows maps symbolic names to ordered target code lists.
	Workflows map[string][]int `yaml:"workflows"`
}

// SpecConfig declares one data file format.
type SpecConfig struct {
	Code      int           `yaml:"code"`
	Name      string        `yaml:"name"`
	Extension string        `yaml:"extension"`
	Flags     []string      `yaml:"flags"`
	Delimiter string        `yaml:"delimiter"`
	Schema    []FieldConfig `yaml:"schema"`
}

// FieldConfig declares one column of a tabular spec.
type FieldConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Load reads a YAML configuration file and registers everything it declares
// on the engine. Registration failures surface as the engine's own typed
// errors; document problems surface as ConfigError.
func Load(path string, factories engine.Factories, eng *engine.Engine) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &errors.ConfigError{Reason: "reading engine configuration", Cause: err}
	}
	doc, err := Parse(data)
	if err != nil {
		return err
	}
	return Apply(doc, factories, eng)
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &errors.ConfigError{Reason: "parsing engine configuration", Cause: err}
	}
	return &doc, nil
}

// Apply registers the document's specs, tasks and workflows on the engine,
// in that order, so tasks can reference the specs they declare.
func Apply(doc *Document, factories engine.Factories, eng *engine.Engine) error {
	for i, sc := range doc.Specs {
		spec, err := sc.toSpec()
		if err != nil {
			return &errors.ConfigError{Key: fmt.Sprintf("specs[%d]", i), Reason: err.Error()}
		}
		if err := eng.RegisterFileSpec(spec); err != nil {
			return err
		}
	}

	for _, name := range doc.Tasks {
		factory, ok := factories[name]
		if !ok {
			return &errors.ConfigError{
				Key:    "tasks",
				Reason: fmt.Sprintf("no task factory registered for %q", name),
			}
		}
		if err := eng.RegisterTask(factory()); err != nil {
			return err
		}
	}

	for name, codes := range doc.Workflows {
		if err := eng.RegisterWorkflow(name, codes); err != nil {
			return err
		}
	}
	return nil
}

func (sc SpecConfig) toSpec() (datafile.Spec, error) {
	spec := datafile.Spec{
		Code:      sc.Code,
		Name:      sc.Name,
		Extension: sc.Extension,
	}
	if spec.Extension == "" {
		spec.Extension = "csv"
	}

	for _, flag := range sc.Flags {
		switch flag {
		case "binary":
			spec.Flags |= datafile.FlagBinary
		case "gzipped":
			spec.Flags |= datafile.FlagGzipped
		case "directory":
			spec.Flags |= datafile.FlagDirectory
		default:
			return spec, fmt.Errorf("unknown flag %q", flag)
		}
	}

	if sc.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(sc.Delimiter)
		if size != len(sc.Delimiter) {
			return spec, fmt.Errorf("delimiter %q must be a single character", sc.Delimiter)
		}
		spec.Delimiter = r
	}

	for _, fc := range sc.Schema {
		fieldType, err := parseFieldType(fc.Type)
		if err != nil {
			return spec, err
		}
		spec.Schema = append(spec.Schema, datafile.Field{Name: fc.Name, Type: fieldType})
	}
	return spec, nil
}

func parseFieldType(name string) (datafile.FieldType, error) {
	switch name {
	case "bool":
		return datafile.TypeBool, nil
	case "int":
		return datafile.TypeInt, nil
	case "float":
		return datafile.TypeFloat, nil
	case "str", "string":
		return datafile.TypeString, nil
	case "datetime":
		return datafile.TypeDateTime, nil
	}
	return 0, fmt.Errorf("unknown field type %q", name)
}
