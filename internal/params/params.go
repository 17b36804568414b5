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

// Package params assembles the run context map handed to tasks.
//
// Parameters come from INI files and from key=value command-line overrides.
// Keys are flattened to "section.key" with the key lowercased, so both
// sources address the same entry regardless of casing; overrides without a
// section land under the INI default section.
package params

import (
	"strings"

	"github.com/drovertools/drover/pkg/engine"
	"github.com/drovertools/drover/pkg/errors"
	"gopkg.in/ini.v1"
)

// ReadContext builds the run context from INI parameter files and
// command-line overrides, applied in that order so overrides win.
// Override tokens without "=" are ignored.
func ReadContext(paramFiles []string, overrides []string) (engine.Context, error) {
	context := engine.Context{}

	for _, path := range paramFiles {
		if path == "" {
			continue
		}
		file, err := ini.Load(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading parameter file %s", path)
		}
		for _, section := range file.Sections() {
			for _, key := range section.Keys() {
				context[section.Name()+"."+strings.ToLower(key.Name())] = key.String()
			}
		}
	}

	for _, override := range overrides {
		key, value, found := strings.Cut(override, "=")
		if !found {
			continue
		}
		section := ini.DefaultSection
		if s, rest, ok := strings.Cut(key, "."); ok {
			section, key = s, rest
		}
		context[section+"."+strings.ToLower(key)] = value
	}

	return context, nil
}
