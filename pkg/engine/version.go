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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/drovertools/drover/pkg/datafile"
	"github.com/drovertools/drover/pkg/errors"
)

// Resolve computes the concrete file version a task should use for a code
// and returns a handle bound to that path.
//
// Writes always stamp the engine's run timestamp; the directory is never
// inspected, so producing a version is append-only and cannot collide with
// a concurrent run using a different timestamp.
//
// Reads scan the workspace for versions of the code. A file stamped with
// exactly the run timestamp wins, so parallel runs sharing a workspace bind
// to their own freshly produced intermediates; otherwise the numerically
// greatest version is used. No versions at all is a hard error — inputs are
// never defaulted.
func (e *Engine) Resolve(workspace string, code int, mode datafile.Mode) (*datafile.File, error) {
	spec, ok := e.specs[code]
	if !ok {
		return nil, &errors.UnknownSpecError{Code: code}
	}

	version := e.timestamp
	if mode == datafile.Read {
		var err error
		version, err = e.latestVersion(workspace, spec)
		if err != nil {
			return nil, err
		}
	}

	path := filepath.Join(workspace, versionedName(spec, version))
	return datafile.NewFile(path, mode, spec), nil
}

// versionedName renders the filename grammar for one version of a spec:
// d<code, zero-padded to 4 digits>_<name>_v<version>.<extension>.
// Directory-flagged specs use the same stem with no extension.
func versionedName(spec datafile.Spec, version int64) string {
	if spec.IsDirectory() {
		return fmt.Sprintf("d%04d_%s_v%d", spec.Code, spec.Name, version)
	}
	return fmt.Sprintf("d%04d_%s_v%d.%s", spec.Code, spec.Name, version, spec.Extension)
}

// versionPattern matches filenames for one spec, capturing the version.
func versionPattern(spec datafile.Spec) *regexp.Regexp {
	suffix := ""
	if !spec.IsDirectory() {
		suffix = regexp.QuoteMeta("." + spec.Extension)
	}
	return regexp.MustCompile(
		fmt.Sprintf(`^d%04d_%s_v(\d+)%s$`, spec.Code, regexp.QuoteMeta(spec.Name), suffix))
}

func (e *Engine) latestVersion(workspace string, spec datafile.Spec) (int64, error) {
	entries, err := os.ReadDir(workspace)
	if err != nil {
		return 0, errors.Wrapf(err, "scanning workspace %s", workspace)
	}

	pattern := versionPattern(spec)
	var found bool
	var latest int64
	for _, entry := range entries {
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		version, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		if version == e.timestamp {
			// A sibling of this very run produced it; prefer it over
			// anything newer from another run.
			return version, nil
		}
		if !found || version > latest {
			latest = version
		}
		found = true
	}

	if !found {
		return 0, &errors.NoInputFileError{Code: spec.Code, Workspace: workspace}
	}
	return latest, nil
}
