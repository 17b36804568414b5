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

package datafile

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Mode is the read/write intent a file handle was resolved with.
type Mode int

const (
	// Read handles scan existing versions of a data file.
	Read Mode = iota
	// Write handles produce a fresh version of a data file.
	Write
)

// File is a handle to one resolved version of a data file. It carries the
// concrete path chosen by the version resolver together with the spec and
// intent, and opens scoped streams on demand. Directory-flagged specs cannot
// be opened; tasks work with Path directly for those.
type File struct {
	path string
	mode Mode
	spec Spec
}

// NewFile creates a handle for an already-resolved path.
func NewFile(path string, mode Mode, spec Spec) *File {
	return &File{path: path, mode: mode, spec: spec}
}

// Path returns the concrete filesystem path of this version.
func (f *File) Path() string { return f.path }

// Spec returns the file format specification.
func (f *File) Spec() Spec { return f.spec }

// Mode returns the read/write intent.
func (f *File) Mode() Mode { return f.mode }

// Open opens the file for reading, transparently unpacking gzipped specs.
// The caller owns the returned stream.
func (f *File) Open() (io.ReadCloser, error) {
	if f.spec.IsDirectory() {
		return nil, fmt.Errorf("cannot open directory %s as a stream", f.path)
	}
	if f.mode != Read {
		return nil, fmt.Errorf("file %s was resolved for writing", f.path)
	}
	raw, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	if !f.spec.IsGzipped() {
		return raw, nil
	}
	zr, err := gzip.NewReader(raw)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return &readCloser{Reader: zr, closers: []io.Closer{zr, raw}}, nil
}

// Create opens the file for writing, truncating any file already present
// under the same versioned name and wrapping gzipped specs in a compressor.
// The caller owns the returned stream and must close it for the gzip footer
// to be flushed.
func (f *File) Create() (io.WriteCloser, error) {
	if f.spec.IsDirectory() {
		return nil, fmt.Errorf("cannot open directory %s as a stream", f.path)
	}
	if f.mode != Write {
		return nil, fmt.Errorf("file %s was resolved for reading", f.path)
	}
	raw, err := os.Create(f.path)
	if err != nil {
		return nil, err
	}
	if !f.spec.IsGzipped() {
		return raw, nil
	}
	zw := gzip.NewWriter(raw)
	return &writeCloser{Writer: zw, closers: []io.Closer{zw, raw}}, nil
}

// readCloser closes a chain of wrapped streams in order.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// writeCloser closes a chain of wrapped streams in order.
type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() error {
	var first error
	for _, c := range wc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
