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
	"encoding/csv"
	"fmt"
	"io"
)

// Record is one row of a tabular data file, keyed by schema field name.
type Record map[string]interface{}

// Records opens the file and returns a scanner over its typed records.
// The sequence is restartable by calling Records again for a fresh scanner.
//
// When validate is true, the header row must match the schema field names
// exactly, and an empty file without a header is an error. When validate is
// false an empty file yields an empty sequence.
func (f *File) Records(validate bool) (*RecordScanner, error) {
	if !f.spec.IsTabular() {
		return nil, fmt.Errorf("spec %d has no schema", f.spec.Code)
	}
	stream, err := f.Open()
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(stream)
	r.Comma = f.spec.Comma()
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		stream.Close()
		if validate {
			return nil, fmt.Errorf("empty file without header: %s", f.path)
		}
		return &RecordScanner{done: true}, nil
	}
	if err != nil {
		stream.Close()
		return nil, err
	}
	if validate {
		if err := matchHeader(header, f.spec); err != nil {
			stream.Close()
			return nil, err
		}
	}

	return &RecordScanner{reader: r, stream: stream, spec: f.spec}, nil
}

func matchHeader(header []string, spec Spec) error {
	want := spec.Header()
	if len(header) != len(want) {
		return fmt.Errorf("header %v does not match schema %v", header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			return fmt.Errorf("header %v does not match schema %v", header, want)
		}
	}
	return nil
}

// RecordScanner iterates over the typed records of a tabular file.
//
// Usage follows bufio.Scanner:
//
//	records, err := file.Records(true)
//	if err != nil { ... }
//	defer records.Close()
//	for records.Scan() {
//	    rec := records.Record()
//	    ...
//	}
//	if err := records.Err(); err != nil { ... }
type RecordScanner struct {
	reader *csv.Reader
	stream io.Closer
	spec   Spec
	record Record
	err    error
	done   bool
}

// Scan advances to the next record. It returns false at end of input or on
// the first error; Err distinguishes the two.
func (s *RecordScanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}
	row, err := s.reader.Read()
	if err == io.EOF {
		s.done = true
		return false
	}
	if err != nil {
		s.err = err
		return false
	}

	rec := make(Record, len(s.spec.Schema))
	for i, field := range s.spec.Schema {
		if i >= len(row) {
			break
		}
		value, err := Coerce(row[i], field.Type)
		if err != nil {
			s.err = fmt.Errorf("field %s: %w", field.Name, err)
			return false
		}
		rec[field.Name] = value
	}
	s.record = rec
	return true
}

// Record returns the record produced by the last successful Scan.
func (s *RecordScanner) Record() Record { return s.record }

// Err returns the first error encountered while scanning, if any.
func (s *RecordScanner) Err() error { return s.err }

// Close releases the underlying stream. Safe to call on a drained scanner.
func (s *RecordScanner) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	s.stream = nil
	return err
}

// RecordWriter writes typed records to a tabular file, one at a time.
// The header row is written when the writer is created. Close must be called
// for buffered rows and the gzip footer to reach disk.
type RecordWriter struct {
	writer *csv.Writer
	stream io.WriteCloser
	spec   Spec
}

// RecordWriter opens the file for writing and emits the header row.
func (f *File) RecordWriter() (*RecordWriter, error) {
	if !f.spec.IsTabular() {
		return nil, fmt.Errorf("spec %d has no schema", f.spec.Code)
	}
	stream, err := f.Create()
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(stream)
	w.Comma = f.spec.Comma()
	if err := w.Write(f.spec.Header()); err != nil {
		stream.Close()
		return nil, err
	}
	return &RecordWriter{writer: w, stream: stream, spec: f.spec}, nil
}

// Write appends one record, rendering fields in schema order.
// Fields missing from the record are written empty.
func (w *RecordWriter) Write(rec Record) error {
	row := make([]string, len(w.spec.Schema))
	for i, field := range w.spec.Schema {
		row[i] = formatField(rec[field.Name], field.Type)
	}
	return w.writer.Write(row)
}

// Close flushes buffered rows and closes the underlying stream.
func (w *RecordWriter) Close() error {
	w.writer.Flush()
	flushErr := w.writer.Error()
	closeErr := w.stream.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
