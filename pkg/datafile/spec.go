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

// Package datafile defines data file specifications and typed file handles.
//
// A Spec describes the format of one kind of data file, addressed everywhere
// by its integer code. Specs with a schema are tabular CSV files whose
// records are read and written one at a time with per-field type coercion;
// specs without a schema are opaque streams.
package datafile

// Flag marks format properties of a data file.
type Flag uint8

const (
	// FlagBinary marks the file contents as binary. For gzipped files this
	// describes the unpacked contents.
	FlagBinary Flag = 1 << iota

	// FlagGzipped marks the file as gzip-compressed on disk.
	FlagGzipped

	// FlagDirectory marks the "file" as a directory. Binary and gzipped
	// flags are ignored for directories.
	FlagDirectory
)

// FieldType identifies the coercion applied to a tabular field.
type FieldType int

const (
	// TypeString passes the field through unchanged.
	TypeString FieldType = iota
	// TypeBool parses "y", "Y" and "1" as true, everything else as false.
	TypeBool
	// TypeInt parses a base-10 integer, substituting 0 for malformed values.
	TypeInt
	// TypeFloat parses a float, substituting 0.0 for malformed values.
	TypeFloat
	// TypeDateTime parses one of the supported date/time text layouts.
	TypeDateTime
)

// Field is one column of a tabular spec. Order within the schema is
// significant and must match the file's column order.
type Field struct {
	Name string
	Type FieldType
}

// Spec is the declared format of a data file kind. Identity is Code; Name
// and Extension participate in the physical filename. Specs are immutable
// once registered.
type Spec struct {
	// Code is the integer identifier, unique across the engine. It doubles
	// as the ordering key for the whole task graph.
	Code int

	// Name is the human-readable part of the filename stem.
	Name string

	// Extension is the filename extension, without the dot.
	Extension string

	// Flags mark binary, gzipped or directory files.
	Flags Flag

	// Schema lists the columns of a tabular file in order. A nil schema
	// means a generic, non-tabular file.
	Schema []Field

	// Delimiter is the CSV field separator. Zero means comma.
	Delimiter rune
}

// IsBinary reports whether the file contents are binary.
func (s Spec) IsBinary() bool { return s.Flags&FlagBinary != 0 }

// IsGzipped reports whether the file is gzip-compressed on disk.
func (s Spec) IsGzipped() bool { return s.Flags&FlagGzipped != 0 }

// IsDirectory reports whether the spec describes a directory.
func (s Spec) IsDirectory() bool { return s.Flags&FlagDirectory != 0 }

// IsTabular reports whether the spec carries a schema and therefore supports
// record-level reads and writes.
func (s Spec) IsTabular() bool { return len(s.Schema) > 0 }

// Header returns the schema field names in order.
func (s Spec) Header() []string {
	header := make([]string, len(s.Schema))
	for i, f := range s.Schema {
		header[i] = f.Name
	}
	return header
}

// Comma returns the effective CSV delimiter.
func (s Spec) Comma() rune {
	if s.Delimiter == 0 {
		return ','
	}
	return s.Delimiter
}
