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
	"fmt"
	"strconv"
	"time"
)

// Date/time layouts, selected by the literal length of the value.
const (
	layoutDate        = "2006-01-02"           // 10 chars
	layoutMinute      = "2006-01-02 15:04"     // 16 chars
	layoutSecond      = "2006-01-02 15:04:05"  // 19 chars
	layoutUTC         = "2006-01-02T15:04:05Z" // 20 chars
	lenFractionalTime = 26                     // second-resolution prefix is used
)

// Coerce converts a raw CSV field into the Go value for the given field type.
//
// Malformed integers and floats are forgiven: they coerce to 0 rather than
// failing, matching the leniency expected of messy tabular inputs. Booleans
// accept "y", "Y" and "1" as true. Date/time values must match one of the
// supported layouts or an error is returned.
func Coerce(value string, t FieldType) (interface{}, error) {
	switch t {
	case TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, nil
		}
		return n, nil

	case TypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0.0, nil
		}
		return f, nil

	case TypeBool:
		return value == "y" || value == "Y" || value == "1", nil

	case TypeString:
		return value, nil

	case TypeDateTime:
		return coerceTime(value)
	}

	return nil, fmt.Errorf("unsupported field type %d", t)
}

func coerceTime(value string) (time.Time, error) {
	switch len(value) {
	case len(layoutDate):
		return time.Parse(layoutDate, value)
	case len(layoutMinute):
		return time.Parse(layoutMinute, value)
	case len(layoutSecond):
		return time.Parse(layoutSecond, value)
	case len(layoutUTC):
		return time.Parse(layoutUTC, value)
	case lenFractionalTime:
		return time.Parse(layoutSecond, value[:len(layoutSecond)])
	}
	return time.Time{}, fmt.Errorf("unsupported date/time format: %s", value)
}

// formatField renders a record value back into its CSV text form.
// Booleans are written as 0/1 so they survive a round trip through Coerce.
func formatField(value interface{}, t FieldType) string {
	if t == TypeBool {
		if b, ok := value.(bool); ok {
			if b {
				return "1"
			}
			return "0"
		}
	}
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case time.Time:
		return v.Format(layoutSecond)
	default:
		return fmt.Sprintf("%v", v)
	}
}
