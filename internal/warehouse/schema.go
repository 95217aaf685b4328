/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package warehouse

import (
	"fmt"
	"strings"
)

// Field describes one column of a table schema.
type Field struct {
	Name string `yaml:"name" mapstructure:"name"`
	Type string `yaml:"type" mapstructure:"type"`
}

// Schema is an ordered list of fields.
type Schema []Field

// NormalizeType upper-cases a type name so that "string" and "STRING" compare equal.
func NormalizeType(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

// Equal compares two schemas position by position on name and type.
func (s Schema) Equal(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].Name != other[i].Name {
			return false
		}
		if NormalizeType(s[i].Type) != NormalizeType(other[i].Type) {
			return false
		}
	}
	return true
}

func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, f := range s {
		parts[i] = fmt.Sprintf("(%s, %s)", f.Name, NormalizeType(f.Type))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
