// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// ParseResponse turns a raw model response into validated issues. It never
// fails: a response with no JSON, with JSON that does not decode, or with a
// top-level value that is not an array yields an empty, non-nil slice.
// Array elements that are not objects are skipped.
func ParseResponse(raw string) []*model.LocalizationIssue {
	empty := make([]*model.LocalizationIssue, 0)

	candidate, ok := ExtractJSON(raw)
	if !ok || candidate == "" {
		return empty
	}

	decoded, err := decodeJSON(candidate)
	if err != nil {
		return empty
	}
	records, ok := decoded.([]any)
	if !ok {
		return empty
	}

	issues := make([]*model.LocalizationIssue, 0, len(records))
	for ordinal, record := range records {
		fields, ok := record.(map[string]any)
		if !ok {
			continue
		}
		if issue, ok := MapIssue(fields, ordinal); ok {
			issues = append(issues, issue)
		}
	}
	return ValidateIssues(issues)
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}
