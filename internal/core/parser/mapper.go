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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// Field names of an issue record as produced by the model.
const (
	FieldID               = "id"
	FieldType             = "type"
	FieldSeverity         = "severity"
	FieldDescription      = "description"
	FieldLocation         = "location"
	FieldLanguage         = "language"
	FieldSuggestion       = "suggestion"
	FieldTimestamp        = "timestamp"
	FieldFrameURL         = "frame_url"
	FieldOriginalText     = "original_text"
	FieldAlternativeTexts = "alternative_texts"
)

var requiredFields = []string{
	FieldType,
	FieldSeverity,
	FieldDescription,
	FieldLocation,
	FieldLanguage,
	FieldSuggestion,
}

// MapIssue converts one decoded record into a LocalizationIssue. ordinal is
// the zero-based position of the record in its batch and is used to
// synthesize an id when the record has none.
//
// A record is rejected (ok == false) when a required field is missing or
// empty, when type or severity is not an exact enum member, when a coordinate
// cannot be read as a number, or when an optional field has the wrong type.
// Rejection never affects other records.
func MapIssue(item map[string]any, ordinal int) (issue *model.LocalizationIssue, ok bool) {
	for _, f := range requiredFields {
		if !truthy(item[f]) {
			return nil, false
		}
	}

	typeName, isString := item[FieldType].(string)
	if !isString {
		return nil, false
	}
	issueType, valid := model.ParseIssueType(typeName)
	if !valid {
		return nil, false
	}
	severityName, isString := item[FieldSeverity].(string)
	if !isString {
		return nil, false
	}
	severity, valid := model.ParseIssueSeverity(severityName)
	if !valid {
		return nil, false
	}

	description, isString := item[FieldDescription].(string)
	if !isString {
		return nil, false
	}
	language, isString := item[FieldLanguage].(string)
	if !isString {
		return nil, false
	}
	suggestion, isString := item[FieldSuggestion].(string)
	if !isString {
		return nil, false
	}

	location, err := toBoundingBox(item[FieldLocation])
	if err != nil {
		return nil, false
	}

	issue = &model.LocalizationIssue{
		ID:          fmt.Sprintf("issue-%d", ordinal+1),
		Type:        issueType,
		Severity:    severity,
		Description: description,
		Location:    location,
		Language:    language,
		Suggestion:  suggestion,
	}
	if id, present := item[FieldID]; present && truthy(id) {
		if issue.ID, err = toID(id); err != nil {
			return nil, false
		}
	}

	if issue.Timestamp, err = optionalString(item, FieldTimestamp); err != nil {
		return nil, false
	}
	if issue.FrameURL, err = optionalString(item, FieldFrameURL); err != nil {
		return nil, false
	}
	if issue.OriginalText, err = optionalString(item, FieldOriginalText); err != nil {
		return nil, false
	}
	if issue.AlternativeTexts, err = optionalStrings(item, FieldAlternativeTexts); err != nil {
		return nil, false
	}
	return issue, true
}

// truthy follows the usual dynamic-language notion of truth for decoded JSON:
// empty strings, empty objects and arrays, zero and null are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}

func toBoundingBox(v any) (model.BoundingBox, error) {
	loc, ok := v.(map[string]any)
	if !ok {
		return model.BoundingBox{}, fmt.Errorf("location is %T, not an object", v)
	}
	var box model.BoundingBox
	for _, c := range []struct {
		key string
		dst *float64
	}{
		{"x1", &box.X1},
		{"y1", &box.Y1},
		{"x2", &box.X2},
		{"y2", &box.Y2},
	} {
		raw, present := loc[c.key]
		if !present {
			continue
		}
		f, err := toFloat(raw)
		if err != nil {
			return model.BoundingBox{}, fmt.Errorf("coordinate %s: %w", c.key, err)
		}
		*c.dst = f
	}
	return box, nil
}

// toFloat accepts JSON numbers, numeric strings and booleans.
func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		return t.Float64()
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	}
	return 0, fmt.Errorf("cannot convert %T to a number", v)
}

func toID(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(t), nil
	}
	return "", fmt.Errorf("id of type %T", v)
}

func optionalString(item map[string]any, key string) (*string, error) {
	raw, present := item[key]
	if !present || raw == nil {
		return nil, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%s is %T, not a string", key, raw)
	}
	return &s, nil
}

func optionalStrings(item map[string]any, key string) ([]string, error) {
	raw, present := item[key]
	if !present || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is %T, not a list", key, raw)
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("%s holds %T", key, e)
		}
		out = append(out, s)
	}
	return out, nil
}
