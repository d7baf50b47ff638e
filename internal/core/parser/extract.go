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

// Package parser turns the free-form text returned by a vision model into a
// clean, validated list of localization issues.
//
// Logic Flow:
// The model is asked for a JSON array but frequently wraps it in markdown,
// surrounds it with commentary, reports pixel coordinates instead of the
// requested 0..1000 grid, or repeats itself. Every function in this package is
// a pure function over its arguments, so the package is safe to use from any
// number of goroutines at once.
//
//  1. ExtractJSON locates the candidate JSON array inside the raw text.
//  2. MapIssue promotes each decoded record to a model.LocalizationIssue, or rejects it.
//  3. ValidateIssues drops duplicate ids, rescales pixel coordinates through
//     NormalizeCoordinates and drops boxes with no area.
//  4. ParseResponse composes the three steps and never fails; bad input simply
//     yields fewer (or zero) issues.
//
// LocalizeSuggestion and ParseAlternatives are independent helpers applied by
// callers after parsing.
package parser

import (
	"regexp"
	"strings"
)

var (
	// First fenced block, optionally tagged json. The body is matched lazily so
	// that only the first block is considered.
	fencedBlockPattern = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?```")
	// First '[' through last ']'.
	bracketSpanPattern = regexp.MustCompile(`(\[[\s\S]*\])`)
)

// ExtractJSON returns the text believed to hold a JSON array, trimmed of
// surrounding whitespace. A fenced code block wins over a bare bracketed span.
// ok is false when neither is present.
func ExtractJSON(text string) (candidate string, ok bool) {
	if m := fencedBlockPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := bracketSpanPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}
