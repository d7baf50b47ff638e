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
	"strings"
)

// ParseAlternatives reads the JSON string array a model returned for an
// alternative-text request. The array is taken from the first '[' to the
// last ']' of the response. If no such array of strings is found, shortened
// prefixes of original are returned instead.
func ParseAlternatives(raw, original string) []string {
	text := strings.TrimSpace(raw)
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		var alts []string
		if err := json.Unmarshal([]byte(text[start:end+1]), &alts); err == nil && alts != nil {
			return alts
		}
	}
	return FallbackAlternatives(original)
}

// FallbackAlternatives derives three truncated candidates from original:
// the first 10 characters plus an ellipsis, then the first 8 and the first 6.
func FallbackAlternatives(original string) []string {
	return []string{
		prefixRunes(original, 10) + "...",
		prefixRunes(original, 8),
		prefixRunes(original, 6),
	}
}

func prefixRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
