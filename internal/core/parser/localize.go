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

import "strings"

// NeedsCorrectionPrefix marks a suggestion that could not be translated.
const NeedsCorrectionPrefix = "수정 필요: "

// Hangul syllables block.
const (
	hangulFirst = '\uac00'
	hangulLast  = '\ud7af'
)

// suggestionPhrases is searched in order; earlier, more specific keywords
// must stay ahead of the generic ones they contain.
var suggestionPhrases = []struct {
	keyword string
	phrase  string
}{
	{"reduce font size", "폰트 크기를 줄이세요"},
	{"expand button width", "버튼 너비를 확장하세요"},
	{"text wrapping", "텍스트 줄바꿈을 적용하세요"},
	{"increase container", "컨테이너 크기를 늘리세요"},
	{"truncate", "텍스트를 축약하세요"},
	{"translate", "텍스트를 번역하세요"},
	{"fix encoding", "인코딩을 수정하세요"},
	{"adjust alignment", "정렬을 조정하세요"},
	{"add padding", "패딩을 추가하세요"},
	{"resize", "크기를 조정하세요"},
}

// LocalizeSuggestion renders a remediation suggestion in Korean. Text that
// already contains Hangul is returned as is. Otherwise the first keyword
// found (case-insensitively) selects a fixed phrase; when none matches, the
// original text is kept behind NeedsCorrectionPrefix.
func LocalizeSuggestion(suggestion string) string {
	if containsHangul(suggestion) {
		return suggestion
	}
	lower := strings.ToLower(suggestion)
	for _, p := range suggestionPhrases {
		if strings.Contains(lower, p.keyword) {
			return p.phrase
		}
	}
	return NeedsCorrectionPrefix + suggestion
}

func containsHangul(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r >= hangulFirst && r <= hangulLast
	})
}
