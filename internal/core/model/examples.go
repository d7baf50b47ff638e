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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides hardcoded instances of the data models.
//
// The example issues serve two purposes. GetExampleIssue is rendered into the
// analysis prompt as a "few-shot" example of the JSON we expect back from the
// model. The mock templates back the mock provider, which lets the whole
// analysis chain run locally without calling any vision API.
package model

// GetExampleIssue returns the issue used as a few-shot example in prompts.
// When video is true the example carries a timestamp.
func GetExampleIssue(video bool) *LocalizationIssue {
	original := "truncated te..."
	out := &LocalizationIssue{
		ID:           "issue-1",
		Type:         IssueTypeTextTruncation,
		Severity:     SeverityHigh,
		Description:  "Description of the issue",
		Location:     BoundingBox{X1: 100, Y1: 200, X2: 300, Y2: 250},
		Language:     "ja-JP",
		Suggestion:   "수정 제안 (한글로 작성)",
		OriginalText: &original,
	}
	if video {
		ts := "0:15.5"
		out.Timestamp = &ts
	}
	return out
}

// MockIssueTemplate is a canned issue without an id or frame reference.
type MockIssueTemplate struct {
	Type         IssueType
	Severity     IssueSeverity
	Description  string
	Location     BoundingBox
	Language     string
	Suggestion   string
	Timestamp    string
	OriginalText string
}

var mockImageTemplates = []MockIssueTemplate{
	{
		Type:         IssueTypeTextTruncation,
		Severity:     SeverityHigh,
		Description:  "Menu button text is truncated in Japanese localization.",
		Location:     BoundingBox{X1: 680, Y1: 45, X2: 820, Y2: 85},
		Language:     "ja-JP",
		Suggestion:   "버튼 너비를 확장하거나 텍스트를 축약하세요",
		OriginalText: "オプション設...",
	},
	{
		Type:         IssueTypeTextOverflow,
		Severity:     SeverityMedium,
		Description:  "German translation overflows the dialog box.",
		Location:     BoundingBox{X1: 200, Y1: 300, X2: 500, Y2: 360},
		Language:     "de-DE",
		Suggestion:   "대화 상자 너비를 늘리거나 독일어 텍스트를 축약하세요",
		OriginalText: "Spieleinstellungen ändern",
	},
	{
		Type:         IssueTypeUntranslated,
		Severity:     SeverityHigh,
		Description:  "Navigation label remains in English in Korean build.",
		Location:     BoundingBox{X1: 50, Y1: 150, X2: 200, Y2: 190},
		Language:     "ko-KR",
		Suggestion:   "'Settings'를 '설정'으로 번역하세요",
		OriginalText: "Settings",
	},
	{
		Type:         IssueTypeFontRendering,
		Severity:     SeverityLow,
		Description:  "Vietnamese diacritics are partially clipped.",
		Location:     BoundingBox{X1: 400, Y1: 500, X2: 600, Y2: 540},
		Language:     "vi-VN",
		Suggestion:   "폰트 라인 높이를 늘려 성조 기호가 잘리지 않도록 하세요",
		OriginalText: "Cài đặt trò chơi",
	},
	{
		Type:         IssueTypeOverlap,
		Severity:     SeverityMedium,
		Description:  "Chinese text overlaps with adjacent icon.",
		Location:     BoundingBox{X1: 750, Y1: 600, X2: 950, Y2: 650},
		Language:     "zh-CN",
		Suggestion:   "아이콘과 텍스트 사이 간격을 확보하세요",
		OriginalText: "游戏设置选项",
	},
}

var mockVideoTemplates = []MockIssueTemplate{
	{
		Type:         IssueTypeTextTruncation,
		Severity:     SeverityHigh,
		Description:  "Subtitle text truncated during cutscene dialog.",
		Location:     BoundingBox{X1: 100, Y1: 800, X2: 900, Y2: 880},
		Language:     "ja-JP",
		Suggestion:   "자막 영역 높이를 확장하거나 텍스트를 분할하세요",
		Timestamp:    "0:15.3",
		OriginalText: "冒険者の皆さん...",
	},
	{
		Type:         IssueTypePlaceholderVisible,
		Severity:     SeverityHigh,
		Description:  "Placeholder {player_name} visible in HUD.",
		Location:     BoundingBox{X1: 50, Y1: 50, X2: 300, Y2: 90},
		Language:     "de-DE",
		Suggestion:   "변수 바인딩이 누락되었습니다. {player_name} 치환을 확인하세요",
		Timestamp:    "0:42.7",
		OriginalText: "Willkommen, {player_name}!",
	},
	{
		Type:         IssueTypeLayoutBreak,
		Severity:     SeverityMedium,
		Description:  "Inventory menu layout breaks in French locale.",
		Location:     BoundingBox{X1: 300, Y1: 200, X2: 700, Y2: 600},
		Language:     "fr-FR",
		Suggestion:   "인벤토리 그리드 레이아웃을 유연하게 변경하세요",
		Timestamp:    "1:05.2",
		OriginalText: "Équipement du personnage",
	},
	{
		Type:         IssueTypeEncodingError,
		Severity:     SeverityHigh,
		Description:  "Korean text shows encoding artifacts.",
		Location:     BoundingBox{X1: 500, Y1: 400, X2: 800, Y2: 480},
		Language:     "ko-KR",
		Suggestion:   "UTF-8 인코딩을 확인하세요",
		Timestamp:    "1:38.5",
		OriginalText: "스킬 설명이 깨짐",
	},
}

// GetMockTemplates returns the canned issues for the given input type.
func GetMockTemplates(inputType InputType) []MockIssueTemplate {
	if inputType == InputTypeVideo {
		return mockVideoTemplates
	}
	return mockImageTemplates
}

// DefaultAlternativesLanguage is used when a locale has no mock alternatives.
const DefaultAlternativesLanguage = "ko-KR"

var mockAlternatives = map[string][]string{
	"ja-JP": {"オプション", "設定", "OP設定"},
	"de-DE": {"Einstell.", "Setup", "Opt."},
	"ko-KR": {"설정", "옵션", "세팅"},
	"zh-CN": {"设置", "选项", "配置"},
	"fr-FR": {"Paramètres", "Config.", "Régl."},
	"vi-VN": {"Cài đặt", "Tùy chọn", "Setup"},
}

// GetMockAlternatives returns canned replacement strings for a locale,
// falling back to DefaultAlternativesLanguage.
func GetMockAlternatives(language string) []string {
	alts, ok := mockAlternatives[language]
	if !ok {
		alts = mockAlternatives[DefaultAlternativesLanguage]
	}
	out := make([]string, len(alts))
	copy(out, alts)
	return out
}
