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
// `issue.go`, contains the localization issue record that every analysis
// produces, along with the closed vocabularies used to classify it.
//
// Coordinates on a BoundingBox use a resolution-independent 0..1000 grid with
// the origin at the top-left corner of the frame.
package model

// IssueType is the closed set of localization defect categories.
type IssueType string

const (
	IssueTypeTextTruncation     IssueType = "TEXT_TRUNCATION"
	IssueTypeTextOverflow       IssueType = "TEXT_OVERFLOW"
	IssueTypeTextScaling        IssueType = "TEXT_SCALING"
	IssueTypeFontRendering      IssueType = "FONT_RENDERING"
	IssueTypeEncodingError      IssueType = "ENCODING_ERROR"
	IssueTypeUntranslated       IssueType = "UNTRANSLATED"
	IssueTypePlaceholderVisible IssueType = "PLACEHOLDER_VISIBLE"
	IssueTypeLayoutBreak        IssueType = "LAYOUT_BREAK"
	IssueTypeOverlap            IssueType = "OVERLAP"
	IssueTypeAlignment          IssueType = "ALIGNMENT"
	IssueTypeCulturalIssue      IssueType = "CULTURAL_ISSUE"
)

var issueTypes = []IssueType{
	IssueTypeTextTruncation,
	IssueTypeTextOverflow,
	IssueTypeTextScaling,
	IssueTypeFontRendering,
	IssueTypeEncodingError,
	IssueTypeUntranslated,
	IssueTypePlaceholderVisible,
	IssueTypeLayoutBreak,
	IssueTypeOverlap,
	IssueTypeAlignment,
	IssueTypeCulturalIssue,
}

// AllIssueTypes returns every member of the IssueType vocabulary in
// declaration order. The returned slice is a copy.
func AllIssueTypes() []IssueType {
	out := make([]IssueType, len(issueTypes))
	copy(out, issueTypes)
	return out
}

// ParseIssueType returns the IssueType whose name equals s exactly.
// Matching is case-sensitive.
func ParseIssueType(s string) (IssueType, bool) {
	for _, t := range issueTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IssueSeverity ranks how visible a defect is to the end user.
type IssueSeverity string

const (
	SeverityHigh   IssueSeverity = "HIGH"
	SeverityMedium IssueSeverity = "MEDIUM"
	SeverityLow    IssueSeverity = "LOW"
)

// ParseIssueSeverity returns the severity whose name equals s exactly.
func ParseIssueSeverity(s string) (IssueSeverity, bool) {
	switch IssueSeverity(s) {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return IssueSeverity(s), true
	}
	return "", false
}

// BoundingBox locates an issue inside a frame. (X1, Y1) is the top-left
// corner and (X2, Y2) the bottom-right corner.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// MaxCoordinate returns the largest of the four coordinates.
func (b BoundingBox) MaxCoordinate() float64 {
	return max(b.X1, b.Y1, b.X2, b.Y2)
}

// IsValid reports whether the box has a strictly positive width and height.
func (b BoundingBox) IsValid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// LocalizationIssue is a single detected defect. The optional fields are
// omitted from JSON output when absent.
type LocalizationIssue struct {
	ID               string        `json:"id"`                          // Unique within one parsed batch.
	Type             IssueType     `json:"type"`                        // Defect category.
	Severity         IssueSeverity `json:"severity"`                    // Visibility ranking.
	Description      string        `json:"description"`                 // Human-readable description of the defect.
	Location         BoundingBox   `json:"location"`                    // Normalized 0..1000 coordinates.
	Language         string        `json:"language"`                    // Locale code of the affected text, e.g. "ko-KR".
	Suggestion       string        `json:"suggestion"`                  // Remediation advice in the display language.
	Timestamp        *string       `json:"timestamp,omitempty"`         // Video position, "M:SS.s".
	FrameURL         *string       `json:"frame_url,omitempty"`         // Reference to the analyzed frame or file.
	OriginalText     *string       `json:"original_text,omitempty"`     // The offending text as observed.
	AlternativeTexts []string      `json:"alternative_texts,omitempty"` // Shorter replacement candidates.
}

// SetFrameURL stores a copy of url in the FrameURL field.
func (i *LocalizationIssue) SetFrameURL(url string) {
	i.FrameURL = &url
}
