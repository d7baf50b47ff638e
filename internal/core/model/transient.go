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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains the request and response containers
// that only live for the duration of one analysis. Nothing here is persisted;
// the objects are created by the API layer, passed through the analysis
// chain and serialized back to the caller.
package model

import "strings"

// InputType tells the analysis whether the uploaded files are still images
// or video clips.
type InputType string

const (
	InputTypeImage InputType = "image"
	InputTypeVideo InputType = "video"
)

// ParseInputType accepts "image" or "video" in any letter case.
func ParseInputType(s string) (InputType, bool) {
	switch InputType(strings.ToLower(strings.TrimSpace(s))) {
	case InputTypeImage:
		return InputTypeImage, true
	case InputTypeVideo:
		return InputTypeVideo, true
	}
	return "", false
}

// ProviderName identifies a vision model vendor.
type ProviderName string

const (
	ProviderGemini ProviderName = "gemini"
	ProviderClaude ProviderName = "claude"
	ProviderOpenAI ProviderName = "openai"
	ProviderOllama ProviderName = "ollama"
	ProviderMock   ProviderName = "mock"
)

// ParseProviderName accepts any of the known provider names in any letter case.
func ParseProviderName(s string) (ProviderName, bool) {
	p := ProviderName(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderGemini, ProviderClaude, ProviderOpenAI, ProviderOllama, ProviderMock:
		return p, true
	}
	return "", false
}

// MediaFile is one uploaded file, held in memory for the lifetime of a request.
type MediaFile struct {
	Filename  string    // Name as supplied by the client; also used as the frame reference.
	Data      []byte    // Raw file contents.
	MIMEType  string    // Detected content type, filled in by the analysis chain when empty.
	InputType InputType // Image or video.
}

// Size returns the number of bytes held in the file.
func (m *MediaFile) Size() int {
	return len(m.Data)
}

// FileAnalysisResult groups the issues found in one file.
type FileAnalysisResult struct {
	Filename string               `json:"filename"`
	Issues   []*LocalizationIssue `json:"issues"`
}

// AnalyzeResponse is the aggregate result of one analysis request.
type AnalyzeResponse struct {
	Success        bool                  `json:"success"`
	Provider       ProviderName          `json:"provider"`
	InputType      InputType             `json:"input_type"`
	TotalIssues    int                   `json:"total_issues"`
	ProcessingTime float64               `json:"processing_time"` // Seconds, rounded to two decimals.
	Results        []*FileAnalysisResult `json:"results"`
	AnalyzedFrames *int                  `json:"analyzed_frames,omitempty"` // Only reported for video.
}

// AlternativesResponse carries shorter replacement candidates for one string.
type AlternativesResponse struct {
	Success      bool     `json:"success"`
	OriginalText string   `json:"original_text"`
	Alternatives []string `json:"alternatives"`
}
