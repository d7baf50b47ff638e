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


// Package services contains the request-level business logic. This file,
// `errors.go`, defines the typed errors the API layer maps to HTTP status
// codes. Their messages are shown to users verbatim.
package services

import (
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

// ValidationError lists everything wrong with an upload.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// UnsupportedVideoError is returned when video is sent to an image-only provider.
type UnsupportedVideoError struct {
	Provider model.ProviderName
}

func (e *UnsupportedVideoError) Error() string {
	return fmt.Sprintf("%s는 비디오 분석을 지원하지 않습니다. Gemini를 사용해 주세요.", displayName(e.Provider))
}

func (e *UnsupportedVideoError) Unwrap() error {
	return providers.ErrVideoNotSupported
}

// ProviderInitError is returned when the requested provider cannot be built.
type ProviderInitError struct {
	Provider string
	Err      error
}

func (e *ProviderInitError) Error() string {
	return fmt.Sprintf("AI 프로바이더(%s) 초기화 실패: %v", e.Provider, e.Err)
}

func (e *ProviderInitError) Unwrap() error { return e.Err }

// AnalysisError is returned when a file could not be analyzed.
type AnalysisError struct {
	Filename string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("AI 분석 실패 (%s): %v", e.Filename, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// AlternativesError is returned when alternative texts could not be generated.
type AlternativesError struct {
	Err error
}

func (e *AlternativesError) Error() string {
	return fmt.Sprintf("대체 문장 생성 실패: %v", e.Err)
}

func (e *AlternativesError) Unwrap() error { return e.Err }

var displayNames = map[model.ProviderName]string{
	model.ProviderGemini: "Gemini",
	model.ProviderClaude: "Claude",
	model.ProviderOpenAI: "OpenAI",
	model.ProviderOllama: "Ollama",
	model.ProviderMock:   "Mock",
}

func displayName(p model.ProviderName) string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return string(p)
}
