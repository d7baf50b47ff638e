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


package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/parser"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

const alternativesTemperature = 0.5

// AlternativesRequest asks for shorter replacements of one UI string.
type AlternativesRequest struct {
	OriginalText string `json:"original_text" binding:"required"`
	Language     string `json:"language" binding:"required"`
	Context      string `json:"context,omitempty"` // UI element the text belongs to.
}

// AlternativesService suggests shorter texts for strings that do not fit.
type AlternativesService struct {
	config   *cloud.Config
	lookup   ProviderLookup
	template *template.Template
}

// NewAlternativesService parses the alternatives prompt template and returns
// the service.
func NewAlternativesService(config *cloud.Config, lookup ProviderLookup) (*AlternativesService, error) {
	t, err := template.New("alternatives-prompt").Parse(config.PromptTemplates.Alternatives)
	if err != nil {
		return nil, fmt.Errorf("invalid alternatives prompt template: %w", err)
	}
	return &AlternativesService{config: config, lookup: lookup, template: t}, nil
}

// Generate returns two or three alternatives for req.OriginalText. Mock mode
// serves a fixed list per language. Model failures are returned as
// *AlternativesError; an unparsable reply falls back to truncated prefixes.
func (s *AlternativesService) Generate(ctx context.Context, req *AlternativesRequest) (*model.AlternativesResponse, error) {
	if s.config.Application.UseMock {
		return &model.AlternativesResponse{
			Success:      true,
			OriginalText: req.OriginalText,
			Alternatives: model.GetMockAlternatives(req.Language),
		}, nil
	}

	name := s.config.Application.AlternativesProvider
	if name == "" {
		name = string(model.ProviderGemini)
	}
	provider, err := s.lookup.Get(name)
	if err != nil {
		return nil, &AlternativesError{Err: err}
	}

	var prompt bytes.Buffer
	params := map[string]interface{}{
		"ORIGINAL_TEXT": req.OriginalText,
		"LANGUAGE":      req.Language,
		"CONTEXT":       req.Context,
	}
	if err := s.template.Execute(&prompt, params); err != nil {
		return nil, &AlternativesError{Err: err}
	}

	reply, err := provider.Generate(ctx, &providers.Request{
		Prompt:      prompt.String(),
		Temperature: alternativesTemperature,
		MaxTokens:   int(s.config.VisionModels[name].MaxTokens),
	})
	if err != nil {
		slog.ErrorContext(ctx, "alternative text generation failed", "provider", name, "error", err)
		return nil, &AlternativesError{Err: err}
	}

	return &model.AlternativesResponse{
		Success:      true,
		OriginalText: req.OriginalText,
		Alternatives: parser.ParseAlternatives(reply, req.OriginalText),
	}, nil
}
