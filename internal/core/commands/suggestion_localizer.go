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

package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/parser"
)

// SuggestionLocalizer rewrites each issue's suggestion into Korean with
// parser.LocalizeSuggestion. Issues are modified in place.
type SuggestionLocalizer struct {
	cor.BaseCommand
}

func NewSuggestionLocalizer(name string) *SuggestionLocalizer {
	return &SuggestionLocalizer{BaseCommand: *cor.NewBaseCommand(name)}
}

func (s *SuggestionLocalizer) Execute(context cor.Context) {
	issues, ok := issuesInput(context, s.GetInputParam())
	if !ok {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("expected issues in %s", s.GetInputParam()))
		return
	}
	for _, issue := range issues {
		issue.Suggestion = parser.LocalizeSuggestion(issue.Suggestion)
	}
	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(s.GetOutputParam(), issues)
}
