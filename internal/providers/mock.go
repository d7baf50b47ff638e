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

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// Mock answers like a vision model would, using the canned templates from
// the model package. It lets mock mode run through the same parsing chain.
type Mock struct {
	// intN returns a value in [0, n). Replaced in tests.
	intN func(n int) int
}

func NewMock() *Mock {
	return &Mock{intN: rand.IntN}
}

func (m *Mock) Name() model.ProviderName { return model.ProviderMock }

func (m *Mock) SupportsVideo() bool { return true }

// Generate returns a fenced JSON array made of the first 2 to 3 image
// templates, or the first 3 to 4 video templates. Text-only requests get
// the default alternatives as a JSON string array.
func (m *Mock) Generate(ctx context.Context, req *Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.Media == nil {
		out, err := json.Marshal(model.GetMockAlternatives(model.DefaultAlternativesLanguage))
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	templates := model.GetMockTemplates(req.Media.InputType)
	count := 2 + m.intN(2)
	if req.Media.InputType == model.InputTypeVideo {
		count = 3 + m.intN(2)
	}
	count = min(count, len(templates))

	items := make([]map[string]any, 0, count)
	for i, t := range templates[:count] {
		items = append(items, mockItem(t, req.Media.Filename, i+1))
	}
	out, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render mock response: %w", err)
	}
	return "```json\n" + string(out) + "\n```", nil
}

func mockItem(t model.MockIssueTemplate, filename string, n int) map[string]any {
	item := map[string]any{
		"id":          fmt.Sprintf("%s-issue-%d", filename, n),
		"type":        t.Type,
		"severity":    t.Severity,
		"description": t.Description,
		"location":    t.Location,
		"language":    t.Language,
		"suggestion":  t.Suggestion,
	}
	if t.Timestamp != "" {
		item["timestamp"] = t.Timestamp
	}
	if t.OriginalText != "" {
		item["original_text"] = t.OriginalText
	}
	return item
}
