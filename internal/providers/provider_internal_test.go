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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/parser"
)

func TestMockImageResponse(t *testing.T) {
	m := &Mock{intN: func(n int) int { return 0 }}
	media := &model.MediaFile{Filename: "menu.png", InputType: model.InputTypeImage}

	out, err := m.Generate(context.Background(), &Request{Media: media})
	require.NoError(t, err)
	assert.Contains(t, out, "```json")

	issues := parser.ParseResponse(out)
	require.Len(t, issues, 2)
	assert.Equal(t, "menu.png-issue-1", issues[0].ID)
	assert.Equal(t, "menu.png-issue-2", issues[1].ID)
	assert.Equal(t, model.IssueTypeTextTruncation, issues[0].Type)
	assert.Equal(t, model.IssueTypeTextOverflow, issues[1].Type)
	for _, issue := range issues {
		assert.Nil(t, issue.Timestamp)
		assert.LessOrEqual(t, issue.Location.MaxCoordinate(), 1000.0)
	}
}

func TestMockVideoResponse(t *testing.T) {
	m := &Mock{intN: func(n int) int { return n - 1 }}
	media := &model.MediaFile{Filename: "clip.mp4", InputType: model.InputTypeVideo}

	out, err := m.Generate(context.Background(), &Request{Media: media})
	require.NoError(t, err)

	issues := parser.ParseResponse(out)
	require.Len(t, issues, 4)
	assert.Equal(t, model.IssueTypePlaceholderVisible, issues[1].Type)
	for _, issue := range issues {
		require.NotNil(t, issue.Timestamp)
		assert.NotEmpty(t, *issue.Timestamp)
	}
}

func TestMockRandomCounts(t *testing.T) {
	m := NewMock()
	image := &model.MediaFile{Filename: "a.png", InputType: model.InputTypeImage}
	video := &model.MediaFile{Filename: "b.mp4", InputType: model.InputTypeVideo}
	for i := 0; i < 20; i++ {
		out, err := m.Generate(context.Background(), &Request{Media: image})
		require.NoError(t, err)
		n := len(parser.ParseResponse(out))
		assert.True(t, n == 2 || n == 3, "image count %d", n)

		out, err = m.Generate(context.Background(), &Request{Media: video})
		require.NoError(t, err)
		n = len(parser.ParseResponse(out))
		assert.True(t, n == 3 || n == 4, "video count %d", n)
	}
}

func TestMockTextRequest(t *testing.T) {
	out, err := NewMock().Generate(context.Background(), &Request{Prompt: "alternatives"})
	require.NoError(t, err)
	assert.Equal(t, model.GetMockAlternatives(model.DefaultAlternativesLanguage), parser.ParseAlternatives(out, "x"))
}

func TestStagedMediaReleaseOnce(t *testing.T) {
	calls := 0
	staged := NewStagedMedia("gs://b/o", "video/mp4", func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, staged.Release(context.Background()))
	require.NoError(t, staged.Release(context.Background()))
	assert.Equal(t, 1, calls)

	var none *StagedMedia
	assert.NoError(t, none.Release(context.Background()))
}

func TestGeminiContents(t *testing.T) {
	image := &model.MediaFile{Filename: "a.png", MIMEType: "image/png", Data: []byte{1, 2, 3}, InputType: model.InputTypeImage}

	contents := geminiContents(&Request{Prompt: "find issues", Media: image}, nil)
	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 2)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	require.NotNil(t, contents[0].Parts[0].InlineData)
	assert.Equal(t, "image/png", contents[0].Parts[0].InlineData.MIMEType)
	assert.Equal(t, "find issues", contents[0].Parts[1].Text)

	video := &model.MediaFile{Filename: "b.mp4", MIMEType: "video/mp4", InputType: model.InputTypeVideo}
	staged := NewStagedMedia("https://files/abc", "video/mp4", nil)
	contents = geminiContents(&Request{Prompt: "p", Media: video}, staged)
	require.NotNil(t, contents[0].Parts[0].FileData)
	assert.Equal(t, "https://files/abc", contents[0].Parts[0].FileData.FileURI)

	contents = geminiContents(&Request{Prompt: "text only"}, nil)
	require.Len(t, contents, 1)
	assert.Equal(t, "text only", contents[0].Parts[0].Text)
}

func TestGeminiGenerateConfig(t *testing.T) {
	g := &Gemini{model: cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{MaxOutputTokens: 8192}, "m", nil, 0)}

	cfg := g.generateConfig(&Request{SystemPrompt: "system", Temperature: 0.5})
	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0.5), *cfg.Temperature)
	assert.Equal(t, int32(8192), cfg.MaxOutputTokens)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "system", cfg.SystemInstruction.Parts[0].Text)

	cfg = g.generateConfig(&Request{MaxTokens: 100})
	assert.Equal(t, int32(100), cfg.MaxOutputTokens)
	assert.Nil(t, cfg.SystemInstruction)
}

func TestSupportsVideoByName(t *testing.T) {
	for _, name := range []model.ProviderName{model.ProviderGemini, model.ProviderMock} {
		assert.True(t, SupportsVideo(name), name)
	}
	for _, name := range []model.ProviderName{model.ProviderClaude, model.ProviderOpenAI, model.ProviderOllama} {
		assert.False(t, SupportsVideo(name), name)
	}
}
