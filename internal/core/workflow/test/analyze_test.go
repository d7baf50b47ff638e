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

package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/workflow"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
	test "github.com/jaycherian/gcp-go-localens/internal/testutil"
)

// scriptedProvider replies with a fixed text and records what it was sent.
type scriptedProvider struct {
	reply    string
	err      error
	requests []*providers.Request
}

func (s *scriptedProvider) Name() model.ProviderName { return model.ProviderGemini }
func (s *scriptedProvider) SupportsVideo() bool      { return true }
func (s *scriptedProvider) Generate(_ context.Context, req *providers.Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

// stagingProvider also stages video and counts releases.
type stagingProvider struct {
	scriptedProvider
	staged   int
	released int
}

func (s *stagingProvider) Stage(_ context.Context, media *model.MediaFile) (*providers.StagedMedia, error) {
	s.staged++
	return providers.NewStagedMedia("files/"+media.Filename, media.MIMEType, func(context.Context) error {
		s.released++
		return nil
	}), nil
}

func TestAnalyzeWorkflowImage(t *testing.T) {
	traceCtx, span := tracer.Start(ctx, "analyze-image-test")
	defer span.End()

	provider := &scriptedProvider{reply: test.GetTestModelResponse()}
	analyze, err := workflow.NewAnalyzeWorkflow(config, provider)
	require.NoError(t, err)

	media := &model.MediaFile{Filename: "title.png", Data: test.PNGImage(1500, 750), InputType: model.InputTypeImage}
	issues, err := analyze.Run(traceCtx, media)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0]
	assert.Equal(t, "issue-1", issue.ID)
	assert.Equal(t, model.BoundingBox{X1: 2.6, Y1: 4.6, X2: 1000, Y2: 1000}, issue.Location)
	assert.Equal(t, "폰트 크기를 줄이세요", issue.Suggestion)
	require.NotNil(t, issue.FrameURL)
	assert.Equal(t, "title.png", *issue.FrameURL)

	// The test overlay caps images at 1024 pixels.
	require.Len(t, provider.requests, 1)
	sent := provider.requests[0].Media
	assert.Equal(t, "image/png", sent.MIMEType)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(sent.Data))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestAnalyzeWorkflowVideoStagesAndReleases(t *testing.T) {
	provider := &stagingProvider{scriptedProvider: scriptedProvider{reply: "```json\n[]\n```"}}
	analyze, err := workflow.NewAnalyzeWorkflow(config, provider)
	require.NoError(t, err)

	media := &model.MediaFile{Filename: "clip.mp4", Data: test.MP4Header(), InputType: model.InputTypeVideo}
	issues, err := analyze.Run(ctx, media)
	require.NoError(t, err)
	assert.Empty(t, issues)

	assert.Equal(t, 1, provider.staged)
	assert.Equal(t, 1, provider.released)
	require.Len(t, provider.requests, 1)
	require.NotNil(t, provider.requests[0].Staged)
	assert.Equal(t, "files/clip.mp4", provider.requests[0].Staged.URI)
	assert.Equal(t, "video/mp4", provider.requests[0].Media.MIMEType)
}

func TestAnalyzeWorkflowReleasesOnFailure(t *testing.T) {
	provider := &stagingProvider{scriptedProvider: scriptedProvider{err: errors.New("model overloaded")}}
	analyze, err := workflow.NewAnalyzeWorkflow(config, provider)
	require.NoError(t, err)

	media := &model.MediaFile{Filename: "clip.mp4", Data: test.MP4Header(), InputType: model.InputTypeVideo}
	_, err = analyze.Run(ctx, media)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, 1, provider.released)
}

func TestAnalyzeWorkflowUnsupportedVideo(t *testing.T) {
	claude, err := providers.NewClaude("unused", config.VisionModels["claude"])
	require.NoError(t, err)
	analyze, err := workflow.NewAnalyzeWorkflow(config, claude)
	require.NoError(t, err)

	media := &model.MediaFile{Filename: "clip.mp4", Data: test.MP4Header(), InputType: model.InputTypeVideo}
	_, err = analyze.Run(ctx, media)
	assert.ErrorIs(t, err, providers.ErrVideoNotSupported)
}

func TestAnalyzeWorkflowWithMockProvider(t *testing.T) {
	analyze, err := workflow.NewAnalyzeWorkflow(config, providers.NewMock())
	require.NoError(t, err)

	media := &model.MediaFile{Filename: "clip.mp4", Data: test.MP4Header(), InputType: model.InputTypeVideo}
	issues, err := analyze.Run(ctx, media)
	require.NoError(t, err)
	require.True(t, len(issues) == 3 || len(issues) == 4)
	for _, issue := range issues {
		assert.True(t, strings.HasPrefix(issue.ID, "clip.mp4-issue-"))
		require.NotNil(t, issue.Timestamp)
		require.NotNil(t, issue.FrameURL)
		assert.Equal(t, "clip.mp4", *issue.FrameURL)
		assert.True(t, issue.Location.IsValid())
	}
}

func TestAnalyzeWorkflowRejectsBadTemplate(t *testing.T) {
	broken := test.CopyConfig()
	broken.PromptTemplates.VideoUser = "{{"
	_, err := workflow.NewAnalyzeWorkflow(broken, providers.NewMock())
	assert.Error(t, err)
}
