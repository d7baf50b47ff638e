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


// Package services_test contains the test suite for the services package.
// Providers are replaced with in-memory fakes; the analysis workflow itself
// runs for real.
package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/services"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
	test "github.com/jaycherian/gcp-go-localens/internal/testutil"
)

// fakeProvider replies per file name and records every request.
type fakeProvider struct {
	mu       sync.Mutex
	name     model.ProviderName
	replies  map[string]string // Keyed by file name; "" for text-only requests.
	failures map[string]error
	requests []*providers.Request
}

func (f *fakeProvider) Name() model.ProviderName { return f.name }
func (f *fakeProvider) SupportsVideo() bool      { return true }
func (f *fakeProvider) Generate(_ context.Context, req *providers.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	key := ""
	if req.Media != nil {
		key = req.Media.Filename
	}
	if err, ok := f.failures[key]; ok {
		return "", err
	}
	return f.replies[key], nil
}

// fakeLookup serves providers from a map.
type fakeLookup map[string]providers.VisionProvider

func (l fakeLookup) Get(name string) (providers.VisionProvider, error) {
	if p, ok := l[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%q: %w", name, providers.ErrUnknownProvider)
}

func mockConfig() *cloud.Config {
	config := test.CopyConfig()
	config.Application.UseMock = true
	return config
}

func liveConfig() *cloud.Config {
	config := test.CopyConfig()
	config.Application.UseMock = false
	return config
}

func pngFile(name string) *model.MediaFile {
	return &model.MediaFile{Filename: name, Data: test.PNGImage(16, 16)}
}

func registryLookup(config *cloud.Config) services.ProviderLookup {
	return providers.NewRegistry(config, &cloud.ServiceClients{})
}

func TestAnalyzeMockImages(t *testing.T) {
	config := mockConfig()
	svc := services.NewAnalysisService(config, registryLookup(config))

	resp, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "claude",
		InputType: "image",
		Files:     []*model.MediaFile{pngFile("title.png"), pngFile("menu.jpg")},
	})
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, model.ProviderClaude, resp.Provider)
	assert.Equal(t, model.InputTypeImage, resp.InputType)
	assert.Nil(t, resp.AnalyzedFrames)
	assert.GreaterOrEqual(t, resp.ProcessingTime, 0.0)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "title.png", resp.Results[0].Filename)
	assert.Equal(t, "menu.jpg", resp.Results[1].Filename)

	total := 0
	for _, r := range resp.Results {
		n := len(r.Issues)
		assert.True(t, n == 2 || n == 3, "issues for %s: %d", r.Filename, n)
		total += n
		for _, issue := range r.Issues {
			assert.True(t, strings.HasPrefix(issue.ID, r.Filename+"-issue-"))
			require.NotNil(t, issue.FrameURL)
			assert.Equal(t, r.Filename, *issue.FrameURL)
		}
	}
	assert.Equal(t, total, resp.TotalIssues)
}

func TestAnalyzeMockVideoReportsFrames(t *testing.T) {
	config := mockConfig()
	svc := services.NewAnalysisService(config, registryLookup(config))

	resp, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "gemini",
		InputType: "video",
		Files:     []*model.MediaFile{{Filename: "intro.mp4", Data: test.MP4Header()}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.AnalyzedFrames)
	assert.Equal(t, 24, *resp.AnalyzedFrames)
	require.Len(t, resp.Results, 1)
	for _, issue := range resp.Results[0].Issues {
		assert.NotNil(t, issue.Timestamp)
	}
}

func TestAnalyzeRejectsVideoForImageOnlyProvider(t *testing.T) {
	config := mockConfig()
	svc := services.NewAnalysisService(config, registryLookup(config))

	// No files: the provider check comes before validation.
	_, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{Provider: "claude", InputType: "video"})
	var unsupported *services.UnsupportedVideoError
	require.True(t, errors.As(err, &unsupported))
	assert.ErrorIs(t, err, providers.ErrVideoNotSupported)
	assert.Equal(t, "Claude는 비디오 분석을 지원하지 않습니다. Gemini를 사용해 주세요.", err.Error())
}

func TestAnalyzeValidation(t *testing.T) {
	config := mockConfig()
	config.Upload.ImageMaxBytes = 1024 * 1024
	svc := services.NewAnalysisService(config, registryLookup(config))

	big := &model.MediaFile{Filename: "huge.png", Data: make([]byte, 1024*1024*3/2)}
	_, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "gemini",
		InputType: "image",
		Files:     []*model.MediaFile{pngFile("ok.png"), {Filename: "notes.txt", Data: []byte("hi")}, big},
	})

	var invalid *services.ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, []string{
		"'notes.txt': 허용되지 않는 형식입니다. 허용: .png, .jpg, .jpeg, .webp",
		"'huge.png': 파일 크기 초과 (1.5MB > 1MB)",
	}, invalid.Problems)
	assert.Equal(t, strings.Join(invalid.Problems, "; "), err.Error())
}

func TestAnalyzeValidationNoFiles(t *testing.T) {
	config := mockConfig()
	svc := services.NewAnalysisService(config, registryLookup(config))

	_, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{Provider: "gemini", InputType: "image"})
	var invalid *services.ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "파일이 제공되지 않았습니다.", err.Error())
}

func TestAnalyzeValidationBadInputType(t *testing.T) {
	config := mockConfig()
	svc := services.NewAnalysisService(config, registryLookup(config))

	_, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "gemini",
		InputType: "audio",
		Files:     []*model.MediaFile{pngFile("a.png")},
	})
	var invalid *services.ValidationError
	assert.True(t, errors.As(err, &invalid))
}

func TestAnalyzeWithProvider(t *testing.T) {
	provider := &fakeProvider{
		name: model.ProviderGemini,
		replies: map[string]string{
			"a.png": test.GetTestModelResponse(),
			"b.png": "no issues here: []",
		},
	}
	svc := services.NewAnalysisService(liveConfig(), fakeLookup{"gemini": provider})

	resp, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "Gemini",
		InputType: "image",
		Files:     []*model.MediaFile{pngFile("a.png"), pngFile("b.png")},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ProviderGemini, resp.Provider)
	assert.Equal(t, 1, resp.TotalIssues)
	require.Len(t, resp.Results, 2)

	require.Len(t, resp.Results[0].Issues, 1)
	issue := resp.Results[0].Issues[0]
	assert.Equal(t, model.BoundingBox{X1: 2.6, Y1: 4.6, X2: 1000, Y2: 1000}, issue.Location)
	assert.Equal(t, "폰트 크기를 줄이세요", issue.Suggestion)

	assert.NotNil(t, resp.Results[1].Issues)
	assert.Empty(t, resp.Results[1].Issues)
	assert.Len(t, provider.requests, 2)
}

func TestAnalyzeProviderInitFailure(t *testing.T) {
	svc := services.NewAnalysisService(liveConfig(), fakeLookup{})

	_, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "gemini",
		InputType: "image",
		Files:     []*model.MediaFile{pngFile("a.png")},
	})
	var initErr *services.ProviderInitError
	require.True(t, errors.As(err, &initErr))
	assert.ErrorIs(t, err, providers.ErrUnknownProvider)
	assert.True(t, strings.HasPrefix(err.Error(), "AI 프로바이더(gemini) 초기화 실패: "))
}

func TestAnalyzeReportsFirstFailingFile(t *testing.T) {
	provider := &fakeProvider{
		name:    model.ProviderGemini,
		replies: map[string]string{"a.png": "[]"},
		failures: map[string]error{
			"b.png": errors.New("quota exceeded"),
			"c.png": errors.New("timeout"),
		},
	}
	config := liveConfig()
	config.Application.ThreadPoolSize = 3
	svc := services.NewAnalysisService(config, fakeLookup{"gemini": provider})

	_, err := svc.Analyze(context.Background(), &services.AnalyzeRequest{
		Provider:  "gemini",
		InputType: "image",
		Files:     []*model.MediaFile{pngFile("a.png"), pngFile("b.png"), pngFile("c.png")},
	})
	var analysisErr *services.AnalysisError
	require.True(t, errors.As(err, &analysisErr))
	assert.Equal(t, "b.png", analysisErr.Filename)
	assert.Contains(t, err.Error(), "AI 분석 실패 (b.png): ")
	assert.Contains(t, err.Error(), "quota exceeded")

	// Every file is still attempted.
	assert.Len(t, provider.requests, 3)
}
