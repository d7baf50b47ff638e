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


// This file defines the AnalysisService, which turns an upload into an
// AnalyzeResponse.
//
// Logic Flow:
//
//  1. Video sent to an image-only provider is rejected before anything else.
//  2. The files are validated; all problems are reported together.
//  3. In mock mode the mock provider stands in for the requested one, and the
//     response still names the requested provider.
//  4. Files are fanned out to a bounded pool of workers. Each worker runs the
//     provider's AnalyzeWorkflow on one file; results are put back in upload
//     order.
//  5. The first failing file (in upload order) fails the whole request.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/workflow"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

// ProviderLookup hands out providers by name. *providers.Registry implements it.
type ProviderLookup interface {
	Get(name string) (providers.VisionProvider, error)
}

// AnalyzeRequest is one call to the analysis endpoint.
type AnalyzeRequest struct {
	Provider  string
	InputType string
	Files     []*model.MediaFile
}

// AnalysisService analyzes uploaded media with the configured providers.
type AnalysisService struct {
	config    *cloud.Config
	lookup    ProviderLookup
	validator *FileValidator
	now       func() time.Time

	mu        sync.Mutex
	workflows map[model.ProviderName]*workflow.AnalyzeWorkflow
}

func NewAnalysisService(config *cloud.Config, lookup ProviderLookup) *AnalysisService {
	return &AnalysisService{
		config:    config,
		lookup:    lookup,
		validator: NewFileValidator(config.Upload),
		now:       time.Now,
		workflows: make(map[model.ProviderName]*workflow.AnalyzeWorkflow),
	}
}

// Analyze validates req, analyzes every file and aggregates the issues.
// Errors are one of *UnsupportedVideoError, *ValidationError,
// *ProviderInitError or *AnalysisError.
func (s *AnalysisService) Analyze(ctx context.Context, req *AnalyzeRequest) (*model.AnalyzeResponse, error) {
	start := s.now()

	requested, known := model.ParseProviderName(req.Provider)
	inputType, ok := model.ParseInputType(req.InputType)
	if known && ok && inputType == model.InputTypeVideo && !providers.SupportsVideo(requested) {
		return nil, &UnsupportedVideoError{Provider: requested}
	}
	if !ok {
		return nil, &ValidationError{Problems: []string{
			fmt.Sprintf("지원하지 않는 입력 유형입니다: %s", req.InputType),
		}}
	}
	if problems := s.validator.Validate(req.Files, inputType); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	for _, f := range req.Files {
		f.InputType = inputType
	}

	providerName := req.Provider
	switch {
	case s.config.Application.UseMock:
		providerName = string(model.ProviderMock)
	case known:
		providerName = string(requested)
	}
	analyze, err := s.workflowFor(providerName)
	if err != nil {
		return nil, &ProviderInitError{Provider: req.Provider, Err: err}
	}

	if timeout := s.config.Application.AnalysisTimeoutSecond; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	requestID := uuid.NewString()
	slog.InfoContext(ctx, "analysis started",
		"request_id", requestID, "provider", providerName, "input_type", inputType, "files", len(req.Files))

	results, err := s.analyzeAll(ctx, analyze, req.Files)
	if err != nil {
		slog.ErrorContext(ctx, "analysis failed", "request_id", requestID, "error", err)
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r.Issues)
	}
	resp := &model.AnalyzeResponse{
		Success:        true,
		Provider:       responseProvider(req.Provider, requested, known),
		InputType:      inputType,
		TotalIssues:    total,
		ProcessingTime: roundSeconds(s.now().Sub(start)),
		Results:        results,
	}
	if inputType == model.InputTypeVideo {
		frames := s.config.Upload.AnalyzedFrames
		resp.AnalyzedFrames = &frames
	}

	slog.InfoContext(ctx, "analysis finished",
		"request_id", requestID, "total_issues", total, "processing_time", resp.ProcessingTime)
	return resp, nil
}

// workflowFor returns the cached workflow for a provider, building it on
// first use.
func (s *AnalysisService) workflowFor(name string) (*workflow.AnalyzeWorkflow, error) {
	provider, err := s.lookup.Get(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workflows[provider.Name()]; ok {
		return w, nil
	}
	w, err := workflow.NewAnalyzeWorkflow(s.config, provider)
	if err != nil {
		return nil, err
	}
	s.workflows[provider.Name()] = w
	return w, nil
}

type fileJob struct {
	index int
	media *model.MediaFile
}

type fileResult struct {
	index  int
	issues []*model.LocalizationIssue
	err    error
}

// analyzeAll runs every file through analyze on a pool of workers. All files
// are processed; the error of the lowest-index failure is returned.
func (s *AnalysisService) analyzeAll(
	ctx context.Context,
	analyze *workflow.AnalyzeWorkflow,
	files []*model.MediaFile) ([]*model.FileAnalysisResult, error) {

	workers := min(max(s.config.Application.ThreadPoolSize, 1), len(files))

	var wg sync.WaitGroup
	jobs := make(chan *fileJob, len(files))
	results := make(chan *fileResult, len(files))

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go fileWorker(ctx, analyze, jobs, results, &wg)
	}
	for i, f := range files {
		jobs <- &fileJob{index: i, media: f}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]*model.FileAnalysisResult, len(files))
	var failed *fileResult
	for r := range results {
		if r.err != nil {
			if failed == nil || r.index < failed.index {
				failed = r
			}
			continue
		}
		issues := r.issues
		if issues == nil {
			issues = []*model.LocalizationIssue{}
		}
		out[r.index] = &model.FileAnalysisResult{Filename: files[r.index].Filename, Issues: issues}
	}
	if failed != nil {
		return nil, &AnalysisError{Filename: files[failed.index].Filename, Err: failed.err}
	}
	return out, nil
}

func fileWorker(
	ctx context.Context,
	analyze *workflow.AnalyzeWorkflow,
	jobs <-chan *fileJob,
	results chan<- *fileResult,
	wg *sync.WaitGroup) {

	defer wg.Done()
	for j := range jobs {
		issues, err := analyze.Run(ctx, j.media)
		results <- &fileResult{index: j.index, issues: issues, err: err}
	}
}

// responseProvider echoes the provider the client asked for.
func responseProvider(raw string, parsed model.ProviderName, known bool) model.ProviderName {
	if known {
		return parsed
	}
	return model.ProviderName(raw)
}

// roundSeconds rounds d to hundredths of a second. The exact binary value
// of the seconds is rounded, so 15ms gives 0.01.
func roundSeconds(d time.Duration) float64 {
	s := d.Seconds()
	r, err := strconv.ParseFloat(strconv.FormatFloat(s, 'f', 2, 64), 64)
	if err != nil {
		return s
	}
	return r
}
