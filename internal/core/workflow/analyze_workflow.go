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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements the
// per-file localization analysis workflow.
package workflow

import (
	goctx "context"
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/commands"
	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

// ErrNoResult is returned when the chain finished without errors but did not
// leave an issue list behind.
var ErrNoResult = errors.New("analysis produced no result")

// AnalyzeWorkflow runs one media file through a vision provider and turns
// the reply into a clean issue list. It is structured as a Chain of
// Responsibility (cor.Chain); one workflow serves many files, each run with
// its own cor.Context.
type AnalyzeWorkflow struct {
	cor.BaseCommand
	config   *cloud.Config
	provider providers.VisionProvider
	chain    cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the underlying chain against context.
func (w *AnalyzeWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
// The output of each command is the input of the next.
func (w *AnalyzeWorkflow) initializeChain() error {
	out := cor.NewBaseChain(w.GetName())

	// Step 1: Settle the MIME type from the file's bytes.
	out.AddCommand(commands.NewMediaTypeDetector("detect-media-type"))

	// Step 2: Shrink screenshots larger than the configured edge. Skipped for video.
	out.AddCommand(commands.NewImageDownscaler("downscale-image", w.config.Upload.MaxImageEdge, w.config.Upload.MaxImagePixels))

	// Step 3: Stage video with providers that need a remote copy. The copy
	// is released when the run's context is closed.
	out.AddCommand(commands.NewMediaUpload("stage-media", w.provider))

	// Step 4: Ask the vision model. The result is raw, untrusted text.
	settings := w.config.VisionModels[string(w.provider.Name())]
	vision, err := commands.NewVisionRequest("vision-request", w.provider, w.config.PromptTemplates, settings)
	if err != nil {
		return err
	}
	out.AddCommand(vision)

	// Step 5: Extract, map, normalize and deduplicate the issues.
	out.AddCommand(commands.NewResponseToIssues("parse-response"))

	// Step 6: Suggestions are shown in Korean.
	out.AddCommand(commands.NewSuggestionLocalizer("localize-suggestions"))

	// Step 7: Point each issue at the file it came from.
	out.AddCommand(commands.NewFrameStamp("stamp-frame"))

	w.chain = out
	return nil
}

// Run analyzes one file. The returned error joins the errors recorded by the
// failing command; staged copies are released before Run returns.
func (w *AnalyzeWorkflow) Run(ctx goctx.Context, media *model.MediaFile) ([]*model.LocalizationIssue, error) {
	chCtx := cor.NewBaseContextWith(ctx)
	defer chCtx.Close()

	chCtx.Add(cor.CtxIn, media)
	chCtx.Add(commands.GetMediaFileParameterName(), media)
	w.Execute(chCtx)

	if err := chCtx.Err(); err != nil {
		return nil, err
	}
	issues, ok := chCtx.Get(cor.CtxIn).([]*model.LocalizationIssue)
	if !ok {
		return nil, fmt.Errorf("%s: %w", media.Filename, ErrNoResult)
	}
	return issues, nil
}

// NewAnalyzeWorkflow is the constructor for the AnalyzeWorkflow. It fails
// when a prompt template in config does not parse.
//
// Inputs:
//   - config: The application's overall configuration.
//   - provider: The vision provider files are analyzed with.
//
// Returns:
//   - A pointer to a newly created and fully initialized AnalyzeWorkflow.
func NewAnalyzeWorkflow(config *cloud.Config, provider providers.VisionProvider) (*AnalyzeWorkflow, error) {
	workflow := &AnalyzeWorkflow{
		BaseCommand: *cor.NewBaseCommand(fmt.Sprintf("analyze-%s", provider.Name())),
		config:      config,
		provider:    provider,
	}
	if err := workflow.initializeChain(); err != nil {
		return nil, err
	}
	return workflow, nil
}
