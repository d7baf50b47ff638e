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

// This file defines the command that asks the vision model for issues.
//
// Logic Flow:
//
//  1. It receives the *model.MediaFile from the context, plus the staged copy
//     of a video when MediaUpload created one.
//  2. It renders the user prompt for the input type (image or video) from a
//     Go template. The template gets an example issue as EXAMPLE_JSON, the
//     few-shot example that keeps the model close to the expected schema.
//  3. It sends the system prompt, the user prompt and the media to the
//     provider in one request.
//  4. The raw reply text goes to the output parameter. It is not trusted
//     here; ResponseToIssues is the next step.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

// VisionRequest is a command that sends a media file to a vision provider.
type VisionRequest struct {
	cor.BaseCommand
	provider       providers.VisionProvider
	imageSystem    string
	videoSystem    string
	imageTemplate  *template.Template
	videoTemplate  *template.Template
	temperature    float32
	maxTokens      int
	latencyHist    metric.Float64Histogram // Seconds per provider call.
	responseLength metric.Int64Counter     // Characters of reply text.
}

// NewVisionRequest is the constructor for the VisionRequest command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - provider: The vision provider to call.
//   - prompts: The prompt templates from the configuration.
//   - settings: Temperature and token limit for the call.
//
// Outputs:
//   - *VisionRequest: The command, or an error if a prompt template does not parse.
func NewVisionRequest(
	name string,
	provider providers.VisionProvider,
	prompts cloud.PromptTemplates,
	settings cloud.VisionModel) (*VisionRequest, error) {

	imageTemplate, err := template.New("image-prompt").Parse(prompts.ImageUser)
	if err != nil {
		return nil, fmt.Errorf("invalid image prompt template: %w", err)
	}
	videoTemplate, err := template.New("video-prompt").Parse(prompts.VideoUser)
	if err != nil {
		return nil, fmt.Errorf("invalid video prompt template: %w", err)
	}

	out := &VisionRequest{
		BaseCommand:   *cor.NewBaseCommand(name),
		provider:      provider,
		imageSystem:   prompts.ImageSystem,
		videoSystem:   prompts.VideoSystem,
		imageTemplate: imageTemplate,
		videoTemplate: videoTemplate,
		temperature:   settings.Temperature,
		maxTokens:     int(settings.MaxTokens),
	}
	out.latencyHist, _ = out.GetMeter().Float64Histogram(fmt.Sprintf("%s.%s.latency", out.GetName(), provider.Name()),
		metric.WithUnit("s"))
	out.responseLength, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.%s.response.length", out.GetName(), provider.Name()))
	return out, nil
}

// GenerateParams creates the map of dynamic data to be injected into the prompt template.
func (t *VisionRequest) GenerateParams(video bool) map[string]interface{} {
	params := make(map[string]interface{})
	example, _ := json.Marshal(model.GetExampleIssue(video))
	params["EXAMPLE_JSON"] = string(example)
	return params
}

// Execute renders the prompt and calls the provider.
func (t *VisionRequest) Execute(context cor.Context) {
	media := mediaInput(context, t.GetInputParam())
	if media == nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("expected *model.MediaFile in %s", t.GetInputParam()))
		return
	}
	video := media.InputType == model.InputTypeVideo

	tmpl, system := t.imageTemplate, t.imageSystem
	if video {
		tmpl, system = t.videoTemplate, t.videoSystem
	}
	var buffer bytes.Buffer
	if err := tmpl.Execute(&buffer, t.GenerateParams(video)); err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	req := &providers.Request{
		SystemPrompt: system,
		Prompt:       buffer.String(),
		Media:        media,
		Temperature:  t.temperature,
		MaxTokens:    t.maxTokens,
	}
	if staged, ok := context.Get(GetStagedMediaParameterName()).(*providers.StagedMedia); ok {
		req.Staged = staged
	}

	start := time.Now()
	out, err := t.provider.Generate(context.GetContext(), req)
	t.latencyHist.Record(context.GetContext(), time.Since(start).Seconds())
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), err)
		return
	}

	slog.DebugContext(context.GetContext(), "vision model replied",
		"provider", t.provider.Name(), "file", media.Filename, "length", len(out))
	t.responseLength.Add(context.GetContext(), int64(len(out)))
	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
