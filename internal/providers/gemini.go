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

// This file implements the Gemini adapter on top of google.golang.org/genai.
//
// Logic Flow:
//  1. Images are sent inline as a blob part next to the text prompt.
//  2. Video has to be referenced by URI. On the Gemini Developer API the
//     bytes go through the Files API: upload, poll every two seconds until
//     the file leaves PROCESSING, then reference file.URI. On Vertex AI the
//     bytes are written to the staging bucket and referenced by gs:// URI.
//  3. The staged copy is deleted once the request is done, either by the
//     caller through StagedMedia.Release or by Generate itself when it had
//     to stage the file on its own.
//  4. Every call goes through cloud.QuotaAwareGenerativeAIModel so the
//     configured rate limit applies.
package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

// DefaultPollInterval is how often an uploaded video's state is checked.
const DefaultPollInterval = 2 * time.Second

// ErrStagingFailed is returned when the Files API reports a failed upload.
var ErrStagingFailed = errors.New("video processing failed")

// Gemini talks to Gemini models through the GenAI SDK.
type Gemini struct {
	client        *genai.Client
	model         *cloud.QuotaAwareGenerativeAIModel
	storageClient *storage.Client
	bucket        string
	prefix        string
	vertex        bool
	pollInterval  time.Duration
	inputTokens   metric.Int64Counter
	outputTokens  metric.Int64Counter
}

// NewGemini builds the adapter from the shared clients. It fails with
// ErrMissingAPIKey when no GenAI client could be created.
func NewGemini(clients *cloud.ServiceClients, config *cloud.Config) (*Gemini, error) {
	if clients == nil || clients.GenAIClient == nil || clients.GeminiModel == nil {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	g := &Gemini{
		client:        clients.GenAIClient,
		model:         clients.GeminiModel,
		storageClient: clients.StorageClient,
		bucket:        config.Storage.StagingBucket,
		prefix:        config.Storage.StagingPrefix,
		vertex:        config.UsesVertex(),
		pollInterval:  DefaultPollInterval,
	}
	meter := otel.Meter(cor.MeterName)
	g.inputTokens, _ = meter.Int64Counter("provider.gemini.token.input")
	g.outputTokens, _ = meter.Int64Counter("provider.gemini.token.output")
	return g, nil
}

func (g *Gemini) Name() model.ProviderName { return model.ProviderGemini }

func (g *Gemini) SupportsVideo() bool { return true }

// Generate sends req to the configured Gemini model.
func (g *Gemini) Generate(ctx context.Context, req *Request) (string, error) {
	staged := req.Staged
	if isVideo(req) && staged == nil {
		var err error
		if staged, err = g.Stage(ctx, req.Media); err != nil {
			return "", err
		}
		defer func() {
			if err := staged.Release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "failed to release staged video", "uri", staged.URI, "error", err)
			}
		}()
	}

	out, err := cloud.GenerateMultiModalResponse(ctx, g.inputTokens, g.outputTokens, g.model,
		g.generateConfig(req), geminiContents(req, staged))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return out, nil
}

func (g *Gemini) generateConfig(req *Request) *genai.GenerateContentConfig {
	base := g.model.GenerativeContentConfig
	cfg := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr[float32](req.Temperature),
		SafetySettings: cloud.DefaultSafetySettings,
	}
	if base != nil {
		cfg.MaxOutputTokens = base.MaxOutputTokens
		cfg.SafetySettings = base.SafetySettings
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	return cfg
}

// geminiContents lays out the request parts: media first, then the prompt.
func geminiContents(req *Request, staged *StagedMedia) []*genai.Content {
	if req.Media == nil {
		return cloud.NewTextPart(req.Prompt)
	}
	parts := make([]*genai.Part, 0, 2)
	if staged != nil {
		parts = append(parts, &genai.Part{FileData: cloud.NewFileData(staged.URI, staged.MIMEType)})
	} else {
		parts = append(parts, genai.NewPartFromBytes(req.Media.Data, req.Media.MIMEType))
	}
	parts = append(parts, genai.NewPartFromText(req.Prompt))
	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
}

// Stage uploads media so that it can be referenced by URI.
func (g *Gemini) Stage(ctx context.Context, media *model.MediaFile) (*StagedMedia, error) {
	if g.vertex {
		return g.stageToGCS(ctx, media)
	}
	return g.stageToFilesAPI(ctx, media)
}

func (g *Gemini) stageToGCS(ctx context.Context, media *model.MediaFile) (*StagedMedia, error) {
	if g.storageClient == nil || g.bucket == "" {
		return nil, errors.New("gemini: storage.staging_bucket is required for video on vertex")
	}
	name := cloud.StagingObjectName(g.prefix, media.Filename)
	obj, err := cloud.UploadToGCS(ctx, g.storageClient, g.bucket, name, media.MIMEType, media.Data)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "staged video in cloud storage", "file", media.Filename, "uri", obj.URI())
	return NewStagedMedia(obj.URI(), obj.MIMEType, func(ctx context.Context) error {
		return cloud.DeleteFromGCS(ctx, g.storageClient, obj)
	}), nil
}

func (g *Gemini) stageToFilesAPI(ctx context.Context, media *model.MediaFile) (*StagedMedia, error) {
	file, err := g.client.Files.Upload(ctx, bytes.NewReader(media.Data), &genai.UploadFileConfig{
		MIMEType:    media.MIMEType,
		DisplayName: media.Filename,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload file to File Service: %w", err)
	}
	name := file.Name
	release := func(ctx context.Context) error {
		_, err := g.client.Files.Delete(ctx, name, nil)
		return err
	}

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()
	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			_ = release(context.WithoutCancel(ctx))
			return nil, ctx.Err()
		case <-ticker.C:
		}
		if file, err = g.client.Files.Get(ctx, name, nil); err != nil {
			_ = release(context.WithoutCancel(ctx))
			return nil, fmt.Errorf("failed to get file status during processing: %w", err)
		}
	}
	if file.State == genai.FileStateFailed {
		_ = release(ctx)
		return nil, fmt.Errorf("%s: %w", media.Filename, ErrStagingFailed)
	}

	slog.InfoContext(ctx, "staged video in file service", "file", media.Filename, "name", name)
	return NewStagedMedia(file.URI, file.MIMEType, release), nil
}
