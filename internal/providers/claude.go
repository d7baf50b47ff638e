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
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

const defaultClaudeMaxTokens = 4096

// claudeImageTypes are the media types the Messages API accepts for images.
var claudeImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Claude sends still images to Anthropic's Messages API. It has no video input.
type Claude struct {
	client       anthropic.Client
	model        string
	maxTokens    int64
	limiter      *rate.Limiter
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
}

// NewClaude builds the adapter. Extra options are passed to the SDK client
// after the API key, which lets tests point it at a local server.
func NewClaude(apiKey string, settings cloud.VisionModel, opts ...option.RequestOption) (*Claude, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("claude: %w", ErrMissingAPIKey)
	}
	c := &Claude{
		client:    anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		model:     settings.Model,
		maxTokens: int64(settings.MaxTokens),
		limiter:   cloud.NewLimiter(settings.RateLimit),
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultClaudeMaxTokens
	}
	meter := otel.Meter(cor.MeterName)
	c.inputTokens, _ = meter.Int64Counter("provider.claude.token.input")
	c.outputTokens, _ = meter.Int64Counter("provider.claude.token.output")
	return c, nil
}

func (c *Claude) Name() model.ProviderName { return model.ProviderClaude }

func (c *Claude) SupportsVideo() bool { return false }

// Generate sends one user turn made of the image, when present, and the prompt.
func (c *Claude) Generate(ctx context.Context, req *Request) (string, error) {
	if isVideo(req) {
		return "", ErrVideoNotSupported
	}

	blocks := make([]anthropic.ContentBlockParamUnion, 0, 2)
	if req.Media != nil {
		mediaType := req.Media.MIMEType
		if !claudeImageTypes[mediaType] {
			mediaType = "image/png"
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(req.Media.Data)))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Prompt))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}
	c.inputTokens.Add(ctx, msg.Usage.InputTokens)
	c.outputTokens.Add(ctx, msg.Usage.OutputTokens)

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
