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
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/ollama/ollama/api"
	"golang.org/x/time/rate"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama runs a local vision model (llava, minicpm-v, qwen-vl) through an
// Ollama server. No credential is needed.
type Ollama struct {
	client    *api.Client
	model     string
	maxTokens int
	limiter   *rate.Limiter
}

// NewOllama builds the adapter for the server at settings.BaseURL. Only the
// scheme and host of the URL are used.
func NewOllama(settings cloud.VisionModel) (*Ollama, error) {
	raw := settings.BaseURL
	if raw == "" {
		raw = defaultOllamaURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("ollama: invalid base url: %w", err)
	}
	baseURL := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Ollama{
		client:    api.NewClient(baseURL, http.DefaultClient),
		model:     settings.Model,
		maxTokens: int(settings.MaxTokens),
		limiter:   cloud.NewLimiter(settings.RateLimit),
	}, nil
}

func (o *Ollama) Name() model.ProviderName { return model.ProviderOllama }

func (o *Ollama) SupportsVideo() bool { return false }

func (o *Ollama) Generate(ctx context.Context, req *Request) (string, error) {
	if isVideo(req) {
		return "", ErrVideoNotSupported
	}

	messages := make([]api.Message, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	user := api.Message{Role: "user", Content: req.Prompt}
	if req.Media != nil {
		user.Images = []api.ImageData{api.ImageData(req.Media.Data)}
	}
	messages = append(messages, user)

	options := map[string]any{"temperature": req.Temperature}
	maxTokens := o.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		options["num_predict"] = maxTokens
	}

	streamFalse := false
	chat := &api.ChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   &streamFalse,
		Options:  options,
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	var sb strings.Builder
	err := o.client.Chat(ctx, chat, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat error: %w", err)
	}
	return sb.String(), nil
}
