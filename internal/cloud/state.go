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

// This file builds the Google Cloud clients shared by the whole process.
//
// Logic Flow:
//  1. NewCloudServiceClients is called once at startup with the loaded Config.
//  2. The GenAI client is created for the configured backend: an API key for
//     the Gemini Developer API, or project and location for Vertex AI.
//  3. On Vertex AI a Cloud Storage client is created as well; videos are
//     staged in a bucket there instead of going through the Files API.
//  4. The Gemini model settings are wrapped in a QuotaAwareGenerativeAIModel.
//
// A missing Gemini API key is not an error here: the clients are left nil
// and the provider registry reports the problem when Gemini is requested.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// DefaultGeminiKeyEnv is read when vision_models.gemini.api_key_env is empty.
const DefaultGeminiKeyEnv = "GEMINI_API_KEY"

// ServiceClients holds the clients shared across requests.
type ServiceClients struct {
	GenAIClient   *genai.Client                // nil when Gemini is not configured.
	StorageClient *storage.Client              // Only set on the Vertex AI backend.
	GeminiModel   *QuotaAwareGenerativeAIModel // nil when GenAIClient is nil.
}

// Close releases the clients that hold connections.
func (c *ServiceClients) Close() {
	if c == nil {
		return
	}
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
}

// NewCloudServiceClients creates the clients required by config.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	cloud = &ServiceClients{}

	geminiConfig := config.VisionModels["gemini"]
	clientConfig := &genai.ClientConfig{}
	if config.UsesVertex() {
		clientConfig.Project = config.Application.GoogleProjectId
		clientConfig.Location = config.Application.GoogleLocation
		clientConfig.Backend = genai.BackendVertexAI
	} else {
		keyEnv := geminiConfig.APIKeyEnv
		if keyEnv == "" {
			keyEnv = DefaultGeminiKeyEnv
		}
		clientConfig.APIKey = os.Getenv(keyEnv)
		clientConfig.Backend = genai.BackendGeminiAPI
		if clientConfig.APIKey == "" {
			slog.WarnContext(ctx, "gemini api key not set; gemini provider disabled", "env", keyEnv)
			return cloud, nil
		}
	}

	gc, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %w", err)
	}
	cloud.GenAIClient = gc

	if config.UsesVertex() {
		sc, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("error creating storage client: %w", err)
		}
		cloud.StorageClient = sc
	}

	generateConfig := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr[float32](geminiConfig.Temperature),
		SafetySettings: DefaultSafetySettings,
	}
	if geminiConfig.MaxTokens > 0 {
		generateConfig.MaxOutputTokens = geminiConfig.MaxTokens
	}
	cloud.GeminiModel = NewQuotaAwareModel(generateConfig, geminiConfig.Model, gc.Models, geminiConfig.RateLimit)

	slog.InfoContext(ctx, "cloud service clients ready",
		"backend", config.Application.GenAIBackend,
		"model", geminiConfig.Model,
		"staging", cloud.StorageClient != nil)
	return cloud, nil
}
