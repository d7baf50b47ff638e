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

// Package cloud holds the application configuration, the shared service
// clients and the helpers used to talk to Generative AI models.
//
// This file centralizes all configuration structs. They are populated from
// layered TOML files by LoadConfig.
//
// Structs:
//   - Upload: allow-lists and size limits for uploaded media.
//   - VisionModel: per-provider model settings.
//   - PromptTemplates: text/template sources for the analysis prompts.
//   - Storage: Cloud Storage settings for staging video on Vertex AI.
//   - Config: the root of the configuration tree.
package cloud

import (
	"strings"

	"google.golang.org/genai"
)

// DefaultSafetySettings relaxes the Gemini content filters. Screenshots of
// games routinely contain violence or mature themes that would otherwise
// block the response.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// Backends understood by Application.GenAIBackend.
const (
	BackendGeminiAPI = "gemini-api"
	BackendVertex    = "vertex"
)

// Upload limits what the analysis endpoint accepts.
type Upload struct {
	ImageExtensions []string `toml:"image_extensions"` // Lower-case, with the leading dot.
	VideoExtensions []string `toml:"video_extensions"`
	ImageMaxBytes   int64    `toml:"image_max_bytes"`
	VideoMaxBytes   int64    `toml:"video_max_bytes"`
	MaxRequestBytes int64    `toml:"max_request_bytes"` // Whole request body; 0 disables.
	MaxImageEdge    int      `toml:"max_image_edge"`    // Longest edge in pixels before an image is downscaled; 0 disables.
	MaxImagePixels  int64    `toml:"max_image_pixels"`  // Images declaring more pixels are never decoded; 0 disables.
	AnalyzedFrames  int      `toml:"analyzed_frames"`
}

// VisionModel configures one provider adapter.
type VisionModel struct {
	Model       string  `toml:"model"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int32   `toml:"max_tokens"`
	RateLimit   int     `toml:"rate_limit"`  // Requests per second; 0 means unlimited.
	BaseURL     string  `toml:"base_url"`    // Endpoint override (OpenAI-compatible gateways, Ollama host).
	APIKeyEnv   string  `toml:"api_key_env"` // Environment variable holding the credential.
}

// PromptTemplates holds the prompt sources. The user prompts are rendered
// with text/template and receive EXAMPLE_JSON; the alternatives prompt
// receives ORIGINAL_TEXT, LANGUAGE and CONTEXT.
type PromptTemplates struct {
	ImageSystem  string `toml:"image_system"`
	ImageUser    string `toml:"image_user"`
	VideoSystem  string `toml:"video_system"`
	VideoUser    string `toml:"video_user"`
	Alternatives string `toml:"alternatives"`
}

// Storage holds the Cloud Storage settings.
type Storage struct {
	StagingBucket string `toml:"staging_bucket"` // Bucket videos are staged in for Vertex AI; required on that backend.
	StagingPrefix string `toml:"staging_prefix"`
}

// Config represents the overall configuration for the application.
type Config struct {
	Application struct {
		Name                  string   `toml:"name"`
		GoogleProjectId       string   `toml:"google_project_id"`
		GoogleLocation        string   `toml:"location"`
		GenAIBackend          string   `toml:"genai_backend"` // "gemini-api" or "vertex".
		ThreadPoolSize        int      `toml:"thread_pool_size"`
		UseMock               bool     `toml:"use_mock"`
		CorsOrigins           []string `toml:"cors_origins"`
		AlternativesProvider  string   `toml:"alternatives_provider"`
		AnalysisTimeoutSecond int      `toml:"analysis_timeout_seconds"`
		LogFile               string   `toml:"log_file"`
	} `toml:"application"`
	Upload          Upload                 `toml:"upload"`
	Storage         Storage                `toml:"storage"`
	PromptTemplates PromptTemplates        `toml:"prompt_templates"`
	VisionModels    map[string]VisionModel `toml:"vision_models"` // Keyed by provider name.
}

// NewConfig returns a Config with the built-in defaults. Values read by
// LoadConfig override them.
func NewConfig() *Config {
	c := &Config{
		VisionModels: make(map[string]VisionModel),
	}
	c.Application.Name = "localens"
	c.Application.GenAIBackend = BackendGeminiAPI
	c.Application.ThreadPoolSize = 4
	c.Application.UseMock = true
	c.Application.CorsOrigins = []string{
		"http://localhost:5173",
		"http://localhost:5174",
		"http://localhost:5175",
	}
	c.Application.AlternativesProvider = "gemini"
	c.Application.AnalysisTimeoutSecond = 300
	c.Upload = Upload{
		ImageExtensions: []string{".png", ".jpg", ".jpeg", ".webp"},
		VideoExtensions: []string{".mp4", ".mov", ".webm"},
		ImageMaxBytes:   10 * 1024 * 1024,
		VideoMaxBytes:   100 * 1024 * 1024,
		MaxRequestBytes: 200 * 1024 * 1024,
		MaxImageEdge:    3840,
		MaxImagePixels:  40_000_000,
		AnalyzedFrames:  24,
	}
	c.Storage.StagingPrefix = "localens-staging/"
	return c
}

// UsesVertex reports whether GenAI calls go through Vertex AI.
func (c *Config) UsesVertex() bool {
	return strings.EqualFold(c.Application.GenAIBackend, BackendVertex)
}
