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

// This file contains the configuration loader and the helper used for every
// Gemini generate call.
//
// Functions:
//   - LoadConfig: reads configs/.env.toml, then overlays configs/.env.<runtime>.toml.
//   - ApplyEnvironment: applies the environment overrides (USE_MOCK).
//   - GenerateMultiModalResponse: sends one request and concatenates the text
//     of every candidate part, recording token usage.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"
)

const (
	ConfigFileBaseName  = ".env"
	ConfigFileExtension = ".toml"
	ConfigSeparator     = "."
	EnvConfigFilePrefix = "LOCALENS_CONFIG_PREFIX" // Directory holding the config files.
	EnvConfigRuntime    = "LOCALENS_RUNTIME"       // Runtime overlay, e.g. "local", "test", "prod".
	EnvUseMock          = "USE_MOCK"
	DefaultRuntime      = "test"
)

// ErrEmptyResponse is returned when a model produced no candidates at all.
var ErrEmptyResponse = errors.New("model returned no candidates")

func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig decodes the base configuration file and then the
// runtime-specific one into baseConfig; later files override earlier ones.
// Missing files are skipped. A file that exists but does not decode is an
// error.
func LoadConfig(baseConfig interface{}) error {
	prefix := os.Getenv(EnvConfigFilePrefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, string(os.PathSeparator)) {
		prefix = prefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = DefaultRuntime
	}

	files := []string{
		prefix + ConfigFileBaseName + ConfigFileExtension,
		prefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension,
	}
	for _, name := range files {
		if !fileExists(name) {
			slog.Debug("configuration file not found, skipping", "file", name)
			continue
		}
		if _, err := toml.DecodeFile(name, baseConfig); err != nil {
			return fmt.Errorf("failed to decode configuration file %s: %w", name, err)
		}
		slog.Info("loaded configuration file", "file", name)
	}
	return nil
}

// ApplyEnvironment lets USE_MOCK override application.use_mock. Any value
// other than "true" (in any case) turns mock mode off.
func ApplyEnvironment(config *Config) {
	if v, ok := os.LookupEnv(EnvUseMock); ok {
		config.Application.UseMock = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}

// GenerateMultiModalResponse executes content against model and returns
// the concatenated text of all candidate parts. A nil config uses the
// model's own. Failed calls are not retried.
func GenerateMultiModalResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	model *QuotaAwareGenerativeAIModel,
	config *genai.GenerateContentConfig,
	content []*genai.Content) (value string, err error) {

	resp, err := model.GenerateContent(ctx, content, config)
	if err != nil {
		return "", err
	}
	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// NewTextPart wraps in as a user text content.
func NewTextPart(in string) []*genai.Content {
	return genai.Text(in)
}

// NewFileData references a file by URI, e.g. a gs:// object or a Files API handle.
func NewFileData(in string, mimeType string) *genai.FileData {
	return &genai.FileData{FileURI: in, MIMEType: mimeType}
}
