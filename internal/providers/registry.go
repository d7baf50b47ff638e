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
	"fmt"
	"os"
	"sync"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

var defaultKeyEnv = map[model.ProviderName]string{
	model.ProviderGemini: cloud.DefaultGeminiKeyEnv,
	model.ProviderClaude: "CLAUDE_API_KEY",
	model.ProviderOpenAI: "OPENAI_API_KEY",
}

// Registry hands out providers by name. Adapters are built on first use and
// cached, so a missing credential only fails requests for that provider.
type Registry struct {
	mu        sync.Mutex
	config    *cloud.Config
	clients   *cloud.ServiceClients
	providers map[model.ProviderName]VisionProvider
}

// NewRegistry creates a registry. The mock provider is always available.
func NewRegistry(config *cloud.Config, clients *cloud.ServiceClients) *Registry {
	r := &Registry{
		config:    config,
		clients:   clients,
		providers: make(map[model.ProviderName]VisionProvider),
	}
	r.Register(NewMock())
	return r
}

// Register adds or replaces a provider under its own name.
func (r *Registry) Register(p VisionProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns the provider called name, building it if needed.
func (r *Registry) Get(name string) (VisionProvider, error) {
	providerName, ok := model.ParseProviderName(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownProvider)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[providerName]; ok {
		return p, nil
	}
	p, err := r.build(providerName)
	if err != nil {
		return nil, err
	}
	r.providers[providerName] = p
	return p, nil
}

func (r *Registry) build(name model.ProviderName) (VisionProvider, error) {
	settings := r.config.VisionModels[string(name)]
	switch name {
	case model.ProviderGemini:
		return NewGemini(r.clients, r.config)
	case model.ProviderClaude:
		return NewClaude(apiKey(name, settings), settings)
	case model.ProviderOpenAI:
		return NewOpenAI(apiKey(name, settings), settings)
	case model.ProviderOllama:
		return NewOllama(settings)
	case model.ProviderMock:
		return NewMock(), nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownProvider)
}

func apiKey(name model.ProviderName, settings cloud.VisionModel) string {
	env := settings.APIKeyEnv
	if env == "" {
		env = defaultKeyEnv[name]
	}
	return os.Getenv(env)
}
