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


package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/services"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

// StateManager holds the shared components of the server.
type StateManager struct {
	config              *cloud.Config
	cloud               *cloud.ServiceClients
	registry            *providers.Registry
	analysisService     *services.AnalysisService
	alternativesService *services.AlternativesService
}

var state = &StateManager{}

// SetupOS loads a .env file when present and fills in the config location
// defaults. Variables already set in the environment win.
func SetupOS() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		return os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return nil
}

// GetConfig loads the configuration once.
func GetConfig() (*cloud.Config, error) {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			return nil, err
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			return nil, err
		}
		cloud.ApplyEnvironment(config)
		state.config = config
	}
	return state.config, nil
}

// InitState creates the cloud clients, the provider registry and the services.
func InitState(ctx context.Context, config *cloud.Config) error {
	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients
	state.registry = providers.NewRegistry(config, cloudClients)

	state.analysisService = services.NewAnalysisService(config, state.registry)
	state.alternativesService, err = services.NewAlternativesService(config, state.registry)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "state initialized",
		"use_mock", config.Application.UseMock,
		"workers", config.Application.ThreadPoolSize)
	return nil
}
