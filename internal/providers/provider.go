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

// Package providers adapts vision model vendors to one small interface.
// Every adapter sends a system prompt, a user prompt and optionally one
// media file, and returns the model's raw reply text. Replies are untrusted:
// turning them into issues is the job of the parser package.
package providers

import (
	"context"
	"errors"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

var (
	// ErrVideoNotSupported is returned for video input by providers that
	// only accept still images.
	ErrVideoNotSupported = errors.New("provider does not support video analysis")
	// ErrUnknownProvider is returned for a provider name that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrMissingAPIKey is returned when a provider's credential is not configured.
	ErrMissingAPIKey = errors.New("api key not configured")
)

// Request is one call to a vision model.
type Request struct {
	SystemPrompt string
	Prompt       string
	Media        *model.MediaFile // nil for text-only requests.
	Staged       *StagedMedia     // Remote copy of Media, when the provider staged it beforehand.
	Temperature  float32
	MaxTokens    int
}

// VisionProvider is implemented by every model adapter.
type VisionProvider interface {
	Name() model.ProviderName
	SupportsVideo() bool
	// Generate returns the raw text of the model's reply.
	Generate(ctx context.Context, req *Request) (string, error)
}

// MediaStager is implemented by providers that need large media uploaded
// to their side before it can be referenced in a request.
type MediaStager interface {
	Stage(ctx context.Context, media *model.MediaFile) (*StagedMedia, error)
}

// StagedMedia is a remote copy of an uploaded file.
type StagedMedia struct {
	URI      string
	MIMEType string
	release  func(ctx context.Context) error
}

// NewStagedMedia describes a staged file that release deletes.
func NewStagedMedia(uri, mimeType string, release func(ctx context.Context) error) *StagedMedia {
	return &StagedMedia{URI: uri, MIMEType: mimeType, release: release}
}

// Release deletes the remote copy. It is safe to call more than once.
func (s *StagedMedia) Release(ctx context.Context) error {
	if s == nil || s.release == nil {
		return nil
	}
	release := s.release
	s.release = nil
	return release(ctx)
}

// SupportsVideo reports whether the named provider accepts video input,
// without building the provider.
func SupportsVideo(name model.ProviderName) bool {
	return name == model.ProviderGemini || name == model.ProviderMock
}

func isVideo(req *Request) bool {
	return req.Media != nil && req.Media.InputType == model.InputTypeVideo
}
