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

// Package commands provides the concrete implementations of the Chain of
// Responsibility (COR) pattern's Command interface. Each command is one step
// of the per-file analysis: detect the media type, shrink oversized images,
// stage video, ask the vision model, parse its reply, localize suggestions
// and stamp each issue with its source file.
package commands

import (
	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// GetMediaFileParameterName returns the key the workflow stores the file
// under analysis with. Commands that rewrite the file update this key too.
func GetMediaFileParameterName() string {
	return "__MEDIA_FILE__"
}

// GetStagedMediaParameterName returns the key holding the remote copy of a
// staged video, when one exists.
func GetStagedMediaParameterName() string {
	return "__STAGED_MEDIA__"
}

// mediaInput returns the media file a command reads from key, or nil.
func mediaInput(context cor.Context, key string) *model.MediaFile {
	media, _ := context.Get(key).(*model.MediaFile)
	return media
}

// issuesInput returns the issue list a command reads from key. ok is false
// when the key holds something else.
func issuesInput(context cor.Context, key string) (issues []*model.LocalizationIssue, ok bool) {
	issues, ok = context.Get(key).([]*model.LocalizationIssue)
	return issues, ok
}
