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

// This file defines the command that stages a video with the provider
// before it is analyzed.
//
// Logic Flow:
// Gemini cannot take a video inline; it needs a handle to a copy on its own
// side (the Files API, or a gs:// object on Vertex AI). Staging it as its
// own chain step gives the upload a separate span and error counter, and
// ties the deletion of the copy to the lifetime of the run.
//
//  1. The command only runs for video input, and only when the provider
//     implements providers.MediaStager.
//  2. It stages the file and waits until the provider reports it usable.
//  3. The release of the staged copy is registered as a cleanup on the
//     context, so it runs when the workflow closes the context whether or
//     not later steps succeed.
//  4. The staged handle is stored under GetStagedMediaParameterName() and the
//     media file is passed on unchanged.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/providers"
)

// MediaUpload is a command that stages a video with the vision provider.
type MediaUpload struct {
	cor.BaseCommand
	stager providers.MediaStager // nil when the provider takes media inline.
}

// NewMediaUpload is the constructor for the MediaUpload command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - provider: The provider the video is analyzed by. If it does not
//     implement providers.MediaStager the command never runs.
//
// Outputs:
//   - *MediaUpload: A pointer to the newly instantiated command.
func NewMediaUpload(name string, provider providers.VisionProvider) *MediaUpload {
	stager, _ := provider.(providers.MediaStager)
	return &MediaUpload{BaseCommand: *cor.NewBaseCommand(name), stager: stager}
}

func (v *MediaUpload) IsExecutable(context cor.Context) bool {
	if v.stager == nil || !v.BaseCommand.IsExecutable(context) {
		return false
	}
	media := mediaInput(context, v.GetInputParam())
	return media != nil && media.InputType == model.InputTypeVideo
}

func (v *MediaUpload) Execute(context cor.Context) {
	media := mediaInput(context, v.GetInputParam())

	staged, err := v.stager.Stage(context.GetContext(), media)
	if err != nil {
		v.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(v.GetName(), fmt.Errorf("failed to stage %s: %w", media.Filename, err))
		return
	}
	context.AddCleanup(v.GetName(), staged.Release)

	v.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetStagedMediaParameterName(), staged)
	context.Add(v.GetOutputParam(), media)
}
