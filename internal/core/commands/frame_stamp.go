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

package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
)

// FrameStamp sets frame_url on every issue to the name of the file it was
// found in. Whatever the model put there is overwritten.
type FrameStamp struct {
	cor.BaseCommand
}

func NewFrameStamp(name string) *FrameStamp {
	return &FrameStamp{BaseCommand: *cor.NewBaseCommand(name)}
}

func (f *FrameStamp) Execute(context cor.Context) {
	issues, ok := issuesInput(context, f.GetInputParam())
	if !ok {
		f.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(f.GetName(), fmt.Errorf("expected issues in %s", f.GetInputParam()))
		return
	}
	media := mediaInput(context, GetMediaFileParameterName())
	if media == nil {
		f.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(f.GetName(), fmt.Errorf("no media file in %s", GetMediaFileParameterName()))
		return
	}
	for _, issue := range issues {
		issue.SetFrameURL(media.Filename)
	}
	f.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(f.GetOutputParam(), issues)
}
