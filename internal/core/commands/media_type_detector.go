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

// This file defines the first command of the analysis chain.
//
// Logic Flow:
// Clients send whatever Content-Type their browser guessed, and vision APIs
// reject requests whose declared MIME type does not match the bytes. This
// command settles the MIME type before anything else touches the file.
//
//  1. The command receives the *model.MediaFile from the context.
//  2. It sniffs the leading bytes with the `filetype` library.
//  3. A detected type of the right family (image/* for image input, video/*
//     for video input) wins over the declared one.
//  4. Otherwise a declared type of the right family is kept, and as a last
//     resort the defaults image/png and video/mp4 are used.
//  5. The updated file is written back to the context for the next command.
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// Fallback MIME types for content that cannot be sniffed.
const (
	DefaultImageMIMEType = "image/png"
	DefaultVideoMIMEType = "video/mp4"
)

// MediaTypeDetector is a command that fills in the MIME type of a media file.
type MediaTypeDetector struct {
	cor.BaseCommand // Embeds the BaseCommand for common functionality.
}

// NewMediaTypeDetector is the constructor for the MediaTypeDetector command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *MediaTypeDetector: A pointer to the newly instantiated command.
func NewMediaTypeDetector(name string) *MediaTypeDetector {
	return &MediaTypeDetector{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute detects the MIME type of the media file in the input parameter.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *MediaTypeDetector) Execute(context cor.Context) {
	media := mediaInput(context, c.GetInputParam())
	if media == nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("expected *model.MediaFile in %s", c.GetInputParam()))
		return
	}

	out := *media
	out.MIMEType = DetectMIMEType(media)
	if out.MIMEType != media.MIMEType {
		slog.DebugContext(context.GetContext(), "media type resolved",
			"file", media.Filename, "declared", media.MIMEType, "detected", out.MIMEType)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetMediaFileParameterName(), &out)
	context.Add(c.GetOutputParam(), &out)
}

// DetectMIMEType returns the MIME type to send for media.
func DetectMIMEType(media *model.MediaFile) string {
	family, fallback := "image/", DefaultImageMIMEType
	if media.InputType == model.InputTypeVideo {
		family, fallback = "video/", DefaultVideoMIMEType
	}

	if kind, err := filetype.Match(media.Data); err == nil && kind != filetype.Unknown {
		if strings.HasPrefix(kind.MIME.Value, family) {
			return kind.MIME.Value
		}
	}
	declared := strings.ToLower(strings.TrimSpace(media.MIMEType))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if strings.HasPrefix(declared, family) {
		return declared
	}
	return fallback
}
