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

// This file defines the command that shrinks oversized screenshots before
// they are sent to a vision model.
//
// Logic Flow:
// Issue coordinates are normalized to a 0..1000 grid, so the pixel size of
// the image the model sees does not change the geometry of the result. Large
// screenshots only cost upload time and tokens.
//
//  1. Get the image from the context. Videos are never touched; the command
//     reports itself as not executable for them.
//  2. Read only the header to learn the dimensions. If the longest edge is
//     within the limit the file passes through as is.
//  3. Images declaring more pixels than the pixel cap pass through
//     undecoded. A small compressed file can declare a huge canvas.
//  4. Decode it with `imaging` (PNG, JPEG, GIF, BMP, TIFF) or the x/image
//     WebP decoder and resize with a Lanczos filter so the longest edge
//     equals the limit, keeping the aspect ratio.
//  5. Re-encode: PNG stays PNG so UI text keeps sharp edges, everything else
//     becomes JPEG.
//  6. Undecodable files pass through unchanged; the provider decides whether
//     it can read them.
package commands

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// DefaultJPEGQuality is used when a downscaled image is re-encoded as JPEG.
const DefaultJPEGQuality = 90

// ImageDownscaler is a command that limits the longest edge of an image.
type ImageDownscaler struct {
	cor.BaseCommand
	maxEdge   int   // Longest allowed edge in pixels; 0 disables the command.
	maxPixels int64 // Largest width*height that will be decoded; 0 means no cap.
}

// NewImageDownscaler is the constructor for the ImageDownscaler command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - maxEdge: The longest edge, in pixels, an image may keep.
//   - maxPixels: The largest pixel count the command will decode.
//
// Outputs:
//   - *ImageDownscaler: A pointer to the newly instantiated command.
func NewImageDownscaler(name string, maxEdge int, maxPixels int64) *ImageDownscaler {
	return &ImageDownscaler{BaseCommand: *cor.NewBaseCommand(name), maxEdge: maxEdge, maxPixels: maxPixels}
}

// IsExecutable limits the command to images, and only when a limit is set.
func (c *ImageDownscaler) IsExecutable(context cor.Context) bool {
	if c.maxEdge <= 0 || !c.BaseCommand.IsExecutable(context) {
		return false
	}
	media := mediaInput(context, c.GetInputParam())
	return media != nil && media.InputType == model.InputTypeImage
}

func (c *ImageDownscaler) Execute(context cor.Context) {
	media := mediaInput(context, c.GetInputParam())

	header, _, err := image.DecodeConfig(bytes.NewReader(media.Data))
	if err != nil {
		slog.WarnContext(context.GetContext(), "image could not be decoded; sending original",
			"file", media.Filename, "error", err)
		c.passThrough(context, media)
		return
	}

	width, height := header.Width, header.Height
	if max(width, height) <= c.maxEdge {
		c.passThrough(context, media)
		return
	}
	if c.maxPixels > 0 && int64(width)*int64(height) > c.maxPixels {
		slog.WarnContext(context.GetContext(), "image exceeds pixel cap; sending original",
			"file", media.Filename,
			"size", fmt.Sprintf("%dx%d", width, height),
			"max_pixels", c.maxPixels)
		c.passThrough(context, media)
		return
	}

	img, format, err := image.Decode(bytes.NewReader(media.Data))
	if err != nil {
		slog.WarnContext(context.GetContext(), "image could not be decoded; sending original",
			"file", media.Filename, "error", err)
		c.passThrough(context, media)
		return
	}

	if width >= height {
		img = imaging.Resize(img, c.maxEdge, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, c.maxEdge, imaging.Lanczos)
	}

	out := *media
	var buf bytes.Buffer
	if format == "png" {
		err = imaging.Encode(&buf, img, imaging.PNG)
		out.MIMEType = "image/png"
	} else {
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(DefaultJPEGQuality))
		out.MIMEType = "image/jpeg"
	}
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to encode downscaled image: %w", err))
		return
	}
	out.Data = buf.Bytes()

	slog.InfoContext(context.GetContext(), "image downscaled",
		"file", media.Filename,
		"from", fmt.Sprintf("%dx%d", width, height),
		"to", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()),
		"bytes", len(out.Data))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetMediaFileParameterName(), &out)
	context.Add(c.GetOutputParam(), &out)
}

func (c *ImageDownscaler) passThrough(context cor.Context, media *model.MediaFile) {
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), media)
}
