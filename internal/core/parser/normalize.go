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

package parser

import (
	"strconv"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

// NormalizedExtent is the upper bound of the normalized coordinate grid.
const NormalizedExtent = 1000.0

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  float64
	Height float64
}

// Canonical source resolutions assumed for pixel-space boxes.
var (
	ResolutionUHD = Resolution{Width: 3840, Height: 2160}
	ResolutionFHD = Resolution{Width: 1920, Height: 1080}
	ResolutionHD  = Resolution{Width: 1280, Height: 720}
)

// GuessSourceResolution picks the frame size a pixel-space box was most
// likely measured in, based only on its largest coordinate. It is a
// magnitude heuristic and misjudges non-standard resolutions and aspect ratios.
func GuessSourceResolution(maxVal float64) Resolution {
	switch {
	case maxVal > ResolutionFHD.Width:
		return ResolutionUHD
	case maxVal > ResolutionHD.Width:
		return ResolutionFHD
	default:
		return ResolutionHD
	}
}

// NormalizeCoordinates returns box in the 0..1000 grid. Boxes whose largest
// coordinate is at most 1000 are assumed to be normalized already and are
// returned unchanged; all others are rescaled from the resolution chosen by
// GuessSourceResolution.
func NormalizeCoordinates(box model.BoundingBox) model.BoundingBox {
	maxVal := box.MaxCoordinate()
	if maxVal <= NormalizedExtent {
		return box
	}
	return NormalizeCoordinatesFor(box, GuessSourceResolution(maxVal))
}

// NormalizeCoordinatesFor rescales a pixel-space box measured at res into the
// 0..1000 grid, rounding each coordinate to one decimal place. Rounding is
// applied to the exact binary value, with exact ties going to even.
func NormalizeCoordinatesFor(box model.BoundingBox, res Resolution) model.BoundingBox {
	sx := NormalizedExtent / res.Width
	sy := NormalizedExtent / res.Height
	return model.BoundingBox{
		X1: roundTenth(box.X1 * sx),
		Y1: roundTenth(box.Y1 * sy),
		X2: roundTenth(box.X2 * sx),
		Y2: roundTenth(box.Y2 * sy),
	}
}

// roundTenth formats v with one decimal and parses it back. Scaling by 10
// first can turn a value just above or below .x5 into an exact tie.
func roundTenth(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}
