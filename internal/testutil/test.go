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

// Package test provides helpers shared by the test suites: loading the test
// configuration once, and small media and model-response fixtures.
package test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
)

// StateManager caches the test configuration for the whole test binary.
type StateManager struct {
	once   sync.Once
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails t when err is not nil.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// ConfigDir returns the absolute path of the repository's configs directory,
// independent of the package the test runs in.
func ConfigDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs")
}

// SetupOS points the configuration loader at configs/ with the "test" overlay.
func SetupOS() (err error) {
	if err = os.Setenv(cloud.EnvConfigFilePrefix, ConfigDir()); err != nil {
		return err
	}
	return os.Setenv(cloud.EnvConfigRuntime, "test")
}

// GetConfig loads the test configuration on first use and returns the
// cached copy afterwards. Callers must not modify it; use CopyConfig.
func GetConfig() *cloud.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		if err := cloud.LoadConfig(config); err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = config
	})
	return state.config
}

// CopyConfig returns a shallow copy of the test configuration that a test
// may adjust freely.
func CopyConfig() *cloud.Config {
	c := *GetConfig()
	c.VisionModels = make(map[string]cloud.VisionModel, len(GetConfig().VisionModels))
	for k, v := range GetConfig().VisionModels {
		c.VisionModels[k] = v
	}
	return &c
}

// PNGImage encodes a w x h opaque image as PNG.
func PNGImage(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// PNGHeader returns a PNG signature and an 8-bit grayscale IHDR chunk
// declaring a w x h image, with no pixel data. It is enough for
// image.DecodeConfig; a full decode fails.
func PNGHeader(w, h uint32) []byte {
	ihdr := make([]byte, 0, 17)
	ihdr = append(ihdr, 'I', 'H', 'D', 'R')
	ihdr = binary.BigEndian.AppendUint32(ihdr, w)
	ihdr = binary.BigEndian.AppendUint32(ihdr, h)
	ihdr = append(ihdr, 8, 0, 0, 0, 0)

	out := []byte("\x89PNG\r\n\x1a\n")
	out = binary.BigEndian.AppendUint32(out, 13)
	out = append(out, ihdr...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(ihdr))
}

// MP4Header returns the leading bytes of an MP4 file; enough for content
// sniffing, not for playback.
func MP4Header() []byte {
	return []byte{
		0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
		'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00,
		'm', 'p', '4', '2', 'i', 's', 'o', 'm',
	}
}

// GetTestModelResponse is a typical vision model reply: prose around a
// fenced JSON array whose single issue uses 4K pixel coordinates and an
// English suggestion.
func GetTestModelResponse() string {
	return "Here is what I found:\n" +
		"```json\n" +
		`[{"type":"TEXT_TRUNCATION","severity":"HIGH","description":"Button label cut off",` +
		`"location":{"x1":10,"y1":10,"x2":3840,"y2":2160},"language":"de-DE",` +
		`"suggestion":"Reduce font size","original_text":"Einstellun..."}]` +
		"\n```\nLet me know if you need more."
}
