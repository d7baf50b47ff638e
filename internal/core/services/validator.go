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


package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
)

const megabyte = 1024 * 1024

// FileValidator checks uploads against the configured allow-lists and size caps.
type FileValidator struct {
	upload cloud.Upload
}

func NewFileValidator(upload cloud.Upload) *FileValidator {
	return &FileValidator{upload: upload}
}

// Validate returns every problem found in files, or nil when they are all
// acceptable. An empty upload yields a single problem.
func (v *FileValidator) Validate(files []*model.MediaFile, inputType model.InputType) []string {
	if len(files) == 0 {
		return []string{"파일이 제공되지 않았습니다."}
	}

	allowed, maxBytes := v.upload.ImageExtensions, v.upload.ImageMaxBytes
	if inputType == model.InputTypeVideo {
		allowed, maxBytes = v.upload.VideoExtensions, v.upload.VideoMaxBytes
	}

	var problems []string
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !contains(allowed, ext) {
			problems = append(problems, fmt.Sprintf("'%s': 허용되지 않는 형식입니다. 허용: %s",
				f.Filename, strings.Join(allowed, ", ")))
		}
		if maxBytes > 0 && int64(f.Size()) > maxBytes {
			problems = append(problems, fmt.Sprintf("'%s': 파일 크기 초과 (%.1fMB > %.0fMB)",
				f.Filename, float64(f.Size())/megabyte, float64(maxBytes)/megabyte))
		}
	}
	return problems
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if strings.ToLower(item) == s {
			return true
		}
	}
	return false
}
