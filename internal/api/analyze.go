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


package api

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/services"
)

const (
	defaultProvider  = "gemini"
	defaultInputType = "image"
	unknownFilename  = "unknown"
)

// AnalyzeRouter registers POST /analyze. The form carries the repeated
// field "files" plus optional "provider" and "input_type".
func AnalyzeRouter(r *gin.RouterGroup, analyzer Analyzer) {
	r.POST("/analyze", func(c *gin.Context) {
		form, err := c.MultipartForm()
		if isTooLarge(err) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"detail": fmt.Sprintf("request body too large: %v", err)})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("invalid multipart form: %v", err)})
			return
		}

		files, err := readFiles(form.File["files"])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}

		req := &services.AnalyzeRequest{
			Provider:  c.DefaultPostForm("provider", defaultProvider),
			InputType: c.DefaultPostForm("input_type", defaultInputType),
			Files:     files,
		}
		resp, err := analyzer.Analyze(c.Request.Context(), req)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "analyze request failed",
				"provider", req.Provider, "input_type", req.InputType, "error", err)
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

// readFiles loads the uploaded parts into memory.
func readFiles(headers []*multipart.FileHeader) ([]*model.MediaFile, error) {
	files := make([]*model.MediaFile, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", h.Filename, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", h.Filename, err)
		}

		name := h.Filename
		if name == "" {
			name = unknownFilename
		}
		files = append(files, &model.MediaFile{
			Filename: name,
			Data:     data,
			MIMEType: h.Header.Get("Content-Type"),
		})
	}
	return files, nil
}
