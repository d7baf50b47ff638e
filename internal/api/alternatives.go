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
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-localens/internal/core/services"
)

// AlternativesRouter registers POST /generate-alternatives.
func AlternativesRouter(r *gin.RouterGroup, generator AlternativesGenerator) {
	r.POST("/generate-alternatives", func(c *gin.Context) {
		var req services.AlternativesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if isTooLarge(err) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"detail": err.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}

		resp, err := generator.Generate(c.Request.Context(), &req)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "alternatives request failed", "language", req.Language, "error", err)
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}
