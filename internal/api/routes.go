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


// Package api contains the HTTP routes of the LocaLens server.
//
// Routes:
//   - GET  /                           health check.
//   - POST /api/analyze                multipart upload analyzed by a vision provider.
//   - POST /api/generate-alternatives  shorter texts for one UI string.
//
// Errors are returned as {"detail": "..."}. Problems with the request are
// 400s; provider and model failures are 500s.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/services"
)

// Analyzer is implemented by *services.AnalysisService.
type Analyzer interface {
	Analyze(ctx context.Context, req *services.AnalyzeRequest) (*model.AnalyzeResponse, error)
}

// AlternativesGenerator is implemented by *services.AlternativesService.
type AlternativesGenerator interface {
	Generate(ctx context.Context, req *services.AlternativesRequest) (*model.AlternativesResponse, error)
}

// NewRouter builds the gin engine with every route registered. middleware
// runs before the routes, in order.
func NewRouter(analyzer Analyzer, alternatives AlternativesGenerator, middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)

	Health(r)
	apiGroup := r.Group("/api")
	{
		AnalyzeRouter(apiGroup, analyzer)
		AlternativesRouter(apiGroup, alternatives)
	}
	return r
}

// Health registers GET /.
func Health(r *gin.Engine) {
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "LocaLens API"})
	})
}

// abortWithError writes err as a detail body with the status its type maps to.
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"detail": err.Error()})
}

func statusFor(err error) int {
	var invalid *services.ValidationError
	var unsupported *services.UnsupportedVideoError
	switch {
	case errors.As(err, &invalid), errors.As(err, &unsupported):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
