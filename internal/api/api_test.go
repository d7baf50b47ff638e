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


package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaycherian/gcp-go-localens/internal/api"
	"github.com/jaycherian/gcp-go-localens/internal/core/model"
	"github.com/jaycherian/gcp-go-localens/internal/core/services"
)

type fakeAnalyzer struct {
	got  *services.AnalyzeRequest
	resp *model.AnalyzeResponse
	err  error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req *services.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeGenerator struct {
	got  *services.AlternativesRequest
	resp *model.AlternativesResponse
	err  error
}

func (f *fakeGenerator) Generate(_ context.Context, req *services.AlternativesRequest) (*model.AlternativesResponse, error) {
	f.got = req
	return f.resp, f.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

type upload struct {
	name string
	data []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["detail"]
}

func TestHealth(t *testing.T) {
	r := api.NewRouter(&fakeAnalyzer{}, &fakeGenerator{})
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"LocaLens API"}`, rec.Body.String())
}

func TestAnalyzeDefaultsAndFiles(t *testing.T) {
	analyzer := &fakeAnalyzer{resp: &model.AnalyzeResponse{
		Success:   true,
		Provider:  model.ProviderGemini,
		InputType: model.InputTypeImage,
		Results:   []*model.FileAnalysisResult{},
	}}
	r := api.NewRouter(analyzer, &fakeGenerator{})

	body, contentType := multipartBody(t, nil, upload{"a.png", []byte("one")}, upload{"b.png", []byte("two")})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(r, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, analyzer.got)
	assert.Equal(t, "gemini", analyzer.got.Provider)
	assert.Equal(t, "image", analyzer.got.InputType)
	require.Len(t, analyzer.got.Files, 2)
	assert.Equal(t, "a.png", analyzer.got.Files[0].Filename)
	assert.Equal(t, []byte("two"), analyzer.got.Files[1].Data)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.NotContains(t, resp, "analyzed_frames")
}

func TestAnalyzeFormFields(t *testing.T) {
	analyzer := &fakeAnalyzer{resp: &model.AnalyzeResponse{Success: true}}
	r := api.NewRouter(analyzer, &fakeGenerator{})

	body, contentType := multipartBody(t, map[string]string{"provider": "claude", "input_type": "video"},
		upload{"clip.mp4", []byte("x")})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	serve(r, req)

	require.NotNil(t, analyzer.got)
	assert.Equal(t, "claude", analyzer.got.Provider)
	assert.Equal(t, "video", analyzer.got.InputType)
}

func TestAnalyzeErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &services.ValidationError{Problems: []string{"a", "b"}}, http.StatusBadRequest},
		{"unsupported video", &services.UnsupportedVideoError{Provider: model.ProviderClaude}, http.StatusBadRequest},
		{"provider init", &services.ProviderInitError{Provider: "gemini", Err: errors.New("no key")}, http.StatusInternalServerError},
		{"analysis", &services.AnalysisError{Filename: "a.png", Err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := api.NewRouter(&fakeAnalyzer{err: tt.err}, &fakeGenerator{})
			body, contentType := multipartBody(t, nil, upload{"a.png", []byte("x")})
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
			req.Header.Set("Content-Type", contentType)
			rec := serve(r, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.err.Error(), detail(t, rec))
		})
	}
}

func TestAnalyzeRejectsNonMultipart(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	r := api.NewRouter(analyzer, &fakeGenerator{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, analyzer.got)
}

func TestGenerateAlternatives(t *testing.T) {
	generator := &fakeGenerator{resp: &model.AlternativesResponse{
		Success:      true,
		OriginalText: "Settings",
		Alternatives: []string{"설정", "옵션"},
	}}
	r := api.NewRouter(&fakeAnalyzer{}, generator)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-alternatives",
		strings.NewReader(`{"original_text":"Settings","language":"ko-KR","context":"button"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, &services.AlternativesRequest{OriginalText: "Settings", Language: "ko-KR", Context: "button"}, generator.got)
	assert.JSONEq(t, `{"success":true,"original_text":"Settings","alternatives":["설정","옵션"]}`, rec.Body.String())
}

func TestGenerateAlternativesErrors(t *testing.T) {
	r := api.NewRouter(&fakeAnalyzer{}, &fakeGenerator{})
	req := httptest.NewRequest(http.MethodPost, "/api/generate-alternatives", strings.NewReader(`{"language":"ko-KR"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, serve(r, req).Code)

	failing := &fakeGenerator{err: &services.AlternativesError{Err: errors.New("boom")}}
	r = api.NewRouter(&fakeAnalyzer{}, failing)
	req = httptest.NewRequest(http.MethodPost, "/api/generate-alternatives",
		strings.NewReader(`{"original_text":"x","language":"ko-KR"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(r, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "대체 문장 생성 실패: boom", detail(t, rec))
}

func TestMaxRequestBytes(t *testing.T) {
	analyzer := &fakeAnalyzer{resp: &model.AnalyzeResponse{Success: true}}
	r := api.NewRouter(analyzer, &fakeGenerator{}, api.MaxRequestBytes(1024))

	body, contentType := multipartBody(t, nil, upload{"big.png", bytes.Repeat([]byte("x"), 4096)})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(r, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, detail(t, rec), "too large")
	assert.Nil(t, analyzer.got)

	body, contentType = multipartBody(t, nil, upload{"small.png", []byte("x")})
	req = httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec = serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, analyzer.got)

	long := `{"original_text":"` + strings.Repeat("a", 2048) + `","language":"de-DE"}`
	req = httptest.NewRequest(http.MethodPost, "/api/generate-alternatives", strings.NewReader(long))
	req.Header.Set("Content-Type", "application/json")
	rec = serve(r, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
