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

package cloud_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	test "github.com/jaycherian/gcp-go-localens/internal/testutil"
	"github.com/zeebo/assert"
)

func TestLoadRepositoryConfig(t *testing.T) {
	config := test.GetConfig()

	assert.Equal(t, config.Application.Name, "localens")
	assert.Equal(t, config.Application.ThreadPoolSize, 2)
	assert.True(t, config.Application.UseMock)
	assert.Equal(t, config.Upload.MaxImageEdge, 1024)
	assert.Equal(t, config.Upload.MaxImagePixels, int64(40_000_000))
	assert.Equal(t, config.Upload.MaxRequestBytes, int64(200*1024*1024))
	assert.Equal(t, config.Upload.AnalyzedFrames, 24)
	assert.Equal(t, config.VisionModels["gemini"].APIKeyEnv, "GEMINI_API_KEY")
	assert.Equal(t, config.VisionModels["claude"].MaxTokens, int32(4096))
	assert.True(t, strings.Contains(config.PromptTemplates.ImageUser, "{{.EXAMPLE_JSON}}"))
	assert.True(t, strings.Contains(config.PromptTemplates.Alternatives, "{{.ORIGINAL_TEXT}}"))
	assert.False(t, config.UsesVertex())
}

func TestLoadConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	base := "[application]\nname = \"base\"\nthread_pool_size = 3\n\n[vision_models.gemini]\nmodel = \"m1\"\n"
	overlay := "[application]\nthread_pool_size = 9\ngenai_backend = \"vertex\"\n"
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(base), 0o600))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.ci.toml"), []byte(overlay), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "ci")

	config := cloud.NewConfig()
	assert.NoError(t, cloud.LoadConfig(config))

	assert.Equal(t, config.Application.Name, "base")
	assert.Equal(t, config.Application.ThreadPoolSize, 9)
	assert.Equal(t, config.VisionModels["gemini"].Model, "m1")
	assert.True(t, config.UsesVertex())
	// Defaults survive when no file sets them.
	assert.Equal(t, config.Upload.ImageMaxBytes, int64(10*1024*1024))
}

func TestLoadConfigMissingFilesKeepsDefaults(t *testing.T) {
	t.Setenv(cloud.EnvConfigFilePrefix, t.TempDir())
	t.Setenv(cloud.EnvConfigRuntime, "")

	config := cloud.NewConfig()
	assert.NoError(t, cloud.LoadConfig(config))
	assert.Equal(t, config.Application.ThreadPoolSize, 4)
	assert.DeepEqual(t, config.Upload.VideoExtensions, []string{".mp4", ".mov", ".webm"})
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[application\nname="), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)

	err := cloud.LoadConfig(cloud.NewConfig())
	assert.Error(t, err)
}

func TestApplyEnvironment(t *testing.T) {
	config := cloud.NewConfig()

	t.Setenv(cloud.EnvUseMock, "FALSE")
	cloud.ApplyEnvironment(config)
	assert.False(t, config.Application.UseMock)

	t.Setenv(cloud.EnvUseMock, "True")
	cloud.ApplyEnvironment(config)
	assert.True(t, config.Application.UseMock)
}

func TestStagingObjectName(t *testing.T) {
	a := cloud.StagingObjectName("staging/", "Clip.MP4")
	b := cloud.StagingObjectName("staging/", "Clip.MP4")
	assert.True(t, strings.HasPrefix(a, "staging/"))
	assert.True(t, strings.HasSuffix(a, ".mp4"))
	assert.True(t, a != b)

	obj := &cloud.GCSObject{Bucket: "b", Name: a}
	assert.Equal(t, obj.URI(), "gs://b/"+a)
}

func TestServiceClientsWithoutGeminiKey(t *testing.T) {
	config := cloud.NewConfig()
	config.VisionModels["gemini"] = cloud.VisionModel{Model: "m", APIKeyEnv: "LOCALENS_TEST_UNSET_KEY"}
	t.Setenv("LOCALENS_TEST_UNSET_KEY", "")

	clients, err := cloud.NewCloudServiceClients(context.Background(), config)
	assert.NoError(t, err)
	assert.Nil(t, clients.GenAIClient)
	assert.Nil(t, clients.GeminiModel)
	clients.Close()
}

func TestLimiterUnlimited(t *testing.T) {
	l := cloud.NewLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow())
	}
}
