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
	"errors"
	"testing"

	"github.com/zeebo/assert"
	"go.opentelemetry.io/otel/metric/noop"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
)

func TestGenerateContentWaitsForLimiter(t *testing.T) {
	model := cloud.NewQuotaAwareModel(&genai.GenerateContentConfig{MaxOutputTokens: 10}, "m", nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := model.GenerateContent(ctx, cloud.NewTextPart("hi"), nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	meter := noop.NewMeterProvider().Meter("test")
	in, _ := meter.Int64Counter("in")
	out, _ := meter.Int64Counter("out")
	_, err = cloud.GenerateMultiModalResponse(ctx, in, out, model, nil, cloud.NewTextPart("hi"))
	assert.True(t, errors.Is(err, context.Canceled))
}
