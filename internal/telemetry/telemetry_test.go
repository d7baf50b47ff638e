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

package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/jaycherian/gcp-go-localens/internal/cloud"
	"github.com/jaycherian/gcp-go-localens/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestHandlerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewHandler(&buf, slog.LevelDebug))

	logger.Warn("disk almost full", "percent", 91)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "WARNING", entry["severity"])
	assert.Equal(t, "disk almost full", entry["message"])
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "level")
	assert.NotContains(t, entry, "logging.googleapis.com/trace")
}

func TestHandlerAddsTraceCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(telemetry.NewHandler(&buf, slog.LevelInfo)).With("component", "test")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.InfoContext(ctx, "correlated")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "test", entry["component"])
	assert.Equal(t, traceID.String(), entry["logging.googleapis.com/trace"])
	assert.Equal(t, spanID.String(), entry["logging.googleapis.com/spanId"])
	assert.Equal(t, true, entry["logging.googleapis.com/trace_sampled"])
}

func TestSetupOpenTelemetryWithoutProject(t *testing.T) {
	config := cloud.NewConfig()
	ctx := context.Background()

	shutdown, err := telemetry.SetupOpenTelemetry(ctx, config)
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(ctx, "probe")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(ctx))
}
