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

// This file defines a command that acts as a data transformation step in
// the workflow.
//
// Logic Flow:
// This command follows VisionRequest in the chain. It takes the raw text the
// model returned and turns it into validated issues with parser.ParseResponse.
// A reply that holds no usable JSON is not an error: the file simply has no
// issues, and the empty list is passed on.
package commands

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-localens/internal/core/cor"
	"github.com/jaycherian/gcp-go-localens/internal/core/parser"
)

// ResponseToIssues is a command that parses a model reply into issues.
type ResponseToIssues struct {
	cor.BaseCommand
	issueCounter metric.Int64Counter
}

// NewResponseToIssues is the constructor for the ResponseToIssues command.
func NewResponseToIssues(name string) *ResponseToIssues {
	out := &ResponseToIssues{BaseCommand: *cor.NewBaseCommand(name)}
	out.issueCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.issues", out.GetName()))
	return out
}

func (s *ResponseToIssues) Execute(context cor.Context) {
	in, ok := context.Get(s.GetInputParam()).(string)
	if !ok {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("expected model response text in %s", s.GetInputParam()))
		return
	}

	issues := parser.ParseResponse(in)
	if len(issues) == 0 {
		slog.DebugContext(context.GetContext(), "model response yielded no issues", "length", len(in))
	}

	s.issueCounter.Add(context.GetContext(), int64(len(issues)))
	s.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(s.GetOutputParam(), issues)
}
