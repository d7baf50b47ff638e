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

package parser

import "github.com/jaycherian/gcp-go-localens/internal/core/model"

// ValidateIssues filters a batch in place and returns the survivors in their
// original relative order.
//
// For each issue: a repeated id is dropped (the first occurrence wins), the
// location is rewritten through NormalizeCoordinates, and the issue is dropped
// if the normalized box has no area. The id of a dropped box still counts as
// seen.
func ValidateIssues(issues []*model.LocalizationIssue) []*model.LocalizationIssue {
	seen := make(map[string]struct{}, len(issues))
	out := make([]*model.LocalizationIssue, 0, len(issues))
	for _, issue := range issues {
		if issue == nil {
			continue
		}
		if _, dup := seen[issue.ID]; dup {
			continue
		}
		seen[issue.ID] = struct{}{}

		issue.Location = NormalizeCoordinates(issue.Location)
		if !issue.Location.IsValid() {
			continue
		}
		out = append(out, issue)
	}
	return out
}
