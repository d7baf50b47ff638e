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

// This file defines BaseContext, the default Context implementation.
//
// A BaseContext holds:
//   - a data map shared by all commands of the run,
//   - the errors recorded by commands, keyed by command name,
//   - the cleanups registered by commands, released by Close,
//   - the Go context of the step currently executing.
package cor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

type cleanup struct {
	name string
	fn   CleanupFunc
}

// BaseContext is the default implementation of the Context interface.
type BaseContext struct {
	data     map[string]interface{}
	errors   map[string]error
	cleanups []cleanup
	context  context.Context
}

// NewBaseContext returns an empty Context with a background Go context.
func NewBaseContext() Context {
	return &BaseContext{
		data:     make(map[string]interface{}),
		errors:   make(map[string]error),
		cleanups: make([]cleanup, 0),
		context:  context.Background(),
	}
}

// NewBaseContextWith returns an empty Context bound to ctx.
func NewBaseContextWith(ctx context.Context) Context {
	out := NewBaseContext()
	out.SetContext(ctx)
	return out
}

func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close releases every registered cleanup, last registered first. The
// cleanups run on a context detached from cancellation so that a request
// aborted by the client still releases what it staged.
func (c *BaseContext) Close() {
	parent := c.context
	if parent == nil {
		parent = context.Background()
	}
	ctx := context.WithoutCancel(parent)
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		cl := c.cleanups[i]
		if err := cl.fn(ctx); err != nil {
			slog.WarnContext(ctx, "cleanup failed", "cleanup", cl.name, "error", err)
		}
	}
	c.cleanups = c.cleanups[:0]
}

func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

func (c *BaseContext) AddCleanup(name string, fn CleanupFunc) {
	if fn == nil {
		return
	}
	c.cleanups = append(c.cleanups, cleanup{name: name, fn: fn})
}

func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

func (c *BaseContext) Err() error {
	if len(c.errors) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.errors))
	for k := range c.errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	errs := make([]error, 0, len(keys))
	for _, k := range keys {
		errs = append(errs, fmt.Errorf("%s: %w", k, c.errors[k]))
	}
	return errors.Join(errs...)
}

func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
