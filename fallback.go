// The MIT License
//
// Copyright (c) 2020 Temporal Technologies Inc.  All rights reserved.
//
// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package workflow

import "go.uber.org/zap"

// FallbackWorkflow runs Primary; if it does not succeed, it runs Fallback
// against the same Context, so the fallback can observe whatever partial
// state Primary left behind. Primary's error is logged, never aggregated
// into the final result — only Fallback's own outcome is returned. This
// was an ambiguous behavior in the source system (see SPEC_FULL.md §6);
// this implementation keeps it as documented in spec.md §4.6/§7.
type FallbackWorkflow struct {
	name     string
	primary  Workflow
	fallback Workflow
	logger   *zap.Logger
}

// NewFallbackWorkflow builds a FallbackWorkflow. Both primary and fallback
// are required.
func NewFallbackWorkflow(name string, primary, fallback Workflow) (*FallbackWorkflow, error) {
	if primary == nil {
		return nil, NewConstructionError("fallbackworkflow: primary is required")
	}
	if fallback == nil {
		return nil, NewConstructionError("fallbackworkflow: fallback is required")
	}
	return &FallbackWorkflow{name: name, primary: primary, fallback: fallback, logger: zap.NewNop()}, nil
}

// WithLogger overrides the logger used to record the (discarded) primary
// error when Fallback runs.
func (f *FallbackWorkflow) WithLogger(logger *zap.Logger) *FallbackWorkflow {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// Name returns the workflow's configured name.
func (f *FallbackWorkflow) Name() string { return f.name }

// Children implements Container for the tree renderer.
func (f *FallbackWorkflow) Children() []ChildRef {
	return []ChildRef{
		{Label: "TRY (PRIMARY) →", Workflow: f.primary},
		{Label: "ON FAILURE →", Workflow: f.fallback},
	}
}

func (f *FallbackWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	primaryResult := Execute(f.primary, ctx)
	if primaryResult.Status == StatusSuccess {
		return primaryResult
	}

	f.logger.Debug("primary failed, running fallback",
		zap.String("workflow", f.name),
		zap.Error(primaryResult.Error),
	)
	// Delegated verbatim, same as ConditionalWorkflow's branches.
	return Execute(f.fallback, ctx)
}
