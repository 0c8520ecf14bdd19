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

import "context"

// TimeoutWorkflow bounds an inner Workflow's execution to Policy. A disabled
// Policy (TimeoutMS <= 0) runs inner synchronously with no strategy
// involved at all.
type TimeoutWorkflow struct {
	name     string
	inner    Workflow
	policy   TimeoutPolicy
	strategy ExecutionStrategy
}

// NewTimeoutWorkflow builds a TimeoutWorkflow. strategy is required only
// when policy is enabled; it may be nil for a disabled policy.
func NewTimeoutWorkflow(name string, inner Workflow, policy TimeoutPolicy, strategy ExecutionStrategy) (*TimeoutWorkflow, error) {
	if inner == nil {
		return nil, NewConstructionError("timeoutworkflow: inner is required")
	}
	if policy.Enabled() && strategy == nil {
		return nil, NewConstructionError("timeoutworkflow: ExecutionStrategy is required when the timeout is enabled")
	}
	return &TimeoutWorkflow{name: name, inner: inner, policy: policy, strategy: strategy}, nil
}

// Name returns the workflow's configured name.
func (t *TimeoutWorkflow) Name() string { return t.name }

// Children implements Container for the tree renderer.
func (t *TimeoutWorkflow) Children() []ChildRef {
	return []ChildRef{{Label: "BOUNDED →", Workflow: t.inner}}
}

func (t *TimeoutWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	if !t.policy.Enabled() {
		// Delegated verbatim: no budget means no wrapping, same as the
		// other pass-through composites.
		return Execute(t.inner, ctx)
	}

	future := t.strategy.Submit(func(context.Context) (*Result, error) {
		r := Execute(t.inner, ctx)
		if r.Status == StatusFailed {
			return r, r.Error
		}
		return r, nil
	})

	waitCtx, cancel := context.WithTimeout(ctx.cancellationContext(), t.policy.Duration())
	defer cancel()

	r, err := future.Get(waitCtx)
	if waitCtx.Err() != nil && r == nil {
		future.Cancel()
		return rc.Failure(NewTaskTimeoutError(t.name, t.policy.TimeoutMS))
	}
	if r != nil {
		// The inner Workflow already ran Execute and produced its own
		// stamped Result; it is returned unchanged regardless of err.
		return r
	}
	return rc.Failure(err)
}
