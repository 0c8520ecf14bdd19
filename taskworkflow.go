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

import (
	"context"
	"time"
)

// TaskWorkflow wraps a TaskDescriptor as a leaf Workflow, applying its
// RetryPolicy and TimeoutPolicy around every invocation. This is the
// TaskRunner behavior from the spec, folded directly into the leaf node
// rather than kept as a separate collaborator, since nothing else in this
// package needs to run a task outside of a TaskWorkflow.
type TaskWorkflow struct {
	descriptor TaskDescriptor
	strategy   ExecutionStrategy
}

// NewTaskWorkflow builds a TaskWorkflow from descriptor. strategy is used
// only when descriptor.TimeoutPolicy is enabled; it may be nil otherwise.
// Returns a *ConstructionError if descriptor is missing a name or a task, or
// if a timeout is configured without a strategy to run it on.
func NewTaskWorkflow(descriptor TaskDescriptor, strategy ExecutionStrategy) (*TaskWorkflow, error) {
	if err := validateStruct(descriptor); err != nil {
		return nil, err
	}
	if descriptor.TimeoutPolicy.Enabled() && strategy == nil {
		return nil, NewConstructionError("taskworkflow: TimeoutPolicy is enabled but no ExecutionStrategy was supplied")
	}
	if descriptor.RetryPolicy == nil {
		descriptor.RetryPolicy = NoRetry()
	}
	return &TaskWorkflow{descriptor: descriptor, strategy: strategy}, nil
}

// Name returns the descriptor's name.
func (w *TaskWorkflow) Name() string { return w.descriptor.Name }

func (w *TaskWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	cancelCtx := ctx.cancellationContext()

	for attempt := 1; ; attempt++ {
		err := w.runOnce(ctx)
		if err == nil {
			return rc.Success()
		}
		if !w.descriptor.RetryPolicy.ShouldRetry(attempt, err) {
			return rc.Failure(err)
		}

		delay := w.descriptor.RetryPolicy.Backoff().Delay(attempt)
		if delay <= 0 {
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-cancelCtx.Done():
			timer.Stop()
			return rc.Failure(NewInterruptedError(cancelCtx.Err()))
		}
	}
}

// runOnce executes the task exactly once, honoring the timeout policy if
// one is set, and translates a plain task error into a TaskExecutionError.
func (w *TaskWorkflow) runOnce(ctx *Context) error {
	if !w.descriptor.TimeoutPolicy.Enabled() {
		if err := w.descriptor.Task(ctx); err != nil {
			return NewTaskExecutionError(w.Name(), err)
		}
		return nil
	}

	future := w.strategy.Submit(func(context.Context) (*Result, error) {
		if err := w.descriptor.Task(ctx); err != nil {
			return nil, NewTaskExecutionError(w.Name(), err)
		}
		return nil, nil
	})

	waitCtx, cancel := context.WithTimeout(ctx.cancellationContext(), w.descriptor.TimeoutPolicy.Duration())
	defer cancel()

	_, err := future.Get(waitCtx)
	if err == nil {
		return nil
	}
	if waitCtx.Err() != nil {
		future.Cancel()
		return NewTaskTimeoutError(w.Name(), w.descriptor.TimeoutPolicy.TimeoutMS)
	}
	return err
}
