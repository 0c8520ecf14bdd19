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
	"time"

	"github.com/google/uuid"
)

// Status is the terminal disposition of a workflow execution.
type Status int

const (
	// StatusSuccess means the workflow (or its last delegate) completed
	// without error.
	StatusSuccess Status = iota
	// StatusFailed means the workflow produced an error; Result.Error is
	// guaranteed non-nil.
	StatusFailed
	// StatusSkipped means a ConditionalWorkflow picked a nil branch.
	StatusSkipped
)

// String renders the status the way it appears in log fields and the tree
// renderer.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Result is the immutable outcome of one workflow execution. Once returned
// from Execute, a Result is never mutated.
type Result struct {
	// RunID uniquely identifies this single execution, independent of
	// WorkflowName which may repeat across executions or siblings.
	RunID        string
	WorkflowName string
	Status       Status
	StartedAt    time.Time
	CompletedAt  time.Time
	// Error is non-nil if and only if Status == StatusFailed.
	Error error
	// ChildResults holds, for composite workflows, the result of each
	// child that actually ran, in the order it completed (Sequential,
	// Saga) or was submitted (Parallel). Under fail-fast, a Parallel slot
	// whose outcome had not arrived holds a FAILED placeholder instead.
	ChildResults []*Result
}

// Duration is CompletedAt - StartedAt.
func (r *Result) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// Succeeded reports whether Status == StatusSuccess.
func (r *Result) Succeeded() bool { return r.Status == StatusSuccess }

// Failed reports whether Status == StatusFailed.
func (r *Result) Failed() bool { return r.Status == StatusFailed }

// Skipped reports whether Status == StatusSkipped.
func (r *Result) Skipped() bool { return r.Status == StatusSkipped }

// runContext carries the per-invocation bookkeeping (name, start time, a
// fresh run ID) that Execute hands to doExecute so composite workflows can
// stamp a Result without repeating that bookkeeping at every call site. It
// is the Go stand-in for the three execCtx builders (success/failure/
// skipped) described by the lifecycle skeleton.
type runContext struct {
	name      string
	runID     string
	startedAt time.Time
}

func newRunContext(name string) *runContext {
	return &runContext{name: name, runID: uuid.NewString(), startedAt: time.Now()}
}

// Success stamps a SUCCESS result carrying the given child results, if any.
func (rc *runContext) Success(children ...*Result) *Result {
	return &Result{
		RunID:        rc.runID,
		WorkflowName: rc.name,
		Status:       StatusSuccess,
		StartedAt:    rc.startedAt,
		CompletedAt:  time.Now(),
		ChildResults: children,
	}
}

// Failure stamps a FAILED result. A nil err is replaced with a descriptive
// error so the SUCCESS/FAILED/error invariant in the spec can never be
// violated by an accidental nil.
func (rc *runContext) Failure(err error, children ...*Result) *Result {
	if err == nil {
		err = errNilResult(rc.name)
	}
	return &Result{
		RunID:        rc.runID,
		WorkflowName: rc.name,
		Status:       StatusFailed,
		StartedAt:    rc.startedAt,
		CompletedAt:  time.Now(),
		Error:        err,
		ChildResults: children,
	}
}

// Skipped stamps a SKIPPED result.
func (rc *runContext) Skipped() *Result {
	return &Result{
		RunID:        rc.runID,
		WorkflowName: rc.name,
		Status:       StatusSkipped,
		StartedAt:    rc.startedAt,
		CompletedAt:  time.Now(),
	}
}
