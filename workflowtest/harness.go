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

// Package workflowtest is a small test-environment wrapper around
// workflow.Execute, in the spirit of the teacher's own
// internal_workflow_testsuite.go: rather than asserting on a raw *Result
// directly, a test calls Run, which registers a recordingListener and gives
// back the Result after asserting that every node name received as many
// terminal events as OnStart events. The order of events is not checked.
package workflowtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
)

// recordingListener observes every event fired during one Run and lets it
// assert the lifecycle invariants.
type recordingListener struct {
	starts    map[string]int
	terminals map[string]int
}

func newRecordingListener() *recordingListener {
	return &recordingListener{starts: map[string]int{}, terminals: map[string]int{}}
}

func (r *recordingListener) OnStart(name string, _ *workflow.Context)  { r.starts[name]++ }
func (r *recordingListener) OnSuccess(name string, _ *workflow.Result) { r.terminals[name]++ }
func (r *recordingListener) OnFailure(name string, _ error)            { r.terminals[name]++ }
func (r *recordingListener) OnSkip(name string)                       { r.terminals[name]++ }

// Run executes wf against ctx, registering an internal listener on ctx to
// assert (via t) that, for every node name that fired OnStart, the number of
// terminal events (OnSuccess, OnFailure or OnSkip) equals the number of
// OnStart events, and that the returned
// Result's CompletedAt never precedes StartedAt. It returns wf's Result for
// further assertions.
func Run(t *testing.T, wf workflow.Workflow, ctx *workflow.Context) *workflow.Result {
	t.Helper()

	rec := newRecordingListener()
	ctx.Listeners().Register(rec)

	result := workflow.Execute(wf, ctx)

	require.False(t, result.CompletedAt.Before(result.StartedAt),
		"%s: CompletedAt must not precede StartedAt", result.WorkflowName)

	for name, starts := range rec.starts {
		terminals := rec.terminals[name]
		require.Equal(t, starts, terminals,
			"%s: expected exactly one terminal event per start (%d starts, %d terminal events)",
			name, starts, terminals)
	}

	return result
}

// AssertSucceeded is a small convenience wrapping the common
// require.Equal(t, workflow.StatusSuccess, result.Status) assertion with a
// failure message that includes the error, if any.
func AssertSucceeded(t *testing.T, result *workflow.Result) {
	t.Helper()
	require.Equal(t, workflow.StatusSuccess, result.Status, "workflow %s: %v", result.WorkflowName, result.Error)
}

// AssertFailed is the FAILED-case counterpart of AssertSucceeded.
func AssertFailed(t *testing.T, result *workflow.Result) {
	t.Helper()
	require.Equal(t, workflow.StatusFailed, result.Status, "workflow %s: expected FAILED, got %s", result.WorkflowName, result.Status)
	require.Error(t, result.Error)
}
