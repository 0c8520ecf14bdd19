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

import "runtime/debug"

// Workflow is any composable unit of a workflow tree: a leaf that wraps a
// Task, or a composite of other Workflows. doExecute is unexported so the
// set of composites stays closed to this package — callers compose the
// constructors this package exports (NewTaskWorkflow and the seven composite
// constructors) rather than implementing the
// interface themselves.
//
// This is the composition replacement for the template-method inheritance
// hierarchy the spec describes: instead of an AbstractWorkflow base class,
// Execute is a free function that applies the lifecycle skeleton uniformly
// to any Workflow, the same way the lifecycle skeleton is described as "a
// single function, not a base class."
type Workflow interface {
	// Name identifies this node for listener events and tree rendering.
	Name() string
	doExecute(ctx *Context, rc *runContext) *Result
}

// ChildRef labels one child of a composite workflow for tree rendering.
type ChildRef struct {
	Label    string
	Workflow Workflow
}

// Container is implemented by every composite workflow to expose its
// children for the tree renderer. It is a second, execution-independent
// capability — the renderer walks Children(), never doExecute — matching
// the "second capability for rendering" pattern the design notes call for.
type Container interface {
	Children() []ChildRef
}

// Execute runs w against ctx and returns its Result. Execute never panics:
// a panicking doExecute is recovered and turned into a FAILED result
// carrying a *PanicError. Every call fires exactly one OnStart and exactly
// one terminal event (OnSuccess, OnFailure, or OnSkip) on every listener
// registered on ctx.
func Execute(w Workflow, ctx *Context) *Result {
	rc := newRunContext(w.Name())
	bus := ctx.Listeners()

	bus.dispatchStart(rc.name, ctx)
	result := executeGuarded(w, ctx, rc)

	switch result.Status {
	case StatusSuccess:
		bus.dispatchSuccess(rc.name, result)
	case StatusFailed:
		bus.dispatchFailure(rc.name, result.Error)
	case StatusSkipped:
		bus.dispatchSkip(rc.name)
	}
	return result
}

func executeGuarded(w Workflow, ctx *Context, rc *runContext) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			result = rc.Failure(newPanicError(r, string(debug.Stack())))
		}
	}()
	result = w.doExecute(ctx, rc)
	if result == nil {
		result = rc.Failure(errNilResult(rc.name))
	}
	return result
}
