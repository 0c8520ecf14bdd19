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

// Predicate evaluates the shared Context to pick a ConditionalWorkflow's
// branch.
type Predicate func(ctx *Context) (bool, error)

// ConditionalWorkflow evaluates a Predicate and delegates to WhenTrue or
// WhenFalse. A nil WhenFalse yields SKIPPED rather than an error when the
// predicate is false.
type ConditionalWorkflow struct {
	name      string
	predicate Predicate
	whenTrue  Workflow
	whenFalse Workflow
}

// NewConditionalWorkflow builds a ConditionalWorkflow. whenTrue is required;
// whenFalse may be nil, in which case a false predicate yields SKIPPED.
func NewConditionalWorkflow(name string, predicate Predicate, whenTrue, whenFalse Workflow) (*ConditionalWorkflow, error) {
	if predicate == nil {
		return nil, NewConstructionError("conditionalworkflow: predicate is required")
	}
	if whenTrue == nil {
		return nil, NewConstructionError("conditionalworkflow: whenTrue is required")
	}
	return &ConditionalWorkflow{name: name, predicate: predicate, whenTrue: whenTrue, whenFalse: whenFalse}, nil
}

// Name returns the workflow's configured name.
func (c *ConditionalWorkflow) Name() string { return c.name }

// Children implements Container for the tree renderer.
func (c *ConditionalWorkflow) Children() []ChildRef {
	refs := []ChildRef{{Label: "WHEN TRUE →", Workflow: c.whenTrue}}
	if c.whenFalse != nil {
		refs = append(refs, ChildRef{Label: "WHEN FALSE →", Workflow: c.whenFalse})
	}
	return refs
}

func (c *ConditionalWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	ok, err := func() (ok bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = newPanicError(r, string(debug.Stack()))
			}
		}()
		return c.predicate(ctx)
	}()
	if err != nil {
		return rc.Failure(NewPredicateError(err))
	}

	branch := c.whenFalse
	if ok {
		branch = c.whenTrue
	}
	if branch == nil {
		return rc.Skipped()
	}
	// Delegated verbatim: the branch's own Result, name and all, is what
	// the caller sees — the conditional itself contributes no wrapping.
	return Execute(branch, ctx)
}
