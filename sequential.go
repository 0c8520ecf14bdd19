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

import "fmt"

// SequentialWorkflow executes its children in declaration order, stopping
// at the first FAILED child. A SKIPPED child does not stop the sequence.
type SequentialWorkflow struct {
	name     string
	children []Workflow
}

// NewSequentialWorkflow builds a SequentialWorkflow named name over
// children, run in the given order.
func NewSequentialWorkflow(name string, children ...Workflow) *SequentialWorkflow {
	return &SequentialWorkflow{name: name, children: children}
}

// Name returns the workflow's configured name.
func (s *SequentialWorkflow) Name() string { return s.name }

// Children implements Container for the tree renderer.
func (s *SequentialWorkflow) Children() []ChildRef {
	refs := make([]ChildRef, len(s.children))
	for i, c := range s.children {
		refs[i] = ChildRef{Label: fmt.Sprintf("%d", i+1), Workflow: c}
	}
	return refs
}

func (s *SequentialWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	results := make([]*Result, 0, len(s.children))
	for _, child := range s.children {
		r := Execute(child, ctx)
		results = append(results, r)
		if r.Status == StatusFailed {
			// Returned unchanged: same error, same failed child's name,
			// per the spec's "stop and return that result unchanged."
			return r
		}
	}
	return rc.Success(results...)
}
