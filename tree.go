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
	"fmt"
	"strings"
)

// ToTreeString renders w's static shape: every node's name, indented under
// its parent's ChildRef label. Leaves (Workflows that do not implement
// Container) terminate a branch. This walks Children(), never doExecute —
// rendering never runs anything.
func ToTreeString(w Workflow) string {
	var b strings.Builder
	writeNode(&b, w, nil, "", true)
	return b.String()
}

// ToTreeStringWithResult renders the same shape as ToTreeString, annotating
// every node whose name appears in result's tree with its Status and
// Duration. Nodes Execute never reached (e.g. a FallbackWorkflow's fallback
// after its primary already succeeded) are rendered unannotated.
func ToTreeStringWithResult(w Workflow, result *Result) string {
	var b strings.Builder
	writeNode(&b, w, result, "", true)
	return b.String()
}

func writeNode(b *strings.Builder, w Workflow, result *Result, prefix string, root bool) {
	label := w.Name()
	if result != nil && result.WorkflowName == w.Name() {
		label = fmt.Sprintf("%s [%s, %s]", label, result.Status, result.Duration())
	}
	if root {
		b.WriteString(label)
		b.WriteByte('\n')
	}

	if container, ok := w.(Container); ok {
		writeChildren(b, container, result, prefix)
	}
}

func writeChildren(b *strings.Builder, container Container, result *Result, prefix string) {
	children := container.Children()
	for i, ref := range children {
		last := i == len(children)-1
		connector := "├── "
		nextPrefix := prefix + "│   "
		if last {
			connector = "└── "
			nextPrefix = prefix + "    "
		}

		childLabel := fmt.Sprintf("%s %s", ref.Label, ref.Workflow.Name())
		childResult := findChild(result, ref.Workflow.Name())
		if childResult == nil && result != nil && result.WorkflowName == ref.Workflow.Name() {
			// result was delegated verbatim from this child (Fallback,
			// Conditional, RateLimited, and unbounded Timeout all return
			// a chosen delegate's own Result rather than wrapping it), so
			// it annotates this node directly rather than appearing in
			// result.ChildResults.
			childResult = result
		}
		if childResult != nil {
			childLabel = fmt.Sprintf("%s [%s, %s]", childLabel, childResult.Status, childResult.Duration())
		}
		b.WriteString(prefix)
		b.WriteString(connector)
		b.WriteString(childLabel)
		b.WriteByte('\n')

		if nested, ok := ref.Workflow.(Container); ok {
			writeChildren(b, nested, childResult, nextPrefix)
		}
	}
}

// findChild locates, within result's ChildResults (non-recursively beyond one
// level — callers pass the relevant parent along the walk), the result whose
// WorkflowName matches name. Names are not required to be unique across a
// tree, so this is best-effort: it returns the first match.
func findChild(result *Result, name string) *Result {
	if result == nil {
		return nil
	}
	for _, c := range result.ChildResults {
		if c != nil && c.WorkflowName == name {
			return c
		}
	}
	return nil
}
