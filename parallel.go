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
	"fmt"
	"time"
)

// ParallelWorkflow executes its children concurrently on an ExecutionStrategy.
//
// ShareContext (default true) controls whether children observe the same
// Context or an independent Context.Copy(): with sharing off, mutations a
// child makes are invisible to the parent once the workflow returns.
//
// FailFast (default false) controls whether the first FAILED child cancels
// its still-outstanding siblings and returns immediately, or whether every
// child is allowed to run to completion before a FAILED result is built.
type ParallelWorkflow struct {
	name         string
	children     []Workflow
	strategy     ExecutionStrategy
	shareContext bool
	failFast     bool
}

// ParallelOption configures a ParallelWorkflow at construction time.
type ParallelOption func(*ParallelWorkflow)

// WithShareContext overrides the default (true) of whether children share
// the parent Context or each receive an independent copy.
func WithShareContext(share bool) ParallelOption {
	return func(p *ParallelWorkflow) { p.shareContext = share }
}

// WithFailFast overrides the default (false) of whether the first failure
// cancels outstanding siblings.
func WithFailFast(failFast bool) ParallelOption {
	return func(p *ParallelWorkflow) { p.failFast = failFast }
}

// NewParallelWorkflow builds a ParallelWorkflow named name running children
// on strategy. Returns a *ConstructionError if strategy is nil and children
// is non-empty (an empty parallel workflow never needs to submit anything).
func NewParallelWorkflow(name string, strategy ExecutionStrategy, children []Workflow, opts ...ParallelOption) (*ParallelWorkflow, error) {
	if strategy == nil && len(children) > 0 {
		return nil, NewConstructionError("parallelworkflow: ExecutionStrategy is required when children is non-empty")
	}
	p := &ParallelWorkflow{name: name, children: children, strategy: strategy, shareContext: true, failFast: false}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the workflow's configured name.
func (p *ParallelWorkflow) Name() string { return p.name }

// Children implements Container for the tree renderer.
func (p *ParallelWorkflow) Children() []ChildRef {
	refs := make([]ChildRef, len(p.children))
	for i, c := range p.children {
		refs[i] = ChildRef{Label: fmt.Sprintf("%d", i+1), Workflow: c}
	}
	return refs
}

func (p *ParallelWorkflow) doExecute(ctx *Context, rc *runContext) *Result {
	if len(p.children) == 0 {
		return rc.Success()
	}

	// Children start in declaration order but may complete in any order;
	// results[i] is filled in regardless of completion order so the
	// caller still sees children in declaration order.
	results := make([]*Result, len(p.children))
	futures := make([]Future, len(p.children))

	for i, child := range p.children {
		childCtx := ctx
		if !p.shareContext {
			childCtx = ctx.Copy()
		}
		child, childCtx := child, childCtx
		futures[i] = p.strategy.Submit(func(context.Context) (*Result, error) {
			r := Execute(child, childCtx)
			if r.Status == StatusFailed {
				return r, r.Error
			}
			return r, nil
		})
	}

	var firstErr error
	if p.failFast {
		firstErr = p.joinFailFast(futures, results)
	} else {
		firstErr = p.joinAll(futures, results)
	}

	if firstErr != nil {
		return &Result{
			RunID:        rc.runID,
			WorkflowName: rc.name,
			Status:       StatusFailed,
			StartedAt:    rc.startedAt,
			CompletedAt:  time.Now(),
			Error:        firstErr,
			ChildResults: results,
		}
	}
	return rc.Success(results...)
}

// joinAll waits for every future, regardless of failure, and returns the
// first error observed. Futures are awaited in declaration order, so that is
// the first failing child in declaration order, not in completion order.
func (p *ParallelWorkflow) joinAll(futures []Future, results []*Result) error {
	cancelCtx := context.Background()
	var firstErr error
	for i, f := range futures {
		r, err := f.Get(cancelCtx)
		if r == nil {
			r = &Result{Status: StatusFailed, Error: err}
		}
		results[i] = r
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// joinFailFast waits for the first failure (or for all to succeed),
// cancelling every still-outstanding sibling the instant one fails.
// Cancellation is cooperative: a future whose thunk has not yet started
// is marked cancelled and never runs; a future already running keeps
// running until its thunk observes its context is done, per the decision
// recorded in SPEC_FULL.md's resolved Open Questions.
func (p *ParallelWorkflow) joinFailFast(futures []Future, results []*Result) error {
	type outcome struct {
		idx    int
		result *Result
		err    error
	}
	done := make(chan outcome, len(futures))
	for i, f := range futures {
		i, f := i, f
		go func() {
			r, err := f.Get(context.Background())
			if r == nil {
				r = &Result{Status: StatusFailed, Error: err}
			}
			done <- outcome{idx: i, result: r, err: err}
		}()
	}

	remaining := len(futures)
	var firstErr error
	for remaining > 0 {
		o := <-done
		remaining--
		results[o.idx] = o.result
		if o.err != nil && firstErr == nil {
			firstErr = o.err
			for j, f := range futures {
				if j != o.idx {
					f.Cancel()
				}
			}
			break
		}
	}

	// Every slot not yet filled belongs to a sibling cancelled before its
	// outcome arrived; synthesize a placeholder so ChildResults never holds
	// a nil *Result.
	for j, r := range results {
		if r == nil {
			results[j] = &Result{
				WorkflowName: p.children[j].Name(),
				Status:       StatusFailed,
				Error:        NewInterruptedError(nil),
			}
		}
	}

	// Drain whatever is still outstanding in the background so the
	// cancelled siblings' goroutines never block forever sending to done.
	if remaining > 0 {
		go func(n int) {
			for n > 0 {
				<-done
				n--
			}
		}(remaining)
	}
	return firstErr
}
