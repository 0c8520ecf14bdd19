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

// Thunk is a unit of work submitted to an ExecutionStrategy. It receives a
// context that is cancelled when the owning Future is cancelled, so a thunk
// that wants to cooperate with cancellation should select on ctx.Done().
type Thunk func(ctx context.Context) (*Result, error)

// Future is a cancellable, awaitable handle to a submitted Thunk.
// Implementations must complete exceptionally (Get returns a non-nil error)
// when the thunk panics, so ParallelWorkflow's fail-fast path can observe
// it the same way it observes an ordinary error.
type Future interface {
	// Get blocks until the thunk completes or ctx is done, whichever comes
	// first.
	Get(ctx context.Context) (*Result, error)
	// Cancel requests cancellation. Cancellation is cooperative: a thunk
	// that has not yet started is skipped entirely; a thunk already
	// running only stops if it observes its context being done.
	Cancel()
	// Cancelled reports whether Cancel has been called.
	Cancelled() bool
}

// ExecutionStrategy is the pluggable concurrency backend used by
// ParallelWorkflow, TimeoutWorkflow, and TaskWorkflow's per-attempt timeout.
// No workflow ever creates goroutines directly; all concurrency funnels
// through a strategy the caller constructs and owns.
type ExecutionStrategy interface {
	// Submit schedules t and returns immediately with a Future for it.
	Submit(t Thunk) Future
	// Close releases any resources (worker goroutines, queues) owned by
	// this strategy. Submit after Close is not supported.
	Close() error
}
