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
	"sync"

	"go.uber.org/zap"
)

// Listener receives the lifecycle events of every workflow executed against
// a Context it is registered on. A SKIPPED result calls OnSkip, never
// OnSuccess — skipping is not succeeding, and a metrics listener counting
// successes should not be fooled into thinking a branch ran.
type Listener interface {
	OnStart(name string, ctx *Context)
	OnSuccess(name string, result *Result)
	OnFailure(name string, err error)
	OnSkip(name string)
}

// ListenerBus fans events out to every registered Listener. A panicking
// listener never affects the workflow's own result: the panic is recovered
// and logged, and every other listener still runs.
type ListenerBus struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    *zap.Logger
}

// NewListenerBus returns an empty bus with a no-op logger.
func NewListenerBus() *ListenerBus {
	return &ListenerBus{logger: zap.NewNop()}
}

// Register adds l to the set of listeners notified by this bus. Register
// before calling Execute — a listener added mid-execution may miss events
// already in flight.
func (b *ListenerBus) Register(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// SetLogger overrides the logger used to report swallowed listener panics.
// A nil logger is ignored.
func (b *ListenerBus) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = logger
}

func (b *ListenerBus) snapshot() ([]Listener, *zap.Logger) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Listener, len(b.listeners))
	copy(out, b.listeners)
	return out, b.logger
}

func (b *ListenerBus) dispatchStart(name string, ctx *Context) {
	listeners, logger := b.snapshot()
	for _, l := range listeners {
		safeDispatch(logger, name, "onStart", func() { l.OnStart(name, ctx) })
	}
}

func (b *ListenerBus) dispatchSuccess(name string, result *Result) {
	listeners, logger := b.snapshot()
	for _, l := range listeners {
		safeDispatch(logger, name, "onSuccess", func() { l.OnSuccess(name, result) })
	}
}

func (b *ListenerBus) dispatchFailure(name string, err error) {
	listeners, logger := b.snapshot()
	for _, l := range listeners {
		safeDispatch(logger, name, "onFailure", func() { l.OnFailure(name, err) })
	}
}

func (b *ListenerBus) dispatchSkip(name string) {
	listeners, logger := b.snapshot()
	for _, l := range listeners {
		safeDispatch(logger, name, "onSkip", func() { l.OnSkip(name) })
	}
}

func safeDispatch(logger *zap.Logger, workflowName, event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("listener panicked, ignoring",
				zap.String("workflow", workflowName),
				zap.String("event", event),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
