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
	"sync"
)

// cancellationKey is the Context key under which WithCancellation stores the
// cancellation source. (The keys saga compensation puts into the Context
// while unwinding are SagaFailureCauseKey / SagaFailedStepKey in saga.go.)
const cancellationKey = "go.flowkit.dev/workflow.cancellation"

// Context is the thread-safe key/value store shared across one workflow
// execution. All methods are safe for concurrent use by multiple goroutines.
// A Context is created once by the caller and passed to the root workflow;
// ParallelWorkflow branches it with Copy when configured not to share state.
type Context struct {
	mu        sync.RWMutex
	values    map[string]any
	listeners *ListenerBus
}

// NewContext returns an empty Context with its own listener bus.
func NewContext() *Context {
	return &Context{
		values:    make(map[string]any),
		listeners: NewListenerBus(),
	}
}

// Put stores value under key, replacing any existing value.
func (c *Context) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get returns the raw value stored at key, and whether it was present.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Remove deletes key, if present.
func (c *Context) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// ContainsKey reports whether key is present.
func (c *Context) ContainsKey(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[key]
	return ok
}

// Copy returns an independent Context: the top-level map is duplicated so
// puts/removes on the copy are invisible to the original, but values
// themselves are shared by reference. The listener bus is shared, so
// listeners registered on the parent still observe workflows executed
// against the copy.
func (c *Context) Copy() *Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := make(map[string]any, len(c.values))
	for k, v := range c.values {
		cp[k] = v
	}
	return &Context{values: cp, listeners: c.listeners}
}

// Listeners returns the bus shared by this Context and every Context derived
// from it via Copy. Register listeners before calling Execute.
func (c *Context) Listeners() *ListenerBus {
	return c.listeners
}

// GetTyped returns the value at key asserted to type T. It returns the zero
// value of T and false if key is absent, or if the stored value is not (or
// cannot be converted to) a T — this is the "clear error on mismatch" typed
// accessor the data model calls for, expressed in Go as an ok bool rather
// than a thrown exception.
func GetTyped[T any](c *Context, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// GetTypedOrDefault is GetTyped with a fallback for the absent-or-wrong-type
// case.
func GetTypedOrDefault[T any](c *Context, key string, def T) T {
	if v, ok := GetTyped[T](c, key); ok {
		return v
	}
	return def
}

// WithCancellation attaches parent as the cancellation source consulted by
// RateLimitedWorkflow's acquire, TaskRunner's backoff sleeps, and
// TimeoutWorkflow's wait. Without it, those suspension points block on
// context.Background() and can only be bounded by their own timeouts, never
// externally interrupted. ParallelWorkflow's joins do not consult it: they
// always wait on context.Background().
func (c *Context) WithCancellation(parent context.Context) {
	c.Put(cancellationKey, parent)
}

// cancellationContext returns the attached cancellation source, defaulting
// to context.Background() when none was set.
func (c *Context) cancellationContext() context.Context {
	if v, ok := GetTyped[context.Context](c, cancellationKey); ok && v != nil {
		return v
	}
	return context.Background()
}
