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

package listeners

import (
	"sync"

	opentracing "github.com/opentracing/opentracing-go"

	"go.flowkit.dev/workflow"
)

// TracingListener opens one span per workflow node and closes it on whatever
// terminal event fires, tagging the span with the outcome. Spans nest by
// start order: the most recently started, not-yet-finished span becomes the
// parent of the next one to start, which models a workflow tree (and its
// sequential/parallel children) as a span tree without the listener needing
// to know the tree's shape.
type TracingListener struct {
	tracer opentracing.Tracer

	mu    sync.Mutex
	stack []opentracing.Span
	spans map[string][]opentracing.Span
}

// NewTracingListener reports spans to tracer — typically a
// jaeger-client-go tracer built against a jaeger-lib-configured sampler and
// reporter, the same stack the teacher links for its own distributed traces.
func NewTracingListener(tracer opentracing.Tracer) *TracingListener {
	return &TracingListener{tracer: tracer, spans: make(map[string][]opentracing.Span)}
}

// OnStart opens a span named after name, child-of whatever span is
// currently on top of the stack.
func (t *TracingListener) OnStart(name string, _ *workflow.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var opts []opentracing.StartSpanOption
	if len(t.stack) > 0 {
		opts = append(opts, opentracing.ChildOf(t.stack[len(t.stack)-1].Context()))
	}
	span := t.tracer.StartSpan(name, opts...)
	t.stack = append(t.stack, span)
	t.spans[name] = append(t.spans[name], span)
}

// OnSuccess tags and finishes the span name was started with.
func (t *TracingListener) OnSuccess(name string, result *workflow.Result) {
	t.finish(name, func(span opentracing.Span) {
		span.SetTag("status", result.Status.String())
	})
}

// OnFailure tags and finishes the span name was started with, marking it as
// an error per the OpenTracing semantic convention.
func (t *TracingListener) OnFailure(name string, err error) {
	t.finish(name, func(span opentracing.Span) {
		span.SetTag("error", true)
		span.SetTag("status", workflow.StatusFailed.String())
		span.LogKV("error.message", err.Error())
	})
}

// OnSkip tags and finishes the span name was started with.
func (t *TracingListener) OnSkip(name string) {
	t.finish(name, func(span opentracing.Span) {
		span.SetTag("status", workflow.StatusSkipped.String())
	})
}

func (t *TracingListener) finish(name string, tag func(opentracing.Span)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pending := t.spans[name]
	if len(pending) == 0 {
		return
	}
	span := pending[len(pending)-1]
	t.spans[name] = pending[:len(pending)-1]

	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i] == span {
			t.stack = append(t.stack[:i], t.stack[i+1:]...)
			break
		}
	}

	tag(span)
	span.Finish()
}
