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
	"time"

	"github.com/uber-go/tally"

	"go.flowkit.dev/workflow"
)

// MetricsListener reports start/success/failure/skip counters and a
// duration timer per workflow name to a tally.Scope, mirroring how the
// teacher's service metrics wrapper tags every RPC with per-call counters
// and a latency timer.
type MetricsListener struct {
	scope tally.Scope

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewMetricsListener reports under scope, which callers typically build
// with a sanitizer matching their metrics backend's allowed character set
// (see tally.SanitizeOptions, as the teacher does for its own scope).
func NewMetricsListener(scope tally.Scope) *MetricsListener {
	return &MetricsListener{scope: scope, starts: make(map[string]time.Time)}
}

// OnStart records the start time so OnSuccess/OnFailure/OnSkip can report a
// duration, and increments the per-name "started" counter.
func (m *MetricsListener) OnStart(name string, _ *workflow.Context) {
	m.scope.Tagged(map[string]string{"workflow": name}).Counter("workflow_started").Inc(1)

	m.mu.Lock()
	m.starts[name] = time.Now()
	m.mu.Unlock()
}

// OnSuccess increments the per-name "succeeded" counter and reports its
// duration.
func (m *MetricsListener) OnSuccess(name string, result *workflow.Result) {
	tagged := m.scope.Tagged(map[string]string{"workflow": name})
	tagged.Counter("workflow_succeeded").Inc(1)
	tagged.Timer("workflow_duration").Record(result.Duration())
	m.clearStart(name)
}

// OnFailure increments the per-name "failed" counter and reports its
// duration, measured against the start time recorded by OnStart.
func (m *MetricsListener) OnFailure(name string, _ error) {
	tagged := m.scope.Tagged(map[string]string{"workflow": name})
	tagged.Counter("workflow_failed").Inc(1)
	if d, ok := m.takeDuration(name); ok {
		tagged.Timer("workflow_duration").Record(d)
	}
}

// OnSkip increments the per-name "skipped" counter. A skipped branch is not
// a success, so it is never folded into workflow_succeeded.
func (m *MetricsListener) OnSkip(name string) {
	m.scope.Tagged(map[string]string{"workflow": name}).Counter("workflow_skipped").Inc(1)
	m.clearStart(name)
}

func (m *MetricsListener) clearStart(name string) {
	m.mu.Lock()
	delete(m.starts, name)
	m.mu.Unlock()
}

func (m *MetricsListener) takeDuration(name string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	started, ok := m.starts[name]
	if !ok {
		return 0, false
	}
	delete(m.starts, name)
	return time.Since(started), true
}
