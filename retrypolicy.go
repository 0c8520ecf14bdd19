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
	"time"

	"go.flowkit.dev/workflow/backoff"
)

// RetryPolicy decides, for a TaskWorkflow, whether attempt n should be
// retried given the error it produced, and how long to wait before the next
// attempt. Retries happen only at the TaskWorkflow level — composite
// workflows never retry a failed child; wrap a subtree in a Task to retry
// it as a unit.
type RetryPolicy interface {
	// ShouldRetry is consulted after attempt has failed with err. attempt
	// is 1-based: the first call is ShouldRetry(1, err).
	ShouldRetry(attempt int, err error) bool
	// Backoff returns the delay strategy used to compute how long to wait
	// before the next attempt.
	Backoff() backoff.Strategy
}

type maxAttemptsPolicy struct {
	maxAttempts int
	strategy    backoff.Strategy
}

func (p *maxAttemptsPolicy) ShouldRetry(attempt int, _ error) bool {
	return attempt <= p.maxAttempts
}

func (p *maxAttemptsPolicy) Backoff() backoff.Strategy { return p.strategy }

// NoRetry never retries; a TaskWorkflow without an explicit RetryPolicy
// behaves as if this were configured.
func NoRetry() RetryPolicy {
	return &maxAttemptsPolicy{maxAttempts: 0, strategy: backoff.None()}
}

// RetryConstant retries up to maxRetries additional times (so maxRetries+1
// total attempts), waiting delay between each.
func RetryConstant(maxRetries int, delay time.Duration) RetryPolicy {
	return &maxAttemptsPolicy{maxAttempts: maxRetries, strategy: backoff.Constant(delay)}
}

// RetryLinear retries up to maxRetries additional times, waiting
// attempt*step between each.
func RetryLinear(maxRetries int, step time.Duration) RetryPolicy {
	return &maxAttemptsPolicy{maxAttempts: maxRetries, strategy: backoff.Linear(step)}
}

// RetryExponential retries up to maxRetries additional times, waiting
// base*2^(attempt-1) between each.
func RetryExponential(maxRetries int, base time.Duration) RetryPolicy {
	return &maxAttemptsPolicy{maxAttempts: maxRetries, strategy: backoff.Exponential(base)}
}

// RetryExponentialWithJitter retries up to maxRetries additional times,
// waiting a randomized delay between each: the underlying interval starts at
// base and grows each attempt up to cap, and each delay is randomized around
// that interval, so a single delay can exceed it; see
// backoff.ExponentialWithJitter.
func RetryExponentialWithJitter(maxRetries int, base, cap time.Duration) RetryPolicy {
	return &maxAttemptsPolicy{maxAttempts: maxRetries, strategy: backoff.ExponentialWithJitter(base, cap)}
}

// RetryIf wraps policy so a failed attempt is only retried when predicate
// returns true for its error, in addition to policy's own attempt budget.
// Useful for excluding a class of error (e.g. ConstructionError) from
// retry regardless of how many attempts remain.
func RetryIf(policy RetryPolicy, predicate func(err error) bool) RetryPolicy {
	return &conditionalPolicy{inner: policy, predicate: predicate}
}

type conditionalPolicy struct {
	inner     RetryPolicy
	predicate func(err error) bool
}

func (p *conditionalPolicy) ShouldRetry(attempt int, err error) bool {
	return p.predicate(err) && p.inner.ShouldRetry(attempt, err)
}

func (p *conditionalPolicy) Backoff() backoff.Strategy { return p.inner.Backoff() }

// TimeoutPolicy is a millisecond budget applied to a single task invocation
// (via TaskDescriptor) or a workflow (via TimeoutWorkflow).
type TimeoutPolicy struct {
	TimeoutMS int64
}

// NewTimeoutPolicy builds a TimeoutPolicy from d, truncated to millisecond
// precision the way the spec's millisecond budget is expressed.
func NewTimeoutPolicy(d time.Duration) TimeoutPolicy {
	return TimeoutPolicy{TimeoutMS: d.Milliseconds()}
}

// Duration converts the policy back to a time.Duration.
func (p TimeoutPolicy) Duration() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// Enabled reports whether this policy imposes a real bound.
func (p TimeoutPolicy) Enabled() bool { return p.TimeoutMS > 0 }
