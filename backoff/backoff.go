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

// Package backoff supplies the delay strategies used by RetryPolicy between
// task attempts. Every strategy maps the attempt number to the
// time.Duration to wait: None, Constant, Linear and Exponential are pure
// functions of it, while ExponentialWithJitter adds a random component.
// TaskRunner sleeps that duration
// directly via time.NewTimer rather than an injected clock.Clock (see
// DESIGN.md's Open Questions for why only the ratelimit package's window
// math takes one).
package backoff

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Strategy computes the delay to wait before attempt n+1, given that attempt
// n just failed. Attempt numbers are 1-based, matching RetryPolicy.ShouldRetry.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// StrategyFunc adapts a plain function to Strategy.
type StrategyFunc func(attempt int) time.Duration

// Delay implements Strategy.
func (f StrategyFunc) Delay(attempt int) time.Duration { return f(attempt) }

// None never waits between attempts.
func None() Strategy {
	return StrategyFunc(func(int) time.Duration { return 0 })
}

// Constant waits the same duration before every retry.
func Constant(delay time.Duration) Strategy {
	return StrategyFunc(func(int) time.Duration { return delay })
}

// Linear waits attempt*step before retry number attempt.
func Linear(step time.Duration) Strategy {
	return StrategyFunc(func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return time.Duration(attempt) * step
	})
}

// Exponential waits base*2^(attempt-1) before retry number attempt.
func Exponential(base time.Duration) Strategy {
	return StrategyFunc(func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		factor := math.Pow(2, float64(attempt-1))
		return time.Duration(float64(base) * factor)
	})
}

// ExponentialWithJitter wraps cenkalti/backoff's ExponentialBackOff, which
// implements the randomized-interval algorithm described in Google's HTTP
// client guidelines: each delay is drawn from
// [interval*(1-RandomizationFactor), interval*(1+RandomizationFactor)],
// where interval itself grows by Multiplier each attempt, capped at cap.
// A fresh ExponentialBackOff is replayed up to attempt since it tracks
// elapsed state internally rather than exposing a pure delay(n) function.
func ExponentialWithJitter(base, cap time.Duration) Strategy {
	return StrategyFunc(func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = base
		eb.MaxInterval = cap
		eb.MaxElapsedTime = 0 // never give up based on elapsed time; RetryPolicy owns the attempt cap
		eb.Reset()

		var delay time.Duration
		for i := 0; i < attempt; i++ {
			delay = eb.NextBackOff()
		}
		if delay < 0 {
			delay = cap
		}
		return delay
	})
}
