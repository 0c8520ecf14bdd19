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

// Package ratelimit implements workflow.RateLimitStrategy with four
// admission-control algorithms: FixedWindow, SlidingWindow, TokenBucket and
// LeakyBucket. FixedWindow, SlidingWindow and LeakyBucket are
// clock-injectable via facebookgo/clock, mirroring the teacher's
// SystemClock/test-clock split in internal/common/backoff; TokenBucket uses
// rate.Limiter's own wall-clock time and takes no clock.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"golang.org/x/time/rate"
)

// TokenBucket wraps golang.org/x/time/rate.Limiter, the standard-library
// adjacent token-bucket limiter already carried as a direct teacher
// dependency (golang.org/x/time).
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket builds a TokenBucket allowing burst permits immediately and
// refilling at permitsPerSecond thereafter.
func NewTokenBucket(permitsPerSecond float64, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(permitsPerSecond), burst)}
}

// Acquire blocks until a token is available or ctx is done.
func (t *TokenBucket) Acquire(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}

// TryAcquire consumes a token without blocking, reporting whether one was
// available.
func (t *TokenBucket) TryAcquire() bool {
	return t.limiter.Allow()
}

// AvailablePermits reports the current burst balance, floored at zero.
func (t *TokenBucket) AvailablePermits() int64 {
	tokens := t.limiter.Tokens()
	if tokens < 0 {
		return 0
	}
	return int64(tokens)
}

// FixedWindow admits at most limit permits per window, resetting the count
// the instant the current window elapses — unlike TokenBucket, a burst of
// limit requests right at a window boundary can be followed immediately by
// another burst of limit at the next boundary.
type FixedWindow struct {
	mu          sync.Mutex
	clock       clock.Clock
	limit       int64
	window      time.Duration
	windowStart time.Time
	count       int64
}

// NewFixedWindow builds a FixedWindow admitting limit permits per window,
// using the real wall clock.
func NewFixedWindow(limit int64, window time.Duration) *FixedWindow {
	return NewFixedWindowWithClock(limit, window, clock.New())
}

// NewFixedWindowWithClock is NewFixedWindow with an injectable clock, for
// tests that want to advance time deterministically.
func NewFixedWindowWithClock(limit int64, window time.Duration, c clock.Clock) *FixedWindow {
	return &FixedWindow{clock: c, limit: limit, window: window, windowStart: c.Now()}
}

// TryAcquire rolls the window forward if elapsed, then admits if under limit.
func (f *FixedWindow) TryAcquire() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollWindow()
	if f.count >= f.limit {
		return false
	}
	f.count++
	return true
}

// Acquire polls TryAcquire until it succeeds or ctx is done.
func (f *FixedWindow) Acquire(ctx context.Context) error {
	return pollUntilAcquired(ctx, f.clock, f.TryAcquire)
}

// AvailablePermits reports permits left in the current window.
func (f *FixedWindow) AvailablePermits() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollWindow()
	remaining := f.limit - f.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (f *FixedWindow) rollWindow() {
	now := f.clock.Now()
	if now.Sub(f.windowStart) >= f.window {
		f.windowStart = now
		f.count = 0
	}
}

// SlidingWindow admits permits based on a weighted blend of the current and
// previous fixed windows, smoothing the boundary burst FixedWindow allows.
type SlidingWindow struct {
	mu          sync.Mutex
	clock       clock.Clock
	limit       int64
	window      time.Duration
	windowStart time.Time
	count       int64
	prevCount   int64
}

// NewSlidingWindow builds a SlidingWindow admitting limit permits per window,
// using the real wall clock.
func NewSlidingWindow(limit int64, window time.Duration) *SlidingWindow {
	return NewSlidingWindowWithClock(limit, window, clock.New())
}

// NewSlidingWindowWithClock is NewSlidingWindow with an injectable clock.
func NewSlidingWindowWithClock(limit int64, window time.Duration, c clock.Clock) *SlidingWindow {
	return &SlidingWindow{clock: c, limit: limit, window: window, windowStart: c.Now()}
}

func (s *SlidingWindow) weightedCount(now time.Time) float64 {
	elapsed := now.Sub(s.windowStart)
	weight := 1.0
	if s.window > 0 {
		weight = 1.0 - float64(elapsed)/float64(s.window)
	}
	if weight < 0 {
		weight = 0
	}
	return float64(s.prevCount)*weight + float64(s.count)
}

func (s *SlidingWindow) rollWindow(now time.Time) {
	if now.Sub(s.windowStart) >= s.window {
		windows := int64(now.Sub(s.windowStart) / s.window)
		if windows == 1 {
			s.prevCount = s.count
		} else {
			s.prevCount = 0
		}
		s.count = 0
		s.windowStart = s.windowStart.Add(time.Duration(windows) * s.window)
	}
}

// TryAcquire admits if the weighted count of the current and previous
// windows is under limit.
func (s *SlidingWindow) TryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.rollWindow(now)
	if s.weightedCount(now) >= float64(s.limit) {
		return false
	}
	s.count++
	return true
}

// Acquire polls TryAcquire until it succeeds or ctx is done.
func (s *SlidingWindow) Acquire(ctx context.Context) error {
	return pollUntilAcquired(ctx, s.clock, s.TryAcquire)
}

// AvailablePermits reports the estimated permits left, floored at zero.
func (s *SlidingWindow) AvailablePermits() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.rollWindow(now)
	remaining := float64(s.limit) - s.weightedCount(now)
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}

// LeakyBucket admits a fixed capacity of permits that drain ("leak") at a
// constant rate, instead of refilling in a burst like TokenBucket: capacity
// bounds how much can queue up, while the leak rate bounds sustained
// throughput.
type LeakyBucket struct {
	mu        sync.Mutex
	clock     clock.Clock
	capacity  int64
	leakEvery time.Duration
	level     int64
	lastLeak  time.Time
}

// NewLeakyBucket builds a LeakyBucket holding up to capacity permits,
// leaking one every leakEvery, using the real wall clock.
func NewLeakyBucket(capacity int64, leakEvery time.Duration) *LeakyBucket {
	return NewLeakyBucketWithClock(capacity, leakEvery, clock.New())
}

// NewLeakyBucketWithClock is NewLeakyBucket with an injectable clock.
func NewLeakyBucketWithClock(capacity int64, leakEvery time.Duration, c clock.Clock) *LeakyBucket {
	return &LeakyBucket{clock: c, capacity: capacity, leakEvery: leakEvery, lastLeak: c.Now()}
}

func (l *LeakyBucket) leak() {
	now := l.clock.Now()
	if l.leakEvery <= 0 {
		return
	}
	leaked := int64(now.Sub(l.lastLeak) / l.leakEvery)
	if leaked <= 0 {
		return
	}
	l.level -= leaked
	if l.level < 0 {
		l.level = 0
	}
	l.lastLeak = l.lastLeak.Add(time.Duration(leaked) * l.leakEvery)
}

// TryAcquire admits a permit if the bucket has not reached capacity.
func (l *LeakyBucket) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leak()
	if l.level >= l.capacity {
		return false
	}
	l.level++
	return true
}

// Acquire polls TryAcquire until it succeeds or ctx is done.
func (l *LeakyBucket) Acquire(ctx context.Context) error {
	return pollUntilAcquired(ctx, l.clock, l.TryAcquire)
}

// AvailablePermits reports capacity left before the bucket is full.
func (l *LeakyBucket) AvailablePermits() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leak()
	remaining := l.capacity - l.level
	if remaining < 0 {
		return 0
	}
	return remaining
}

// pollUntilAcquired is the shared Acquire loop for the window- and
// leak-based strategies, none of which expose a native blocking wait the
// way rate.Limiter does.
func pollUntilAcquired(ctx context.Context, c clock.Clock, tryAcquire func() bool) error {
	const pollInterval = time.Millisecond
	for {
		if tryAcquire() {
			return nil
		}
		timer := c.Timer(pollInterval)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
