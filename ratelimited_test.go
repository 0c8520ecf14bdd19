package workflow_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
	"go.flowkit.dev/workflow/ratelimit"
)

type fakeLimiter struct {
	allow int64
}

func (f *fakeLimiter) Acquire(ctx context.Context) error {
	if f.TryAcquire() {
		return nil
	}
	return errors.New("no permits available")
}

func (f *fakeLimiter) TryAcquire() bool {
	for {
		cur := atomic.LoadInt64(&f.allow)
		if cur <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt64(&f.allow, cur, cur-1) {
			return true
		}
	}
}

func (f *fakeLimiter) AvailablePermits() int64 { return atomic.LoadInt64(&f.allow) }

func TestRateLimitedWorkflow_PermitAvailable_RunsInner(t *testing.T) {
	limiter := &fakeLimiter{allow: 1}
	inner := alwaysSucceeds("inner")

	w, err := workflow.NewRateLimitedWorkflow("throttled", inner, limiter)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusSuccess, result.Status)
	require.Equal(t, "inner", result.WorkflowName)
}

func TestRateLimitedWorkflow_NoPermitAndCancellation_FailsWithInterruptedError(t *testing.T) {
	limiter := &fakeLimiter{allow: 0}
	inner := alwaysSucceeds("inner")

	w, err := workflow.NewRateLimitedWorkflow("throttled", inner, limiter)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	var interruptedErr *workflow.InterruptedError
	require.True(t, errors.As(result.Error, &interruptedErr))
}

func TestRateLimitedWorkflow_Burst_AdmitsExactlyBurstSizeWithoutBlocking(t *testing.T) {
	limiter := ratelimit.NewTokenBucket(1, 10)

	admitted := 0
	for i := 0; i < 20; i++ {
		if limiter.TryAcquire() {
			admitted++
		}
	}

	require.Equal(t, 10, admitted)
	require.Equal(t, int64(0), limiter.AvailablePermits())
}

func TestRateLimitedWorkflow_LeakyBucket_AdmitsCapacityThenRejects(t *testing.T) {
	// Uses TryAcquire directly rather than routing through
	// RateLimitedWorkflow, whose Execute calls the limiter's Acquire, which
	// blocks (polling) until a permit
	// frees up — not appropriate once the bucket is exhausted and nothing
	// is leaking for the duration of this test.
	limiter := ratelimit.NewLeakyBucket(9, time.Hour)

	admitted := 0
	for i := 0; i < 12; i++ {
		if limiter.TryAcquire() {
			admitted++
		}
	}

	require.Equal(t, 9, admitted)
	require.Equal(t, int64(0), limiter.AvailablePermits())
}

func TestNewRateLimitedWorkflow_RequiresInnerAndLimiter(t *testing.T) {
	_, err := workflow.NewRateLimitedWorkflow("throttled", nil, &fakeLimiter{})
	require.Error(t, err)

	_, err = workflow.NewRateLimitedWorkflow("throttled", alwaysSucceeds("x"), nil)
	require.Error(t, err)
}
