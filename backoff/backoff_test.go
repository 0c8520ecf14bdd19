package backoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow/backoff"
)

func TestNone_AlwaysZero(t *testing.T) {
	s := backoff.None()
	require.Zero(t, s.Delay(1))
	require.Zero(t, s.Delay(10))
}

func TestConstant_SameEveryAttempt(t *testing.T) {
	s := backoff.Constant(250 * time.Millisecond)
	require.Equal(t, 250*time.Millisecond, s.Delay(1))
	require.Equal(t, 250*time.Millisecond, s.Delay(5))
}

func TestLinear_GrowsByStepPerAttempt(t *testing.T) {
	s := backoff.Linear(100 * time.Millisecond)
	require.Equal(t, 100*time.Millisecond, s.Delay(1))
	require.Equal(t, 200*time.Millisecond, s.Delay(2))
	require.Equal(t, 300*time.Millisecond, s.Delay(3))
}

func TestExponential_DoublesPerAttempt(t *testing.T) {
	s := backoff.Exponential(10 * time.Millisecond)
	require.Equal(t, 10*time.Millisecond, s.Delay(1))
	require.Equal(t, 20*time.Millisecond, s.Delay(2))
	require.Equal(t, 40*time.Millisecond, s.Delay(3))
	require.Equal(t, 80*time.Millisecond, s.Delay(4))
}

func TestExponentialWithJitter_StaysWithinCap(t *testing.T) {
	s := backoff.ExponentialWithJitter(10*time.Millisecond, 100*time.Millisecond)
	for attempt := 1; attempt <= 10; attempt++ {
		d := s.Delay(attempt)
		require.GreaterOrEqual(t, d, time.Duration(0))
		require.LessOrEqual(t, d, 150*time.Millisecond, "jitter should stay in the neighborhood of the cap")
	}
}

func TestExponentialWithJitter_AttemptBelowOneBehavesLikeAttemptOne(t *testing.T) {
	s := backoff.ExponentialWithJitter(10*time.Millisecond, 100*time.Millisecond)
	// The randomization factor makes any single draw non-deterministic, so
	// this checks both calls land in attempt-1's neighborhood rather than
	// asserting exact equality.
	require.LessOrEqual(t, s.Delay(0), 20*time.Millisecond)
	require.LessOrEqual(t, s.Delay(1), 20*time.Millisecond)
}
