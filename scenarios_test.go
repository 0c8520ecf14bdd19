package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
	"go.flowkit.dev/workflow/executor"
	"go.flowkit.dev/workflow/ratelimit"
)

// TestScenario_OrderPipeline_AllStepsSucceed exercises
// Sequential(validate, Parallel(reservePayment, reserveInventory), confirm)
// end to end, checking every step's context write survives to the root.
func TestScenario_OrderPipeline_AllStepsSucceed(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(4, 4, nil)
	defer strategy.Close()

	parallel, err := workflow.NewParallelWorkflow("reserve", strategy, []workflow.Workflow{
		alwaysSucceeds("reservePayment"),
		alwaysSucceeds("reserveInventory"),
	}, workflow.WithShareContext(true), workflow.WithFailFast(true))
	require.NoError(t, err)

	pipeline := workflow.NewSequentialWorkflow("orderPipeline",
		alwaysSucceeds("validate"),
		parallel,
		alwaysSucceeds("confirm"),
	)

	ctx := workflow.NewContext()
	result := workflow.Execute(pipeline, ctx)

	require.Equal(t, workflow.StatusSuccess, result.Status)
	for _, key := range []string{"validate.ran", "reservePayment.ran", "reserveInventory.ran", "confirm.ran"} {
		v, ok := ctx.Get(key)
		require.True(t, ok, key)
		require.Equal(t, true, v)
	}
}

// TestScenario_SagaRollback_PaymentFailureUnwindsHotelThenFlight mirrors a
// booking saga where the final step (payment) fails, so only the completed
// steps' compensations run, in reverse order.
func TestScenario_SagaRollback_PaymentFailureUnwindsHotelThenFlight(t *testing.T) {
	var order []string

	step := func(name string, fails bool) workflow.SagaStep {
		return workflow.SagaStep{
			Name: name,
			Action: taskFromFunc(name, func(*workflow.Context) error {
				order = append(order, name)
				if fails {
					return errors.New(name + " declined")
				}
				return nil
			}),
			Compensation: taskFromFunc(name+".compensate", func(*workflow.Context) error {
				order = append(order, name+".compensate")
				return nil
			}),
		}
	}

	saga, err := workflow.NewSagaWorkflow("bookTrip", []workflow.SagaStep{
		step("reserveFlight", false),
		step("bookHotel", false),
		step("chargePayment", true),
	})
	require.NoError(t, err)

	result := workflow.Execute(saga, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.ErrorContains(t, result.Error, "chargePayment declined")
	require.Equal(t, []string{
		"reserveFlight", "bookHotel", "chargePayment",
		"bookHotel.compensate", "reserveFlight.compensate",
	}, order)
}

// TestScenario_TimeoutOnParallel_BoundsASlowParallelGroup ensures a Timeout
// wrapping a Parallel of two long sleeps fails promptly rather than waiting
// out the full sleep duration.
func TestScenario_TimeoutOnParallel_BoundsASlowParallelGroup(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(4, 4, nil)
	defer strategy.Close()

	sleeper := func(name string) workflow.Workflow {
		return taskFromFunc(name, func(*workflow.Context) error {
			time.Sleep(5 * time.Second)
			return nil
		})
	}

	parallel, err := workflow.NewParallelWorkflow("sleepers", strategy,
		[]workflow.Workflow{sleeper("a"), sleeper("b")})
	require.NoError(t, err)

	timeout, err := workflow.NewTimeoutWorkflow("bounded", parallel,
		workflow.NewTimeoutPolicy(100*time.Millisecond), strategy)
	require.NoError(t, err)

	start := time.Now()
	result := workflow.Execute(timeout, workflow.NewContext())
	elapsed := time.Since(start)

	require.Equal(t, workflow.StatusFailed, result.Status)
	var timeoutErr *workflow.TaskTimeoutError
	require.True(t, errors.As(result.Error, &timeoutErr))
	require.Less(t, elapsed, time.Second, "timeout should bound a 5s parallel group well under a second")
}

// TestScenario_RateLimitedBurst_FixedWindowThrottlesNineSequentialCalls
// drives nine sequential calls through a fixed-window limiter of 3 req/s and
// checks both the observed side effect count and the elapsed wall time.
func TestScenario_RateLimitedBurst_FixedWindowThrottlesNineSequentialCalls(t *testing.T) {
	limiter := ratelimit.NewFixedWindow(3, time.Second)

	var count int
	increment, err := workflow.NewRateLimitedWorkflow("increment",
		taskFromFunc("incrementCounter", func(*workflow.Context) error {
			count++
			return nil
		}), limiter)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 9; i++ {
		result := workflow.Execute(increment, workflow.NewContext())
		require.Equal(t, workflow.StatusSuccess, result.Status)
	}
	elapsed := time.Since(start)

	require.Equal(t, 9, count)
	require.GreaterOrEqual(t, elapsed, 2*time.Second)
}

// TestScenario_ConditionalSkip_FastModeNeverEnriches checks that a "fast"
// mode skips the enrichment branch entirely, leaving no side effect.
func TestScenario_ConditionalSkip_FastModeNeverEnriches(t *testing.T) {
	enriched := false
	cond, err := workflow.NewConditionalWorkflow("maybeEnrich",
		func(ctx *workflow.Context) (bool, error) {
			mode, _ := ctx.Get("mode")
			return mode == "detailed", nil
		},
		taskFromFunc("enrich", func(*workflow.Context) error {
			enriched = true
			return nil
		}),
		nil,
	)
	require.NoError(t, err)

	ctx := workflow.NewContext()
	ctx.Put("mode", "fast")
	result := workflow.Execute(cond, ctx)

	require.Equal(t, workflow.StatusSkipped, result.Status)
	require.False(t, enriched)
}

// TestScenario_RetryExhaustion_AlwaysFailingTaskRunsInitialPlusTwoRetries
// checks the invocation count and that elapsed time reflects the sum of
// backoff delays between attempts.
func TestScenario_RetryExhaustion_AlwaysFailingTaskRunsInitialPlusTwoRetries(t *testing.T) {
	attempts := 0
	cause := errors.New("always fails")
	wf, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
		Name: "neverWorks",
		Task: func(*workflow.Context) error {
			attempts++
			return cause
		},
		RetryPolicy: workflow.RetryConstant(2, 10*time.Millisecond),
	}, nil)
	require.NoError(t, err)

	start := time.Now()
	result := workflow.Execute(wf, workflow.NewContext())
	elapsed := time.Since(start)

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.Equal(t, 3, attempts)
	require.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}
