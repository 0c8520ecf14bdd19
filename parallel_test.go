package workflow_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
	"go.flowkit.dev/workflow/executor"
)

func TestParallelWorkflow_FailFast_CancelsOutstandingSibling(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(4, 4, nil)
	defer strategy.Close()

	a := alwaysFails("A", errFast)
	b := taskFromFunc("B", func(ctx *workflow.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	p, err := workflow.NewParallelWorkflow("par", strategy, []workflow.Workflow{a, b}, workflow.WithFailFast(true))
	require.NoError(t, err)

	start := time.Now()
	result := workflow.Execute(p, workflow.NewContext())
	elapsed := time.Since(start)

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.Less(t, elapsed, 500*time.Millisecond, "fail-fast should return before B's sleep elapses")
}

var errFast = &testError{"A failed fast"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestParallelWorkflow_FailFast_ChildResultsHasNoNilSlotForAnUnreceivedSibling(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(4, 4, nil)
	defer strategy.Close()

	a := alwaysFails("A", errFast)
	b := taskFromFunc("B", func(ctx *workflow.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})

	p, err := workflow.NewParallelWorkflow("par", strategy, []workflow.Workflow{a, b}, workflow.WithFailFast(true))
	require.NoError(t, err)

	result := workflow.Execute(p, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.Len(t, result.ChildResults, 2)
	for i, c := range result.ChildResults {
		require.NotNil(t, c, "slot %d", i)
	}
	require.Equal(t, "B", result.ChildResults[1].WorkflowName)
	require.Equal(t, workflow.StatusFailed, result.ChildResults[1].Status)

	// Must not panic: ToTreeStringWithResult walks ChildResults via
	// findChild, which previously dereferenced a nil placeholder here.
	require.NotPanics(t, func() {
		workflow.ToTreeStringWithResult(p, result)
	})
}

func TestParallelWorkflow_NoFailFast_RunsAllChildrenToCompletion(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(4, 4, nil)
	defer strategy.Close()

	var mu sync.Mutex
	bRan := false

	a := alwaysFails("A", errFast)
	b := taskFromFunc("B", func(ctx *workflow.Context) error {
		mu.Lock()
		bRan = true
		mu.Unlock()
		return nil
	})

	p, err := workflow.NewParallelWorkflow("par", strategy, []workflow.Workflow{a, b}, workflow.WithFailFast(false))
	require.NoError(t, err)

	result := workflow.Execute(p, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	mu.Lock()
	defer mu.Unlock()
	require.True(t, bRan, "B must run to completion when failFast is false")
}

func TestParallelWorkflow_ShareContextFalse_ChildMutationsNotVisible(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(2, 2, nil)
	defer strategy.Close()

	child := taskFromFunc("writer", func(ctx *workflow.Context) error {
		ctx.Put("mutated", true)
		return nil
	})

	p, err := workflow.NewParallelWorkflow("par", strategy, []workflow.Workflow{child}, workflow.WithShareContext(false))
	require.NoError(t, err)

	parent := workflow.NewContext()
	result := workflow.Execute(p, parent)

	require.Equal(t, workflow.StatusSuccess, result.Status)
	_, ok := parent.Get("mutated")
	require.False(t, ok, "child mutation must not be visible on parent when shareContext is false")
}

func TestParallelWorkflow_ShareContextTrue_ChildMutationsVisible(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(2, 2, nil)
	defer strategy.Close()

	child := taskFromFunc("writer", func(ctx *workflow.Context) error {
		ctx.Put("mutated", true)
		return nil
	})

	p, err := workflow.NewParallelWorkflow("par", strategy, []workflow.Workflow{child})
	require.NoError(t, err)

	parent := workflow.NewContext()
	workflow.Execute(p, parent)

	v, ok := workflow.GetTyped[bool](parent, "mutated")
	require.True(t, ok)
	require.True(t, v)
}
