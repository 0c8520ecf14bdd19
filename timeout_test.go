package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
	"go.flowkit.dev/workflow/executor"
)

func TestTimeoutWorkflow_DisabledPolicy_RunsInnerSynchronously(t *testing.T) {
	inner := alwaysSucceeds("inner")

	w, err := workflow.NewTimeoutWorkflow("bounded", inner, workflow.TimeoutPolicy{}, nil)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusSuccess, result.Status)
	require.Equal(t, "inner", result.WorkflowName)
}

func TestTimeoutWorkflow_InnerFinishesInTime_ReturnsInnerResultVerbatim(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(2, 2, nil)
	defer strategy.Close()

	inner := alwaysSucceeds("inner")
	policy := workflow.NewTimeoutPolicy(500 * time.Millisecond)

	w, err := workflow.NewTimeoutWorkflow("bounded", inner, policy, strategy)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusSuccess, result.Status)
	require.Equal(t, "inner", result.WorkflowName)
}

func TestTimeoutWorkflow_InnerExceedsBudget_FailsWithTaskTimeoutError(t *testing.T) {
	strategy := executor.NewThreadPoolStrategy(2, 2, nil)
	defer strategy.Close()

	inner := taskFromFunc("slow", func(ctx *workflow.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})
	policy := workflow.NewTimeoutPolicy(20 * time.Millisecond)

	w, err := workflow.NewTimeoutWorkflow("bounded", inner, policy, strategy)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	var timeoutErr *workflow.TaskTimeoutError
	require.True(t, errors.As(result.Error, &timeoutErr))
}

func TestNewTimeoutWorkflow_RequiresStrategyWhenEnabled(t *testing.T) {
	_, err := workflow.NewTimeoutWorkflow("bounded", alwaysSucceeds("x"), workflow.NewTimeoutPolicy(time.Second), nil)
	require.Error(t, err)
	var constructionErr *workflow.ConstructionError
	require.True(t, errors.As(err, &constructionErr))
}

func TestNewTimeoutWorkflow_RequiresInner(t *testing.T) {
	_, err := workflow.NewTimeoutWorkflow("bounded", nil, workflow.TimeoutPolicy{}, nil)
	require.Error(t, err)
}
