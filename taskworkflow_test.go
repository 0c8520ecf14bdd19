package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
)

func TestTaskWorkflow_SucceedsOnFirstAttempt_NeverRetries(t *testing.T) {
	attempts := 0
	w, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
		Name: "task",
		Task: func(ctx *workflow.Context) error {
			attempts++
			return nil
		},
		RetryPolicy: workflow.RetryConstant(3, time.Millisecond),
	}, nil)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusSuccess, result.Status)
	require.Equal(t, 1, attempts)
}

func TestTaskWorkflow_NoRetryPolicy_FailsAfterOneAttempt(t *testing.T) {
	attempts := 0
	cause := errors.New("boom")
	w, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
		Name: "task",
		Task: func(ctx *workflow.Context) error {
			attempts++
			return cause
		},
	}, nil)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.Equal(t, 1, attempts)

	var taskErr *workflow.TaskExecutionError
	require.True(t, errors.As(result.Error, &taskErr))
	require.Equal(t, cause, errors.Unwrap(taskErr))
}

func TestTaskWorkflow_RetryExhaustion_StopsAfterMaxAttempts(t *testing.T) {
	attempts := 0
	cause := errors.New("always fails")
	w, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
		Name: "task",
		Task: func(ctx *workflow.Context) error {
			attempts++
			return cause
		},
		RetryPolicy: workflow.RetryConstant(2, time.Millisecond),
	}, nil)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.Equal(t, 3, attempts)
}

func TestTaskWorkflow_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	w, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
		Name: "task",
		Task: func(ctx *workflow.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		},
		RetryPolicy: workflow.RetryConstant(5, time.Millisecond),
	}, nil)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusSuccess, result.Status)
	require.Equal(t, 3, attempts)
}

func TestTaskWorkflow_RetryIf_ExcludesMatchingError(t *testing.T) {
	attempts := 0
	fatal := errors.New("do not retry me")
	policy := workflow.RetryIf(workflow.RetryConstant(5, time.Millisecond), func(err error) bool {
		var taskErr *workflow.TaskExecutionError
		if errors.As(err, &taskErr) {
			return !errors.Is(errors.Unwrap(taskErr), fatal)
		}
		return true
	})

	w, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{
		Name: "task",
		Task: func(ctx *workflow.Context) error {
			attempts++
			return fatal
		},
		RetryPolicy: policy,
	}, nil)
	require.NoError(t, err)

	result := workflow.Execute(w, workflow.NewContext())

	require.Equal(t, workflow.StatusFailed, result.Status)
	require.Equal(t, 1, attempts)
}

func TestNewTaskWorkflow_RequiresNameAndTask(t *testing.T) {
	_, err := workflow.NewTaskWorkflow(workflow.TaskDescriptor{}, nil)
	require.Error(t, err)
}
