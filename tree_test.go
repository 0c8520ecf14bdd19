package workflow_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow"
)

func TestToTreeString_RendersNestedShapeWithoutExecuting(t *testing.T) {
	ran := false
	leaf := taskFromFunc("leaf", func(ctx *workflow.Context) error {
		ran = true
		return nil
	})
	fb, err := workflow.NewFallbackWorkflow("fb", leaf, alwaysSucceeds("fallback-leaf"))
	require.NoError(t, err)
	seq := workflow.NewSequentialWorkflow("root", fb, alwaysSucceeds("tail"))

	out := workflow.ToTreeString(seq)

	require.False(t, ran, "rendering the tree must never execute anything")
	require.True(t, strings.HasPrefix(out, "root\n"))
	require.Contains(t, out, "TRY (PRIMARY) → leaf")
	require.Contains(t, out, "ON FAILURE → fallback-leaf")
	require.Contains(t, out, "tail")
}

func TestToTreeStringWithResult_AnnotatesExecutedNodes(t *testing.T) {
	a := alwaysSucceeds("A")
	b := alwaysSucceeds("B")
	seq := workflow.NewSequentialWorkflow("pipeline", a, b)

	result := workflow.Execute(seq, workflow.NewContext())
	out := workflow.ToTreeStringWithResult(seq, result)

	require.Contains(t, out, "pipeline [SUCCESS")
	require.Contains(t, out, "A [SUCCESS")
	require.Contains(t, out, "B [SUCCESS")
}

func TestToTreeStringWithResult_UnreachedNodeIsUnannotated(t *testing.T) {
	primary := alwaysSucceeds("primary")
	fallback := alwaysSucceeds("fallback")
	fb, err := workflow.NewFallbackWorkflow("fb", primary, fallback)
	require.NoError(t, err)

	result := workflow.Execute(fb, workflow.NewContext())
	out := workflow.ToTreeStringWithResult(fb, result)

	require.Contains(t, out, "TRY (PRIMARY) → primary [SUCCESS")
	require.Contains(t, out, "ON FAILURE → fallback\n")
	require.NotContains(t, out, "fallback [")
}
