package listeners_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow/listeners"
)

func TestNewJaegerTracer_BuildsATracerAndACloser(t *testing.T) {
	tracer, closer, err := listeners.NewJaegerTracer("flowkit-test")
	require.NoError(t, err)
	require.NotNil(t, tracer)
	require.NotNil(t, closer)
	require.NoError(t, closer.Close())
}

func TestNewJaegerTracer_TracerIsUsableByTracingListener(t *testing.T) {
	tracer, closer, err := listeners.NewJaegerTracer("flowkit-test")
	require.NoError(t, err)
	defer closer.Close()

	l := listeners.NewTracingListener(tracer)
	require.NotNil(t, l)
}
