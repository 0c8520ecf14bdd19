package engineconfig_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.flowkit.dev/workflow/engineconfig"
)

func TestWatcher_FileChange_ReloadsStoreAndInvokesCallback(t *testing.T) {
	path := writeConfig(t, `
defaultRetry:
  strategy: none
defaultWorkerCount: 1
`)
	cfg, err := engineconfig.Load(path)
	require.NoError(t, err)
	store := engineconfig.NewStore(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 4)
	w := engineconfig.NewWatcher(path, store)
	go w.Run(ctx, func(err error) { reloaded <- err })

	// Give the watcher a moment to register with the filesystem before the
	// write it needs to observe.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`
defaultRetry:
  strategy: none
defaultWorkerCount: 7
`), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the watcher to reload the config")
	}

	require.Equal(t, 7, store.Current().DefaultWorkerCount)
}

func TestWatcher_InvalidRewrite_InvokesCallbackWithErrorAndKeepsPriorConfig(t *testing.T) {
	path := writeConfig(t, `
defaultRetry:
  strategy: none
defaultWorkerCount: 1
`)
	cfg, err := engineconfig.Load(path)
	require.NoError(t, err)
	store := engineconfig.NewStore(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 4)
	w := engineconfig.NewWatcher(path, store)
	go w.Run(ctx, func(err error) { reloaded <- err })

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`
defaultRetry:
  strategy: none
defaultWorkerCount: 0
`), 0o644))

	select {
	case err := <-reloaded:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the watcher to report the validation failure")
	}

	require.Equal(t, 1, store.Current().DefaultWorkerCount, "the prior valid config must remain in place")
}

func TestWatcher_MissingPath_InvokesCallbackWithErrorAndReturns(t *testing.T) {
	store := engineconfig.NewStore(&engineconfig.Config{DefaultWorkerCount: 1})
	w := engineconfig.NewWatcher(filepath.Join(t.TempDir(), "does-not-exist.yaml"), store)

	done := make(chan error, 1)
	go w.Run(context.Background(), func(err error) { done <- err })

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Run to report the missing-path error")
	}
}
