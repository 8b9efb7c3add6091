package main_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	ringtool "gregoryjjb/ringtool"
)

func newTestFS(t *testing.T, toml string) ringtool.RingFS {
	t.Helper()
	fs := ringtool.NewRingMemFS()

	require.NoError(t, fs.Mkdir("/data", 0777))
	if toml != "" {
		require.NoError(t, afero.WriteFile(fs, "/"+ringtool.DefaultConfigName, []byte(toml), 0777))
	}
	return fs
}

func testGetenv(env map[string]string) func(string) string {
	return func(s string) string { return env[s] }
}

func newTestConfig(t *testing.T, flags ringtool.Flags, env map[string]string, toml string) (*ringtool.Config, ringtool.RingFS) {
	t.Helper()
	fs := newTestFS(t, toml)

	c, err := ringtool.NewConfig(fs, flags, testGetenv(env))
	require.NoError(t, err)

	return c, fs
}

func newTestRunner(t *testing.T, toml string) (*ringtool.Runner, *ringtool.Storage, *ringtool.Config) {
	t.Helper()
	config, fs := newTestConfig(t, ringtool.Flags{}, nil, `data_dir = "/data"`+"\n"+toml)

	ctx, cancel := context.WithCancel(context.Background())
	storage := ringtool.NewStorage(fs, config)
	runner := ringtool.NewRunner(ctx, config, storage)
	t.Cleanup(func() {
		cancel()
		<-runner.Done()
	})

	return runner, storage, config
}

var errTimeout = errors.New("timed out waiting for event")

// waitFinished reads events until run id reaches a final state.
func waitFinished(ch <-chan ringtool.RunEvent, id string) (ringtool.RunEvent, []ringtool.RunEvent, error) {
	var seen []ringtool.RunEvent
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.ID != id {
				continue
			}
			seen = append(seen, ev)
			if ev.State.Finished() {
				return ev, seen, nil
			}
		case <-timeout:
			return ringtool.RunEvent{}, seen, errTimeout
		}
	}
}
