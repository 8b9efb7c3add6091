package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ringtool "gregoryjjb/ringtool"
)

func TestComponentLoggersUseConsoleWriter(t *testing.T) {
	previous, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = previous
		zerolog.SetGlobalLevel(level)
	})

	var buf bytes.Buffer
	ringtool.InitializeLogger(&buf, true)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	config, fs := newTestConfig(t, ringtool.Flags{}, nil, `data_dir = "/data"`)
	ctx, cancel := context.WithCancel(context.Background())
	runner := ringtool.NewRunner(ctx, config, ringtool.NewStorage(fs, config))

	unsub, ch := runner.Subscribe()
	run, err := runner.Submit("josephus", nil)
	require.NoError(t, err)
	_, _, err = waitFinished(ch, run.ID)
	require.NoError(t, err)
	unsub()

	cancel()
	<-runner.Done()

	out := buf.String()
	assert.Contains(t, out, "Run finished")
	assert.Contains(t, out, "component=runner")
	assert.Contains(t, out, "component=pubsub")
	assert.Contains(t, out, "| INFO  |", "console level column")
	assert.NotContains(t, out, `"component":`, "no raw JSON lines")
}
