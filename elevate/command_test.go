/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/environment"
	"github.com/elevated-command/golang-elevated/elevated/filesystem"
)

func TestCommand_Check(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()

	assert.NoError(t, newTestCommand(fs).Check())

	err := NewCommand("").Check()
	require.Error(t, err)
	assert.True(t, commonerrors.Any(err, commonerrors.ErrUndefined))

	c := newTestCommand(fs).WithConfiguration(&Configuration{})
	assert.Error(t, c.Check())

	c = newTestCommand(fs).WithEnv("1NVALID", "value")
	err = c.Check()
	require.Error(t, err)
	assert.True(t, commonerrors.Any(err, commonerrors.ErrInvalid))
}

func TestCommand_builders(t *testing.T) {
	c := NewCommand("apt", "update").
		WithEnv("DEBIAN_FRONTEND", "noninteractive").
		WithEnvVars(environment.NewEnvironmentVariable("LANG", "C")).
		WithWorkingDirectory("/tmp")
	assert.Equal(t, "apt", c.program)
	assert.Equal(t, []string{"update"}, c.args)
	assert.Len(t, c.env, 2)
	assert.Equal(t, "/tmp", c.workingDirectory)
}

func TestCommand_Output_endToEnd(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	c := newTestCommand(fs)
	broker := newFakeBroker(fs,
		stepOut(0, "current user: SYSTEM\r\n"),
		stepExit(0, 0),
	)
	c.runner = &sentinelRunner{broker: broker}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outcome, err := c.Output(ctx)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success())
	assert.Equal(t, "current user: SYSTEM\r\n", string(outcome.Stdout))
	assert.Equal(t, 1, broker.launches())
}

func TestCommand_Output_invalidCommand(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	outcome, err := NewCommand("").Output(ctx)
	require.Error(t, err)
	assert.Nil(t, outcome)
}

func TestCommand_Output_cancelledContext(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	c := newTestCommand(fs)
	c.runner = &sentinelRunner{broker: newFakeBroker(fs)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := c.Output(ctx)
	require.Error(t, err)
	assert.True(t, commonerrors.Any(err, commonerrors.ErrCancelled))
	assert.Nil(t, outcome)
}

func TestCommand_Spawn_endToEnd(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	c := newTestCommand(fs)

	lineCount := 20
	steps := make([]fakeChildStep, 0, lineCount+1)
	for i := 0; i < lineCount; i++ {
		steps = append(steps, stepOut(2*time.Millisecond, fmt.Sprintf("line %v\n", i)))
	}
	steps = append(steps, stepExit(5*time.Millisecond, 0))
	broker := newFakeBroker(fs, steps...)
	broker.pid = 0
	c.runner = &sentinelRunner{broker: broker}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, child, err := c.Spawn(ctx)
	require.NoError(t, err)
	require.NotNil(t, child)

	outcome, err := Drain(ctx, events)
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Success())

	// Chunking may vary but the reassembled stream is exact.
	lines := strings.Split(strings.TrimSpace(string(outcome.Stdout)), "\n")
	require.Len(t, lines, lineCount)
	for i := 0; i < lineCount; i++ {
		assert.Equal(t, fmt.Sprintf("line %v", i), lines[i])
	}

	<-child.Done()
	assert.NotEmpty(t, child.ArtefactsDirectory())
	assert.False(t, fs.Exists(broker.lastScriptPath()))
}

func TestCommand_Spawn_stop(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	c := newTestCommand(fs)
	// A child which never completes.
	broker := newFakeBroker(fs, stepExit(time.Minute, 0))
	c.runner = &sentinelRunner{broker: broker}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, child, err := c.Spawn(ctx)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	require.NoError(t, child.Stop(stopCtx))

	for event := range events {
		if event.IsTerminal() {
			assert.Equal(t, ErrorEvent, event.Kind)
		}
	}
	assert.False(t, fs.Exists(broker.lastScriptPath()))
}

func TestCommand_Spawn_rejection(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	c := newTestCommand(fs)
	broker := newFakeBroker(fs)
	broker.launchErr = ErrElevationRejected
	c.runner = &sentinelRunner{broker: broker}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, child, err := c.Spawn(ctx)
	require.NoError(t, err)
	require.NotNil(t, child)

	outcome, err := Drain(ctx, events)
	require.Error(t, err)
	assert.True(t, commonerrors.Any(err, commonerrors.ErrRejected))
	require.NotNil(t, outcome)
	assert.Empty(t, outcome.Stdout)
	<-child.Done()
}
