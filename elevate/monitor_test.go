/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/filesystem"
	"github.com/elevated-command/golang-elevated/elevated/logs"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
)

func collectEvents(t *testing.T, events <-chan CommandEvent) (collected []CommandEvent) {
	t.Helper()
	for event := range events {
		collected = append(collected, event)
	}
	return
}

func TestMonitor_streamsOutputInOrder(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	set, err := newSentinelFileSet(fs, fs.TempDirectory())
	require.NoError(t, err)
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	broker := newFakeBroker(fs,
		stepOut(0, "first\n"),
		stepOut(10*time.Millisecond, "second\n"),
		stepErr(0, "oops\n"),
		stepOut(10*time.Millisecond, "third\n"),
		stepExit(10*time.Millisecond, 3),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newMonitor(ctx, fastConfiguration(), loggers, set)
	go func() { _ = broker.replay(ctx, set.scriptPath) }()
	go m.run()

	collected := collectEvents(t, m.events)
	require.NotEmpty(t, collected)

	terminal := collected[len(collected)-1]
	require.True(t, terminal.IsTerminal())
	require.Equal(t, TerminatedEvent, terminal.Kind)
	require.NotNil(t, terminal.ExitCode)
	assert.Equal(t, 3, *terminal.ExitCode)

	var stdout, stderr string
	for _, event := range collected[:len(collected)-1] {
		require.False(t, event.IsTerminal(), "only the last event may be terminal")
		switch event.Kind {
		case StdoutEvent:
			stdout += string(event.Data)
		case StderrEvent:
			stderr += string(event.Data)
		}
	}
	// Per-stream ordering is preserved whatever the chunking.
	assert.Equal(t, "first\nsecond\nthird\n", stdout)
	assert.Equal(t, "oops\n", stderr)

	<-m.done
	assert.False(t, fs.Exists(set.stdoutPath))
	assert.False(t, fs.Exists(set.exitPath))
}

func TestMonitor_exitCodeFidelity(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	for _, code := range []int{0, 1, 127, 255} {
		t.Run(fmt.Sprintf("code_%v", code), func(t *testing.T) {
			set, err := newSentinelFileSet(fs, fs.TempDirectory())
			require.NoError(t, err)
			broker := newFakeBroker(fs, stepExit(0, code))

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			m := newMonitor(ctx, fastConfiguration(), loggers, set)
			go func() { _ = broker.replay(ctx, set.scriptPath) }()
			go m.run()

			collected := collectEvents(t, m.events)
			require.NotEmpty(t, collected)
			terminal := collected[len(collected)-1]
			require.Equal(t, TerminatedEvent, terminal.Kind)
			require.NotNil(t, terminal.ExitCode)
			assert.Equal(t, code, *terminal.ExitCode)
		})
	}
}

func TestMonitor_timeout(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	set, err := newSentinelFileSet(fs, fs.TempDirectory())
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile(set.stdoutPath, []byte("stuck"), 0600))
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	cfg := fastConfiguration()
	cfg.Timeout = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newMonitor(ctx, cfg, loggers, set)
	go m.run()

	collected := collectEvents(t, m.events)
	require.NotEmpty(t, collected)
	terminal := collected[len(collected)-1]
	require.Equal(t, ErrorEvent, terminal.Kind)
	assert.True(t, commonerrors.Any(terminal.Err, commonerrors.ErrTimeout))

	// The output produced before the ceiling was still streamed.
	assert.Equal(t, StdoutEvent, collected[0].Kind)
	assert.Equal(t, "stuck", string(collected[0].Data))

	<-m.done
	assert.False(t, fs.Exists(set.stdoutPath))
}

func TestMonitor_timeoutFiresWithInactiveConsumer(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	set, err := newSentinelFileSet(fs, fs.TempDirectory())
	require.NoError(t, err)
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	cfg := fastConfiguration()
	cfg.PollInterval = time.Millisecond
	cfg.Timeout = 100 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A child which keeps producing without ever completing.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for i := 0; i < 400; i++ {
			if parallelisation.SleepWithContext(ctx, time.Millisecond) != nil {
				return
			}
			if appendToFile(fs, set.stdoutPath, "x") != nil {
				return
			}
		}
	}()

	m := newMonitor(ctx, cfg, loggers, set)
	go m.run()

	// Nothing reads the event channel: the ceiling must still fire and release the monitor.
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("ceiling did not fire while the consumer was inactive")
	}

	cancel()
	<-writerDone

	collected := collectEvents(t, m.events)
	require.NotEmpty(t, collected)
	terminal := collected[len(collected)-1]
	require.True(t, terminal.IsTerminal())
	require.Equal(t, ErrorEvent, terminal.Kind)
	assert.True(t, commonerrors.Any(terminal.Err, commonerrors.ErrTimeout))
	for _, event := range collected[:len(collected)-1] {
		require.False(t, event.IsTerminal())
	}
	// The writer may have recreated the stdout capture file; the other artefacts stay removed.
	assert.False(t, fs.Exists(set.scriptPath))
	assert.False(t, fs.Exists(set.exitPath))
}

func TestMonitor_slowConsumerStillGetsTerminalEvent(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	set, err := newSentinelFileSet(fs, fs.TempDirectory())
	require.NoError(t, err)
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	// More chunks than the channel buffer holds, drained by a consumer slower than the poller.
	steps := make([]fakeChildStep, 0, monitorEventBuffer+9)
	for i := 0; i < monitorEventBuffer+8; i++ {
		steps = append(steps, stepOut(time.Millisecond, "x"))
	}
	steps = append(steps, stepExit(time.Millisecond, 0))
	broker := newFakeBroker(fs, steps...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := fastConfiguration()
	cfg.PollInterval = time.Millisecond
	m := newMonitor(ctx, cfg, loggers, set)
	go func() { _ = broker.replay(ctx, set.scriptPath) }()
	go m.run()

	var collected []CommandEvent
	for event := range m.events {
		collected = append(collected, event)
		time.Sleep(3 * time.Millisecond)
	}
	require.NotEmpty(t, collected)
	terminal := collected[len(collected)-1]
	require.True(t, terminal.IsTerminal(), "the terminal event must survive a slow consumer")
	require.Equal(t, TerminatedEvent, terminal.Kind)
	require.NotNil(t, terminal.ExitCode)
	assert.Equal(t, 0, *terminal.ExitCode)
}

func TestMonitor_cancellation(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	set, err := newSentinelFileSet(fs, fs.TempDirectory())
	require.NoError(t, err)
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	m := newMonitor(ctx, fastConfiguration(), loggers, set)
	go m.run()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-m.done

	collected := collectEvents(t, m.events)
	if len(collected) > 0 {
		terminal := collected[len(collected)-1]
		require.Equal(t, ErrorEvent, terminal.Kind)
		assert.True(t, commonerrors.Any(terminal.Err, commonerrors.ErrCancelled))
	}
	assert.False(t, fs.Exists(set.stdoutPath))
	assert.False(t, fs.Exists(set.scriptPath))
}

func TestMonitor_brokerExitedEarly(t *testing.T) {
	fs := filesystem.NewInMemoryFileSystem()
	set, err := newSentinelFileSet(fs, fs.TempDirectory())
	require.NoError(t, err)
	loggers, err := logs.NewNoopLogger("test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := newMonitor(ctx, fastConfiguration(), loggers, set)
	// A pid which cannot be running: the wrapper never writes the exit code file.
	m.setBrokerPid(1<<30 + 12345)
	go m.run()

	collected := collectEvents(t, m.events)
	require.NotEmpty(t, collected)
	terminal := collected[len(collected)-1]
	require.Equal(t, ErrorEvent, terminal.Kind)
	assert.True(t, commonerrors.Any(terminal.Err, commonerrors.ErrUnexpected))
	<-m.done
}
