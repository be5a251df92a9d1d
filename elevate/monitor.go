/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/logs"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
	"github.com/elevated-command/golang-elevated/elevated/proc"
)

const monitorEventBuffer = 64

// monitor polls the capture files of a detached elevated invocation and turns their growth into
// an ordered event stream. It is the sole writer of its event channel and closes it after the
// single terminal event; every exit path removes the invocation artefacts.
//
// The last buffer slot of the event channel is reserved for the terminal event: chunk sends
// never occupy it, so the terminal event can always be delivered without blocking, whatever the
// consumer does. Chunk sends facing a full buffer wait in poll-interval slices bounded by the
// invocation deadline, so that an inactive consumer cannot starve the timeout ceiling.
type monitor struct {
	ctx       context.Context
	cfg       *Configuration
	loggers   logs.Loggers
	set       *sentinelFileSet
	events    chan CommandEvent
	stdout    *streamCursor
	stderr    *streamCursor
	deadline  time.Time
	brokerPid *atomic.Int64
	brokerErr *atomic.Error
	done      chan struct{}
}

func newMonitor(ctx context.Context, cfg *Configuration, loggers logs.Loggers, set *sentinelFileSet) *monitor {
	return &monitor{
		ctx:       ctx,
		cfg:       cfg,
		loggers:   loggers,
		set:       set,
		events:    make(chan CommandEvent, monitorEventBuffer),
		stdout:    &streamCursor{path: set.stdoutPath},
		stderr:    &streamCursor{path: set.stderrPath},
		brokerPid: atomic.NewInt64(0),
		brokerErr: atomic.NewError(nil),
		done:      make(chan struct{}),
	}
}

// setBrokerPid records the pid of the elevation broker so that the poll loop can detect a
// broker which exited without the wrapper ever completing (e.g. a dismissed prompt).
func (m *monitor) setBrokerPid(pid int) {
	m.brokerPid.Store(int64(pid))
}

// abort records an asynchronous elevation failure; the poll loop reports it on its next turn.
func (m *monitor) abort(err error) {
	m.brokerErr.Store(err)
}

func (m *monitor) timeoutError() error {
	return commonerrors.Newf(commonerrors.ErrTimeout, "elevated command did not complete within %v", m.cfg.Timeout)
}

func (m *monitor) run() {
	defer close(m.done)
	defer close(m.events)

	if err := parallelisation.SleepWithContext(m.ctx, m.cfg.GraceDelay); err != nil {
		m.fail(err)
		return
	}

	// The ceiling is measured from the end of the grace delay and fires whatever the consumer
	// does with the event channel.
	m.deadline = time.Now().Add(m.cfg.Timeout)
	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := m.brokerErr.Load(); err != nil {
			m.fail(err)
			return
		}
		if err := m.poll(); err != nil {
			m.fail(err)
			return
		}
		if m.set.exitCodeReady() {
			m.finish()
			return
		}
		if m.brokerExitedEarly() {
			m.fail(commonerrors.New(commonerrors.ErrUnexpected, "elevation broker exited before the command completed"))
			return
		}
		if time.Now().After(m.deadline) {
			m.fail(m.timeoutError())
			return
		}
		select {
		case <-m.ctx.Done():
			m.fail(parallelisation.DetermineContextError(m.ctx))
			return
		case <-ticker.C:
		}
	}
}

// poll forwards the bytes appended to each capture file since the previous poll. A non-nil
// error means monitoring should stop with that failure.
func (m *monitor) poll() error {
	for _, pair := range []struct {
		kind   EventKind
		cursor *streamCursor
	}{
		{StdoutEvent, m.stdout},
		{StderrEvent, m.stderr},
	} {
		chunk, err := pair.cursor.readNew(m.set.fs)
		if err != nil {
			m.loggers.LogError("failed reading ", pair.kind, " capture file: ", err.Error())
			continue
		}
		if len(chunk) == 0 {
			continue
		}
		if err := m.send(CommandEvent{Kind: pair.kind, Data: chunk}); err != nil {
			return err
		}
	}
	return nil
}

// brokerExitedEarly states whether the broker process is known and no longer running while the
// wrapper script has not yet written the exit code file.
func (m *monitor) brokerExitedEarly() bool {
	pid := int(m.brokerPid.Load())
	if pid <= 0 {
		return false
	}
	running, err := proc.IsProcessRunning(m.ctx, pid)
	if err != nil {
		return false
	}
	if running {
		return false
	}
	// Give the last writes a chance to land before concluding the command never completed.
	_ = parallelisation.SleepWithContext(m.ctx, m.cfg.SettleDelay)
	return !m.set.exitCodeReady()
}

// finish waits out the settle delay, flushes the tail of the capture files, emits the terminal
// event and removes the artefacts.
func (m *monitor) finish() {
	if err := parallelisation.SleepWithContext(m.ctx, m.cfg.SettleDelay); err != nil {
		m.fail(err)
		return
	}
	if err := m.poll(); err != nil {
		m.fail(err)
		return
	}
	exitCode := m.set.readExitCode()
	m.cleanup()
	m.sendTerminal(CommandEvent{Kind: TerminatedEvent, ExitCode: exitCode})
}

// fail removes the artefacts and emits the terminal error event.
func (m *monitor) fail(err error) {
	m.cleanup()
	m.sendTerminal(CommandEvent{Kind: ErrorEvent, Err: err})
}

// send delivers a chunk event, leaving the reserved terminal slot free. When the buffer is
// otherwise full it waits for the consumer in poll-interval slices, giving up on cancellation
// or once the invocation deadline passes.
func (m *monitor) send(event CommandEvent) error {
	for {
		if len(m.events) < cap(m.events)-1 {
			// The monitor is the sole sender, so the room just observed cannot vanish.
			m.events <- event
			return nil
		}
		remaining := time.Until(m.deadline)
		if remaining <= 0 {
			return m.timeoutError()
		}
		pause := m.cfg.PollInterval
		if pause > remaining {
			pause = remaining
		}
		if err := parallelisation.SleepWithContext(m.ctx, pause); err != nil {
			return err
		}
	}
}

// sendTerminal delivers the terminal event into its reserved buffer slot. Chunk sends never
// fill the buffer completely, so the send cannot block and the event cannot be lost before the
// channel closes.
func (m *monitor) sendTerminal(event CommandEvent) {
	m.events <- event
}

func (m *monitor) cleanup() {
	if err := m.set.removeAll(); err != nil {
		m.loggers.LogError("failed removing invocation artefacts: ", err.Error())
	}
}
