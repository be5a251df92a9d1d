/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
)

// sentinelRunner elevates commands through a broker which offers no pipes: the command runs
// behind a wrapper script redirecting its output into capture files, and the files are read
// back blockingly (Output) or by a polling monitor (Spawn).
type sentinelRunner struct {
	broker elevationBroker
}

func (r *sentinelRunner) prepare(c *Command) (set *sentinelFileSet, err error) {
	set, err = newSentinelFileSet(c.fs, c.cfg.TempDirectory)
	if err != nil {
		return
	}
	err = writeWrapperScript(c.program, c.args, c.env, c.workingDirectory, set)
	if err != nil {
		_ = set.removeAll()
		set = nil
	}
	return
}

func (r *sentinelRunner) Output(ctx context.Context, c *Command) (outcome *ExitOutcome, err error) {
	set, err := r.prepare(c)
	if err != nil {
		return
	}
	return collectBlocking(ctx, c, set, r.broker)
}

func (r *sentinelRunner) Spawn(ctx context.Context, c *Command) (<-chan CommandEvent, *ElevatedChild, error) {
	set, err := r.prepare(c)
	if err != nil {
		return nil, nil, err
	}
	monitorCtx, cancel := context.WithCancel(ctx)
	m := newMonitor(monitorCtx, c.cfg, c.loggers, set)
	go func() {
		pid, elevateErr := r.broker.ElevateDetached(monitorCtx, set.scriptPath)
		if elevateErr != nil {
			m.abort(elevateErr)
			return
		}
		m.setBrokerPid(pid)
	}()
	go func() {
		m.run()
		cancel()
	}()
	return m.events, newElevatedChild(set, cancel, m.done, m.brokerPid), nil
}
