/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"path/filepath"

	"go.uber.org/atomic"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
)

// ErrElevationRejected is returned when the OS rejected the elevation request, most commonly
// because the privilege prompt was declined. The request is not retried.
var ErrElevationRejected = commonerrors.New(commonerrors.ErrRejected, "elevation request was rejected")

// elevationRunner abstracts how a platform elevates a command and recovers its output.
type elevationRunner interface {
	Output(ctx context.Context, c *Command) (*ExitOutcome, error)
	Spawn(ctx context.Context, c *Command) (<-chan CommandEvent, *ElevatedChild, error)
}

// elevationBroker abstracts the OS facility executing the wrapper script with elevated
// rights. It is the seam between the collectors and the platform shell call, so that the
// collection protocols can be exercised against a broker simulating the elevated child.
type elevationBroker interface {
	// ElevateAndWait requests elevated execution of the script, blocks until the broker
	// process exits and returns the broker's own exit code, which is unrelated to the wrapped
	// command's exit code and only informational.
	ElevateAndWait(ctx context.Context, scriptPath string) (brokerCode int, err error)
	// ElevateDetached requests elevated execution of the script without retaining any handle.
	// It returns the broker process id when the platform exposes it, 0 otherwise. Completion
	// can then only be observed through the capture files.
	ElevateDetached(ctx context.Context, scriptPath string) (pid int, err error)
}

// ElevatedChild is an opaque handle over the resources of a streaming invocation. It does not
// guarantee that the monitoring has stopped; use Done for that.
type ElevatedChild struct {
	artefactsDir string
	brokerPid    *atomic.Int64
	cancel       context.CancelFunc
	done         chan struct{}
}

func newElevatedChild(set *sentinelFileSet, cancel context.CancelFunc, done chan struct{}, brokerPid *atomic.Int64) *ElevatedChild {
	dir := ""
	if set != nil {
		dir = filepath.Dir(set.scriptPath)
	}
	return &ElevatedChild{
		artefactsDir: dir,
		brokerPid:    brokerPid,
		cancel:       cancel,
		done:         done,
	}
}

// ArtefactsDirectory returns the directory holding the invocation artefacts, when any.
func (c *ElevatedChild) ArtefactsDirectory() string {
	return c.artefactsDir
}

// BrokerPid returns the process id of the elevation broker, 0 when not known.
func (c *ElevatedChild) BrokerPid() int {
	if c.brokerPid == nil {
		return 0
	}
	return int(c.brokerPid.Load())
}

// Done is closed once the monitoring has stopped and the invocation artefacts were removed.
func (c *ElevatedChild) Done() <-chan struct{} {
	return c.done
}

// Stop cancels the monitoring, waits for it to clean up and returns. The elevated process
// itself is not killed; only the monitoring resources are released.
func (c *ElevatedChild) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return parallelisation.DetermineContextError(ctx)
	}
}
