/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

// collectBlocking runs the elevated invocation to completion and assembles its outcome from the
// capture files. The broker handle is waited upon when available; otherwise (or when configured
// to) a bounded fixed-delay wait on the exit code file is used instead, which can truncate the
// output of commands outlasting it. Artefacts are removed whatever the outcome, including when
// the elevation request itself fails.
func collectBlocking(ctx context.Context, c *Command, set *sentinelFileSet, broker elevationBroker) (outcome *ExitOutcome, err error) {
	defer func() {
		if cleanErr := set.removeAll(); cleanErr != nil {
			c.loggers.LogError("failed removing invocation artefacts: ", cleanErr.Error())
		}
	}()

	if c.cfg.UseHeuristicWait {
		_, err = broker.ElevateDetached(ctx, set.scriptPath)
		if err != nil {
			err = commonerrors.WrapIfNotCommonError(err, commonerrors.ErrUnexpected, "failed requesting elevation")
			return
		}
		if waitErr := waitForExitSentinel(ctx, c, set); waitErr != nil {
			if err = commonerrors.ConvertContextError(waitErr); commonerrors.Any(err, commonerrors.ErrCancelled, commonerrors.ErrTimeout) {
				return
			}
			// Degraded collection: the command may still be running, return whatever was captured.
			err = nil
			c.loggers.LogError("exit code file not seen within ", c.cfg.HeuristicWaitDelay, "; output may be truncated")
		}
	} else {
		brokerCode, subErr := broker.ElevateAndWait(ctx, set.scriptPath)
		if subErr != nil {
			err = commonerrors.WrapIfNotCommonError(subErr, commonerrors.ErrUnexpected, "failed requesting elevation")
			return
		}
		c.loggers.Log(fmt.Sprintf("elevation broker exited with code %v", brokerCode))
	}

	outcome = readOutcome(set)
	return
}

// waitForExitSentinel polls the exit code file at the configured interval until it is ready or
// the heuristic delay elapses.
func waitForExitSentinel(ctx context.Context, c *Command, set *sentinelFileSet) error {
	attempts := uint(c.cfg.HeuristicWaitDelay / c.cfg.PollInterval)
	if attempts < 1 {
		attempts = 1
	}
	return retry.Do(func() error {
		if !set.exitCodeReady() {
			return commonerrors.New(commonerrors.ErrNotFound, "exit code file not ready")
		}
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(c.cfg.PollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// readOutcome assembles the outcome from the capture files. Missing or unreadable files degrade
// to empty output and a missing exit code degrades to 0, so that a command producing no output
// is indistinguishable from lost capture files, as shell redirection offers no better signal.
func readOutcome(set *sentinelFileSet) *ExitOutcome {
	outcome := &ExitOutcome{Stdout: []byte{}, Stderr: []byte{}}
	if content, err := set.fs.ReadFile(set.stdoutPath); err == nil {
		outcome.Stdout = content
	}
	if content, err := set.fs.ReadFile(set.stderrPath); err == nil {
		outcome.Stderr = content
	}
	if code := set.readExitCode(); code != nil {
		outcome.ExitCode = *code
	}
	return outcome
}
