/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
//go:build !windows

package elevate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
	"github.com/elevated-command/golang-elevated/elevated/platform"
	"github.com/elevated-command/golang-elevated/elevated/proc"
	"github.com/elevated-command/golang-elevated/elevated/safeio"
	"github.com/elevated-command/golang-elevated/elevated/subprocess/command"
)

const pumpChunkSize = 4096

// pipeRunner elevates commands through a wrapping command raising the platform authorisation
// prompt (pkexec on Linux, osascript on macOS). Unlike the shell brokers, these keep the
// standard streams connected, so output is collected from pipes and no capture files are needed.
type pipeRunner struct{}

// resolve returns the actual program to execute. An explicit elevation command always wins;
// otherwise no wrapping happens when the process is already elevated.
func (r *pipeRunner) resolve(c *Command) (string, []string) {
	if c.elevationCommand != nil {
		return c.elevationCommand.Redefine(c.program, c.args...)
	}
	switch {
	case platform.IsCurrentProcessElevated():
		return command.Me().Redefine(c.program, c.args...)
	case platform.IsDarwin():
		return command.OsascriptAdministrator(command.AsShellForm(c.program, c.args...))
	default:
		return command.Pkexec().Redefine(c.program, c.args...)
	}
}

func (r *pipeRunner) buildCommand(ctx context.Context, c *Command) *exec.Cmd {
	name, args := r.resolve(c)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = c.workingDirectory
	env := os.Environ()
	for i := range c.env {
		env = append(env, c.env[i].String())
	}
	cmd.Env = env
	return cmd
}

// isRejection states whether the run failure denotes a declined or failed authorisation rather
// than a failure of the wrapped command itself. pkexec reserves 126 (dismissed prompt) and 127
// (authorisation failure); osascript reports a declined dialog on stderr.
func (r *pipeRunner) isRejection(c *Command, exitCode int, stderr []byte) bool {
	if c.elevationCommand == nil && platform.IsCurrentProcessElevated() {
		return false
	}
	if platform.IsDarwin() && c.elevationCommand == nil {
		return bytes.Contains(stderr, []byte("User canceled"))
	}
	return exitCode == 126 || exitCode == 127
}

func (r *pipeRunner) Output(ctx context.Context, c *Command) (outcome *ExitOutcome, err error) {
	runCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()
	cmd := r.buildCommand(runCtx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	outcome = &ExitOutcome{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if runErr == nil {
		return
	}
	outcome = nil
	if ctxErr := parallelisation.DetermineContextError(runCtx); ctxErr != nil {
		err = ctxErr
		return
	}
	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		err = proc.ConvertProcessError(runErr)
		return
	}
	code := exitErr.ExitCode()
	if r.isRejection(c, code, stderr.Bytes()) {
		err = commonerrors.WrapErrorf(ErrElevationRejected, nil, "authorisation failed (exit code %v): %v", code, strings.TrimSpace(stderr.String()))
		return
	}
	outcome = &ExitOutcome{ExitCode: code, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	return
}

func (r *pipeRunner) Spawn(ctx context.Context, c *Command) (<-chan CommandEvent, *ElevatedChild, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	cmd := r.buildCommand(runCtx, c)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, nil, commonerrors.WrapError(commonerrors.ErrUnexpected, err, "failed opening the stdout pipe")
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return nil, nil, commonerrors.WrapError(commonerrors.ErrUnexpected, err, "failed opening the stderr pipe")
	}
	var stderrTail bytes.Buffer
	if err = cmd.Start(); err != nil {
		cancel()
		return nil, nil, proc.ConvertProcessError(err)
	}

	events := make(chan CommandEvent, monitorEventBuffer)
	done := make(chan struct{})
	brokerPid := atomic.NewInt64(int64(cmd.Process.Pid))

	pump := func(pipe io.Reader, kind EventKind) func() error {
		return func() error {
			reader := safeio.NewContextualReader(runCtx, pipe)
			buffer := make([]byte, pumpChunkSize)
			for {
				n, readErr := reader.Read(buffer)
				if n > 0 {
					chunk := make([]byte, n)
					copy(chunk, buffer[:n])
					if kind == StderrEvent {
						stderrTail.Write(chunk)
					}
					select {
					case events <- CommandEvent{Kind: kind, Data: chunk}:
					case <-runCtx.Done():
						return parallelisation.DetermineContextError(runCtx)
					}
				}
				if readErr != nil {
					if errors.Is(readErr, io.EOF) {
						return nil
					}
					return readErr
				}
			}
		}
	}

	go func() {
		defer close(done)
		defer close(events)
		defer cancel()
		group, _ := errgroup.WithContext(runCtx)
		group.Go(pump(stdoutPipe, StdoutEvent))
		group.Go(pump(stderrPipe, StderrEvent))
		pumpErr := parallelisation.WaitWithContextAndError(runCtx, group)
		waitErr := cmd.Wait()
		terminal := CommandEvent{Kind: TerminatedEvent, ExitCode: new(int)}
		switch {
		case waitErr == nil && pumpErr == nil:
		default:
			if ctxErr := parallelisation.DetermineContextError(runCtx); ctxErr != nil {
				terminal = CommandEvent{Kind: ErrorEvent, Err: ctxErr}
				break
			}
			var exitErr *exec.ExitError
			if errors.As(waitErr, &exitErr) {
				code := exitErr.ExitCode()
				if r.isRejection(c, code, stderrTail.Bytes()) {
					terminal = CommandEvent{Kind: ErrorEvent, Err: commonerrors.Newf(commonerrors.ErrRejected, "authorisation failed (exit code %v)", code)}
				} else {
					terminal = CommandEvent{Kind: TerminatedEvent, ExitCode: &code}
				}
				break
			}
			if waitErr != nil {
				terminal = CommandEvent{Kind: ErrorEvent, Err: proc.ConvertProcessError(waitErr)}
			} else {
				terminal = CommandEvent{Kind: ErrorEvent, Err: pumpErr}
			}
		}
		select {
		case events <- terminal:
		case <-runCtx.Done():
			// Best effort: the consumer may have cancelled and walked away.
			select {
			case events <- terminal:
			default:
			}
		}
	}()

	return events, newElevatedChild(nil, cancel, done, brokerPid), nil
}
