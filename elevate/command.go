/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/environment"
	"github.com/elevated-command/golang-elevated/elevated/filesystem"
	"github.com/elevated-command/golang-elevated/elevated/logs"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
	"github.com/elevated-command/golang-elevated/elevated/platform"
	"github.com/elevated-command/golang-elevated/elevated/subprocess/command"
)

// IsCurrentProcessElevated states whether the current process already runs with escalated
// privileges, in which case no prompt will be raised for the commands it spawns.
func IsCurrentProcessElevated() bool {
	return platform.IsCurrentProcessElevated()
}

// Command describes an external command to run with escalated privileges. It is a snapshot
// owned by the caller until the elevation is requested and read-only afterwards.
type Command struct {
	program          string
	args             []string
	env              []environment.IEnvironmentVariable
	workingDirectory string
	elevationCommand *command.CommandAsDifferentUser
	loggers          logs.Loggers
	cfg              *Configuration
	fs               filesystem.FS
	runner           elevationRunner
}

// NewCommand describes the command defined by a program path and its arguments.
func NewCommand(program string, args ...string) *Command {
	loggers, _ := logs.NewNoopLogger("elevate")
	return &Command{
		program: program,
		args:    args,
		loggers: loggers,
		cfg:     DefaultConfiguration(),
		fs:      filesystem.GetGlobalFileSystem(),
	}
}

// WithEnv adds an environment variable to set for the command.
func (c *Command) WithEnv(key, value string) *Command {
	c.env = append(c.env, environment.NewEnvironmentVariable(key, value))
	return c
}

// WithEnvVars adds environment variables to set for the command.
func (c *Command) WithEnvVars(vars ...environment.IEnvironmentVariable) *Command {
	c.env = append(c.env, vars...)
	return c
}

// WithDotEnv adds the variables defined by a `.env` file to the command environment.
func (c *Command) WithDotEnv(dotEnvFile string) (*Command, error) {
	vars, err := environment.ParseDotEnvFile(dotEnvFile)
	if err != nil {
		return c, err
	}
	c.env = append(c.env, vars...)
	return c, nil
}

// WithWorkingDirectory sets the directory the command will run in.
func (c *Command) WithWorkingDirectory(dir string) *Command {
	c.workingDirectory = dir
	return c
}

// WithLoggers sets the loggers used to report on the invocation.
func (c *Command) WithLoggers(loggers logs.Loggers) *Command {
	c.loggers = loggers
	return c
}

// WithConfiguration overrides the invocation tunables.
func (c *Command) WithConfiguration(cfg *Configuration) *Command {
	c.cfg = cfg
	return c
}

// WithFilesystem overrides the filesystem the invocation artefacts are created on.
func (c *Command) WithFilesystem(fs filesystem.FS) *Command {
	c.fs = fs
	return c
}

// WithElevationCommand overrides the command translator used by platforms which elevate
// through a wrapping command (e.g. command.Pkexec(), command.Sudo(), command.Me()). It has no
// effect on platforms elevating through the shell.
func (c *Command) WithElevationCommand(elevationCommand *command.CommandAsDifferentUser) *Command {
	c.elevationCommand = elevationCommand
	return c
}

// Check checks whether the command is correctly defined.
func (c *Command) Check() (err error) {
	if c.program == "" {
		return commonerrors.UndefinedVariable("program path")
	}
	if c.loggers == nil {
		return commonerrors.ErrNoLogger
	}
	if err = c.loggers.Check(); err != nil {
		return
	}
	if c.cfg == nil {
		return commonerrors.UndefinedVariable("configuration")
	}
	if err = c.cfg.Validate(); err != nil {
		return
	}
	if c.fs == nil {
		return commonerrors.UndefinedVariable("filesystem")
	}
	return environment.ValidateEnvironmentVariables(c.env...)
}

func (c *Command) getRunner() elevationRunner {
	if c.runner == nil {
		c.runner = newDefaultRunner()
	}
	return c.runner
}

// Output requests elevation of the command (raising the platform privilege prompt unless the
// current process is already elevated), waits for the command to complete and returns its full
// output and exit code. The error is ErrRejected when the prompt was declined.
func (c *Command) Output(ctx context.Context) (outcome *ExitOutcome, err error) {
	err = c.Check()
	if err != nil {
		return
	}
	err = parallelisation.DetermineContextError(ctx)
	if err != nil {
		return
	}
	return c.getRunner().Output(ctx, c)
}

// Spawn requests elevation of the command and returns immediately with an ordered event
// stream of the command output and an opaque handle over the monitoring resources. The stream
// ends with exactly one terminal event; nothing is emitted after it. Cancelling the context
// stops the monitoring early and cleans up the invocation artefacts.
func (c *Command) Spawn(ctx context.Context) (events <-chan CommandEvent, child *ElevatedChild, err error) {
	err = c.Check()
	if err != nil {
		return
	}
	err = parallelisation.DetermineContextError(ctx)
	if err != nil {
		return
	}
	return c.getRunner().Spawn(ctx, c)
}
