/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"fmt"

	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
)

// EventKind describes the kind of a CommandEvent.
type EventKind int

const (
	// StdoutEvent carries bytes newly written by the command to its standard output.
	StdoutEvent EventKind = iota
	// StderrEvent carries bytes newly written by the command to its standard error.
	StderrEvent
	// TerminatedEvent is the terminal event of a successful invocation.
	TerminatedEvent
	// ErrorEvent is the terminal event of a failed invocation (e.g. timeout, declined prompt).
	ErrorEvent
)

func (k EventKind) String() string {
	switch k {
	case StdoutEvent:
		return "stdout"
	case StderrEvent:
		return "stderr"
	case TerminatedEvent:
		return "terminated"
	case ErrorEvent:
		return "error"
	default:
		return "unknown"
	}
}

// CommandEvent is an element of the event stream produced by Spawn. Events for a given stream
// are emitted in the order their bytes were produced; a stream ends with exactly one terminal
// event (Terminated or Error) and nothing is emitted after it.
type CommandEvent struct {
	// Kind states what the event describes.
	Kind EventKind
	// Data carries the output chunk for Stdout/Stderr events.
	Data []byte
	// ExitCode carries the exit code of the command for Terminated events. It is nil when the
	// exit code could not be determined.
	ExitCode *int
	// Err carries the failure for Error events.
	Err error
}

// IsTerminal states whether the event is the last one of its stream.
func (e CommandEvent) IsTerminal() bool {
	return e.Kind == TerminatedEvent || e.Kind == ErrorEvent
}

func (e CommandEvent) String() string {
	switch e.Kind {
	case StdoutEvent, StderrEvent:
		return fmt.Sprintf("%v event [%v bytes]", e.Kind, len(e.Data))
	case TerminatedEvent:
		if e.ExitCode == nil {
			return "terminated event [no exit code]"
		}
		return fmt.Sprintf("terminated event [exit code %v]", *e.ExitCode)
	default:
		return fmt.Sprintf("%v event [%v]", e.Kind, e.Err)
	}
}

// ExitOutcome is the result of a complete elevated invocation.
type ExitOutcome struct {
	// ExitCode is the exit code of the wrapped command, not of the elevation broker.
	ExitCode int
	// Stdout is the captured standard output of the command.
	Stdout []byte
	// Stderr is the captured standard error of the command.
	Stderr []byte
}

// Success states whether the command exited with code 0.
func (o *ExitOutcome) Success() bool {
	return o != nil && o.ExitCode == 0
}

func (o *ExitOutcome) String() string {
	if o == nil {
		return "no outcome"
	}
	return fmt.Sprintf("exit code %v [stdout: %v bytes, stderr: %v bytes]", o.ExitCode, len(o.Stdout), len(o.Stderr))
}

// Drain consumes an event stream until its terminal event and assembles the chunks into an
// ExitOutcome. It returns the error carried by the terminal event if the invocation failed.
func Drain(ctx context.Context, events <-chan CommandEvent) (outcome *ExitOutcome, err error) {
	outcome = &ExitOutcome{}
	for {
		select {
		case <-ctx.Done():
			err = parallelisation.DetermineContextError(ctx)
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			switch event.Kind {
			case StdoutEvent:
				outcome.Stdout = append(outcome.Stdout, event.Data...)
			case StderrEvent:
				outcome.Stderr = append(outcome.Stderr, event.Data...)
			case TerminatedEvent:
				if event.ExitCode != nil {
					outcome.ExitCode = *event.ExitCode
				}
				return
			case ErrorEvent:
				err = event.Err
				return
			}
		}
	}
}
