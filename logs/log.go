/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package logs

import (
	"log"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

// GenericLoggers defines loggers over the standard log library.
type GenericLoggers struct {
	Output *log.Logger
	Error  *log.Logger
}

// Check checks whether the loggers are correctly defined or not.
func (l *GenericLoggers) Check() error {
	if l.Error == nil || l.Output == nil {
		return commonerrors.ErrNoLogger
	}
	return nil
}

func (l *GenericLoggers) SetLogSource(source string) error {
	return nil
}

func (l *GenericLoggers) SetLoggerSource(source string) error {
	return nil
}

// Log logs to the output logger.
func (l *GenericLoggers) Log(output ...interface{}) {
	l.Output.Println(output...)
}

// LogError logs to the Error logger.
func (l *GenericLoggers) LogError(err ...interface{}) {
	l.Error.Println(err...)
}

// Close closes the loggers.
func (l *GenericLoggers) Close() error {
	return nil
}
