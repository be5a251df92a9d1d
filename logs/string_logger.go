/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package logs

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// StringWriter is a thread-safe writer accumulating logs in memory.
type StringWriter struct {
	io.WriteCloser
	mu   sync.RWMutex
	Logs strings.Builder
}

func (w *StringWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Logs.Write(p)
}

func (w *StringWriter) Close() (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Logs.Reset()
	return
}

func (w *StringWriter) GetFullContent() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.Logs.String()
}

// StringLoggers defines loggers writing to a string. Mostly useful for testing.
type StringLoggers struct {
	GenericLoggers
	LogWriter StringWriter
}

func (l *StringLoggers) GetLogContent() string {
	return l.LogWriter.GetFullContent()
}

func (l *StringLoggers) Close() (err error) {
	err = l.LogWriter.Close()
	if err != nil {
		return
	}
	err = l.GenericLoggers.Close()
	return
}

// NewStringLogger creates loggers which write to a string.
func NewStringLogger(loggerSource string) (loggers *StringLoggers, err error) {
	loggers = &StringLoggers{}
	loggers.GenericLoggers = GenericLoggers{
		Output: log.New(&loggers.LogWriter, fmt.Sprintf("[%v] Output: ", loggerSource), log.LstdFlags),
		Error:  log.New(&loggers.LogWriter, fmt.Sprintf("[%v] Error: ", loggerSource), log.LstdFlags),
	}
	return
}
