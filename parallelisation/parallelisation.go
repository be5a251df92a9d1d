/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package parallelisation provides helpers for context-aware scheduling, sleeping and waiting.
package parallelisation

import (
	"context"
	"time"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

// DetermineContextError determines what the context error is if any.
func DetermineContextError(ctx context.Context) error {
	return commonerrors.ErrFromContext(ctx)
}

// SleepWithContext performs an interruptable sleep.
func SleepWithContext(ctx context.Context, delay time.Duration) error {
	err := DetermineContextError(ctx)
	if err != nil {
		return err
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return DetermineContextError(ctx)
	case <-timer.C:
		return nil
	}
}

// ScheduleAfter calls function `f` once after `offset` unless the context is cancelled first.
func ScheduleAfter(ctx context.Context, offset time.Duration, f func(time.Time)) {
	go func() {
		timer := time.NewTimer(offset)
		defer timer.Stop()
		select {
		case v := <-timer.C:
			f(v)
		case <-ctx.Done():
		}
	}()
}

// RunActionWithTimeoutAndContext runs an action with timeout control from both the timeout value and the context.
func RunActionWithTimeoutAndContext(ctx context.Context, timeout time.Duration, blockingAction func(context.Context) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	channel := make(chan error, 1)
	go func() {
		channel <- blockingAction(timeoutCtx)
	}()
	select {
	case err := <-channel:
		return commonerrors.ConvertContextError(err)
	case <-timeoutCtx.Done():
		return DetermineContextError(timeoutCtx)
	}
}
