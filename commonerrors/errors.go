/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package commonerrors defines the error taxonomy used across the module.
// Errors are defined as sentinels and wrapped with `%w` so that callers can
// test them with errors.Is via Any/None.
package commonerrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotImplemented = errors.New("not implemented")
	ErrNoLogger       = errors.New("missing logger")
	ErrNoLoggerSource = errors.New("missing logger source")
	ErrUndefined      = errors.New("undefined")
	ErrTimeout        = errors.New("timeout")
	ErrNotFound       = errors.New("not found")
	ErrUnsupported    = errors.New("unsupported")
	ErrUnavailable    = errors.New("unavailable")
	ErrUnknown        = errors.New("unknown")
	ErrInvalid        = errors.New("invalid")
	ErrConflict       = errors.New("conflict")
	ErrMarshalling    = errors.New("unserialisable")
	ErrCancelled      = errors.New("cancelled")
	ErrEmpty          = errors.New("empty")
	ErrEOF            = errors.New("end of file")
	ErrTooLarge       = errors.New("too large")
	ErrForbidden      = errors.New("forbidden")
	ErrRejected       = errors.New("rejected")
	ErrUnexpected     = errors.New("unexpected")
)

// Any states whether the target error corresponds to any of the errors provided.
func Any(target error, err ...error) bool {
	for _, e := range err {
		if errors.Is(e, target) || errors.Is(target, e) {
			return true
		}
	}
	return false
}

// None states whether the target error corresponds to none of the errors provided.
func None(target error, err ...error) bool {
	for _, e := range err {
		if errors.Is(e, target) || errors.Is(target, e) {
			return false
		}
	}
	return true
}

// CorrespondTo states whether an error corresponds to any of the error descriptions provided (case-insensitive substring match).
func CorrespondTo(target error, descriptions ...string) bool {
	if target == nil {
		return false
	}
	desc := strings.ToLower(target.Error())
	for _, d := range descriptions {
		if strings.Contains(desc, strings.ToLower(d)) {
			return true
		}
	}
	return false
}

// New returns an error wrapping the error type with a message.
func New(errType error, message string) error {
	if message == "" {
		return errType
	}
	return fmt.Errorf("%w: %v", errType, message)
}

// Newf is similar to New but with message formatting.
func Newf(errType error, format string, args ...any) error {
	return New(errType, fmt.Sprintf(format, args...))
}

// WrapError wraps an error with an error type and a message.
func WrapError(errType error, err error, message string) error {
	switch {
	case err == nil:
		return New(errType, message)
	case message == "":
		return fmt.Errorf("%w: %v", errType, err.Error())
	default:
		return fmt.Errorf("%w: %v: %v", errType, message, err.Error())
	}
}

// WrapErrorf is similar to WrapError but with message formatting.
func WrapErrorf(errType error, err error, format string, args ...any) error {
	return WrapError(errType, err, fmt.Sprintf(format, args...))
}

// WrapIfNotCommonError wraps err unless it already belongs to the taxonomy, in which case it is returned as is.
func WrapIfNotCommonError(errType error, err error, message string) error {
	if err != nil && Any(err, ErrTimeout, ErrCancelled, ErrNotFound, ErrInvalid, ErrUndefined, ErrRejected, ErrUnsupported, ErrConflict, ErrEmpty, ErrUnexpected) {
		return err
	}
	return WrapError(errType, err, message)
}

// UndefinedVariable returns an error for undefined variables such as missing function arguments.
func UndefinedVariable(variableName string) error {
	return Newf(ErrUndefined, "missing %v", variableName)
}

// UndefinedParameter is similar to UndefinedVariable but for parameters.
func UndefinedParameter(description string) error {
	return New(ErrUndefined, description)
}

// ConvertContextError converts a context error into a common error.
func ConvertContextError(err error) error {
	if err == nil {
		return nil
	}
	if Any(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrCancelled, err.Error())
	}
	if Any(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err.Error())
	}
	return err
}

// ErrFromContext returns the error from a context converted to the common taxonomy.
func ErrFromContext(ctx context.Context) error {
	return ConvertContextError(ctx.Err())
}

// Ignore returns nil if the error corresponds to any of the errors to ignore.
func Ignore(target error, ignore ...error) error {
	if Any(target, ignore...) {
		return nil
	}
	return target
}
