/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package safeio provides IO utilities with context control.
package safeio

import (
	"bytes"
	"context"
	"io"

	"github.com/dolmen-go/contextio"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
)

// NewContextualReader returns a reader failing with a cancellation error as soon as the context is done.
func NewContextualReader(ctx context.Context, src io.Reader) io.Reader {
	return contextio.NewReader(ctx, src)
}

// ReadAll reads the whole content of src similarly to io.ReadAll but with context control to stop when asked to.
func ReadAll(ctx context.Context, src io.Reader) ([]byte, error) {
	return ReadAtMost(ctx, src, -1)
}

// ReadAtMost reads the content of src and at most max bytes. If max is negative, the entirety of the reader is read.
func ReadAtMost(ctx context.Context, src io.Reader, max int64) (content []byte, err error) {
	err = parallelisation.DetermineContextError(ctx)
	if err != nil {
		return
	}
	var reader io.Reader = src
	if max >= 0 {
		reader = io.LimitReader(src, max)
	}
	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(contextio.NewReader(ctx, reader))
	err = commonerrors.ConvertContextError(err)
	if err != nil {
		return
	}
	content = buf.Bytes()
	return
}
