/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
//go:build !windows

package elevate

func newDefaultRunner() elevationRunner {
	return &pipeRunner{}
}
