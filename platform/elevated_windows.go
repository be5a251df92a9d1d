/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
//go:build windows

package platform

import "golang.org/x/sys/windows"

func isCurrentProcessElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
