/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
//go:build !windows

package platform

import "os"

func isCurrentProcessElevated() bool {
	return os.Geteuid() == 0
}
