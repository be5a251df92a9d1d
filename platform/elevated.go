/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package platform

// IsCurrentProcessElevated states whether the current process runs with
// escalated privileges (elevated token on Windows, effective uid 0 elsewhere).
// It is a stateless query against the current process.
func IsCurrentProcessElevated() bool {
	return isCurrentProcessElevated()
}
