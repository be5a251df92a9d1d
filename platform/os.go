/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package platform gathers OS specific behaviours.
package platform

import "runtime"

// IsWindows checks whether we are running on Windows or not.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// IsDarwin checks whether we are running on macOS or not.
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// LineSeparator returns the line separator of the current platform.
func LineSeparator() string {
	if IsWindows() {
		return WindowsLineSeparator()
	}
	return UnixLineSeparator()
}

// UnixLineSeparator returns the line separator on Unix platforms.
func UnixLineSeparator() string {
	return "\n"
}

// WindowsLineSeparator returns the line separator on Windows.
func WindowsLineSeparator() string {
	return "\r\n"
}
