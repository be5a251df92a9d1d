/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package elevate runs external commands with escalated privileges and recovers their output.
//
// On Windows the privilege prompt (UAC) only accepts a program path and an opaque argument
// string, spawns a detached process the caller cannot read from, and often returns before the
// child produced any output. The package therefore generates a wrapper batch script which
// redirects the command's stdout and stderr into capture files and writes the command's real
// exit code into a third file, asks the shell to run that script elevated, and recovers the
// output either by blocking on the broker process handle (Output) or by polling the capture
// files from a background monitor (Spawn).
//
// On platforms whose elevation primitive supports inheritable file descriptors (pkexec on
// Linux, the authorisation dialog through osascript on macOS), the package pipes stdio
// directly and no capture files are involved.
package elevate
