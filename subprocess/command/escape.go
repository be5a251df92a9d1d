/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package command

import "strings"

func needsWindowsEscaping(arg string) bool {
	return strings.ContainsAny(arg, " \t\n\"\\")
}

// EscapeWindowsArg escapes an arbitrary string so that it is parsed back as a
// single argument by the Windows command-line tokenizer.
//
// The rules are the documented ones (see
// https://learn.microsoft.com/en-us/cpp/c-language/parsing-c-command-line-arguments):
// a backslash only escapes when followed by a double quote, an embedded double
// quote must be preceded by 2N+1 backslashes where N is the length of the
// backslash run before it, and a trailing run of N backslashes must be doubled
// so that it cannot be misread as escaping the closing quote. Simply wrapping
// the argument in quotes is not correct and must not be used.
func EscapeWindowsArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if !needsWindowsEscaping(arg) {
		return arg
	}
	var builder strings.Builder
	builder.WriteByte('"')
	backslashes := 0
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '\\':
			backslashes++
		case '"':
			builder.WriteString(strings.Repeat(`\`, 2*backslashes+1))
			builder.WriteByte('"')
			backslashes = 0
		default:
			if backslashes > 0 {
				builder.WriteString(strings.Repeat(`\`, backslashes))
				backslashes = 0
			}
			builder.WriteByte(arg[i])
		}
	}
	builder.WriteString(strings.Repeat(`\`, 2*backslashes))
	builder.WriteByte('"')
	return builder.String()
}

// EscapeWindowsArgs escapes every argument provided.
func EscapeWindowsArgs(args ...string) []string {
	escaped := make([]string, 0, len(args))
	for i := range args {
		escaped = append(escaped, EscapeWindowsArg(args[i]))
	}
	return escaped
}

// AsShellForm returns a command in its shell form.
func AsShellForm(cmd string, args ...string) string {
	newCmd := []string{cmd}
	newCmd = append(newCmd, args...)
	return strings.Join(newCmd, " ")
}
