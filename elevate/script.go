/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/environment"
	"github.com/elevated-command/golang-elevated/elevated/platform"
	"github.com/elevated-command/golang-elevated/elevated/subprocess/command"
)

// buildWrapperScript generates the batch script run by the elevation broker. The script runs
// the command with its stdout and stderr redirected into the capture files and then writes the
// command's real exit code (not the broker's, which is unrelated) into the exit code file.
// Environment assignments are emitted in sorted key order so that generation is deterministic.
func buildWrapperScript(program string, args []string, env []environment.IEnvironmentVariable, workingDirectory string, set *sentinelFileSet) string {
	eol := platform.WindowsLineSeparator()
	var script strings.Builder
	script.WriteString("@echo off")
	script.WriteString(eol)
	script.WriteString("setlocal")
	script.WriteString(eol)

	sorted := make([]environment.IEnvironmentVariable, len(env))
	copy(sorted, env)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GetKey() < sorted[j].GetKey() })
	for i := range sorted {
		script.WriteString(fmt.Sprintf(`set "%v=%v"`, sorted[i].GetKey(), sorted[i].GetValue()))
		script.WriteString(eol)
	}

	if workingDirectory != "" {
		script.WriteString(fmt.Sprintf(`cd /d "%v"`, workingDirectory))
		script.WriteString(eol)
	}

	script.WriteString(command.AsShellForm(command.EscapeWindowsArg(program), command.EscapeWindowsArgs(args...)...))
	script.WriteString(fmt.Sprintf(` 1>"%v" 2>"%v"`, set.stdoutPath, set.stderrPath))
	script.WriteString(eol)
	script.WriteString(fmt.Sprintf(`echo %%ERRORLEVEL%%>"%v"`, set.exitPath))
	script.WriteString(eol)
	return script.String()
}

// validateScriptEnvironment rejects environment values which would corrupt the generated
// script, since assignment values cannot be escaped further within a batch `set` statement.
func validateScriptEnvironment(env []environment.IEnvironmentVariable) error {
	for i := range env {
		if err := env[i].Validate(); err != nil {
			return err
		}
		if strings.ContainsAny(env[i].GetValue(), "\r\n\"") {
			return commonerrors.Newf(commonerrors.ErrInvalid, "environment variable `%v` value contains line terminators or quotes and cannot be set from a wrapper script", env[i].GetKey())
		}
	}
	return nil
}

// writeWrapperScript validates the command environment, generates the wrapper script and
// writes it at the discriminator-qualified script path.
func writeWrapperScript(program string, args []string, env []environment.IEnvironmentVariable, workingDirectory string, set *sentinelFileSet) (err error) {
	err = validateScriptEnvironment(env)
	if err != nil {
		return
	}
	script := buildWrapperScript(program, args, env, workingDirectory, set)
	err = set.fs.WriteFile(set.scriptPath, []byte(script), 0700)
	return
}
