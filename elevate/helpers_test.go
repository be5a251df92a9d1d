/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/elevated-command/golang-elevated/elevated/filesystem"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
)

// fakeChildStep is one action of the simulated elevated child.
type fakeChildStep struct {
	delay  time.Duration
	stdout string
	stderr string
	// exitCode terminates the simulated child when set.
	exitCode *int
}

func stepOut(delay time.Duration, text string) fakeChildStep {
	return fakeChildStep{delay: delay, stdout: text}
}

func stepErr(delay time.Duration, text string) fakeChildStep {
	return fakeChildStep{delay: delay, stderr: text}
}

func stepExit(delay time.Duration, code int) fakeChildStep {
	return fakeChildStep{delay: delay, exitCode: &code}
}

// fakeBroker simulates the platform elevation facility: instead of running the wrapper script
// elevated, it replays a scripted sequence of writes against the capture files the script would
// have produced.
type fakeBroker struct {
	fs         filesystem.FS
	steps      []fakeChildStep
	launchErr  error
	brokerCode int
	pid        int

	mu          sync.Mutex
	launchCount int
	lastScript  string
}

func newFakeBroker(fs filesystem.FS, steps ...fakeChildStep) *fakeBroker {
	return &fakeBroker{fs: fs, steps: steps}
}

func (b *fakeBroker) recordLaunch(scriptPath string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.launchCount++
	b.lastScript = scriptPath
}

func (b *fakeBroker) launches() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.launchCount
}

func (b *fakeBroker) lastScriptPath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastScript
}

// capturePaths recovers the capture file paths from the script path, the same way the wrapper
// script references them.
func (b *fakeBroker) capturePaths(scriptPath string) (stdoutPath, stderrPath, exitPath string) {
	dir := filepath.Dir(scriptPath)
	discriminator := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(scriptPath), "elevated_wrapper_"), ".bat")
	stdoutPath = filepath.Join(dir, fmt.Sprintf("elevated_stdout_%v.txt", discriminator))
	stderrPath = filepath.Join(dir, fmt.Sprintf("elevated_stderr_%v.txt", discriminator))
	exitPath = filepath.Join(dir, fmt.Sprintf("elevated_exit_%v.txt", discriminator))
	return
}

func appendToFile(fs filesystem.FS, path, text string) error {
	content := []byte{}
	if fs.Exists(path) {
		existing, err := fs.ReadFile(path)
		if err != nil {
			return err
		}
		content = existing
	}
	return fs.WriteFile(path, append(content, []byte(text)...), 0600)
}

func (b *fakeBroker) appendTo(path, text string) error {
	return appendToFile(b.fs, path, text)
}

// replay plays the scripted child against the capture files.
func (b *fakeBroker) replay(ctx context.Context, scriptPath string) error {
	stdoutPath, stderrPath, exitPath := b.capturePaths(scriptPath)
	for _, step := range b.steps {
		if err := parallelisation.SleepWithContext(ctx, step.delay); err != nil {
			return err
		}
		if step.stdout != "" {
			if err := b.appendTo(stdoutPath, step.stdout); err != nil {
				return err
			}
		}
		if step.stderr != "" {
			if err := b.appendTo(stderrPath, step.stderr); err != nil {
				return err
			}
		}
		if step.exitCode != nil {
			if err := b.fs.WriteFile(exitPath, []byte(fmt.Sprintf("%v\r\n", *step.exitCode)), 0600); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}

func (b *fakeBroker) ElevateAndWait(ctx context.Context, scriptPath string) (int, error) {
	b.recordLaunch(scriptPath)
	if b.launchErr != nil {
		return 0, b.launchErr
	}
	if err := b.replay(ctx, scriptPath); err != nil {
		return 0, err
	}
	return b.brokerCode, nil
}

func (b *fakeBroker) ElevateDetached(ctx context.Context, scriptPath string) (int, error) {
	b.recordLaunch(scriptPath)
	if b.launchErr != nil {
		return 0, b.launchErr
	}
	go func() { _ = b.replay(ctx, scriptPath) }()
	return b.pid, nil
}

// fastConfiguration returns tunables scaled down so that tests complete quickly.
func fastConfiguration() *Configuration {
	cfg := DefaultConfiguration()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.SettleDelay = 5 * time.Millisecond
	cfg.GraceDelay = time.Millisecond
	cfg.Timeout = 2 * time.Second
	cfg.HeuristicWaitDelay = 250 * time.Millisecond
	return cfg
}
