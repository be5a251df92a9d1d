/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package elevate

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/filesystem"
	"github.com/elevated-command/golang-elevated/elevated/idgen"
)

// sentinelFileSet describes the filesystem artefacts of one elevated invocation: the two
// output capture files, the exit code file and the wrapper script. The elevated child writes
// them (through shell redirection) and exactly one collector or monitor reads and finally
// deletes them. Paths carry a pid+timestamp+uuid discriminator so that concurrent invocations
// never share an artefact.
type sentinelFileSet struct {
	fs         filesystem.FS
	stdoutPath string
	stderrPath string
	exitPath   string
	scriptPath string
}

func newSentinelFileSet(fs filesystem.FS, dir string) (set *sentinelFileSet, err error) {
	if fs == nil {
		err = commonerrors.UndefinedVariable("filesystem")
		return
	}
	if dir == "" {
		dir = fs.TempDirectory()
	}
	id, err := idgen.GenerateUUID4()
	if err != nil {
		return
	}
	discriminator := fmt.Sprintf("%v_%v_%v", os.Getpid(), time.Now().UnixMilli(), strings.Split(id, "-")[0])
	set = &sentinelFileSet{
		fs:         fs,
		stdoutPath: filepath.Join(dir, fmt.Sprintf("elevated_stdout_%v.txt", discriminator)),
		stderrPath: filepath.Join(dir, fmt.Sprintf("elevated_stderr_%v.txt", discriminator)),
		exitPath:   filepath.Join(dir, fmt.Sprintf("elevated_exit_%v.txt", discriminator)),
		scriptPath: filepath.Join(dir, fmt.Sprintf("elevated_wrapper_%v.bat", discriminator)),
	}
	return
}

// removeAll deletes every artefact of the invocation. Deletion is best effort and idempotent:
// a missing file is not an error and individual failures do not stop the others from being
// removed.
func (s *sentinelFileSet) removeAll() (err error) {
	for _, path := range []string{s.scriptPath, s.stdoutPath, s.stderrPath, s.exitPath} {
		if subErr := s.fs.Rm(path); subErr != nil {
			err = multierror.Append(err, subErr)
		}
	}
	return
}

// exitCodeReady states whether the exit code file exists with non-empty trimmed content,
// which is the completion signal written by the wrapper script.
func (s *sentinelFileSet) exitCodeReady() bool {
	if !s.fs.Exists(s.exitPath) {
		return false
	}
	content, err := s.fs.ReadFile(s.exitPath)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(content)) != ""
}

// readExitCode parses the exit code file. A missing file or malformed content yields nil, by
// design, to tolerate partially written files.
func (s *sentinelFileSet) readExitCode() *int {
	content, err := s.fs.ReadFile(s.exitPath)
	if err != nil {
		return nil
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return nil
	}
	return &code
}

// streamCursor tracks how much of a capture file has already been consumed.
type streamCursor struct {
	path   string
	offset int64
}

// readNew returns the bytes appended to the capture file since the last read and advances the
// cursor by the bytes actually read, so that a partial read is picked up again on the next
// poll. A missing file yields no bytes and no error.
func (c *streamCursor) readNew(fs filesystem.FS) (chunk []byte, err error) {
	size, err := fs.FileSize(c.path)
	if err != nil || size <= c.offset {
		return
	}
	chunk, err = fs.ReadFileSegment(c.path, c.offset, size)
	if err != nil {
		if !fs.Exists(c.path) {
			err = nil
		}
		return
	}
	c.offset += int64(len(chunk))
	return
}
