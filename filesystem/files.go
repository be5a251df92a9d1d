/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package filesystem

import (
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
)

// VFS is a virtual filesystem implemented over afero.
type VFS struct {
	vfs afero.Fs
}

// NewVirtualFileSystem returns a filesystem over any afero backend.
func NewVirtualFileSystem(vfs afero.Fs) FS {
	return &VFS{vfs: vfs}
}

func (fs *VFS) Exists(path string) bool {
	fi, err := fs.Stat(path)
	if err != nil || fi == nil {
		return false
	}
	return true
}

func (fs *VFS) Stat(name string) (os.FileInfo, error) {
	return fs.vfs.Stat(name)
}

func (fs *VFS) ReadFile(name string) (content []byte, err error) {
	f, err := fs.vfs.Open(name)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	content, err = io.ReadAll(f)
	return
}

// ReadFileSegment reads the [from, to) segment of a file. It tolerates partial
// reads: the returned slice only contains the bytes actually read.
func (fs *VFS) ReadFileSegment(name string, from, to int64) (content []byte, err error) {
	if from < 0 || to < from {
		err = commonerrors.Newf(commonerrors.ErrInvalid, "invalid segment [%v, %v)", from, to)
		return
	}
	f, err := fs.vfs.Open(name)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	if _, err = f.Seek(from, io.SeekStart); err != nil {
		return
	}
	buffer := make([]byte, to-from)
	n, err := io.ReadFull(f, buffer)
	if commonerrors.Any(err, io.EOF, io.ErrUnexpectedEOF) {
		err = nil
	}
	content = buffer[:n]
	return
}

func (fs *VFS) WriteFile(name string, data []byte, perm os.FileMode) (err error) {
	f, err := fs.vfs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	n, err := f.Write(data)
	if err != nil {
		return
	}
	if n < len(data) {
		err = io.ErrShortWrite
		return
	}
	err = f.Close()
	return
}

func (fs *VFS) FileSize(name string) (size int64, err error) {
	fi, subErr := fs.Stat(name)
	if subErr != nil {
		if os.IsNotExist(subErr) {
			return
		}
		err = subErr
		return
	}
	size = fi.Size()
	return
}

// Rm removes a file or a directory (equivalent to rm -r). Deletion is
// idempotent: removing an absent path is not an error.
func (fs *VFS) Rm(path string) (err error) {
	if path == "" {
		return
	}
	if !fs.Exists(path) {
		return
	}
	err = fs.vfs.RemoveAll(path)
	if err != nil && os.IsNotExist(err) {
		err = nil
	}
	return
}

func (fs *VFS) MkDir(dir string) (err error) {
	if dir == "" {
		err = commonerrors.UndefinedVariable("directory path")
		return
	}
	err = fs.vfs.MkdirAll(dir, 0755)
	return
}

func (fs *VFS) TempDirectory() string {
	return afero.GetTempDir(fs.vfs, "")
}

func (fs *VFS) TempDirInTempDir(prefix string) (string, error) {
	return afero.TempDir(fs.vfs, "", prefix)
}

func (fs *VFS) IsFile(path string) (result bool, err error) {
	fi, err := fs.Stat(path)
	if err != nil {
		return
	}
	result = fi.Mode().IsRegular()
	return
}
