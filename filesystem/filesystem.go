/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */

// Package filesystem provides a filesystem abstraction over afero so that file
// artefacts can be manipulated the same way on a real disk or in memory.
package filesystem

import (
	"os"

	"github.com/spf13/afero"
)

// FS defines the filesystem operations used across the module.
type FS interface {
	// Exists checks whether a file or folder exists.
	Exists(path string) bool
	// Stat returns file description.
	Stat(name string) (os.FileInfo, error)
	// ReadFile reads the whole content of a file.
	ReadFile(name string) ([]byte, error)
	// ReadFileSegment reads the [from, to) byte segment of a file.
	ReadFileSegment(name string, from, to int64) ([]byte, error)
	// WriteFile writes data to a file.
	WriteFile(name string, data []byte, perm os.FileMode) error
	// FileSize returns the current size in bytes of a file, 0 if the file does not exist.
	FileSize(name string) (int64, error)
	// Rm removes a file or a directory. Removing an absent path is not an error.
	Rm(path string) error
	// MkDir creates a directory along with any necessary parents.
	MkDir(dir string) error
	// TempDirectory returns the default directory to use for temporary files.
	TempDirectory() string
	// TempDirInTempDir creates a new temporary directory in the default location.
	TempDirInTempDir(prefix string) (string, error)
	// IsFile states whether the path points at a regular file.
	IsFile(path string) (bool, error)
}

type fsType int

const (
	// StandardFS is the filesystem of the OS.
	StandardFS fsType = iota
	// InMemoryFS is an in-memory filesystem.
	InMemoryFS
)

var globalFileSystem = NewFs(StandardFS)

// NewFs returns a filesystem of the requested type.
func NewFs(t fsType) FS {
	switch t {
	case InMemoryFS:
		return NewInMemoryFileSystem()
	default:
		return NewStandardFileSystem()
	}
}

// NewStandardFileSystem returns the filesystem of the OS.
func NewStandardFileSystem() FS {
	return NewVirtualFileSystem(afero.NewOsFs())
}

// NewInMemoryFileSystem returns an in-memory filesystem, mostly useful for testing.
func NewInMemoryFileSystem() FS {
	return NewVirtualFileSystem(afero.NewMemMapFs())
}

// GetGlobalFileSystem returns the global filesystem (the filesystem of the OS).
func GetGlobalFileSystem() FS {
	return globalFileSystem
}
