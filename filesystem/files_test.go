/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
package filesystem

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-faker/faker/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOperations(t *testing.T) {
	for _, fsType := range []fsType{StandardFS, InMemoryFS} {
		t.Run(fmt.Sprintf("fs type %v", fsType), func(t *testing.T) {
			fs := NewFs(fsType)
			tmpDir, err := fs.TempDirInTempDir("test-files-")
			require.NoError(t, err)
			defer func() { _ = fs.Rm(tmpDir) }()

			path := filepath.Join(tmpDir, "file.txt")
			assert.False(t, fs.Exists(path))

			content := []byte(faker.Paragraph())
			require.NoError(t, fs.WriteFile(path, content, 0644))
			assert.True(t, fs.Exists(path))

			isFile, err := fs.IsFile(path)
			require.NoError(t, err)
			assert.True(t, isFile)

			read, err := fs.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, read)

			size, err := fs.FileSize(path)
			require.NoError(t, err)
			assert.Equal(t, int64(len(content)), size)

			require.NoError(t, fs.Rm(path))
			assert.False(t, fs.Exists(path))
		})
	}
}

func TestReadFileSegment(t *testing.T) {
	fs := NewInMemoryFileSystem()
	path := filepath.Join(fs.TempDirectory(), "segment.txt")
	require.NoError(t, fs.WriteFile(path, []byte("0123456789"), 0644))

	segment, err := fs.ReadFileSegment(path, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), segment)

	// Reading past the end only returns the bytes present.
	segment, err = fs.ReadFileSegment(path, 8, 20)
	require.NoError(t, err)
	assert.Equal(t, []byte("89"), segment)

	_, err = fs.ReadFileSegment(path, 5, 2)
	assert.Error(t, err)
}

func TestRmIsIdempotent(t *testing.T) {
	fs := NewInMemoryFileSystem()
	path := filepath.Join(fs.TempDirectory(), faker.Word())
	require.NoError(t, fs.Rm(path))
	require.NoError(t, fs.WriteFile(path, []byte(faker.Word()), 0644))
	require.NoError(t, fs.Rm(path))
	require.NoError(t, fs.Rm(path))
	require.NoError(t, fs.Rm(""))
}

func TestFileSizeOfMissingFile(t *testing.T) {
	fs := NewInMemoryFileSystem()
	size, err := fs.FileSize(filepath.Join(fs.TempDirectory(), faker.Word()))
	require.NoError(t, err)
	assert.Zero(t, size)
}
