package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := ResolvePath("")
		assert.Error(t, err)
	})

	t.Run("tilde", func(t *testing.T) {
		got, err := ResolvePath("~/sync")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "sync"), got)
	})

	t.Run("relative", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		got, err := ResolvePath("a/../b")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(wd, "b"), got)
	})

	t.Run("absolute unchanged", func(t *testing.T) {
		got, err := ResolvePath("/tmp/x")
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean("/tmp/x"), got)
	})
}

func TestEnsureDirAndParent(t *testing.T) {
	base := t.TempDir()

	nested := filepath.Join(base, "a", "b", "c")
	require.NoError(t, EnsureDir(nested))
	assert.DirExists(t, nested)
	require.NoError(t, EnsureDir(nested))

	file := filepath.Join(base, "x", "y", "data.json")
	require.NoError(t, EnsureParent(file))
	assert.DirExists(t, filepath.Dir(file))
}

func TestExistenceHelpers(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, DirExists(base))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(base, "nope")))

	assert.True(t, FileExists(file))
	assert.False(t, FileExists(base))
	assert.False(t, FileExists(filepath.Join(base, "nope")))
}

func TestEnsureExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	base := t.TempDir()
	bin := filepath.Join(base, "tool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o644))

	require.NoError(t, EnsureExecutable(bin))
	info, err := os.Stat(bin)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111)

	assert.Error(t, EnsureExecutable(filepath.Join(base, "missing")))
}
