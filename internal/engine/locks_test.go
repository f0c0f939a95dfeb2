package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestInspector_Scan(t *testing.T) {
	workdir := t.TempDir()
	touch(t, filepath.Join(workdir, "b.lck"))
	touch(t, filepath.Join(workdir, "a.lck"))
	touch(t, filepath.Join(workdir, "not-a-lock.txt"))
	touch(t, filepath.Join(workdir, "sync.flock"))

	artifacts := NewInspector(workdir).Scan()

	require.Len(t, artifacts, 2)
	assert.Equal(t, filepath.Join(workdir, "a.lck"), artifacts[0].Path)
	assert.Equal(t, filepath.Join(workdir, "b.lck"), artifacts[1].Path)
	assert.False(t, artifacts[0].ModTime.IsZero())
}

func TestInspector_ScanMissingDir(t *testing.T) {
	inspector := NewInspector(filepath.Join(t.TempDir(), "nope"))
	assert.Empty(t, inspector.Scan())
}

func TestInspector_Clear(t *testing.T) {
	workdir := t.TempDir()
	touch(t, filepath.Join(workdir, "a.lck"))
	touch(t, filepath.Join(workdir, "b.lck"))

	inspector := NewInspector(workdir)
	artifacts := inspector.Scan()
	require.Len(t, artifacts, 2)

	assert.Equal(t, 2, inspector.Clear(artifacts))
	assert.Empty(t, inspector.Scan())
}

func TestInspector_ClearBestEffort(t *testing.T) {
	workdir := t.TempDir()
	touch(t, filepath.Join(workdir, "a.lck"))

	inspector := NewInspector(workdir)
	artifacts := inspector.Scan()
	require.Len(t, artifacts, 1)

	// One real artifact plus one that is already gone.
	artifacts = append(artifacts, LockArtifact{Path: filepath.Join(workdir, "gone.lck")})

	assert.Equal(t, 1, inspector.Clear(artifacts))
}
