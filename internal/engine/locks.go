package engine

import (
	"os"
	"path/filepath"
	"time"
)

// LockArtifact is a bisync lock file left behind by an interrupted prior run.
// Purely advisory: its existence may block new bisync runs.
type LockArtifact struct {
	Path    string
	ModTime time.Time
}

// Inspector scans a bisync workdir for stale lock files. Stateless and
// reentrant; callers must not Clear while a sync session is running.
type Inspector struct {
	workdir string
}

func NewInspector(workdir string) *Inspector {
	return &Inspector{workdir: workdir}
}

// Scan lists lock files in the workdir, sorted by name. Returns an empty
// slice when the directory is absent or unreadable - it never fails.
func (i *Inspector) Scan() []LockArtifact {
	matches, err := filepath.Glob(filepath.Join(i.workdir, "*.lck"))
	if err != nil {
		return nil
	}

	artifacts := make([]LockArtifact, 0, len(matches))
	for _, path := range matches {
		artifact := LockArtifact{Path: path}
		if info, err := os.Stat(path); err == nil {
			artifact.ModTime = info.ModTime()
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts
}

// Clear deletes each artifact independently, best effort. The returned count
// reflects only successful removals.
func (i *Inspector) Clear(artifacts []LockArtifact) int {
	removed := 0
	for _, artifact := range artifacts {
		if err := os.Remove(artifact.Path); err == nil {
			removed++
		}
	}
	return removed
}
