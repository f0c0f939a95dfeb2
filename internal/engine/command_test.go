package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildArgs_Bidirectional(t *testing.T) {
	req := SyncRequest{
		Remote:    "gdrive:",
		LocalPath: "/home/u/Docs",
		Mode:      ModeBidirectional,
	}

	args, warnings := BuildArgs(req, "/work")

	assert.Equal(t, []string{
		"bisync", "gdrive:", "/home/u/Docs",
		"--workdir", "/work",
		"--create-empty-src-dirs",
		"--resilient",
		"-v",
	}, args)
	assert.Empty(t, warnings)
	assert.NotContains(t, args, "--resync")
}

func TestBuildArgs_ForceResync(t *testing.T) {
	req := SyncRequest{
		Remote:      "gdrive:",
		LocalPath:   "/home/u/Docs",
		Mode:        ModeBidirectional,
		ForceResync: true,
	}

	args, _ := BuildArgs(req, "/work")
	assert.Contains(t, args, "--resync")
}

func TestBuildArgs_CopyModes(t *testing.T) {
	t.Run("pull copies remote to local", func(t *testing.T) {
		args, _ := BuildArgs(SyncRequest{Remote: "gdrive:", LocalPath: "/home/u/Docs", Mode: ModePull}, "/work")
		assert.Equal(t, []string{"copy", "gdrive:", "/home/u/Docs", "-v"}, args)
	})

	t.Run("push copies local to remote", func(t *testing.T) {
		args, _ := BuildArgs(SyncRequest{Remote: "gdrive:", LocalPath: "/home/u/Docs", Mode: ModePush}, "/work")
		assert.Equal(t, []string{"copy", "/home/u/Docs", "gdrive:", "-v"}, args)
	})

	t.Run("resync flag never leaks into copy modes", func(t *testing.T) {
		args, _ := BuildArgs(SyncRequest{Remote: "gdrive:", LocalPath: "/home/u/Docs", Mode: ModePull, ForceResync: true}, "/work")
		assert.NotContains(t, args, "--resync")
	})
}

func TestBuildArgs_Options(t *testing.T) {
	req := SyncRequest{
		Remote:         "gdrive:",
		LocalPath:      "/home/u/Docs",
		Mode:           ModeBidirectional,
		BandwidthLimit: "10M",
		DryRun:         true,
	}

	args, _ := BuildArgs(req, "/work")

	require.Contains(t, args, "--bwlimit")
	assert.Equal(t, "10M", args[indexOf(t, args, "--bwlimit")+1])
	assert.Contains(t, args, "--dry-run")
}

func TestBuildArgs_ExcludePatterns(t *testing.T) {
	req := SyncRequest{
		Remote:          "gdrive:",
		LocalPath:       "/home/u/Docs",
		Mode:            ModeBidirectional,
		ExcludePatterns: []string{"*.tmp", "# comment", "", "*.log"},
	}

	args, _ := BuildArgs(req, "/work")

	// Comments and blanks dropped, order preserved.
	first := indexOf(t, args, "--exclude")
	assert.Equal(t, "*.tmp", args[first+1])
	assert.Equal(t, "--exclude", args[first+2])
	assert.Equal(t, "*.log", args[first+3])
	assert.Equal(t, 2, count(args, "--exclude"))
}

func TestBuildArgs_ExtraFlagDenylist(t *testing.T) {
	req := SyncRequest{
		Remote:     "gdrive:",
		LocalPath:  "/home/u/Docs",
		Mode:       ModeBidirectional,
		ExtraFlags: []string{"--transfers=4 --compare --checkers=8 --slow-hash-sync-only"},
	}

	args, warnings := BuildArgs(req, "/work")

	assert.NotContains(t, args, "--compare")
	assert.NotContains(t, args, "--slow-hash-sync-only")
	assert.Contains(t, args, "--transfers=4")
	assert.Contains(t, args, "--checkers=8")
	// Retained token order preserved.
	assert.Less(t, indexOf(t, args, "--transfers=4"), indexOf(t, args, "--checkers=8"))

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "--compare")
	assert.Contains(t, warnings[1], "--slow-hash-sync-only")
}

func TestBuildArgs_DenylistOnlyAppliesToBisync(t *testing.T) {
	req := SyncRequest{
		Remote:     "gdrive:",
		LocalPath:  "/home/u/Docs",
		Mode:       ModePull,
		ExtraFlags: []string{"--compare"},
	}

	args, warnings := BuildArgs(req, "/work")
	assert.Contains(t, args, "--compare")
	assert.Empty(t, warnings)
}

func TestBuildArgs_Pure(t *testing.T) {
	req := SyncRequest{
		Remote:          "gdrive:",
		LocalPath:       "/home/u/Docs",
		Mode:            ModeBidirectional,
		BandwidthLimit:  "1M",
		ExcludePatterns: []string{"*.tmp"},
		ExtraFlags:      []string{"--transfers=2"},
		ForceResync:     true,
	}

	first, _ := BuildArgs(req, "/work")
	for i := 0; i < 10; i++ {
		again, _ := BuildArgs(req, "/work")
		assert.Equal(t, first, again)
	}
}

func indexOf(t *testing.T, args []string, want string) int {
	t.Helper()
	for i, a := range args {
		if a == want {
			return i
		}
	}
	t.Fatalf("%q not found in %v", want, args)
	return -1
}

func count(args []string, want string) int {
	n := 0
	for _, a := range args {
		if a == want {
			n++
		}
	}
	return n
}
