// Package engine drives rclone against a remote storage endpoint: it builds
// the argument vector for a sync mode, supervises the spawned process line by
// line, enforces deadlines, and guarantees at most one sync runs at a time.
package engine

import (
	"fmt"

	"github.com/cryptd777/LinuxCloudSync/internal/config"
)

// SyncMode selects the rclone subcommand and which flags are permitted.
type SyncMode int

const (
	// ModeBidirectional runs `rclone bisync` with a persisted baseline.
	ModeBidirectional SyncMode = iota
	// ModePull copies remote to local.
	ModePull
	// ModePush copies local to remote.
	ModePush
)

func (m SyncMode) String() string {
	switch m {
	case ModeBidirectional:
		return "bisync"
	case ModePull:
		return "pull"
	case ModePush:
		return "push"
	default:
		return fmt.Sprintf("SyncMode(%d)", int(m))
	}
}

// ParseSyncMode accepts the canonical mode names plus a few aliases.
func ParseSyncMode(s string) (SyncMode, error) {
	switch s {
	case "bisync", "bidirectional", "both":
		return ModeBidirectional, nil
	case "pull", "down", "cloud-to-local":
		return ModePull, nil
	case "push", "up", "local-to-cloud":
		return ModePush, nil
	default:
		return 0, fmt.Errorf("unknown sync mode %q (want bisync, pull or push)", s)
	}
}

// SyncRequest is the immutable input of one sync attempt. Construct it with
// NewSyncRequest so that remote and local path are validated up front.
type SyncRequest struct {
	Remote          string
	LocalPath       string
	Mode            SyncMode
	BandwidthLimit  string
	ExcludePatterns []string
	DryRun          bool
	ExtraFlags      []string
	ForceResync     bool
}

// NewSyncRequest validates remote and local path and returns a request with
// the normalized local path. A false validator result is a request
// construction failure, reported as a ValidationError.
func NewSyncRequest(remote, localPath string, mode SyncMode) (SyncRequest, error) {
	if !config.IsValidRemote(remote) {
		return SyncRequest{}, &ValidationError{
			Field:  "remote",
			Reason: fmt.Sprintf("%q must start with a letter or number, contain only letters, numbers, underscore or hyphen, and include a colon (e.g. gdrive: or gdrive:/folder)", remote),
		}
	}

	normalized, err := config.ValidateLocalPath(localPath)
	if err != nil {
		return SyncRequest{}, &ValidationError{Field: "local path", Reason: err.Error()}
	}

	return SyncRequest{
		Remote:    remote,
		LocalPath: normalized,
		Mode:      mode,
	}, nil
}
