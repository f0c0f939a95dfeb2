package engine

import (
	"strings"
)

// bisyncFlagDenylist holds rclone flags known to break bisync runs. They are
// silently dropped from the extra flags, with one warning per dropped token.
var bisyncFlagDenylist = map[string]bool{
	"--compare":             true,
	"--slow-hash-sync-only": true,
}

// BuildArgs deterministically constructs the rclone argument vector for a
// request. Pure function: the same request always yields the same argv.
// Returned warnings describe extra flags dropped for bisync compatibility,
// in input order.
func BuildArgs(req SyncRequest, workdir string) (args []string, warnings []string) {
	switch req.Mode {
	case ModeBidirectional:
		args = append(args,
			"bisync", req.Remote, req.LocalPath,
			"--workdir", workdir,
			"--create-empty-src-dirs",
			"--resilient",
			"-v",
		)
	case ModePull:
		args = append(args, "copy", req.Remote, req.LocalPath, "-v")
	case ModePush:
		args = append(args, "copy", req.LocalPath, req.Remote, "-v")
	}

	// Only meaningful for bisync; request validation rejects it elsewhere.
	if req.ForceResync && req.Mode == ModeBidirectional {
		args = append(args, "--resync")
	}

	if req.BandwidthLimit != "" {
		args = append(args, "--bwlimit", req.BandwidthLimit)
	}

	if req.DryRun {
		args = append(args, "--dry-run")
	}

	for _, pattern := range req.ExcludePatterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		args = append(args, "--exclude", pattern)
	}

	for _, raw := range req.ExtraFlags {
		for _, token := range strings.Fields(raw) {
			if req.Mode == ModeBidirectional && bisyncFlagDenylist[token] {
				warnings = append(warnings, "removed unsupported flag for bisync: "+token)
				continue
			}
			args = append(args, token)
		}
	}

	return args, warnings
}
