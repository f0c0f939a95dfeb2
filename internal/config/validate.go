package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// remotePattern matches rclone remote references like `gdrive:` or
// `gdrive:/photos`. A leading alphanumeric, then alphanumerics, underscore or
// hyphen, a colon, and an optional path.
var remotePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*:[/a-zA-Z0-9_.-]*$`)

// TempSandbox is the one path outside home, /mnt and /media that sync targets
// may live under. Mostly useful for tests and throwaway runs.
const TempSandbox = "/tmp/linuxcloudsync"

// IsValidRemote reports whether remote looks like a well-formed rclone remote
// reference. It says nothing about the remote actually being configured.
func IsValidRemote(remote string) bool {
	return remotePattern.MatchString(remote)
}

func allowedPathBases() []string {
	bases := []string{"/mnt", "/media", TempSandbox}
	if home, err := os.UserHomeDir(); err == nil {
		bases = append([]string{home}, bases...)
	}
	return bases
}

// ValidateLocalPath checks that path exists, is a directory, and resolves
// under one of the allowed base directories. Returns the normalized absolute
// path on success.
func ValidateLocalPath(path string) (string, error) {
	return validateLocalPathWithin(path, allowedPathBases())
}

func validateLocalPathWithin(path string, bases []string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path must be a directory: %s", absPath)
	}

	for _, base := range bases {
		if absPath == base || strings.HasPrefix(absPath, base+string(filepath.Separator)) {
			return absPath, nil
		}
	}

	return "", fmt.Errorf("path must be within your home directory, /mnt, or /media")
}
