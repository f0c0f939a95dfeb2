// Package config resolves the application directories, the rclone config
// override, and the input validation rules shared by the CLI and the engine.
package config

import (
	"os"
	"path/filepath"

	"github.com/cryptd777/LinuxCloudSync/internal/utils"
)

const appDirName = "linuxcloudsync"

// Dir returns the per-user config directory, creating it on first use.
// Honors XDG_CONFIG_HOME, falls back to ~/.config.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	// The dir may predate us with looser permissions. Best effort.
	_ = os.Chmod(dir, 0o700)

	return dir, nil
}

// RcloneConfigPath returns the path passed to every spawned rclone process
// via the RCLONE_CONFIG environment override.
func RcloneConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rclone.conf"), nil
}

// BisyncWorkdir returns the working directory handed to `rclone bisync`,
// which also holds its lock files.
func BisyncWorkdir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	workdir := filepath.Join(dir, "bisync")
	if err := utils.EnsureDir(workdir); err != nil {
		return "", err
	}
	return workdir, nil
}

// LogDir returns the directory for the application log file.
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	logDir := filepath.Join(dir, "logs")
	if err := utils.EnsureDir(logDir); err != nil {
		return "", err
	}
	return logDir, nil
}
