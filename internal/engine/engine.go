package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cryptd777/LinuxCloudSync/internal/utils"
)

const (
	// CommandTimeout bounds short non-sync rclone invocations (version,
	// listremotes).
	CommandTimeout = 10 * time.Second
	// WizardTimeout bounds the interactive `rclone config create` wizard.
	WizardTimeout = 5 * time.Minute
)

// Engine locates the rclone binary and runs it with the application's own
// rclone config. All sync sessions and helper commands go through it.
type Engine struct {
	// RclonePath is the absolute path of the rclone binary.
	RclonePath string
	// ConfigPath is passed to every child via RCLONE_CONFIG.
	ConfigPath string
	// Workdir is the bisync working directory (baselines and lock files).
	Workdir string
}

// Options configures New. An empty RclonePath falls back to PATH lookup.
type Options struct {
	RclonePath string
	ConfigPath string
	Workdir    string
}

// New resolves the rclone binary and prepares the bisync workdir. A missing
// or non-executable binary is fatal: the engine cannot operate without it.
func New(opts Options) (*Engine, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("rclone config path is required")
	}

	bin := opts.RclonePath
	if bin == "" {
		found, err := exec.LookPath("rclone")
		if err != nil {
			return nil, fmt.Errorf("rclone binary not found in PATH: %w", err)
		}
		bin = found
	} else {
		resolved, err := utils.ResolvePath(bin)
		if err != nil {
			return nil, fmt.Errorf("resolve rclone path: %w", err)
		}
		if err := utils.EnsureExecutable(resolved); err != nil {
			return nil, fmt.Errorf("rclone binary not usable at %s: %w", resolved, err)
		}
		bin = resolved
	}

	if opts.Workdir != "" {
		if err := utils.EnsureDir(opts.Workdir); err != nil {
			return nil, fmt.Errorf("create bisync workdir: %w", err)
		}
	}

	return &Engine{
		RclonePath: bin,
		ConfigPath: opts.ConfigPath,
		Workdir:    opts.Workdir,
	}, nil
}

// childEnv is the environment overlay every spawned rclone process gets.
func (e *Engine) childEnv() []string {
	return []string{"RCLONE_CONFIG=" + e.ConfigPath}
}

// spawn starts a supervised sync process.
func (e *Engine) spawn(argv []string) (*Process, error) {
	return Spawn(e.RclonePath, argv, e.childEnv())
}

// Version returns the first line of `rclone version`.
func (e *Engine) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.RclonePath, "version")
	cmd.Env = append(os.Environ(), e.childEnv()...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("rclone version: %w", err)
	}

	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// ListRemotes returns the configured remote names, colons included.
func (e *Engine) ListRemotes(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, CommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.RclonePath, "listremotes")
	cmd.Env = append(os.Environ(), e.childEnv()...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("rclone listremotes: %w", err)
	}

	var remotes []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// ConnectRemote runs the interactive `rclone config create` wizard on the
// caller's terminal. Fire and forget: not part of the sync state machine,
// bounded by its own timeout.
func (e *Engine) ConnectRemote(ctx context.Context, name, provider string) error {
	ctx, cancel := context.WithTimeout(ctx, WizardTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.RclonePath, "config", "create", name, provider)
	cmd.Env = append(os.Environ(), e.childEnv()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("configuration wizard timed out after %s", WizardTimeout)
		}
		return fmt.Errorf("configuration wizard failed: %w", err)
	}
	return nil
}
