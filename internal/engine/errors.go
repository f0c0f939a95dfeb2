package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when a sync is requested while another
	// session is still running.
	ErrAlreadyRunning = errors.New("a sync session is already running")

	// ErrBaselineRequired marks the distinguished bisync failure (exit code 2):
	// the remote/local pair has no valid sync baseline and a force resync is
	// needed before bisync can run.
	ErrBaselineRequired = errors.New("bisync baseline missing")

	// ErrCancelled is the terminal error of a user-stopped session. Not a failure.
	ErrCancelled = errors.New("sync cancelled")

	// ErrTimedOut is the terminal error of a session that exceeded its deadline.
	ErrTimedOut = errors.New("sync timed out")
)

// SpawnError wraps a failure to launch the rclone binary.
type SpawnError struct {
	Bin string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Bin, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ProcessExitError reports a non-zero, non-baseline rclone exit.
type ProcessExitError struct {
	Code int
}

func (e *ProcessExitError) Error() string {
	return fmt.Sprintf("rclone exited with code %d", e.Code)
}

// ValidationError rejects a malformed sync request before any process starts.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
