package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptd777/LinuxCloudSync/internal/engine"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 2, exitCode(engine.ErrBaselineRequired))
	assert.Equal(t, 2, exitCode(fmt.Errorf("sync: %w", engine.ErrBaselineRequired)))
	assert.Equal(t, 124, exitCode(fmt.Errorf("%w after 1h", engine.ErrTimedOut)))
	assert.Equal(t, 130, exitCode(engine.ErrCancelled))
	assert.Equal(t, 1, exitCode(errors.New("anything else")))
	assert.Equal(t, 1, exitCode(&engine.ProcessExitError{Code: 3}))
}

func TestProviderFor(t *testing.T) {
	assert.Equal(t, "drive", providerFor("gdrive"))
	assert.Equal(t, "drive", providerFor("drive"))
	assert.Equal(t, "onedrive", providerFor("onedrive"))
	assert.Equal(t, "dropbox", providerFor("dropbox"))
	assert.Equal(t, "s3backup", providerFor("s3backup"))
}
