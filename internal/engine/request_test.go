package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSyncMode(t *testing.T) {
	for input, want := range map[string]SyncMode{
		"bisync":         ModeBidirectional,
		"bidirectional":  ModeBidirectional,
		"both":           ModeBidirectional,
		"pull":           ModePull,
		"down":           ModePull,
		"cloud-to-local": ModePull,
		"push":           ModePush,
		"up":             ModePush,
		"local-to-cloud": ModePush,
	} {
		got, err := ParseSyncMode(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "sync", "BISYNC", "bisync "} {
		_, err := ParseSyncMode(input)
		assert.Error(t, err, input)
	}
}

func TestSyncModeString(t *testing.T) {
	assert.Equal(t, "bisync", ModeBidirectional.String())
	assert.Equal(t, "pull", ModePull.String())
	assert.Equal(t, "push", ModePush.String())
	assert.Equal(t, "SyncMode(99)", SyncMode(99).String())
}

func TestNewSyncRequest(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		req, err := NewSyncRequest("gdrive:backup", home, ModeBidirectional)
		require.NoError(t, err)
		assert.Equal(t, "gdrive:backup", req.Remote)
		assert.Equal(t, home, req.LocalPath)
		assert.Equal(t, ModeBidirectional, req.Mode)
	})

	t.Run("bad remote", func(t *testing.T) {
		for _, remote := range []string{"", "gdrive", ":path", "-bad:", "gdrive:pa th", "gd rive:"} {
			_, err := NewSyncRequest(remote, home, ModePull)
			var valErr *ValidationError
			require.ErrorAs(t, err, &valErr, remote)
			assert.Equal(t, "remote", valErr.Field, remote)
		}
	})

	t.Run("disallowed local path", func(t *testing.T) {
		_, err := NewSyncRequest("gdrive:", "/etc", ModePull)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "local path", valErr.Field)
	})

	t.Run("missing local path", func(t *testing.T) {
		_, err := NewSyncRequest("gdrive:", home+"/no-such-dir-for-sync-test", ModePull)
		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
	})
}
