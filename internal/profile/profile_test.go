package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(name string) Profile {
	return Profile{
		Name:      name,
		Remote:    "gdrive:",
		LocalPath: "/home/user/sync",
		Mode:      "bisync",
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := NewStore(t.TempDir())

	p := testProfile("work")
	p.Bandwidth = "1M"
	p.ExcludePatterns = "*.tmp\nnode_modules/"
	p.AdditionalFlags = "--checksum"
	require.NoError(t, store.Save(p))

	got, ok, err := store.Get("work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, got)
	assert.Equal(t, []string{"*.tmp", "node_modules/"}, got.Excludes())
}

func TestStore_LoadAllMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	profiles, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, profiles)

	_, ok, err := store.Get("anything")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_LoadAllCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{nope"), 0o644))

	_, err := NewStore(dir).LoadAll()
	assert.ErrorContains(t, err, "parse profiles")
}

func TestStore_LoadAllFillsNames(t *testing.T) {
	dir := t.TempDir()
	doc := `{"work": {"remote": "gdrive:", "local_path": "/home/user/sync", "sync_mode": "pull"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "profiles.json"), []byte(doc), 0o644))

	profiles, err := NewStore(dir).LoadAll()
	require.NoError(t, err)
	require.Contains(t, profiles, "work")
	assert.Equal(t, "work", profiles["work"].Name)
	assert.Equal(t, "pull", profiles["work"].Mode)
}

func TestStore_SaveValidates(t *testing.T) {
	store := NewStore(t.TempDir())

	cases := map[string]Profile{
		"missing name":   {Remote: "gdrive:", LocalPath: "/home/user/sync"},
		"missing remote": {Name: "x", LocalPath: "/home/user/sync"},
		"missing path":   {Name: "x", Remote: "gdrive:"},
		"bad mode": func() Profile {
			p := testProfile("x")
			p.Mode = "mirror"
			return p
		}(),
	}
	for name, p := range cases {
		assert.ErrorContains(t, store.Save(p), "invalid profile", name)
	}

	// Empty mode is allowed; the caller falls back to bisync.
	p := testProfile("x")
	p.Mode = ""
	assert.NoError(t, store.Save(p))
}

func TestStore_Names(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(testProfile("zeta")))
	require.NoError(t, store.Save(testProfile("alpha")))
	require.NoError(t, store.Save(testProfile("mid")))

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(testProfile("gone")))

	existed, err := store.Delete("gone")
	require.NoError(t, err)
	assert.True(t, existed)

	_, ok, err := store.Get("gone")
	require.NoError(t, err)
	assert.False(t, ok)

	existed, err = store.Delete("gone")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestStore_Overwrite(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(testProfile("work")))

	updated := testProfile("work")
	updated.Bandwidth = "500K"
	require.NoError(t, store.Save(updated))

	got, ok, err := store.Get("work")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "500K", got.Bandwidth)
}

func TestStore_LastUsed(t *testing.T) {
	store := NewStore(t.TempDir())
	assert.Empty(t, store.LastUsed())

	store.SetLastUsed("work")
	assert.Equal(t, "work", store.LastUsed())

	store.SetLastUsed("other")
	assert.Equal(t, "other", store.LastUsed())
}
