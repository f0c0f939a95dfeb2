// Package profile persists named sync configurations so a request can be
// prefilled without retyping remotes, paths and flags.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cryptd777/LinuxCloudSync/internal/utils"
)

const (
	profilesFileName    = "profiles.json"
	lastProfileFileName = "last_profile.txt"
)

// Profile is one saved sync configuration. Field layout mirrors the
// profiles.json document of earlier releases, so existing files keep loading.
type Profile struct {
	Name            string `json:"-" validate:"required"`
	Remote          string `json:"remote" validate:"required"`
	LocalPath       string `json:"local_path" validate:"required"`
	Mode            string `json:"sync_mode" validate:"omitempty,oneof=bisync pull push"`
	Bandwidth       string `json:"bandwidth"`
	ExcludePatterns string `json:"exclude_patterns"`
	DryRun          bool   `json:"dry_run"`
	AdditionalFlags string `json:"additional_flags"`
}

// Excludes splits the newline-separated exclude block into patterns.
// Comment filtering is the command builder's job, not ours.
func (p Profile) Excludes() []string {
	if strings.TrimSpace(p.ExcludePatterns) == "" {
		return nil
	}
	return strings.Split(p.ExcludePatterns, "\n")
}

// Store reads and writes profiles under a config directory.
type Store struct {
	dir      string
	validate *validator.Validate
}

func NewStore(dir string) *Store {
	return &Store{
		dir:      dir,
		validate: validator.New(),
	}
}

func (s *Store) profilesPath() string {
	return filepath.Join(s.dir, profilesFileName)
}

// LoadAll returns every saved profile keyed by name. A missing file yields
// an empty map, not an error.
func (s *Store) LoadAll() (map[string]Profile, error) {
	data, err := os.ReadFile(s.profilesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Profile{}, nil
		}
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var profiles map[string]Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	for name, p := range profiles {
		p.Name = name
		profiles[name] = p
	}
	return profiles, nil
}

// Names returns the saved profile names, sorted.
func (s *Store) Names() ([]string, error) {
	profiles, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Get looks a profile up by name.
func (s *Store) Get(name string) (Profile, bool, error) {
	profiles, err := s.LoadAll()
	if err != nil {
		return Profile{}, false, err
	}
	p, ok := profiles[name]
	return p, ok, nil
}

// Save validates and persists a profile, overwriting any existing one with
// the same name.
func (s *Store) Save(p Profile) error {
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}

	profiles, err := s.LoadAll()
	if err != nil {
		return err
	}
	profiles[p.Name] = p

	return s.write(profiles)
}

// Delete removes a profile by name. Reports whether it existed.
func (s *Store) Delete(name string) (bool, error) {
	profiles, err := s.LoadAll()
	if err != nil {
		return false, err
	}
	if _, ok := profiles[name]; !ok {
		return false, nil
	}
	delete(profiles, name)

	if err := s.write(profiles); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) write(profiles map[string]Profile) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if err := utils.EnsureParent(s.profilesPath()); err != nil {
		return err
	}
	return os.WriteFile(s.profilesPath(), data, 0o644)
}

// SetLastUsed remembers the profile to preselect next launch. Best effort.
func (s *Store) SetLastUsed(name string) {
	_ = os.WriteFile(filepath.Join(s.dir, lastProfileFileName), []byte(name+"\n"), 0o644)
}

// LastUsed returns the remembered profile name, or empty when unset.
func (s *Store) LastUsed() string {
	data, err := os.ReadFile(filepath.Join(s.dir, lastProfileFileName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
