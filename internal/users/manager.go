package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"replay/internal/services"
)

// ErrExists is returned by Add when a profile with the same id is already
// registered.
var ErrExists = errors.New("user already exists")

// Credentials holds the streaming-provider secrets for one account.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Preferences captures per-user sync defaults.
type Preferences struct {
	TrackLimit  int  `json:"track_limit"`
	AutoRefresh bool `json:"auto_refresh"`
}

// DefaultPreferences returns the values applied when Add receives nil
// preferences.
func DefaultPreferences() Preferences {
	return Preferences{TrackLimit: 7, AutoRefresh: true}
}

// Profile is one registered account. Timestamps are RFC3339 UTC.
type Profile struct {
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	Credentials Credentials `json:"streaming_credentials"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   string      `json:"created_at"`
	LastActive  string      `json:"last_active"`
}

// Manager stores one JSON profile per user under a directory.
type Manager struct {
	dir string
}

// NewManager creates the registry directory if needed and returns a Manager
// over it.
func NewManager(dir string) (*Manager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "users", "init", "users directory not set", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create users directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Add registers a new user. Nil preferences receive the defaults. A duplicate
// id fails with ErrExists without touching the existing profile.
func (m *Manager) Add(id, displayName string, credentials Credentials, preferences *Preferences) (Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, services.Wrap(services.ErrValidation, "users", "add", "user id required", nil)
	}
	path := m.profilePath(id)
	if _, err := os.Stat(path); err == nil {
		return Profile{}, fmt.Errorf("%w: %s", ErrExists, id)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Profile{}, fmt.Errorf("check profile %s: %w", id, err)
	}

	prefs := DefaultPreferences()
	if preferences != nil {
		prefs = *preferences
	}
	now := time.Now().UTC().Format(time.RFC3339)
	profile := Profile{
		UserID:      id,
		DisplayName: strings.TrimSpace(displayName),
		Credentials: credentials,
		Preferences: prefs,
		CreatedAt:   now,
		LastActive:  now,
	}
	if err := m.write(profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// Remove deletes a profile. Removing an unknown id is not an error.
func (m *Manager) Remove(id string) error {
	err := os.Remove(m.profilePath(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove profile %s: %w", id, err)
	}
	return nil
}

// List returns the registered user ids in sorted order.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("read users directory: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Get loads one profile.
func (m *Manager) Get(id string) (Profile, error) {
	data, err := os.ReadFile(m.profilePath(id))
	if errors.Is(err, os.ErrNotExist) {
		return Profile{}, services.Wrap(services.ErrNotFound, "users", "get", id, nil)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile %s: %w", id, err)
	}
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", id, err)
	}
	return profile, nil
}

// UpdateLastActive stamps the profile with the current time.
func (m *Manager) UpdateLastActive(id string) error {
	profile, err := m.Get(id)
	if err != nil {
		return err
	}
	profile.LastActive = time.Now().UTC().Format(time.RFC3339)
	return m.write(profile)
}

func (m *Manager) profilePath(id string) string {
	return filepath.Join(m.dir, id+".json")
}

func (m *Manager) write(profile Profile) error {
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", profile.UserID, err)
	}
	if err := os.WriteFile(m.profilePath(profile.UserID), append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write profile %s: %w", profile.UserID, err)
	}
	return nil
}
