// Package appconfig manages the saved API credentials and user preferences.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotConfigured means no usable API token/account is saved yet.
	ErrNotConfigured = errors.New("API not configured, run `opentunnel config set` first")

	// ErrZoneNotConfigured means DNS operations were requested without a zone.
	ErrZoneNotConfigured = errors.New("zone not configured, run `opentunnel config set` first")
)

// Config holds the stored API credentials and preferences
// (~/.opentunnel/config.json).
type Config struct {
	APIToken  string `json:"api_token,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	ZoneID    string `json:"zone_id,omitempty"`
	ZoneName  string `json:"zone_name,omitempty"`
	Language  string `json:"language,omitempty"`
}

// IsConfigured reports whether the API can be used (token + account).
func (c Config) IsConfigured() bool {
	return c.APIToken != "" && c.AccountID != ""
}

// MaskedToken renders the API token for display without revealing it,
// e.g. "abcd***...***mnop". Rune-based so multi-byte tokens mask cleanly.
func (c Config) MaskedToken() string {
	r := []rune(c.APIToken)
	switch {
	case len(r) == 0:
		return "not set"
	case len(r) <= 8:
		return "****"
	default:
		return fmt.Sprintf("%s***...***%s", string(r[:4]), string(r[len(r)-4:]))
	}
}

// ConfigDir returns the application config directory path.
// Uses OPENTUNNEL_CONFIG_DIR if set (tests rely on this), otherwise
// ~/.opentunnel.
func ConfigDir() (string, error) {
	if dir := os.Getenv("OPENTUNNEL_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".opentunnel"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config.json"), nil
}

// Load reads the saved config. A missing file is not an error; it yields the
// zero Config so first-run flows can proceed to the setup wizard.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config with owner-only permissions. The token is a
// credential: directory 0o700, file 0o600.
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	path := filepath.Join(dir, "config.json")
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Clear deletes the saved config file. Clearing an absent config is a no-op.
func Clear() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Require loads the config and fails unless token and account are present.
func Require() (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	if !cfg.IsConfigured() {
		return Config{}, ErrNotConfigured
	}
	return cfg, nil
}

// RequireZone is Require plus a configured zone, for DNS operations.
func RequireZone() (Config, error) {
	cfg, err := Require()
	if err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.ZoneID) == "" {
		return Config{}, ErrZoneNotConfigured
	}
	return cfg, nil
}
