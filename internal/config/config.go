// Package config reads and writes the local tunnel daemon configuration file
// (cloudflared's config.yml). The file holds the active tunnel ID, the
// credentials file path, and the ordered ingress rule list.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/opentunnel/opentunnel/internal/ingress"
)

// ErrConfigNotFound means no tunnel config file exists yet; callers decide
// whether that warrants the setup flow or just a message.
var ErrConfigNotFound = errors.New("tunnel config not found")

// TunnelConfig models the daemon's YAML config file.
type TunnelConfig struct {
	Tunnel          string         `yaml:"tunnel"`
	CredentialsFile string         `yaml:"credentials-file"`
	Ingress         []ingress.Rule `yaml:"ingress"`
}

// Hostnames returns the currently mapped hostnames, excluding the catch-all.
func (c TunnelConfig) Hostnames() []string {
	return ingress.Hostnames(c.Ingress)
}

// DefaultPath returns the platform-appropriate daemon config path. The
// daemon reads /etc/cloudflared/config.yml on Linux and ~/.cloudflared on
// macOS, so we follow it.
func DefaultPath() string {
	if runtime.GOOS == "darwin" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".cloudflared", "config.yml")
		}
	}
	return "/etc/cloudflared/config.yml"
}

// Load reads the tunnel config from the default path.
func Load() (TunnelConfig, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads and parses a tunnel config file.
func LoadFrom(path string) (TunnelConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TunnelConfig{}, fmt.Errorf("%w at %s", ErrConfigNotFound, path)
		}
		return TunnelConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	var cfg TunnelConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return TunnelConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the tunnel config to the default path.
func Save(cfg TunnelConfig) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the whole config atomically: marshal to a temp file in the
// target directory, then rename over the destination. The daemon may re-read
// the file at any moment, so it must never observe a partial write.
func SaveTo(path string, cfg TunnelConfig) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal tunnel config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
