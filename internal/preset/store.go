// Package preset stores named sets of hostname to service mappings that can
// be applied to the tunnel config in one step, e.g. a "dev" preset for a
// frontend, API and database trio.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opentunnel/opentunnel/internal/appconfig"
	"github.com/opentunnel/opentunnel/internal/ingress"
)

// Entry describes one mapping in a preset.
type Entry struct {
	Hostname string `yaml:"hostname" json:"hostname"`
	Target   string `yaml:"target" json:"target"`
}

// Definition is a named sequence of preset entries.
type Definition struct {
	Name    string  `yaml:"name" json:"name"`
	Entries []Entry `yaml:"entries" json:"entries"`
}

type fileModel struct {
	Presets map[string]Definition `yaml:"presets"`
}

func filePath() (string, error) {
	dir, err := appconfig.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "presets.yaml"), nil
}

// LoadAll returns all presets sorted by name.
func LoadAll() ([]Definition, error) {
	fm, err := loadFile()
	if err != nil {
		return nil, err
	}
	out := make([]Definition, 0, len(fm.Presets))
	for _, p := range fm.Presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get fetches one preset by name.
func Get(name string) (Definition, error) {
	fm, err := loadFile()
	if err != nil {
		return Definition{}, err
	}
	p, ok := fm.Presets[name]
	if !ok {
		return Definition{}, fmt.Errorf("preset not found: %s", name)
	}
	return p, nil
}

// Create adds or replaces a preset definition. Targets are normalized on the
// way in so applying a preset never writes a schemeless service.
func Create(name string, entries []Entry) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if len(entries) == 0 {
		return fmt.Errorf("preset must include at least one mapping")
	}
	for i := range entries {
		entries[i].Hostname = strings.TrimSpace(entries[i].Hostname)
		entries[i].Target = ingress.NormalizeTarget(strings.TrimSpace(entries[i].Target))
		if entries[i].Hostname == "" {
			return fmt.Errorf("preset entry %d missing hostname", i)
		}
		if entries[i].Target == "" {
			return fmt.Errorf("preset entry %d missing target", i)
		}
	}

	fm, err := loadFile()
	if err != nil {
		return err
	}
	fm.Presets[name] = Definition{Name: name, Entries: entries}
	return saveFile(fm)
}

// Delete removes a preset by name.
func Delete(name string) error {
	fm, err := loadFile()
	if err != nil {
		return err
	}
	if _, ok := fm.Presets[name]; !ok {
		return fmt.Errorf("preset not found: %s", name)
	}
	delete(fm.Presets, name)
	return saveFile(fm)
}

// Apply merges a preset's entries into an ingress rule list. Hostnames that
// are already mapped are skipped rather than treated as errors, so applying
// the same preset twice is harmless. Returns the new list plus the hostnames
// that were added and skipped.
func Apply(rules []ingress.Rule, def Definition) ([]ingress.Rule, []string, []string, error) {
	out := append([]ingress.Rule(nil), rules...)
	var added, skipped []string
	for _, e := range def.Entries {
		next, err := ingress.Insert(out, e.Hostname, e.Target)
		if err != nil {
			if errors.Is(err, ingress.ErrDuplicateHostname) {
				skipped = append(skipped, e.Hostname)
				continue
			}
			return nil, nil, nil, fmt.Errorf("apply preset %s: %w", def.Name, err)
		}
		out = next
		added = append(added, e.Hostname)
	}
	return out, added, skipped, nil
}

func loadFile() (fileModel, error) {
	path, err := filePath()
	if err != nil {
		return fileModel{}, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileModel{Presets: map[string]Definition{}}, nil
		}
		return fileModel{}, err
	}
	var fm fileModel
	if err := yaml.Unmarshal(b, &fm); err != nil {
		return fileModel{}, fmt.Errorf("parse presets: %w", err)
	}
	if fm.Presets == nil {
		fm.Presets = map[string]Definition{}
	}
	return fm, nil
}

func saveFile(fm fileModel) error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}
