package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/piwi3910/ductcalc/internal/model"
)

// DefaultPresetsPath returns the default file path for custom sizing presets.
// This is located at ~/.ductcalc/presets.toml.
func DefaultPresetsPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.toml")
}

// SavePresets writes the custom presets of the store to a TOML file.
// Built-in presets are never written.
func SavePresets(path string, store model.PresetStore) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	custom := model.PresetStore{Presets: store.Custom()}
	if err := toml.NewEncoder(&buf).Encode(custom); err != nil {
		return fmt.Errorf("failed to encode presets: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// LoadCustomPresets reads the presets stored in a TOML file.
// Returns an empty slice if the file does not exist.
func LoadCustomPresets(path string) ([]model.SizingPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.SizingPreset{}, nil
		}
		return nil, err
	}

	var store model.PresetStore
	if err := toml.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}

	presets := make([]model.SizingPreset, 0, len(store.Presets))
	for i, p := range store.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset %d in %s has no name", i+1, path)
		}
		if err := p.Policy().Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		p.BuiltIn = false
		presets = append(presets, p)
	}
	return presets, nil
}

// LoadPresets returns the built-in presets followed by the custom presets
// from path. A custom preset with a built-in name replaces the built-in one.
func LoadPresets(path string) (model.PresetStore, error) {
	store := model.DefaultPresets()
	custom, err := LoadCustomPresets(path)
	if err != nil {
		return store, err
	}
	for _, p := range custom {
		if existing := store.FindByName(p.Name); existing != nil {
			*existing = p
			continue
		}
		store.Add(p)
	}
	return store, nil
}
