package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/ductcalc/internal/model"
)

// DefaultConfigDir is ~/.ductcalc, or ./.ductcalc when the home directory
// cannot be resolved. Config, presets, templates and the catalog live here.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".ductcalc")
}

// DefaultConfigPath returns the default path of the preferences file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig writes the preferences as indented JSON, creating parent
// directories as needed.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if config.RecentProjects == nil {
		config.RecentProjects = []string{}
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadAppConfig reads the preferences at path. A missing file yields
// DefaultAppConfig; keys absent from the file keep their defaults, and
// out-of-range engine settings are reset to them.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.DefaultAppConfig(), nil
	}
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to read config: %w", err)
	}

	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	sanitizeConfig(&config)
	return config, nil
}

func sanitizeConfig(c *model.AppConfig) {
	def := model.DefaultAppConfig()
	if c.GridPitch <= 0 {
		c.GridPitch = def.GridPitch
	}
	if c.UndoLimit <= 0 {
		c.UndoLimit = def.UndoLimit
	}
	if c.OptimizerRounds <= 0 {
		c.OptimizerRounds = def.OptimizerRounds
	}
	if c.InletRadius <= 0 {
		c.InletRadius = def.InletRadius
	}
	if c.RecentProjects == nil {
		c.RecentProjects = []string{}
	}
}
