package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/ductcalc/internal/model"
)

// DefaultTemplatePath returns ~/.ductcalc/templates.json.
func DefaultTemplatePath() string {
	return filepath.Join(DefaultConfigDir(), "templates.json")
}

// SaveTemplates writes the layout templates as indented JSON.
func SaveTemplates(path string, store model.TemplateStore) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create template directory: %w", err)
	}
	if store.Templates == nil {
		store.Templates = []model.LayoutTemplate{}
	}
	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal templates: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write templates: %w", err)
	}
	return nil
}

// LoadTemplates reads the layout templates at path. A missing file yields an
// empty store. Every template is held to the same terminal rules as a
// project file, and a missing policy falls back to the default.
func LoadTemplates(path string) (model.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.NewTemplateStore(), nil
	}
	if err != nil {
		return model.TemplateStore{}, fmt.Errorf("failed to read templates: %w", err)
	}

	var store model.TemplateStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.TemplateStore{}, fmt.Errorf("failed to parse templates %s: %w", path, err)
	}
	if store.Templates == nil {
		store.Templates = []model.LayoutTemplate{}
	}

	for i := range store.Templates {
		t := &store.Templates[i]
		if err := checkTerminals(t.Terminals); err != nil {
			return model.TemplateStore{}, fmt.Errorf("template %q: %w", t.Name, err)
		}
		if t.InletFlow < 0 {
			return model.TemplateStore{}, fmt.Errorf("template %q: %w: negative inlet flow", t.Name, ErrInvalidProject)
		}
		if t.Terminals == nil {
			t.Terminals = []model.Terminal{}
		}
		if t.Segments == nil {
			t.Segments = []model.Segment{}
		}
		if t.Policy.FrictionRate <= 0 {
			t.Policy = model.DefaultPolicy()
		}
	}
	return store, nil
}
