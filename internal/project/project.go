// Package project persists designs, preferences, sizing presets and layout
// templates on disk.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/ductcalc/internal/model"
)

// ProjectExt is the file extension used for saved designs.
const ProjectExt = ".duct.json"

// ErrInvalidProject is returned when a project file is readable but not a
// usable design.
var ErrInvalidProject = errors.New("invalid project file")

// SaveProject writes a project as indented JSON, stamping UpdatedAt.
func SaveProject(path string, p model.Project) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if p.CreatedAt == "" {
		p.CreatedAt = p.UpdatedAt
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// LoadProject reads a project file. Missing lists are returned empty and a
// missing pitch or policy falls back to the defaults.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project file: %w", err)
	}
	var p model.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project file: %w", err)
	}

	if err := checkTerminals(p.Terminals); err != nil {
		return model.Project{}, err
	}

	if p.Terminals == nil {
		p.Terminals = []model.Terminal{}
	}
	if p.Segments == nil {
		p.Segments = []model.Segment{}
	}
	if p.Pitch <= 0 {
		p.Pitch = model.DefaultPitch
	}
	if p.Policy.FrictionRate <= 0 {
		p.Policy = model.DefaultPolicy()
	}
	return p, nil
}

// checkTerminals rejects terminal lists with more than one inlet or a
// negative flow.
func checkTerminals(terms []model.Terminal) error {
	inlets := 0
	for _, t := range terms {
		if t.Kind == model.Inlet {
			inlets++
		}
		if t.Flow < 0 {
			return fmt.Errorf("%w: terminal %s has negative flow", ErrInvalidProject, t.ID)
		}
	}
	if inlets > 1 {
		return fmt.Errorf("%w: %d inlets", ErrInvalidProject, inlets)
	}
	return nil
}
