package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
)

func TestSaveAndLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")

	p := model.NewProject("Classroom")
	p.Terminals = append(p.Terminals,
		model.NewTerminal(model.Inlet, model.Point{X: 0, Y: 0}, 1200),
		model.NewTerminal(model.Outlet, model.Point{X: 3, Y: 2}, 400),
	)
	p.Segments = append(p.Segments, model.NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 3, Y: 0}))

	store := model.NewTemplateStore()
	store.Add(model.NewLayoutTemplate("Classroom", "Four diffusers", p))

	if err := SaveTemplates(path, store); err != nil {
		t.Fatalf("SaveTemplates error: %v", err)
	}

	loaded, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates error: %v", err)
	}

	if len(loaded.Templates) != 1 {
		t.Fatalf("expected 1 template, got %d", len(loaded.Templates))
	}
	if loaded.Templates[0].Name != "Classroom" {
		t.Errorf("expected 'Classroom', got %q", loaded.Templates[0].Name)
	}
	if len(loaded.Templates[0].Terminals) != 2 {
		t.Errorf("expected 2 terminals, got %d", len(loaded.Templates[0].Terminals))
	}
	if len(loaded.Templates[0].Segments) != 1 {
		t.Errorf("expected 1 segment, got %d", len(loaded.Templates[0].Segments))
	}
}

func TestLoadTemplates_NotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.json")

	store, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(store.Templates) != 0 {
		t.Errorf("expected empty store, got %d templates", len(store.Templates))
	}
}

func TestSaveAndLoadTemplates_Multiple(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")

	store := model.NewTemplateStore()
	store.Add(model.NewLayoutTemplate("T1", "First", model.NewProject("a")))
	store.Add(model.NewLayoutTemplate("T2", "Second", model.NewProject("b")))
	store.Add(model.NewLayoutTemplate("T3", "Third", model.NewProject("c")))

	if err := SaveTemplates(path, store); err != nil {
		t.Fatalf("SaveTemplates error: %v", err)
	}

	loaded, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates error: %v", err)
	}
	if len(loaded.Templates) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(loaded.Templates))
	}
}

func TestLoadTemplates_RejectsInvalidLayouts(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"two inlets", `{"name": "Lobby", "terminals": [
			{"id": "a", "kind": 1, "position": {"x": 0, "y": 0}, "flow": 500},
			{"id": "b", "kind": 1, "position": {"x": 4, "y": 0}, "flow": 500}]}`},
		{"negative outlet flow", `{"name": "Lobby", "terminals": [
			{"id": "a", "kind": 0, "position": {"x": 2, "y": 0}, "flow": -10}]}`},
		{"negative inlet flow", `{"name": "Lobby", "inlet_flow": -100}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "templates.json")
			data := `{"templates": [` + tt.template + `]}`
			if err := os.WriteFile(path, []byte(data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadTemplates(path)
			if !errors.Is(err, ErrInvalidProject) {
				t.Fatalf("expected ErrInvalidProject, got %v", err)
			}
			if !strings.Contains(err.Error(), `"Lobby"`) {
				t.Errorf("error does not name the template: %v", err)
			}
		})
	}
}

func TestLoadTemplates_FillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	if err := os.WriteFile(path, []byte(`{"templates": [{"name": "Bare"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := LoadTemplates(path)
	if err != nil {
		t.Fatalf("LoadTemplates error: %v", err)
	}
	tpl := store.Templates[0]
	if tpl.Policy != model.DefaultPolicy() {
		t.Errorf("policy = %+v, want default", tpl.Policy)
	}
	if tpl.Terminals == nil || tpl.Segments == nil {
		t.Error("expected empty terminal and segment lists, got nil")
	}
}

func TestLoadTemplates_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "templates.json")
	if err := os.WriteFile(path, []byte(`{"templates": [`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTemplates(path); err == nil {
		t.Fatal("expected a parse error")
	}
}
