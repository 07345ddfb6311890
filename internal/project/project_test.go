package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
)

func TestSaveAndLoadProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designs", "office"+ProjectExt)

	p := model.NewProject("Office")
	p.InletFlow = 1000
	p.Terminals = append(p.Terminals,
		model.NewTerminal(model.Inlet, model.Point{X: 0, Y: 0}, 1000),
		model.NewTerminal(model.Outlet, model.Point{X: 4, Y: 0}, 1000),
	)
	s := model.NewSegment(model.Point{X: 0, Y: 0}, model.Point{X: 4, Y: 0})
	s.Flow, s.WidthMM, s.HeightMM, s.Label = 1000, 350, 200, "350x200 1000m³/h"
	p.Segments = append(p.Segments, s)

	if err := SaveProject(path, p); err != nil {
		t.Fatalf("SaveProject failed: %v", err)
	}

	loaded, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if loaded.Name != "Office" {
		t.Errorf("expected name Office, got %q", loaded.Name)
	}
	if len(loaded.Terminals) != 2 || loaded.Terminals[0].Kind != model.Inlet {
		t.Fatalf("terminals not restored: %+v", loaded.Terminals)
	}
	if len(loaded.Segments) != 1 || loaded.Segments[0].Label != "350x200 1000m³/h" {
		t.Fatalf("segments not restored: %+v", loaded.Segments)
	}
	if loaded.UpdatedAt == "" {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestLoadProjectDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.json")
	if err := os.WriteFile(path, []byte(`{"name":"Bare"}`), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Terminals == nil || p.Segments == nil {
		t.Error("expected non-nil terminal and segment lists")
	}
	if p.Pitch != model.DefaultPitch {
		t.Errorf("expected default pitch, got %f", p.Pitch)
	}
	if p.Policy != model.DefaultPolicy() {
		t.Errorf("expected default policy, got %+v", p.Policy)
	}
}

func TestLoadProjectRejectsTwoInlets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.json")
	data := []byte(`{"name":"Two","terminals":[{"id":"a","kind":"inlet"},{"id":"b","kind":"inlet"}]}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProject(path)
	if !errors.Is(err, ErrInvalidProject) {
		t.Fatalf("expected ErrInvalidProject, got %v", err)
	}
}

func TestLoadProjectInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
