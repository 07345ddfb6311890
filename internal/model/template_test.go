package model

import "testing"

func templateProject() Project {
	p := NewProject("Source")
	p.Terminals = []Terminal{
		NewTerminal(Inlet, Point{0, 0}, 1000),
		NewTerminal(Outlet, Point{4, 0}, 1000),
	}
	s := NewSegment(Point{0, 0}, Point{4, 0})
	s.Flow, s.WidthMM, s.HeightMM, s.Label = 1000, 500, 250, "500x250 1000m³/h"
	p.Segments = []Segment{s}
	p.InletFlow = 1000
	return p
}

func TestNewLayoutTemplate(t *testing.T) {
	tmpl := NewLayoutTemplate("Office floor", "Typical floor", templateProject())

	if tmpl.Name != "Office floor" {
		t.Errorf("expected name 'Office floor', got %q", tmpl.Name)
	}
	if tmpl.ID == "" || tmpl.CreatedAt == "" {
		t.Error("expected generated ID and timestamp")
	}
	if len(tmpl.Terminals) != 2 || len(tmpl.Segments) != 1 {
		t.Fatalf("unexpected counts %d/%d", len(tmpl.Terminals), len(tmpl.Segments))
	}
	s := tmpl.Segments[0]
	if s.Flow != 0 || s.WidthMM != 0 || s.Label != "" {
		t.Errorf("derived fields should be cleared, got %+v", s)
	}
}

func TestLayoutTemplate_ToProject(t *testing.T) {
	src := templateProject()
	tmpl := NewLayoutTemplate("T", "", src)
	proj := tmpl.ToProject("Copy")

	if proj.Name != "Copy" {
		t.Errorf("expected name 'Copy', got %q", proj.Name)
	}
	if len(proj.Terminals) != 2 || len(proj.Segments) != 1 {
		t.Fatalf("unexpected counts %d/%d", len(proj.Terminals), len(proj.Segments))
	}
	if proj.Terminals[0].ID == src.Terminals[0].ID {
		t.Error("terminals should get fresh IDs")
	}
	if proj.Segments[0].ID == src.Segments[0].ID {
		t.Error("segments should get fresh IDs")
	}
	if proj.Terminals[0].Kind != Inlet || proj.InletFlow != 1000 {
		t.Errorf("inlet not carried over: %+v", proj.Terminals[0])
	}
}

func TestTemplateStore(t *testing.T) {
	store := NewTemplateStore()
	a := NewLayoutTemplate("A", "", templateProject())
	b := NewLayoutTemplate("B", "", templateProject())
	store.Add(a)
	store.Add(b)

	if store.FindByName("B") == nil {
		t.Error("expected to find B by name")
	}
	if got := store.FindByID(a.ID); got == nil || got.Name != "A" {
		t.Errorf("FindByID returned %v", got)
	}
	if !store.Remove(a.ID) {
		t.Error("expected Remove to succeed")
	}
	if store.Remove(a.ID) {
		t.Error("second Remove should fail")
	}
	if len(store.Templates) != 1 {
		t.Errorf("expected 1 template, got %d", len(store.Templates))
	}
}
