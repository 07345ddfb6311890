package model

import (
	"time"

	"github.com/google/uuid"
)

// LayoutTemplate is a reusable floor layout: terminal placement, drawn ducts
// and the sizing policy, without computed flows or sizes.
type LayoutTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
	Terminals   []Terminal   `json:"terminals"`
	Segments    []Segment    `json:"segments"`
	Policy      SizingPolicy `json:"policy"`
	InletFlow   float64      `json:"inlet_flow"`
}

// NewLayoutTemplate captures a project as a template. Segment flows and
// sizes are cleared since they are recomputed on use.
func NewLayoutTemplate(name, description string, p Project) LayoutTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[i] = Segment{ID: s.ID, P1: s.P1, P2: s.P2, Orientation: s.Orientation}
	}
	terms := CopyTerminals(p.Terminals)
	if terms == nil {
		terms = []Terminal{}
	}
	return LayoutTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Terminals:   terms,
		Segments:    segs,
		Policy:      p.Policy,
		InletFlow:   p.InletFlow,
	}
}

// ToProject creates a new Project from this template.
// Terminals and segments get fresh IDs so they are independent of the template.
func (t LayoutTemplate) ToProject(projectName string) Project {
	p := NewProject(projectName)
	for _, term := range t.Terminals {
		nt := NewTerminal(term.Kind, term.Position, term.Flow)
		nt.Name = term.Name
		p.Terminals = append(p.Terminals, nt)
	}
	for _, s := range t.Segments {
		ns := NewSegment(s.P1, s.P2)
		ns.Orientation = s.Orientation
		p.Segments = append(p.Segments, ns)
	}
	p.Policy = t.Policy
	p.InletFlow = t.InletFlow
	return p
}

// TemplateStore holds a collection of layout templates.
type TemplateStore struct {
	Templates []LayoutTemplate `json:"templates"`
}

func NewTemplateStore() TemplateStore {
	return TemplateStore{Templates: []LayoutTemplate{}}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t LayoutTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the template with the given ID, or nil.
func (ts *TemplateStore) FindByID(id string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].ID == id {
			return &ts.Templates[i]
		}
	}
	return nil
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}
