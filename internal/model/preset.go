package model

import "github.com/google/uuid"

// SizingPreset is a named, reusable sizing policy such as a company standard
// for low-velocity supply or ceiling-void ductwork.
type SizingPreset struct {
	ID           string  `toml:"id" json:"id"`
	Name         string  `toml:"name" json:"name"`
	Description  string  `toml:"description,omitempty" json:"description,omitempty"`
	FrictionRate float64 `toml:"friction_rate" json:"friction_rate"`
	UseFixedSide bool    `toml:"use_fixed_side" json:"use_fixed_side"`
	FixedSideMM  float64 `toml:"fixed_side_mm,omitempty" json:"fixed_side_mm,omitempty"`
	AspectRatio  float64 `toml:"aspect_ratio,omitempty" json:"aspect_ratio,omitempty"`
	StepMM       float64 `toml:"step_mm,omitempty" json:"step_mm,omitempty"`
	BuiltIn      bool    `toml:"-" json:"-"`
}

// NewSizingPreset creates a preset with a generated ID from a policy.
func NewSizingPreset(name, description string, p SizingPolicy) SizingPreset {
	return SizingPreset{
		ID:           uuid.New().String()[:8],
		Name:         name,
		Description:  description,
		FrictionRate: p.FrictionRate,
		UseFixedSide: p.UseFixedSide,
		FixedSideMM:  p.FixedSideMM,
		AspectRatio:  p.AspectRatio,
		StepMM:       p.StepMM,
	}
}

// Policy converts the preset into a SizingPolicy.
func (sp SizingPreset) Policy() SizingPolicy {
	return SizingPolicy{
		FrictionRate: sp.FrictionRate,
		UseFixedSide: sp.UseFixedSide,
		FixedSideMM:  sp.FixedSideMM,
		AspectRatio:  sp.AspectRatio,
		StepMM:       sp.StepMM,
	}
}

// PresetStore holds the user's saved sizing presets.
type PresetStore struct {
	Presets []SizingPreset `toml:"preset" json:"presets"`
}

// DefaultPresets returns the built-in presets.
func DefaultPresets() PresetStore {
	builtin := []SizingPreset{
		NewSizingPreset("Low velocity", "Quiet supply, 0.08 mmAq/m",
			SizingPolicy{FrictionRate: 0.08, AspectRatio: 2, StepMM: DefaultStepMM}),
		NewSizingPreset("Standard", "General supply, 0.1 mmAq/m",
			SizingPolicy{FrictionRate: 0.1, AspectRatio: 2, StepMM: DefaultStepMM}),
		NewSizingPreset("High velocity", "Risers and shafts, 0.15 mmAq/m",
			SizingPolicy{FrictionRate: 0.15, AspectRatio: 1.5, StepMM: DefaultStepMM}),
		NewSizingPreset("Ceiling void 250", "Height limited to 250 mm",
			SizingPolicy{FrictionRate: 0.1, UseFixedSide: true, FixedSideMM: 250, StepMM: DefaultStepMM}),
		NewSizingPreset("Ceiling void 300", "Height limited to 300 mm",
			SizingPolicy{FrictionRate: 0.1, UseFixedSide: true, FixedSideMM: 300, StepMM: DefaultStepMM}),
	}
	for i := range builtin {
		builtin[i].BuiltIn = true
	}
	return PresetStore{Presets: builtin}
}

// Add appends a preset to the store.
func (ps *PresetStore) Add(p SizingPreset) {
	ps.Presets = append(ps.Presets, p)
}

// Remove removes a preset by ID. Returns true if found and removed.
func (ps *PresetStore) Remove(id string) bool {
	for i, p := range ps.Presets {
		if p.ID == id {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByName returns a pointer to the first preset with the given name, or nil.
func (ps *PresetStore) FindByName(name string) *SizingPreset {
	for i := range ps.Presets {
		if ps.Presets[i].Name == name {
			return &ps.Presets[i]
		}
	}
	return nil
}

// Names returns the preset names in store order.
func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}

// Custom returns only the presets that are not built in.
func (ps *PresetStore) Custom() []SizingPreset {
	var out []SizingPreset
	for _, p := range ps.Presets {
		if !p.BuiltIn {
			out = append(out, p)
		}
	}
	return out
}
