package model

// maxRecentProjects caps the recent-projects list.
const maxRecentProjects = 10

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default sizing policy applied to new projects
	DefaultFrictionRate float64 `json:"default_friction_rate"`
	DefaultUseFixedSide bool    `json:"default_use_fixed_side"`
	DefaultFixedSideMM  float64 `json:"default_fixed_side_mm"`
	DefaultAspectRatio  float64 `json:"default_aspect_ratio"`
	DefaultStepMM       float64 `json:"default_step_mm"`
	DefaultInletFlow    float64 `json:"default_inlet_flow"`
	DefaultPreset       string  `json:"default_preset"`

	// Engine behaviour
	GridPitch           float64 `json:"grid_pitch"` // meters
	UndoLimit           int     `json:"undo_limit"`
	OptimizerRounds     int     `json:"optimizer_rounds"`
	OptimizerMinLength  float64 `json:"optimizer_min_length"`  // meters
	OptimizerMinSavings float64 `json:"optimizer_min_savings"` // meters

	// Import: DXF circles with at least this radius become the inlet
	InletRadius float64 `json:"inlet_radius"`

	// Sheet purchasing defaults
	SheetWidthMM      float64 `json:"sheet_width_mm"`
	SheetHeightMM     float64 `json:"sheet_height_mm"`
	SheetWastePercent float64 `json:"sheet_waste_percent"`
	SheetPrice        float64 `json:"sheet_price"`

	RecentProjects []string `json:"recent_projects"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching DefaultPolicy().
func DefaultAppConfig() AppConfig {
	p := DefaultPolicy()
	return AppConfig{
		DefaultFrictionRate: p.FrictionRate,
		DefaultUseFixedSide: p.UseFixedSide,
		DefaultFixedSideMM:  p.FixedSideMM,
		DefaultAspectRatio:  p.AspectRatio,
		DefaultStepMM:       p.StepMM,
		DefaultInletFlow:    0,
		GridPitch:           DefaultPitch,
		UndoLimit:           100,
		OptimizerRounds:     3,
		OptimizerMinLength:  1.5,
		OptimizerMinSavings: 1.0,
		InletRadius:         0.4,
		SheetWidthMM:        1219,
		SheetHeightMM:       2438,
		SheetWastePercent:   15,
		SheetPrice:          0,
		RecentProjects:      []string{},
	}
}

// Policy returns the default sizing policy described by the config.
func (c AppConfig) Policy() SizingPolicy {
	return SizingPolicy{
		FrictionRate: c.DefaultFrictionRate,
		UseFixedSide: c.DefaultUseFixedSide,
		FixedSideMM:  c.DefaultFixedSideMM,
		AspectRatio:  c.DefaultAspectRatio,
		StepMM:       c.DefaultStepMM,
	}
}

// ApplyToProject copies the defaults into a new project so it inherits the
// user's saved preferences.
func (c AppConfig) ApplyToProject(p *Project) {
	p.Policy = c.Policy()
	p.InletFlow = c.DefaultInletFlow
	if c.GridPitch > 0 {
		p.Pitch = c.GridPitch
	}
}

// AddRecentProject moves path to the front of the recent list.
func (c *AppConfig) AddRecentProject(path string) {
	recent := []string{path}
	for _, p := range c.RecentProjects {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentProjects {
		recent = recent[:maxRecentProjects]
	}
	c.RecentProjects = recent
}
