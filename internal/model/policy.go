package model

import (
	"errors"
	"fmt"
)

// Validation errors for sizing inputs.
var (
	ErrInvalidFrictionRate = errors.New("friction rate must be positive")
	ErrInvalidAspectRatio  = errors.New("aspect ratio must be positive")
	ErrInvalidFixedSide    = errors.New("fixed side must be positive")
)

// DefaultStepMM is the standard duct size increment.
const DefaultStepMM = 50.0

// SizingPolicy selects how a flow is converted into a rectangular duct size.
type SizingPolicy struct {
	FrictionRate float64 `json:"friction_rate" toml:"friction_rate"` // mmAq/m
	UseFixedSide bool    `json:"use_fixed_side" toml:"use_fixed_side"`
	FixedSideMM  float64 `json:"fixed_side_mm" toml:"fixed_side_mm"`
	AspectRatio  float64 `json:"aspect_ratio" toml:"aspect_ratio"` // b/a
	StepMM       float64 `json:"step_mm,omitempty" toml:"step_mm,omitempty"`
}

func DefaultPolicy() SizingPolicy {
	return SizingPolicy{
		FrictionRate: 0.1,
		UseFixedSide: false,
		FixedSideMM:  300,
		AspectRatio:  2,
		StepMM:       DefaultStepMM,
	}
}

// Step returns the size increment, falling back to DefaultStepMM.
func (p SizingPolicy) Step() float64 {
	if p.StepMM <= 0 {
		return DefaultStepMM
	}
	return p.StepMM
}

// Validate checks only the inputs the active mode uses.
func (p SizingPolicy) Validate() error {
	if p.FrictionRate <= 0 {
		return fmt.Errorf("%g mmAq/m: %w", p.FrictionRate, ErrInvalidFrictionRate)
	}
	if p.UseFixedSide {
		if p.FixedSideMM <= 0 {
			return fmt.Errorf("%g mm: %w", p.FixedSideMM, ErrInvalidFixedSide)
		}
		return nil
	}
	if p.AspectRatio <= 0 {
		return fmt.Errorf("%g: %w", p.AspectRatio, ErrInvalidAspectRatio)
	}
	return nil
}

// String gives a short description used in reports.
func (p SizingPolicy) String() string {
	if p.UseFixedSide {
		return fmt.Sprintf("%.2f mmAq/m, fixed side %.0f mm", p.FrictionRate, p.FixedSideMM)
	}
	return fmt.Sprintf("%.2f mmAq/m, aspect ratio %.2f", p.FrictionRate, p.AspectRatio)
}
