package engine

import (
	"fmt"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
)

// PolicyScenario is a named sizing policy to compare.
type PolicyScenario struct {
	Name   string
	Policy model.SizingPolicy
}

// PolicyComparison holds the sized network totals for one scenario.
type PolicyComparison struct {
	Scenario     PolicyScenario
	Segments     []model.Segment
	TotalSurface float64 // Sheet metal area (m²)
	TotalLength  float64 // Run length (m)
	LargestDuct  string  // "WxH" of the largest cross-section
	MaxVelocity  float64 // Highest air velocity (m/s)
	Unsized      int     // Segments with flow but no size
	Unreachable  int     // Outlets with no path to the inlet
	Err          error
}

// ComparePolicies repairs and sizes a copy of the project under each
// scenario, so different policies can be compared side by side. The project
// itself is never modified.
func ComparePolicies(p model.Project, scenarios []PolicyScenario, opts ...Option) []PolicyComparison {
	results := make([]PolicyComparison, 0, len(scenarios))

	for _, scenario := range scenarios {
		res := PolicyComparison{Scenario: scenario}

		n := FromProject(p, opts...)
		n.RunTopologyRepair()
		unreachable, err := n.RecomputeFlowsAndSizes(scenario.Policy)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Unreachable = len(unreachable)
		res.Segments = n.Segments()

		largest := 0
		for _, s := range res.Segments {
			res.TotalLength += s.Length()
			if s.Flow > 0 && (s.WidthMM == 0 || s.HeightMM == 0) {
				res.Unsized++
				continue
			}
			res.TotalSurface += s.SurfaceArea()
			if area := s.WidthMM * s.HeightMM; area > largest {
				largest = area
				res.LargestDuct = fmt.Sprintf("%dx%d", s.WidthMM, s.HeightMM)
			}
			if v := sizing.Velocity(s.Flow, s.WidthMM, s.HeightMM); v > res.MaxVelocity {
				res.MaxVelocity = v
			}
		}

		results = append(results, res)
	}

	return results
}

// BuildDefaultScenarios generates what-if alternatives around the base
// policy: the other sizing mode, a lower and higher friction rate, and
// square or flat ducts.
func BuildDefaultScenarios(base model.SizingPolicy) []PolicyScenario {
	scenarios := []PolicyScenario{
		{
			Name:   "Current Policy",
			Policy: base,
		},
	}

	// Scenario: the other sizing mode
	alt := base
	alt.UseFixedSide = !base.UseFixedSide
	if alt.UseFixedSide {
		if alt.FixedSideMM <= 0 {
			alt.FixedSideMM = model.DefaultPolicy().FixedSideMM
		}
		scenarios = append(scenarios, PolicyScenario{
			Name:   fmt.Sprintf("Fixed Side %.0fmm", alt.FixedSideMM),
			Policy: alt,
		})
	} else {
		if alt.AspectRatio <= 0 {
			alt.AspectRatio = model.DefaultPolicy().AspectRatio
		}
		scenarios = append(scenarios, PolicyScenario{
			Name:   fmt.Sprintf("Aspect Ratio %.1f", alt.AspectRatio),
			Policy: alt,
		})
	}

	// Scenario: lower friction gives larger, quieter ducts
	low := base
	low.FrictionRate = base.FrictionRate * 0.8
	scenarios = append(scenarios, PolicyScenario{
		Name:   fmt.Sprintf("Friction %.3f mmAq/m", low.FrictionRate),
		Policy: low,
	})

	high := base
	high.FrictionRate = base.FrictionRate * 1.5
	scenarios = append(scenarios, PolicyScenario{
		Name:   fmt.Sprintf("Friction %.3f mmAq/m", high.FrictionRate),
		Policy: high,
	})

	// Scenario: square and flat ducts (aspect mode only)
	if !base.UseFixedSide {
		for _, r := range []float64{1, 3} {
			if r == base.AspectRatio {
				continue
			}
			p := base
			p.AspectRatio = r
			scenarios = append(scenarios, PolicyScenario{
				Name:   fmt.Sprintf("Aspect Ratio %.1f", r),
				Policy: p,
			})
		}
	}

	return scenarios
}
