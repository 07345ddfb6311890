package sizing

import (
	"fmt"
	"math"

	"github.com/piwi3910/ductcalc/internal/model"
)

// SheetArea returns the sheet-metal surface of a w x h duct run in m².
func SheetArea(widthMM, heightMM int, lengthM float64) float64 {
	if widthMM <= 0 || heightMM <= 0 || lengthM <= 0 {
		return 0
	}
	return float64(widthMM+heightMM) * 2 / 1000 * lengthM
}

// Velocity returns the mean air velocity in m/s through a w x h duct.
func Velocity(flow float64, widthMM, heightMM int) float64 {
	if flow <= 0 || widthMM <= 0 || heightMM <= 0 {
		return 0
	}
	area := float64(widthMM) * float64(heightMM) / 1e6
	return flow / 3600 / area
}

// Report is the full breakdown of one sizing calculation.
type Report struct {
	Flow          float64
	Policy        model.SizingPolicy
	Diameter      float64 // D1, equivalent circular diameter (mm)
	RoundedDiam   float64 // D2, D1 rounded up to the size step (mm)
	Rect          Rect
	Velocity      float64 // m/s in the selected rectangle
	RoundVelocity float64 // m/s in a round duct of diameter D2
}

// SizeReport computes every intermediate value of the sizing chain.
func SizeReport(flow float64, p model.SizingPolicy) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	if flow <= 0 {
		return Report{}, fmt.Errorf("flow %g m³/h must be positive", flow)
	}
	d1, err := EquivalentCircularDiameter(flow, p.FrictionRate)
	if err != nil {
		return Report{}, err
	}
	r, err := Size(flow, p)
	if err != nil {
		return Report{}, err
	}
	d2 := RoundStep(d1, p.Step(), Up)
	rep := Report{
		Flow:        flow,
		Policy:      p,
		Diameter:    d1,
		RoundedDiam: d2,
		Rect:        r,
		Velocity:    Velocity(flow, r.BigMM, r.SmallMM),
	}
	if d2 > 0 {
		area := math.Pi * d2 * d2 / 4 / 1e6
		rep.RoundVelocity = flow / 3600 / area
	}
	return rep, nil
}

// Lines renders the report as display lines.
func (r Report) Lines() []string {
	lines := []string{
		fmt.Sprintf("Flow: %s", FlowLabel(r.Flow)),
		fmt.Sprintf("Friction rate: %.3f mmAq/m", r.Policy.FrictionRate),
		fmt.Sprintf("Circular diameter D1: %.0f mm", r.Diameter),
		fmt.Sprintf("Standard round D2: %.0f mm (%.2f m/s)", r.RoundedDiam, r.RoundVelocity),
		fmt.Sprintf("Rectangular: %d x %d mm (De %.1f mm, %.2f m/s)", r.Rect.BigMM, r.Rect.SmallMM, r.Rect.De, r.Velocity),
	}
	if !r.Policy.UseFixedSide {
		lines = append(lines, fmt.Sprintf("Theoretical: %.1f x %.1f mm", r.Rect.TheoBig, r.Rect.TheoSmall))
	}
	return lines
}
