// Package sizing converts airflow into rectangular duct sizes using the
// equal-friction method: flow and friction rate give an equivalent circular
// diameter, which is then matched by a standards-rounded rectangle.
package sizing

import (
	"fmt"
	"math"

	"github.com/piwi3910/ductcalc/internal/model"
)

const (
	// frictionCoefficient is the empirical constant of the circular duct formula.
	frictionCoefficient = 3.295e-10

	// maxSideMM bounds the fixed-side search.
	maxSideMM = 10000.0

	// fixedSideTolerance is the De shortfall accepted by the fixed-side search (mm).
	fixedSideTolerance = 0.1
)

// Direction selects the rounding direction of RoundStep.
type Direction int

const (
	Up Direction = iota
	Down
)

// Rect is a selected rectangular duct size.
type Rect struct {
	BigMM     int
	SmallMM   int
	De        float64 // Achieved equivalent diameter (mm)
	TheoBig   float64 // Theoretical long side before rounding (mm), aspect mode only
	TheoSmall float64 // Theoretical short side before rounding (mm), aspect mode only
}

// EquivalentCircularDiameter returns the round duct diameter in whole mm
// that carries flow (m³/h) at the given friction rate (mmAq/m).
// A non-positive flow is a valid unsized stub and yields 0.
func EquivalentCircularDiameter(flow, frictionRate float64) (float64, error) {
	if flow <= 0 {
		return 0, nil
	}
	if frictionRate <= 0 {
		return 0, fmt.Errorf("%g mmAq/m: %w", frictionRate, model.ErrInvalidFrictionRate)
	}
	d := math.Pow(frictionCoefficient*math.Pow(flow, 1.9)/frictionRate, 0.199) * 1000
	return math.Round(d), nil
}

// RoundStep rounds x to a multiple of step in the given direction.
func RoundStep(x, step float64, dir Direction) float64 {
	if step <= 0 {
		step = model.DefaultStepMM
	}
	if dir == Down {
		return math.Floor(x/step) * step
	}
	return math.Ceil(x/step) * step
}

// RectEquivalentDiameter is the ASHRAE circular equivalent of an a x b duct.
func RectEquivalentDiameter(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	return 1.30 * math.Pow(a*b, 0.625) / math.Pow(a+b, 0.25)
}

// SizeFromAspectRatio picks a standard rectangle for the target diameter with
// sides in the ratio b/a = ratio.
//
// Two candidates are evaluated: the short side rounded up with the long side
// rounded down, and both sides rounded up. The first is used whenever it
// reaches the target, even if the second would be a closer fit.
func SizeFromAspectRatio(target, ratio, step float64) (Rect, error) {
	if ratio <= 0 {
		return Rect{}, fmt.Errorf("%g: %w", ratio, model.ErrInvalidAspectRatio)
	}
	if target <= 0 {
		return Rect{}, nil
	}
	if step <= 0 {
		step = model.DefaultStepMM
	}

	a := target * math.Pow(1+ratio, 0.25) / (1.30 * math.Pow(ratio, 0.625))
	b := ratio * a
	theoBig, theoSmall := math.Max(a, b), math.Min(a, b)

	smallUp := RoundStep(theoSmall, step, Up)
	bigDown := math.Max(RoundStep(theoBig, step, Down), step)
	if de := RectEquivalentDiameter(smallUp, bigDown); de >= target {
		return Rect{
			BigMM:     int(math.Round(math.Max(smallUp, bigDown))),
			SmallMM:   int(math.Round(math.Min(smallUp, bigDown))),
			De:        de,
			TheoBig:   theoBig,
			TheoSmall: theoSmall,
		}, nil
	}

	aUp := RoundStep(a, step, Up)
	bUp := RoundStep(b, step, Up)
	return Rect{
		BigMM:     int(math.Round(math.Max(aUp, bUp))),
		SmallMM:   int(math.Round(math.Min(aUp, bUp))),
		De:        RectEquivalentDiameter(aUp, bUp),
		TheoBig:   theoBig,
		TheoSmall: theoSmall,
	}, nil
}

// SizeWithFixedSide keeps one side at fixed (rounded up to the step) and grows
// the other side in step increments until the target diameter is met.
// The search stops at maxSideMM and returns that bounded size.
func SizeWithFixedSide(target, fixed, step float64) (Rect, error) {
	if fixed <= 0 {
		return Rect{}, fmt.Errorf("%g mm: %w", fixed, model.ErrInvalidFixedSide)
	}
	if target <= 0 {
		return Rect{}, nil
	}
	if step <= 0 {
		step = model.DefaultStepMM
	}

	side := RoundStep(fixed, step, Up)
	other := step
	de := RectEquivalentDiameter(side, other)
	for de < target-fixedSideTolerance && other < maxSideMM {
		other += step
		de = RectEquivalentDiameter(side, other)
	}

	return Rect{
		BigMM:   int(math.Round(math.Max(side, other))),
		SmallMM: int(math.Round(math.Min(side, other))),
		De:      de,
	}, nil
}

// Size runs the full sizing chain for one flow under a policy.
func Size(flow float64, p model.SizingPolicy) (Rect, error) {
	d, err := EquivalentCircularDiameter(flow, p.FrictionRate)
	if err != nil {
		return Rect{}, err
	}
	if p.UseFixedSide {
		return SizeWithFixedSide(d, p.FixedSideMM, p.Step())
	}
	return SizeFromAspectRatio(d, p.AspectRatio, p.Step())
}

// PerformSizing returns the width, height and label of a duct carrying flow.
// Sizing never fails: any error degrades to an unsized duct labelled with
// its flow only.
func PerformSizing(flow float64, p model.SizingPolicy) (width, height int, label string) {
	if flow <= 0 {
		return 0, 0, FlowLabel(flow)
	}
	r, err := Size(flow, p)
	if err != nil || r.BigMM <= 0 || r.SmallMM <= 0 {
		return 0, 0, FlowLabel(flow)
	}
	return r.BigMM, r.SmallMM, fmt.Sprintf("%dx%d %s", r.BigMM, r.SmallMM, FlowLabel(flow))
}

// FlowLabel formats a flow as whole m³/h.
func FlowLabel(flow float64) string {
	return fmt.Sprintf("%dm³/h", int(flow))
}
