// Package export renders a sized duct network to PDF reports, fabrication
// labels, Excel schedules and DXF drawings.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
)

// ScheduleRow is one line of the duct schedule.
type ScheduleRow struct {
	Index       int
	ID          string
	From        model.Point
	To          model.Point
	Orientation model.Orientation
	Length      float64 // m
	Flow        float64 // m³/h
	WidthMM     int
	HeightMM    int
	Velocity    float64 // m/s
	Surface     float64 // m²
	Label       string
}

// Size returns "WxH" or "-" for an unsized run.
func (r ScheduleRow) Size() string {
	if r.WidthMM <= 0 || r.HeightMM <= 0 {
		return "-"
	}
	return fmt.Sprintf("%dx%d", r.WidthMM, r.HeightMM)
}

// BuildSchedule lists the segments largest flow first, then by position.
func BuildSchedule(p model.Project) []ScheduleRow {
	rows := make([]ScheduleRow, 0, len(p.Segments))
	for _, s := range p.Segments {
		rows = append(rows, ScheduleRow{
			ID:          s.ID,
			From:        s.P1,
			To:          s.P2,
			Orientation: s.Orientation,
			Length:      s.Length(),
			Flow:        s.Flow,
			WidthMM:     s.WidthMM,
			HeightMM:    s.HeightMM,
			Velocity:    sizing.Velocity(s.Flow, s.WidthMM, s.HeightMM),
			Surface:     sizing.SheetArea(s.WidthMM, s.HeightMM, s.Length()),
			Label:       s.Label,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Flow != rows[j].Flow {
			return rows[i].Flow > rows[j].Flow
		}
		if rows[i].From.X != rows[j].From.X {
			return rows[i].From.X < rows[j].From.X
		}
		return rows[i].From.Y < rows[j].From.Y
	})
	for i := range rows {
		rows[i].Index = i + 1
	}
	return rows
}

// Summary holds the network totals shown at the end of every report.
type Summary struct {
	Name         string
	Terminals    int
	Outlets      int
	HasInlet     bool
	InletFlow    float64
	OutletFlow   float64
	Segments     int
	Unsized      int
	TotalLength  float64
	TotalSurface float64
	LargestDuct  string
	MaxVelocity  float64
}

// Summarize totals a project's schedule.
func Summarize(p model.Project) Summary {
	sum := Summary{
		Name:       p.Name,
		Terminals:  len(p.Terminals),
		InletFlow:  p.InletFlow,
		OutletFlow: p.OutletFlow(),
		Segments:   len(p.Segments),
	}
	if inlet, ok := p.Inlet(); ok {
		sum.HasInlet = true
		if inlet.Flow > 0 {
			sum.InletFlow = inlet.Flow
		}
	}
	for _, t := range p.Terminals {
		if t.Kind == model.Outlet {
			sum.Outlets++
		}
	}

	largest := 0
	for _, r := range BuildSchedule(p) {
		sum.TotalLength += r.Length
		sum.TotalSurface += r.Surface
		sum.MaxVelocity = math.Max(sum.MaxVelocity, r.Velocity)
		if r.Size() == "-" {
			sum.Unsized++
			continue
		}
		if area := r.WidthMM * r.HeightMM; area > largest {
			largest = area
			sum.LargestDuct = r.Size()
		}
	}
	return sum
}
