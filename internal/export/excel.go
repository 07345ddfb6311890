package export

import (
	"fmt"
	"math"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names written by ExportExcel.
const (
	SheetSchedule  = "Schedule"
	SheetTerminals = "Terminals"
	SheetSummary   = "Summary"
)

var scheduleHeader = []interface{}{
	"#", "ID", "From X", "From Y", "To X", "To Y", "Axis",
	"Length (m)", "Flow (m³/h)", "Width (mm)", "Height (mm)", "Velocity (m/s)", "Surface (m²)",
}

// ExportExcel writes the duct schedule, the terminal list and the summary
// to an .xlsx workbook.
func ExportExcel(path string, p model.Project, est model.SheetEstimate) error {
	if len(p.Segments) == 0 {
		return ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetSchedule); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetTerminals, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeScheduleSheet(f, p, bold); err != nil {
		return err
	}
	if err := writeTerminalSheet(f, p, bold); err != nil {
		return err
	}
	if err := writeSummarySheet(f, Summarize(p), est, bold); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write workbook %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeScheduleSheet(f *excelize.File, p model.Project, header int) error {
	if err := writeRow(f, SheetSchedule, 1, scheduleHeader); err != nil {
		return err
	}
	for i, r := range BuildSchedule(p) {
		values := []interface{}{
			r.Index, r.ID, r.From.X, r.From.Y, r.To.X, r.To.Y, r.Orientation.String(),
			round2(r.Length), r.Flow, r.WidthMM, r.HeightMM, round2(r.Velocity), round2(r.Surface),
		}
		if err := writeRow(f, SheetSchedule, i+2, values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSchedule, "A", "M", 13); err != nil {
		return err
	}
	return styleHeader(f, SheetSchedule, len(scheduleHeader), header)
}

func writeTerminalSheet(f *excelize.File, p model.Project, header int) error {
	cols := []interface{}{"ID", "Name", "Kind", "X", "Y", "Flow (m³/h)"}
	if err := writeRow(f, SheetTerminals, 1, cols); err != nil {
		return err
	}
	for i, t := range p.Terminals {
		values := []interface{}{t.ID, t.Name, t.Kind.String(), t.Position.X, t.Position.Y, t.Flow}
		if err := writeRow(f, SheetTerminals, i+2, values); err != nil {
			return err
		}
	}
	return styleHeader(f, SheetTerminals, len(cols), header)
}

func writeSummarySheet(f *excelize.File, sum Summary, est model.SheetEstimate, header int) error {
	rows := [][]interface{}{
		{"Item", "Value"},
		{"Project", sum.Name},
		{"Outlets", sum.Outlets},
		{"Inlet flow (m³/h)", sum.InletFlow},
		{"Outlet flow (m³/h)", sum.OutletFlow},
		{"Duct runs", sum.Segments},
		{"Unsized runs", sum.Unsized},
		{"Total length (m)", round2(sum.TotalLength)},
		{"Duct surface (m²)", round2(sum.TotalSurface)},
		{"Largest duct", sum.LargestDuct},
		{"Max velocity (m/s)", round2(sum.MaxVelocity)},
		{"Sheets with waste", est.SheetsWithWaste},
		{"Estimated cost", round2(est.EstimatedCost)},
	}
	for i, r := range rows {
		if err := writeRow(f, SheetSummary, i+1, r); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SheetSummary, "A", "A", 22); err != nil {
		return err
	}
	return styleHeader(f, SheetSummary, 2, header)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
