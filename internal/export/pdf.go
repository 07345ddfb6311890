package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/ductcalc/internal/model"
)

// ErrNothingToExport is returned when a project has no duct segments.
var ErrNothingToExport = errors.New("no duct segments to export")

// flowColor represents an RGB color for a duct run.
type flowColor struct {
	R, G, B int
}

// flowColors shade runs from the heaviest flow (first) to the lightest.
var flowColors = []flowColor{
	{R: 183, G: 28, B: 28},  // red
	{R: 230, G: 81, B: 0},   // orange
	{R: 249, G: 168, B: 37}, // amber
	{R: 56, G: 142, B: 60},  // green
	{R: 2, G: 136, B: 209},  // blue
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	rowHeight    = 6.0
)

// ExportPDF writes a report with the network plan, the duct schedule and a
// summary page including the sheet-metal estimate.
func ExportPDF(path string, p model.Project, est model.SheetEstimate) error {
	if len(p.Segments) == 0 {
		return ErrNothingToExport
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	renderPlanPage(pdf, tr, p)

	renderSchedulePages(pdf, tr, BuildSchedule(p))

	pdf.AddPage()
	renderSummaryPage(pdf, tr, Summarize(p), est)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

// planBounds returns the bounding box of every terminal and segment.
func planBounds(p model.Project) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(pt model.Point) {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	for _, s := range p.Segments {
		grow(s.P1)
		grow(s.P2)
	}
	for _, t := range p.Terminals {
		grow(t.Position)
	}
	return minX, minY, maxX, maxY
}

// planTransform maps plan meters to page millimeters with Y pointing up.
type planTransform struct {
	scale      float64
	minX, maxY float64
	offX, offY float64
}

func (pt planTransform) apply(p model.Point) (float64, float64) {
	return pt.offX + (p.X-pt.minX)*pt.scale, pt.offY + (pt.maxY-p.Y)*pt.scale
}

func fitPlan(p model.Project, drawW, drawH float64) planTransform {
	minX, minY, maxX, maxY := planBounds(p)
	w := math.Max(maxX-minX, 1)
	h := math.Max(maxY-minY, 1)
	scale := math.Min(drawW/w, drawH/h)
	return planTransform{
		scale: scale,
		minX:  minX,
		maxY:  maxY,
		offX:  marginLeft + (drawW-w*scale)/2,
		offY:  drawAreaTop + (drawH-h*scale)/2,
	}
}

// renderPlanPage draws the network plan on the current page.
func renderPlanPage(pdf *fpdf.Fpdf, tr func(string) string, p model.Project) {
	sum := Summarize(p)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Duct Network: %s", p.Name)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, tr(title), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Outlets: %d | Inlet: %.0f m³/h | Runs: %d | Length: %.1f m | Surface: %.2f m²",
		sum.Outlets, sum.InletFlow, sum.Segments, sum.TotalLength, sum.TotalSurface)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, tr(stats), "", 0, "L", false, 0, "")

	drawW := pageWidth - marginLeft - marginRight
	drawH := pageHeight - drawAreaTop - marginBottom - statsHeight
	xf := fitPlan(p, drawW, drawH)

	maxFlow := 0.0
	for _, s := range p.Segments {
		maxFlow = math.Max(maxFlow, s.Flow)
	}

	for _, s := range p.Segments {
		col := colorForFlow(s.Flow, maxFlow)
		x1, y1 := xf.apply(s.P1)
		x2, y2 := xf.apply(s.P2)

		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(lineWidthFor(s.WidthMM))
		pdf.Line(x1, y1, x2, y2)

		if s.Label == "" || math.Hypot(x2-x1, y2-y1) < 18 {
			continue
		}
		pdf.SetFont("Helvetica", "", 6)
		pdf.SetTextColor(40, 40, 40)
		label := tr(s.Label)
		lw := pdf.GetStringWidth(label)
		mx, my := (x1+x2)/2, (y1+y2)/2
		if s.Orientation == model.Vertical {
			pdf.TransformBegin()
			pdf.TransformRotate(90, mx-1.5, my)
			pdf.SetXY(mx-1.5-lw/2, my-3.5)
			pdf.CellFormat(lw, 3, label, "", 0, "C", false, 0, "")
			pdf.TransformEnd()
		} else {
			pdf.SetXY(mx-lw/2, my-4)
			pdf.CellFormat(lw, 3, label, "", 0, "C", false, 0, "")
		}
	}

	for _, t := range p.Terminals {
		x, y := xf.apply(t.Position)
		pdf.SetLineWidth(0.3)
		pdf.SetDrawColor(30, 30, 30)
		if t.Kind == model.Inlet {
			pdf.SetFillColor(183, 28, 28)
			pdf.Rect(x-2, y-2, 4, 4, "FD")
		} else {
			pdf.SetFillColor(2, 136, 209)
			pdf.Circle(x, y, 1.5, "FD")
		}
		name := t.Name
		if name == "" {
			name = t.Kind.String()
		}
		pdf.SetFont("Helvetica", "", 6)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(x+2.5, y-1.5)
		pdf.CellFormat(pdf.GetStringWidth(tr(name))+1, 3, tr(name), "", 0, "L", false, 0, "")
	}

	drawScaleBar(pdf, xf.scale, pageHeight-marginBottom-statsHeight+4)
	pdf.SetTextColor(0, 0, 0)
}

// drawScaleBar draws a bar of a round number of meters under the plan.
func drawScaleBar(pdf *fpdf.Fpdf, scale, y float64) {
	meters := 1.0
	for _, m := range []float64{1, 2, 5, 10, 20, 50, 100} {
		if m*scale <= 60 {
			meters = m
		}
	}
	w := meters * scale
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.4)
	pdf.Line(marginLeft, y, marginLeft+w, y)
	pdf.Line(marginLeft, y-1, marginLeft, y+1)
	pdf.Line(marginLeft+w, y-1, marginLeft+w, y+1)
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(marginLeft+w+2, y-2)
	pdf.CellFormat(20, 4, fmt.Sprintf("%g m", meters), "", 0, "L", false, 0, "")
}

// colorForFlow buckets a flow relative to the largest flow in the plan.
func colorForFlow(flow, maxFlow float64) flowColor {
	if maxFlow <= 0 || flow <= 0 {
		return flowColor{R: 150, G: 150, B: 150}
	}
	idx := int((1 - flow/maxFlow) * float64(len(flowColors)))
	if idx >= len(flowColors) {
		idx = len(flowColors) - 1
	}
	return flowColors[idx]
}

// lineWidthFor scales the stroke with the duct width.
func lineWidthFor(widthMM int) float64 {
	switch {
	case widthMM <= 0:
		return 0.3
	case widthMM >= 800:
		return 1.6
	default:
		return 0.3 + float64(widthMM)/800*1.3
	}
}

var scheduleCols = []struct {
	header string
	width  float64
}{
	{"#", 10}, {"ID", 22}, {"From", 32}, {"To", 32}, {"Axis", 22},
	{"Length (m)", 24}, {"Flow (m³/h)", 26}, {"Size (mm)", 26},
	{"Velocity (m/s)", 28}, {"Surface (m²)", 25},
}

func scheduleCells(r ScheduleRow) []string {
	return []string{
		fmt.Sprintf("%d", r.Index),
		r.ID,
		r.From.String(),
		r.To.String(),
		r.Orientation.String(),
		fmt.Sprintf("%.2f", r.Length),
		fmt.Sprintf("%.0f", r.Flow),
		r.Size(),
		fmt.Sprintf("%.2f", r.Velocity),
		fmt.Sprintf("%.2f", r.Surface),
	}
}

// renderSchedulePages draws the duct schedule table over as many pages as needed.
func renderSchedulePages(pdf *fpdf.Fpdf, tr func(string) string, rows []ScheduleRow) {
	perPage := int((pageHeight - marginTop - marginBottom - headerHeight - rowHeight) / rowHeight)
	for start := 0; start < len(rows); start += perPage {
		end := start + perPage
		if end > len(rows) {
			end = len(rows)
		}
		pdf.AddPage()

		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetXY(marginLeft, marginTop)
		pdf.CellFormat(200, headerHeight, "Duct Schedule", "", 0, "L", false, 0, "")

		y := marginTop + headerHeight
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		x := marginLeft
		for _, c := range scheduleCols {
			pdf.SetXY(x, y)
			pdf.CellFormat(c.width, rowHeight, tr(c.header), "1", 0, "C", true, 0, "")
			x += c.width
		}
		y += rowHeight

		pdf.SetFont("Helvetica", "", 8)
		for i, r := range rows[start:end] {
			if i%2 == 0 {
				pdf.SetFillColor(245, 245, 245)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			if r.Size() == "-" {
				pdf.SetTextColor(180, 0, 0)
			}
			x = marginLeft
			for j, cell := range scheduleCells(r) {
				pdf.SetXY(x, y)
				pdf.CellFormat(scheduleCols[j].width, rowHeight, cell, "1", 0, "C", true, 0, "")
				x += scheduleCols[j].width
			}
			pdf.SetTextColor(0, 0, 0)
			y += rowHeight
		}
	}
}

// renderSummaryPage draws network totals and the sheet estimate.
func renderSummaryPage(pdf *fpdf.Fpdf, tr func(string) string, sum Summary, est model.SheetEstimate) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Network Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	section := func(title string, items [][2]string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(100, 7, title, "", 0, "L", false, 0, "")
		y += 9

		pdf.SetFont("Helvetica", "", 10)
		for _, item := range items {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(60, 6, tr(item[0]+":"), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(60, 6, tr(item[1]), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			y += 7
		}
		y += 5
	}

	largest := sum.LargestDuct
	if largest == "" {
		largest = "-"
	}
	section("Network", [][2]string{
		{"Outlets", fmt.Sprintf("%d", sum.Outlets)},
		{"Inlet flow", fmt.Sprintf("%.0f m³/h", sum.InletFlow)},
		{"Outlet flow", fmt.Sprintf("%.0f m³/h", sum.OutletFlow)},
		{"Duct runs", fmt.Sprintf("%d", sum.Segments)},
		{"Total length", fmt.Sprintf("%.2f m", sum.TotalLength)},
		{"Largest duct", largest},
		{"Max velocity", fmt.Sprintf("%.2f m/s", sum.MaxVelocity)},
	})

	items := [][2]string{
		{"Duct surface", fmt.Sprintf("%.2f m²", est.TotalSurface)},
		{"Sheets (exact)", fmt.Sprintf("%.2f", est.SheetsNeededExact)},
		{"Sheets with waste", fmt.Sprintf("%d (%.0f%%)", est.SheetsWithWaste, est.WastePercent)},
	}
	if est.PricePerSheet > 0 {
		items = append(items, [2]string{"Estimated cost", fmt.Sprintf("%.2f", est.EstimatedCost)})
	}
	section("Sheet Metal", items)

	if sum.Unsized > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, fmt.Sprintf("WARNING: %d runs carry no flow and are unsized", sum.Unsized), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by ductcalc", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}
