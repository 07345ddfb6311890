package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/piwi3910/ductcalc/internal/export"
)

// Gruvbox palette.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleCell   = lipgloss.NewStyle().Foreground(colorFg).Padding(0, 1)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleWarn   = lipgloss.NewStyle().Foreground(colorYellow)
	styleError  = lipgloss.NewStyle().Foreground(colorRed)
	styleOK     = lipgloss.NewStyle().Foreground(colorGreen)
)

// renderTable draws rows under a bold header inside a rounded border.
func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		}).
		String()
}

// renderBox wraps content in a rounded box with an upper-case title.
func renderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Padding(0, 2)
	if title == "" {
		return box.Render(content)
	}
	return box.Render(styleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

// scheduleTable renders the duct schedule of a sized network.
func scheduleTable(rows []export.ScheduleRow) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		size := r.Size()
		if size == "-" && r.Flow > 0 {
			size = styleError.Render("unsized")
		}
		cells = append(cells, []string{
			fmt.Sprintf("%d", r.Index),
			r.From.String(),
			r.To.String(),
			r.Orientation.String(),
			fmt.Sprintf("%.2f", r.Length),
			fmt.Sprintf("%.0f", r.Flow),
			size,
			fmt.Sprintf("%.2f", r.Velocity),
		})
	}
	return renderTable(
		[]string{"#", "From", "To", "Axis", "Length m", "Flow m³/h", "Size mm", "Velocity m/s"},
		cells,
	)
}

// summaryLines formats the network totals. remaining is the inlet flow not
// yet assigned to outlets.
func summaryLines(sum export.Summary, remaining float64) string {
	inlet := styleError.Render("none")
	if sum.HasInlet {
		inlet = fmt.Sprintf("%.0f m³/h", sum.InletFlow)
	}
	largest := sum.LargestDuct
	if largest == "" {
		largest = "-"
	}
	lines := []string{
		fmt.Sprintf("Inlet:         %s", inlet),
		fmt.Sprintf("Outlets:       %d (%.0f m³/h)", sum.Outlets, sum.OutletFlow),
		fmt.Sprintf("Duct runs:     %d", sum.Segments),
		fmt.Sprintf("Total length:  %.2f m", sum.TotalLength),
		fmt.Sprintf("Duct surface:  %.2f m²", sum.TotalSurface),
		fmt.Sprintf("Largest duct:  %s", largest),
		fmt.Sprintf("Max velocity:  %.2f m/s", sum.MaxVelocity),
	}
	if sum.HasInlet && math.Abs(remaining) >= 0.5 {
		lines = append(lines, styleWarn.Render(fmt.Sprintf("Unassigned:    %.0f m³/h", remaining)))
	}
	return strings.Join(lines, "\n")
}
