package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/ductcalc/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each duct label's QR code.
type LabelInfo struct {
	Project   string  `json:"project"`
	SegmentID string  `json:"id"`
	Index     int     `json:"index"`
	WidthMM   int     `json:"width_mm"`
	HeightMM  int     `json:"height_mm"`
	Length    float64 `json:"length_m"`
	Flow      float64 `json:"flow"`
	FromX     float64 `json:"from_x"`
	FromY     float64 `json:"from_y"`
	ToX       float64 `json:"to_x"`
	ToY       float64 `json:"to_y"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos returns one label per sized duct run, in schedule order.
func CollectLabelInfos(p model.Project) []LabelInfo {
	var labels []LabelInfo
	for _, r := range BuildSchedule(p) {
		if r.Size() == "-" {
			continue
		}
		labels = append(labels, LabelInfo{
			Project:   p.Name,
			SegmentID: r.ID,
			Index:     r.Index,
			WidthMM:   r.WidthMM,
			HeightMM:  r.HeightMM,
			Length:    r.Length,
			Flow:      r.Flow,
			FromX:     r.From.X,
			FromY:     r.From.Y,
			ToX:       r.To.X,
			ToY:       r.To.Y,
		})
	}
	return labels
}

// ExportLabels generates a PDF of QR-coded labels, one per sized duct run.
// Labels are laid out on a standard label sheet format (Avery 5160 /
// 3 columns x 10 rows on US Letter).
func ExportLabels(path string, p model.Project) error {
	if len(p.Segments) == 0 {
		return ErrNothingToExport
	}
	labels := CollectLabelInfos(p)
	if len(labels) == 0 {
		return fmt.Errorf("no sized ducts to label")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, tr, x, y, label); err != nil {
			return fmt.Errorf("render label for %s: %w", label.SegmentID, err)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write labels %s: %w", path, err)
	}
	return nil
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, tr func(string) string, x, y float64, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%d", info.SegmentID, info.Index)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("#%d  %d x %d", info.Index, info.WidthMM, info.HeightMM), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, tr(fmt.Sprintf("L %.2f m | %.0f m³/h", info.Length, info.Flow)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("(%g, %g) - (%g, %g)", info.FromX, info.FromY, info.ToX, info.ToY), "", 1, "L", false, 0, "")

	// Truncate project name if too long
	name := tr(info.Project)
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.SetXY(textX, y+labelPadding+12.5)
	pdf.CellFormat(textW, 3, name, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
