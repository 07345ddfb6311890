package model

import "math"

// SheetEstimate holds the results of a galvanized sheet purchasing calculation.
type SheetEstimate struct {
	TotalSurface      float64 `json:"total_surface"`       // Duct surface of all sized segments (m²)
	TotalLength       float64 `json:"total_length"`        // Run length of all segments (m)
	UnsizedSegments   int     `json:"unsized_segments"`    // Segments without a size, excluded from the surface
	SheetArea         float64 `json:"sheet_area"`          // Area of one sheet (m²)
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Minimum sheets (ceiling of exact)
	SheetsWithWaste   int     `json:"sheets_with_waste"`   // Recommended sheets including waste factor
	WastePercent      float64 `json:"waste_percent"`
	EstimatedCost     float64 `json:"estimated_cost"`
	PricePerSheet     float64 `json:"price_per_sheet"`
}

// CalculateSheetEstimate computes how many sheets of the given size (mm) are
// needed to fabricate the network, with a seam and offcut waste factor.
func CalculateSheetEstimate(segments []Segment, sheetWidthMM, sheetHeightMM, wastePercent, pricePerSheet float64) SheetEstimate {
	var surface, length float64
	unsized := 0
	for _, s := range segments {
		length += s.Length()
		a := s.SurfaceArea()
		if a == 0 {
			unsized++
			continue
		}
		surface += a
	}

	sheetArea := sheetWidthMM * sheetHeightMM / 1e6
	if sheetArea <= 0 {
		return SheetEstimate{
			TotalSurface:    surface,
			TotalLength:     length,
			UnsizedSegments: unsized,
			WastePercent:    wastePercent,
		}
	}

	exact := surface / sheetArea
	minSheets := int(math.Ceil(exact))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	withWaste := int(math.Ceil(exact * wasteFactor))
	if withWaste < minSheets {
		withWaste = minSheets
	}

	return SheetEstimate{
		TotalSurface:      surface,
		TotalLength:       length,
		UnsizedSegments:   unsized,
		SheetArea:         sheetArea,
		SheetsNeededExact: exact,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   withWaste,
		WastePercent:      wastePercent,
		EstimatedCost:     float64(withWaste) * pricePerSheet,
		PricePerSheet:     pricePerSheet,
	}
}
