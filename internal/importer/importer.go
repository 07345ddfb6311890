// Package importer reads terminal schedules from CSV and Excel files and
// duct sketches from DXF drawings. It supports automatic delimiter detection,
// flexible column mapping, and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
// Schedule imports only fill Terminals; DXF imports may fill both.
type ImportResult struct {
	Terminals []model.Terminal
	Segments  []model.Segment
	Errors    []string
	Warnings  []string
}

// Project builds a project from the imported terminals and raw segments.
// The engine snaps and orthogonalizes the geometry when the project is opened.
func (r ImportResult) Project(name string) model.Project {
	p := model.NewProject(name)
	p.Terminals = append(p.Terminals, model.CopyTerminals(r.Terminals)...)
	p.Segments = append(p.Segments, model.CopySegments(r.Segments)...)
	if inlet, ok := p.Inlet(); ok {
		p.InletFlow = inlet.Flow
	}
	return p
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name int
	X    int
	Y    int
	Flow int
	Kind int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name": {"name", "label", "tag", "terminal", "description", "desc", "room"},
	"x":    {"x", "pos x", "x (m)", "x [m]", "easting"},
	"y":    {"y", "pos y", "y (m)", "y [m]", "northing"},
	"flow": {"flow", "airflow", "air flow", "q", "m3/h", "m³/h", "cmh", "flow (m3/h)", "flow (m³/h)"},
	"kind": {"kind", "type", "role", "terminal type"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping Name, X, Y, Flow, Kind and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, X: -1, Y: -1, Flow: -1, Kind: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "name":
					if mapping.Name == -1 {
						mapping.Name = i
					}
				case "x":
					if mapping.X == -1 {
						mapping.X = i
					}
				case "y":
					if mapping.Y == -1 {
						mapping.Y = i
					}
				case "flow":
					if mapping.Flow == -1 {
						mapping.Flow = i
					}
				case "kind":
					if mapping.Kind == -1 {
						mapping.Kind = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, X: 1, Y: 2, Flow: 3, Kind: 4}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseNumber accepts both "1.5" and "1,5".
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return v, nil
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
	return 0, err
}

// parseRow extracts a Terminal from a row using the given column mapping.
// Returns the terminal, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, count int) (model.Terminal, string, string) {
	xStr := getCell(row, mapping.X)
	if xStr == "" {
		return model.Terminal{}, fmt.Sprintf("%s: Missing X value", rowLabel), ""
	}
	x, err := parseNumber(xStr)
	if err != nil {
		return model.Terminal{}, fmt.Sprintf("%s: Invalid X '%s'", rowLabel, xStr), ""
	}

	yStr := getCell(row, mapping.Y)
	if yStr == "" {
		return model.Terminal{}, fmt.Sprintf("%s: Missing Y value", rowLabel), ""
	}
	y, err := parseNumber(yStr)
	if err != nil {
		return model.Terminal{}, fmt.Sprintf("%s: Invalid Y '%s'", rowLabel, yStr), ""
	}

	var flow float64
	if flowStr := getCell(row, mapping.Flow); flowStr != "" {
		flow, err = parseNumber(flowStr)
		if err != nil {
			return model.Terminal{}, fmt.Sprintf("%s: Invalid flow '%s'", rowLabel, flowStr), ""
		}
		if flow < 0 {
			return model.Terminal{}, fmt.Sprintf("%s: Flow must not be negative", rowLabel), ""
		}
	}

	var warning string
	kind := model.Outlet
	if kindStr := getCell(row, mapping.Kind); kindStr != "" {
		k, ok := model.ParseTerminalKind(kindStr)
		if ok {
			kind = k
		} else {
			warning = fmt.Sprintf("%s: Unknown terminal kind '%s', defaulting to Outlet", rowLabel, kindStr)
		}
	}

	t := model.NewTerminal(kind, model.Point{X: x, Y: y}, flow)
	t.Name = getCell(row, mapping.Name)
	if t.Name == "" {
		t.Name = fmt.Sprintf("T%d", count+1)
	}
	return t, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports a terminal schedule from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports a terminal schedule from a CSV reader with a
// known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

// ImportExcel imports a terminal schedule from the first sheet of an
// Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.X == -1 {
			missing = append(missing, "X")
		}
		if mapping.Y == -1 {
			missing = append(missing, "Y")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header still gets skipped when X is not numeric.
		if _, err := parseNumber(strings.TrimSpace(rows[0][1])); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	hasInlet := false
	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		t, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Terminals))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if t.Kind == model.Inlet {
			if hasInlet {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Only one inlet is allowed", rowLabel))
				continue
			}
			hasInlet = true
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.Terminals = append(result.Terminals, t)
	}

	if len(result.Terminals) > 0 && !hasInlet {
		result.Warnings = append(result.Warnings, "No inlet in schedule; place one before sizing")
	}

	return result
}
