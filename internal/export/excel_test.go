package export

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/xuri/excelize/v2"
)

func TestExportExcel_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.xlsx")
	p := buildTestProject()

	if err := ExportExcel(path, p, testEstimate(p)); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	want := []string{SheetSchedule, SheetTerminals, SheetSummary}
	if got := f.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected sheets %v, got %v", want, got)
	}

	rows, err := f.GetRows(SheetSchedule)
	if err != nil {
		t.Fatalf("read schedule: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 rows, got %d", len(rows))
	}
	if rows[1][8] != "1000" || rows[1][9] != "350" || rows[1][10] != "200" {
		t.Errorf("unexpected main run row %v", rows[1])
	}

	terms, err := f.GetRows(SheetTerminals)
	if err != nil {
		t.Fatalf("read terminals: %v", err)
	}
	if len(terms) != 4 || terms[1][1] != "AHU" || terms[1][2] != "Inlet" {
		t.Errorf("unexpected terminal sheet %v", terms)
	}

	summary, err := f.GetRows(SheetSummary)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if summary[9][0] != "Largest duct" || summary[9][1] != "350x200" {
		t.Errorf("unexpected summary row %v", summary[9])
	}
}

func TestExportExcel_EmptyProject(t *testing.T) {
	err := ExportExcel(filepath.Join(t.TempDir(), "empty.xlsx"), model.NewProject("Empty"), model.SheetEstimate{})
	if !errors.Is(err, ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(3.14159); got != 3.14 {
		t.Errorf("expected 3.14, got %v", got)
	}
	if got := round2(2.005001); got != 2.01 {
		t.Errorf("expected 2.01, got %v", got)
	}
}
