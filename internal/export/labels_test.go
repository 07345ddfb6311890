package export

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
)

func TestCollectLabelInfos_SkipsUnsized(t *testing.T) {
	labels := CollectLabelInfos(buildTestProject())

	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %d", len(labels))
	}
	first := labels[0]
	if first.Index != 1 || first.WidthMM != 350 || first.HeightMM != 200 {
		t.Errorf("unexpected first label %+v", first)
	}
	if first.Project != "Office Wing" {
		t.Errorf("expected project name on label, got %q", first.Project)
	}
	if first.ToX != 2 || first.Length != 2 {
		t.Errorf("expected run (0,0)-(2,0), got %+v", first)
	}
}

func TestLabelInfo_JSONKeys(t *testing.T) {
	data, err := json.Marshal(CollectLabelInfos(buildTestProject())[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "width_mm", "height_mm", "length_m", "flow"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("expected key %q in QR payload", key)
		}
	}
}

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	if err := ExportLabels(path, buildTestProject()); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertNonTrivialFile(t, path)
}

func TestExportLabels_NothingSized(t *testing.T) {
	p := buildTestProject()
	for i := range p.Segments {
		p.Segments[i].WidthMM, p.Segments[i].HeightMM = 0, 0
	}

	if err := ExportLabels(filepath.Join(t.TempDir(), "none.pdf"), p); err == nil {
		t.Fatal("expected error when no duct is sized")
	}
	err := ExportLabels(filepath.Join(t.TempDir(), "empty.pdf"), model.NewProject("Empty"))
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expected ErrNothingToExport, got %v", err)
	}
}

func TestExportLabels_ManyDucts(t *testing.T) {
	p := buildTestProject()
	base := p.Segments[1]
	for i := 0; i < 40; i++ {
		s := base
		s.ID = base.ID + string(rune('a'+i%26))
		s.P1.X, s.P2.X = float64(10+i), float64(11+i)
		p.Segments = append(p.Segments, s)
	}

	if err := ExportLabels(filepath.Join(t.TempDir(), "many.pdf"), p); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
}
