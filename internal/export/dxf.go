package export

import (
	"fmt"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
)

// DXF layer names.
const (
	LayerDucts     = "DUCTS"
	LayerTerminals = "TERMINALS"
	LayerLabels    = "DUCT_LABELS"
)

// Terminal symbol radii in drawing units (meters). The inlet radius stays
// above the default DXF import threshold so a drawing reads back unchanged.
const (
	dxfInletRadius  = 0.5
	dxfOutletRadius = 0.15
	dxfTextHeight   = 0.2
)

// ExportDXF writes the network as a DXF drawing in meters: one LINE per
// duct run, one CIRCLE per terminal and a size label at each run midpoint.
func ExportDXF(path string, p model.Project) error {
	if len(p.Segments) == 0 {
		return ErrNothingToExport
	}

	d := dxf.NewDrawing()
	if err := addLayers(d); err != nil {
		return err
	}

	if err := d.ChangeLayer(LayerDucts); err != nil {
		return fmt.Errorf("select layer %s: %w", LayerDucts, err)
	}
	for _, s := range p.Segments {
		if _, err := d.Line(s.P1.X, s.P1.Y, 0, s.P2.X, s.P2.Y, 0); err != nil {
			return fmt.Errorf("draw segment %s: %w", s.ID, err)
		}
	}

	if err := d.ChangeLayer(LayerTerminals); err != nil {
		return fmt.Errorf("select layer %s: %w", LayerTerminals, err)
	}
	for _, t := range p.Terminals {
		r := dxfOutletRadius
		if t.Kind == model.Inlet {
			r = dxfInletRadius
		}
		if _, err := d.Circle(t.Position.X, t.Position.Y, 0, r); err != nil {
			return fmt.Errorf("draw terminal %s: %w", t.ID, err)
		}
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return fmt.Errorf("select layer %s: %w", LayerLabels, err)
	}
	for _, s := range p.Segments {
		if s.WidthMM <= 0 || s.HeightMM <= 0 {
			continue
		}
		lo, hi, fixed := s.Span()
		mx, my := (lo+hi)/2, fixed
		if s.Orientation == model.Vertical {
			mx, my = fixed, (lo+hi)/2
		}
		text := fmt.Sprintf("%dx%d", s.WidthMM, s.HeightMM)
		if _, err := d.Text(text, mx, my+dxfTextHeight/2, 0, dxfTextHeight); err != nil {
			return fmt.Errorf("label segment %s: %w", s.ID, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("write dxf %s: %w", path, err)
	}
	return nil
}

func addLayers(d *drawing.Drawing) error {
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerDucts, color.Blue},
		{LayerTerminals, color.Red},
		{LayerLabels, color.Green},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}
	return nil
}
