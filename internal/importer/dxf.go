package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// DXFOptions controls how drawing entities become network elements.
type DXFOptions struct {
	// Scale converts drawing units to meters (0.001 for drawings in mm).
	Scale float64
	// InletRadius is the smallest CIRCLE radius, in meters, read as the inlet.
	InletRadius float64
}

// DefaultDXFOptions returns options for a drawing in meters.
func DefaultDXFOptions() DXFOptions {
	return DXFOptions{Scale: 1, InletRadius: model.DefaultAppConfig().InletRadius}
}

// ImportDXF imports a duct sketch from a DXF file. LINE and LWPOLYLINE
// entities become raw duct segments, CIRCLE entities become terminals.
// The largest circle at or above InletRadius becomes the inlet; every other
// circle is an outlet with zero flow.
func ImportDXF(path string, opts DXFOptions) ImportResult {
	result := ImportResult{}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var circles []*entity.Circle
	skipped := 0
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.Line:
			p1 := scalePoint(e.Start, opts.Scale)
			p2 := scalePoint(e.End, opts.Scale)
			if p1 == p2 {
				result.Warnings = append(result.Warnings, "Skipped zero-length LINE")
				continue
			}
			result.Segments = append(result.Segments, rawSegment(p1, p2))

		case *entity.LwPolyline:
			segs := lwPolylineToSegments(e, opts.Scale)
			if len(segs) == 0 {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 2 vertices")
				continue
			}
			result.Segments = append(result.Segments, segs...)

		case *entity.Circle:
			circles = append(circles, e)

		default:
			skipped++
		}
	}

	if skipped > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Skipped %d unsupported entities", skipped))
	}

	result.Terminals = circlesToTerminals(circles, opts, &result.Warnings)

	if len(result.Segments) == 0 && len(result.Terminals) == 0 {
		result.Errors = append(result.Errors, "No ducts or terminals found in DXF file")
		return result
	}
	if opts.Scale == 1 && drawingExtent(result) > 1000 {
		result.Warnings = append(result.Warnings,
			"Drawing extends beyond 1000 m; use scale 0.001 for drawings in mm")
	}
	return result
}

// rawSegment keeps the drawn coordinates; only the dominant axis is decided.
func rawSegment(p1, p2 model.Point) model.Segment {
	s := model.NewSegment(p1, p2)
	s.Orientation = model.ClassifyOrientation(p1, p2)
	return s
}

func scalePoint(v []float64, scale float64) model.Point {
	if len(v) < 2 {
		return model.Point{}
	}
	return model.Point{X: v[0] * scale, Y: v[1] * scale}
}

// lwPolylineToSegments splits a polyline into one segment per edge.
// Bulges are ignored; ducts are straight runs.
func lwPolylineToSegments(lw *entity.LwPolyline, scale float64) []model.Segment {
	if len(lw.Vertices) < 2 {
		return nil
	}

	pts := make([]model.Point, 0, len(lw.Vertices)+1)
	for _, v := range lw.Vertices {
		pts = append(pts, scalePoint(v, scale))
	}
	if lw.Closed && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}

	var segs []model.Segment
	for i := 0; i+1 < len(pts); i++ {
		if pts[i] == pts[i+1] {
			continue
		}
		segs = append(segs, rawSegment(pts[i], pts[i+1]))
	}
	return segs
}

// circlesToTerminals converts circles to terminals in drawing order.
func circlesToTerminals(circles []*entity.Circle, opts DXFOptions, warnings *[]string) []model.Terminal {
	inletIdx := -1
	for i, c := range circles {
		r := c.Radius * opts.Scale
		if opts.InletRadius <= 0 || r < opts.InletRadius {
			continue
		}
		if inletIdx == -1 || r > circles[inletIdx].Radius*opts.Scale {
			inletIdx = i
		}
	}

	terminals := make([]model.Terminal, 0, len(circles))
	outlets := 0
	for i, c := range circles {
		kind := model.Outlet
		if i == inletIdx {
			kind = model.Inlet
		}
		t := model.NewTerminal(kind, scalePoint(c.Center, opts.Scale), 0)
		if kind == model.Inlet {
			t.Name = "Inlet"
		} else {
			outlets++
			t.Name = fmt.Sprintf("O%d", outlets)
		}
		terminals = append(terminals, t)
	}

	large := 0
	for i, c := range circles {
		if i != inletIdx && opts.InletRadius > 0 && c.Radius*opts.Scale >= opts.InletRadius {
			large++
		}
	}
	if large > 0 {
		*warnings = append(*warnings,
			fmt.Sprintf("%d more circles reach the inlet radius; imported as outlets", large))
	}
	if outlets > 0 {
		*warnings = append(*warnings, "Outlet flows are not stored in DXF; assign them before sizing")
	}

	sort.SliceStable(terminals, func(i, j int) bool {
		return terminals[i].Kind == model.Inlet && terminals[j].Kind != model.Inlet
	})
	return terminals
}

// drawingExtent returns the largest absolute coordinate of the imported
// geometry, used to warn about drawings that are probably in millimeters.
func drawingExtent(r ImportResult) float64 {
	var m float64
	grow := func(p model.Point) {
		m = math.Max(m, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	for _, t := range r.Terminals {
		grow(t.Position)
	}
	for _, s := range r.Segments {
		grow(s.P1)
		grow(s.P2)
	}
	return m
}
