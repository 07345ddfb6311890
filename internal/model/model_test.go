package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestKeyOfRoundsToPitch(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want GridKey
	}{
		{"origin", Point{0, 0}, GridKey{0, 0}},
		{"exact", Point{1.5, -2}, GridKey{3, -4}},
		{"drift", Point{1.4999999, 2.0000001}, GridKey{3, 4}},
		{"round half away", Point{0.25, -0.25}, GridKey{1, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyOf(tt.p, 0.5); got != tt.want {
				t.Errorf("KeyOf(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestGridKeyPointRoundTrip(t *testing.T) {
	k := GridKey{I: 7, J: -3}
	p := k.Point(0.5)
	if p.X != 3.5 || p.Y != -1.5 {
		t.Errorf("unexpected point %v", p)
	}
	if KeyOf(p, 0.5) != k {
		t.Errorf("round trip lost key")
	}
}

func TestParseTerminalKind(t *testing.T) {
	for _, s := range []string{"inlet", "Inlet", " IN ", "supply"} {
		k, ok := ParseTerminalKind(s)
		if !ok || k != Inlet {
			t.Errorf("ParseTerminalKind(%q) = %v, %v", s, k, ok)
		}
	}
	for _, s := range []string{"outlet", "", "diffuser"} {
		k, ok := ParseTerminalKind(s)
		if !ok || k != Outlet {
			t.Errorf("ParseTerminalKind(%q) = %v, %v", s, k, ok)
		}
	}
	if _, ok := ParseTerminalKind("exhaust"); ok {
		t.Error("expected unknown kind to be rejected")
	}
}

func TestTerminalKindJSON(t *testing.T) {
	term := NewTerminal(Inlet, Point{1, 2}, 900)
	data, err := json.Marshal(term)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Terminal
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != Inlet || got.ID != term.ID {
		t.Errorf("got %+v, want %+v", got, term)
	}
}

func TestClassifyOrientation(t *testing.T) {
	if ClassifyOrientation(Point{0, 0}, Point{3, 1}) != Horizontal {
		t.Error("expected horizontal for dominant dx")
	}
	if ClassifyOrientation(Point{0, 0}, Point{1, -3}) != Vertical {
		t.Error("expected vertical for dominant dy")
	}
	if ClassifyOrientation(Point{0, 0}, Point{2, 2}) != Horizontal {
		t.Error("ties resolve to horizontal")
	}
}

func TestSegmentGeometry(t *testing.T) {
	s := NewSegment(Point{4, 1}, Point{0, 1})
	if s.Orientation != Horizontal {
		t.Fatalf("expected horizontal, got %v", s.Orientation)
	}
	if !s.IsOrthogonal() {
		t.Error("expected orthogonal segment")
	}
	if s.Length() != 4 {
		t.Errorf("expected length 4, got %f", s.Length())
	}
	lo, hi, fixed := s.Span()
	if lo != 0 || hi != 4 || fixed != 1 {
		t.Errorf("unexpected span %f %f %f", lo, hi, fixed)
	}

	v := NewSegment(Point{2, 5}, Point{2, 3})
	if v.Orientation != Vertical {
		t.Errorf("expected vertical, got %v", v.Orientation)
	}

	bad := Segment{P1: Point{0, 0}, P2: Point{1, 1}, Orientation: Horizontal}
	if bad.IsOrthogonal() {
		t.Error("diagonal segment must not be orthogonal")
	}
}

func TestSegmentSurfaceArea(t *testing.T) {
	s := NewSegment(Point{0, 0}, Point{2, 0})
	if s.SurfaceArea() != 0 {
		t.Error("unsized segment has no surface")
	}
	s.WidthMM, s.HeightMM = 500, 250
	// (0.5 + 0.25) * 2 * 2 m
	if math.Abs(s.SurfaceArea()-3.0) > 1e-9 {
		t.Errorf("expected 3.0 m², got %f", s.SurfaceArea())
	}
}

func TestCopySegmentsIsIndependent(t *testing.T) {
	orig := []Segment{NewSegment(Point{0, 0}, Point{1, 0})}
	cp := CopySegments(orig)
	cp[0].Flow = 500
	if orig[0].Flow != 0 {
		t.Error("copy shares storage with original")
	}
	if CopySegments(nil) != nil {
		t.Error("nil input should stay nil")
	}
}

func TestProjectHelpers(t *testing.T) {
	p := NewProject("Office")
	if _, ok := p.Inlet(); ok {
		t.Error("new project has no inlet")
	}
	p.Terminals = append(p.Terminals,
		NewTerminal(Inlet, Point{0, 0}, 1000),
		NewTerminal(Outlet, Point{2, 0}, 400),
		NewTerminal(Outlet, Point{4, 0}, 600),
	)
	p.Segments = append(p.Segments, NewSegment(Point{0, 0}, Point{4, 0}))

	in, ok := p.Inlet()
	if !ok || in.Flow != 1000 {
		t.Errorf("unexpected inlet %+v", in)
	}
	if p.OutletFlow() != 1000 {
		t.Errorf("expected outlet flow 1000, got %f", p.OutletFlow())
	}
	if p.TotalLength() != 4 {
		t.Errorf("expected total length 4, got %f", p.TotalLength())
	}
}
