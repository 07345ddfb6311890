package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultPitch is the grid snap pitch in meters.
const DefaultPitch = 0.5

// Point is a plan coordinate in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between two points.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// GridKey is the integer grid index of a snapped point. Graph nodes are
// identified by GridKey only, never by raw float coordinates.
type GridKey struct {
	I int
	J int
}

// KeyOf returns the grid index of p for the given pitch.
func KeyOf(p Point, pitch float64) GridKey {
	if pitch <= 0 {
		pitch = DefaultPitch
	}
	return GridKey{
		I: int(math.Round(p.X / pitch)),
		J: int(math.Round(p.Y / pitch)),
	}
}

// Point converts the key back to its canonical coordinate.
func (k GridKey) Point(pitch float64) Point {
	if pitch <= 0 {
		pitch = DefaultPitch
	}
	return Point{X: float64(k.I) * pitch, Y: float64(k.J) * pitch}
}

// TerminalKind distinguishes the supply inlet from air outlets.
type TerminalKind int

const (
	Outlet TerminalKind = iota // Diffuser or grille fed by the network
	Inlet                      // Supply fan connection; at most one per network
)

func (k TerminalKind) String() string {
	switch k {
	case Inlet:
		return "Inlet"
	default:
		return "Outlet"
	}
}

// ParseTerminalKind accepts "inlet"/"outlet" and their short forms.
func ParseTerminalKind(s string) (TerminalKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inlet", "in", "i", "supply", "fan":
		return Inlet, true
	case "outlet", "out", "o", "diffuser", "", "-":
		return Outlet, true
	default:
		return Outlet, false
	}
}

func (k TerminalKind) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(k.String())), nil
}

func (k *TerminalKind) UnmarshalText(b []byte) error {
	kind, ok := ParseTerminalKind(string(b))
	if !ok {
		return fmt.Errorf("unknown terminal kind %q", string(b))
	}
	*k = kind
	return nil
}

// Terminal is a user-placed air point.
type Terminal struct {
	ID       string       `json:"id"`
	Name     string       `json:"name,omitempty"`
	Position Point        `json:"position"`
	Kind     TerminalKind `json:"kind"`
	Flow     float64      `json:"flow"` // m³/h
}

func NewTerminal(kind TerminalKind, pos Point, flow float64) Terminal {
	return Terminal{
		ID:       uuid.New().String()[:8],
		Position: pos,
		Kind:     kind,
		Flow:     flow,
	}
}

// Orientation is the axis a duct segment runs along.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "Vertical"
	}
	return "Horizontal"
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(o.String())), nil
}

func (o *Orientation) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "horizontal", "h":
		*o = Horizontal
	case "vertical", "v":
		*o = Vertical
	default:
		return fmt.Errorf("unknown orientation %q", string(b))
	}
	return nil
}

// ClassifyOrientation picks the dominant axis of a freehand stroke.
func ClassifyOrientation(p1, p2 Point) Orientation {
	if math.Abs(p2.X-p1.X) >= math.Abs(p2.Y-p1.Y) {
		return Horizontal
	}
	return Vertical
}

// Segment is one straight duct run between two grid nodes.
// WidthMM, HeightMM and Label are derived from Flow by the sizing package.
type Segment struct {
	ID          string      `json:"id"`
	P1          Point       `json:"p1"`
	P2          Point       `json:"p2"`
	Orientation Orientation `json:"orientation"`
	Flow        float64     `json:"flow"` // m³/h
	WidthMM     int         `json:"width_mm"`
	HeightMM    int         `json:"height_mm"`
	Label       string      `json:"label"`
}

// NewSegment creates a segment whose orientation follows its coordinates.
func NewSegment(p1, p2 Point) Segment {
	o := Horizontal
	if p1.X == p2.X && p1.Y != p2.Y {
		o = Vertical
	}
	return Segment{
		ID:          uuid.New().String()[:8],
		P1:          p1,
		P2:          p2,
		Orientation: o,
	}
}

// Length returns the run length in meters.
func (s Segment) Length() float64 {
	return s.P1.Dist(s.P2)
}

// IsOrthogonal reports whether the coordinates agree with the orientation.
func (s Segment) IsOrthogonal() bool {
	if s.P1 == s.P2 {
		return false
	}
	if s.Orientation == Horizontal {
		return s.P1.Y == s.P2.Y
	}
	return s.P1.X == s.P2.X
}

// Span returns the varying-axis range and the fixed-axis coordinate.
func (s Segment) Span() (lo, hi, fixed float64) {
	if s.Orientation == Horizontal {
		return math.Min(s.P1.X, s.P2.X), math.Max(s.P1.X, s.P2.X), s.P1.Y
	}
	return math.Min(s.P1.Y, s.P2.Y), math.Max(s.P1.Y, s.P2.Y), s.P1.X
}

// SurfaceArea returns the sheet-metal area of the run in m².
func (s Segment) SurfaceArea() float64 {
	if s.WidthMM <= 0 || s.HeightMM <= 0 {
		return 0
	}
	return float64(s.WidthMM+s.HeightMM) * 2 / 1000 * s.Length()
}

// CopyTerminals returns an independent copy of a terminal slice.
func CopyTerminals(ts []Terminal) []Terminal {
	if ts == nil {
		return nil
	}
	cp := make([]Terminal, len(ts))
	copy(cp, ts)
	return cp
}

// CopySegments returns an independent copy of a segment slice.
func CopySegments(segs []Segment) []Segment {
	if segs == nil {
		return nil
	}
	cp := make([]Segment, len(segs))
	copy(cp, segs)
	return cp
}

// Project is the persisted state of one duct network design.
type Project struct {
	Name      string       `json:"name"`
	Terminals []Terminal   `json:"terminals"`
	Segments  []Segment    `json:"segments"`
	Policy    SizingPolicy `json:"policy"`
	InletFlow float64      `json:"inlet_flow"`
	Pitch     float64      `json:"pitch"`
	CreatedAt string       `json:"created_at,omitempty"`
	UpdatedAt string       `json:"updated_at,omitempty"`
}

func NewProject(name string) Project {
	now := time.Now().UTC().Format(time.RFC3339)
	return Project{
		Name:      name,
		Terminals: []Terminal{},
		Segments:  []Segment{},
		Policy:    DefaultPolicy(),
		Pitch:     DefaultPitch,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Inlet returns the inlet terminal, if one is placed.
func (p Project) Inlet() (Terminal, bool) {
	for _, t := range p.Terminals {
		if t.Kind == Inlet {
			return t, true
		}
	}
	return Terminal{}, false
}

// OutletFlow sums the flow of all outlets.
func (p Project) OutletFlow() float64 {
	var total float64
	for _, t := range p.Terminals {
		if t.Kind == Outlet {
			total += t.Flow
		}
	}
	return total
}

// TotalLength sums the length of every segment in meters.
func (p Project) TotalLength() float64 {
	var total float64
	for _, s := range p.Segments {
		total += s.Length()
	}
	return total
}
