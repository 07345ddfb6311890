package engine

import (
	"fmt"
	"sort"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/sizing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

// geometry renders segments as sorted "x1,y1-x2,y2" strings with endpoints
// in canonical order, so tests can compare layouts regardless of IDs.
func geometry(segs []model.Segment) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		a, b := s.P1, s.P2
		if b.X < a.X || (b.X == a.X && b.Y < a.Y) {
			a, b = b, a
		}
		out = append(out, fmt.Sprintf("%g,%g-%g,%g", a.X, a.Y, b.X, b.Y))
	}
	sort.Strings(out)
	return out
}

// flowOf returns the flow of the segment with the given geometry.
func flowOf(t *testing.T, segs []model.Segment, a, b model.Point) float64 {
	t.Helper()
	want := geometry([]model.Segment{model.NewSegment(a, b)})[0]
	for _, s := range segs {
		if geometry([]model.Segment{s})[0] == want {
			return s.Flow
		}
	}
	t.Fatalf("no segment %s", want)
	return 0
}

func mustTerminal(t *testing.T, n *Network, pos model.Point, kind model.TerminalKind, flow float64) model.Terminal {
	t.Helper()
	term, err := n.AddTerminal(pos, kind, flow)
	require.NoError(t, err)
	return term
}

func mustSegment(t *testing.T, n *Network, p1, p2 model.Point) model.Segment {
	t.Helper()
	s, err := n.AddRawSegment(p1, p2)
	require.NoError(t, err)
	return s
}

func assertOrthogonal(t *testing.T, n *Network) {
	t.Helper()
	for _, s := range n.Segments() {
		assert.True(t, s.IsOrthogonal(), "segment %s %v-%v", s.Orientation, s.P1, s.P2)
		assert.Equal(t, Snap(s.P1, n.Pitch()), s.P1)
		assert.Equal(t, Snap(s.P2, n.Pitch()), s.P2)
	}
}

func TestAddTerminal_SnapsToGrid(t *testing.T) {
	n := New()
	term := mustTerminal(t, n, pt(1.2, 0.74), model.Outlet, 200)

	assert.Equal(t, pt(1.0, 0.5), term.Position)
	assert.Equal(t, 200.0, term.Flow)
	assert.NotEmpty(t, term.ID)
}

func TestAddTerminal_SecondInletRejected(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 1000)
	depth := n.UndoDepth()

	_, err := n.AddTerminal(pt(2, 2), model.Inlet, 500)
	assert.ErrorIs(t, err, ErrInletExists)
	assert.Equal(t, depth, n.UndoDepth(), "failed validation must not push undo")
	assert.Len(t, n.Terminals(), 1)
	assert.Equal(t, 1000.0, n.InletFlow())
}

func TestAddTerminal_NegativeFlow(t *testing.T) {
	n := New()
	_, err := n.AddTerminal(pt(0, 0), model.Outlet, -1)
	assert.ErrorIs(t, err, ErrNegativeFlow)
	assert.False(t, n.CanUndo())
}

func TestAddTerminal_InletAdoptsNetworkFlow(t *testing.T) {
	n := New()
	require.NoError(t, n.SetInletFlow(800))

	inlet := mustTerminal(t, n, pt(0, 0), model.Inlet, 0)
	assert.Equal(t, 800.0, inlet.Flow)
	assert.Equal(t, 800.0, n.InletFlow())

	n2 := New()
	mustTerminal(t, n2, pt(0, 0), model.Inlet, 1200)
	assert.Equal(t, 1200.0, n2.InletFlow())
}

func TestRemoveTerminal(t *testing.T) {
	n := New()
	term := mustTerminal(t, n, pt(1, 1), model.Outlet, 100)

	assert.ErrorIs(t, n.RemoveTerminal("missing"), ErrNotFound)
	require.NoError(t, n.RemoveTerminal(term.ID))
	assert.Empty(t, n.Terminals())

	_, ok := n.Terminal(term.ID)
	assert.False(t, ok)
}

func TestSetTerminalFlow(t *testing.T) {
	n := New()
	inlet := mustTerminal(t, n, pt(0, 0), model.Inlet, 1000)
	out := mustTerminal(t, n, pt(2, 0), model.Outlet, 100)

	require.NoError(t, n.SetTerminalFlow(out.ID, 250))
	got, ok := n.Terminal(out.ID)
	require.True(t, ok)
	assert.Equal(t, 250.0, got.Flow)

	require.NoError(t, n.SetTerminalFlow(inlet.ID, 1500))
	assert.Equal(t, 1500.0, n.InletFlow())

	assert.ErrorIs(t, n.SetTerminalFlow(out.ID, -5), ErrNegativeFlow)
	assert.ErrorIs(t, n.SetTerminalFlow("nope", 5), ErrNotFound)
}

func TestSetInletFlow_Negative(t *testing.T) {
	n := New()
	assert.ErrorIs(t, n.SetInletFlow(-1), ErrNegativeFlow)
	assert.False(t, n.CanUndo())
}

func TestDistributeEqualFlow(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 900)
	for i := 1; i <= 3; i++ {
		mustTerminal(t, n, pt(float64(i), 2), model.Outlet, 0)
	}
	assert.Equal(t, 900.0, n.RemainingFlow())

	require.NoError(t, n.DistributeEqualFlow())
	for _, term := range n.Terminals() {
		if term.Kind == model.Outlet {
			assert.Equal(t, 300.0, term.Flow)
		}
	}
	assert.Equal(t, 0.0, n.RemainingFlow())
}

func TestDistributeEqualFlow_Errors(t *testing.T) {
	n := New()
	assert.ErrorIs(t, n.DistributeEqualFlow(), ErrNoInlet)

	mustTerminal(t, n, pt(0, 0), model.Inlet, 900)
	assert.ErrorIs(t, n.DistributeEqualFlow(), ErrNoOutlets)
}

func TestAddRawSegment_ClassifiesAndSnaps(t *testing.T) {
	n := New()
	s := mustSegment(t, n, pt(3.1, 0.4), pt(0, 0))

	assert.Equal(t, model.Horizontal, s.Orientation)
	assert.Equal(t, pt(0, 0), s.P1)
	assert.Equal(t, pt(3, 0), s.P2)
	assert.Equal(t, "0m³/h", s.Label)

	v := mustSegment(t, n, pt(1.1, 0), pt(0.9, 4))
	assert.Equal(t, model.Vertical, v.Orientation)
	assert.Equal(t, pt(1, 0), v.P1)
	assert.Equal(t, pt(1, 4), v.P2)
	assertOrthogonal(t, n)
}

func TestAddRawSegment_Degenerate(t *testing.T) {
	n := New()
	_, err := n.AddRawSegment(pt(0, 0), pt(0.1, 0.1))
	assert.ErrorIs(t, err, ErrDegenerateSegment)
	assert.Empty(t, n.Segments())
	assert.False(t, n.CanUndo())
}

func TestRemoveSegment(t *testing.T) {
	n := New()
	s := mustSegment(t, n, pt(0, 0), pt(2, 0))

	assert.ErrorIs(t, n.RemoveSegment("missing"), ErrNotFound)
	require.NoError(t, n.RemoveSegment(s.ID))
	assert.Empty(t, n.Segments())
}

func TestUndo_RestoresPreviousState(t *testing.T) {
	n := New()
	assert.False(t, n.Undo())

	mustTerminal(t, n, pt(0, 0), model.Inlet, 1000)
	mustSegment(t, n, pt(0, 0), pt(4, 0))
	require.Len(t, n.Segments(), 1)

	assert.True(t, n.Undo())
	assert.Empty(t, n.Segments())
	assert.Len(t, n.Terminals(), 1)

	assert.True(t, n.Undo())
	assert.Empty(t, n.Terminals())
	assert.Equal(t, 0.0, n.InletFlow())
	assert.False(t, n.CanUndo())
}

func TestUndo_RestoresSizingPolicy(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 1000)
	mustTerminal(t, n, pt(4, 0), model.Outlet, 1000)
	mustSegment(t, n, pt(0, 0), pt(4, 0))

	base := model.DefaultPolicy()
	_, err := n.RecomputeFlowsAndSizes(base)
	require.NoError(t, err)
	before := n.Segments()[0]

	fixed := base
	fixed.UseFixedSide = true
	fixed.FixedSideMM = 500
	_, err = n.RecomputeFlowsAndSizes(fixed)
	require.NoError(t, err)
	assert.Equal(t, fixed, n.Policy())

	require.True(t, n.Undo())
	assert.Equal(t, base, n.Policy())

	p := n.Project()
	require.Len(t, p.Segments, 1)
	s := p.Segments[0]
	assert.Equal(t, before.WidthMM, s.WidthMM)
	w, h, label := sizing.PerformSizing(s.Flow, p.Policy)
	assert.Equal(t, []any{w, h, label}, []any{s.WidthMM, s.HeightMM, s.Label},
		"restored sizes follow the exported policy")
}

func TestFromProject_WithPolicyOverridesStored(t *testing.T) {
	p := model.NewProject("Office")
	p.Policy = model.SizingPolicy{FrictionRate: 0.15, AspectRatio: 1.5, StepMM: 50}

	assert.Equal(t, p.Policy, FromProject(p).Policy())

	pinned := model.SizingPolicy{FrictionRate: 0.08, UseFixedSide: true, FixedSideMM: 250, StepMM: 50}
	assert.Equal(t, pinned, FromProject(p, WithPolicy(pinned)).Policy())

	// WithConfig alone does not outrank the stored policy.
	assert.Equal(t, p.Policy, FromProject(p, WithConfig(model.DefaultAppConfig())).Policy())
}

func TestUndo_LimitDropsOldest(t *testing.T) {
	n := New(WithUndoLimit(2))
	for i := 0; i < 3; i++ {
		mustTerminal(t, n, pt(float64(i), 0), model.Outlet, 10)
	}
	assert.Equal(t, 2, n.UndoDepth())

	assert.True(t, n.Undo())
	assert.True(t, n.Undo())
	assert.False(t, n.Undo())
	assert.Len(t, n.Terminals(), 1, "the first add is beyond the limit")
}

func TestMergeCollinear(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 500)
	mustTerminal(t, n, pt(4, 0), model.Outlet, 500)
	mustSegment(t, n, pt(0, 0), pt(2, 0))
	mustSegment(t, n, pt(2, 0), pt(4, 0))

	assert.Equal(t, 1, n.MergeCollinear())
	assert.Equal(t, []string{"0,0-4,0"}, geometry(n.Segments()))
}

func TestMergeCollinear_KeepsTerminalNodes(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 500)
	mustTerminal(t, n, pt(2, 0), model.Outlet, 200)
	mustTerminal(t, n, pt(4, 0), model.Outlet, 300)
	mustSegment(t, n, pt(0, 0), pt(2, 0))
	mustSegment(t, n, pt(2, 0), pt(4, 0))

	assert.Equal(t, 0, n.MergeCollinear())
	assert.Len(t, n.Segments(), 2)
}

func TestProjectRoundTrip(t *testing.T) {
	p := model.NewProject("Office")
	p.InletFlow = 600
	p.Terminals = []model.Terminal{
		model.NewTerminal(model.Inlet, pt(0.1, -0.1), 0),
		model.NewTerminal(model.Outlet, pt(3.9, 0.2), 600),
	}

	n := FromProject(p)
	terms := n.Terminals()
	require.Len(t, terms, 2)
	assert.Equal(t, pt(0, 0), terms[0].Position)
	assert.Equal(t, 600.0, terms[0].Flow)
	assert.Equal(t, pt(4, 0), terms[1].Position)

	n.RunTopologyRepair()
	_, err := n.RecomputeFlowsAndSizes(n.Policy())
	require.NoError(t, err)

	out := n.Project()
	assert.Equal(t, "Office", out.Name)
	assert.Equal(t, 600.0, out.InletFlow)
	assert.Equal(t, []string{"0,0-4,0"}, geometry(out.Segments))
	assert.Equal(t, 600.0, out.Segments[0].Flow)
	assert.NotEmpty(t, out.UpdatedAt)
}

func TestWithConfig(t *testing.T) {
	cfg := model.DefaultAppConfig()
	cfg.GridPitch = 0.25
	cfg.UndoLimit = 1
	cfg.OptimizerRounds = 5
	cfg.DefaultInletFlow = 750

	n := New(WithConfig(cfg))
	assert.Equal(t, 0.25, n.Pitch())
	assert.Equal(t, 750.0, n.InletFlow())
	assert.Equal(t, 5, n.optimizer.MaxRounds)

	term := mustTerminal(t, n, pt(0.3, 0.3), model.Outlet, 1)
	assert.Equal(t, pt(0.25, 0.25), term.Position)
	mustTerminal(t, n, pt(1, 1), model.Outlet, 1)
	assert.Equal(t, 1, n.UndoDepth())
}
