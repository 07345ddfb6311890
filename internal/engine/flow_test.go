package engine

import (
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeFlows_Tree(t *testing.T) {
	inlet := model.NewTerminal(model.Inlet, pt(0, 0), 700)
	a := model.NewTerminal(model.Outlet, pt(4, 0), 400)
	b := model.NewTerminal(model.Outlet, pt(2, 2), 300)
	segs := []model.Segment{
		model.NewSegment(pt(0, 0), pt(2, 0)),
		model.NewSegment(pt(2, 0), pt(4, 0)),
		model.NewSegment(pt(2, 0), pt(2, 2)),
	}

	flows, unreachable := RecomputeFlows([]model.Terminal{inlet, a, b}, segs, model.DefaultPitch)
	assert.Empty(t, unreachable)
	assert.Equal(t, []float64{700, 400, 300}, flows)
}

func TestRecomputeFlows_NoInlet(t *testing.T) {
	a := model.NewTerminal(model.Outlet, pt(4, 0), 400)
	idle := model.NewTerminal(model.Outlet, pt(2, 0), 0)
	segs := []model.Segment{model.NewSegment(pt(0, 0), pt(4, 0))}

	flows, unreachable := RecomputeFlows([]model.Terminal{a, idle}, segs, model.DefaultPitch)
	assert.Equal(t, []float64{0}, flows)
	assert.Equal(t, []string{a.ID}, unreachable, "zero-flow outlets are never reported")
}

func TestRecomputeFlows_ZeroFlowOutletCarriesNothing(t *testing.T) {
	inlet := model.NewTerminal(model.Inlet, pt(0, 0), 0)
	a := model.NewTerminal(model.Outlet, pt(4, 0), 0)
	segs := []model.Segment{model.NewSegment(pt(0, 0), pt(4, 0))}

	flows, unreachable := RecomputeFlows([]model.Terminal{inlet, a}, segs, model.DefaultPitch)
	assert.Empty(t, unreachable)
	assert.Equal(t, []float64{0}, flows)
}

func TestRecomputeFlows_LoopUsesShortestPath(t *testing.T) {
	inlet := model.NewTerminal(model.Inlet, pt(0, 0), 100)
	a := model.NewTerminal(model.Outlet, pt(2, 0), 100)
	segs := []model.Segment{
		model.NewSegment(pt(0, 0), pt(2, 0)),
		model.NewSegment(pt(0, 0), pt(0, 2)),
		model.NewSegment(pt(0, 2), pt(2, 2)),
		model.NewSegment(pt(2, 0), pt(2, 2)),
	}

	flows, _ := RecomputeFlows([]model.Terminal{inlet, a}, segs, model.DefaultPitch)
	assert.Equal(t, []float64{100, 0, 0, 0}, flows)
}

func TestRecomputeFlowsAndSizes_InvalidPolicy(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 100)
	depth := n.UndoDepth()

	p := model.DefaultPolicy()
	p.AspectRatio = -1
	_, err := n.RecomputeFlowsAndSizes(p)
	require.ErrorIs(t, err, model.ErrInvalidAspectRatio)
	assert.Equal(t, depth, n.UndoDepth())
	assert.Equal(t, model.DefaultPolicy(), n.Policy())
}

func TestRecomputeFlowsAndSizes_FixedSide(t *testing.T) {
	n := New()
	mustTerminal(t, n, pt(0, 0), model.Inlet, 1000)
	mustTerminal(t, n, pt(4, 0), model.Outlet, 1000)
	n.RunTopologyRepair()

	p := model.DefaultPolicy()
	p.UseFixedSide = true
	_, err := n.RecomputeFlowsAndSizes(p)
	require.NoError(t, err)

	segs := n.Segments()
	require.Len(t, segs, 1)
	assert.Equal(t, 300, segs[0].WidthMM)
	assert.Equal(t, 250, segs[0].HeightMM)
	assert.True(t, n.Policy().UseFixedSide)
}
