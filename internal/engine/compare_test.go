package engine

import (
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleRunProject(t *testing.T) model.Project {
	t.Helper()
	n := New()
	n.SetName("Single run")
	mustTerminal(t, n, pt(0, 0), model.Inlet, 1000)
	mustTerminal(t, n, pt(4, 0), model.Outlet, 1000)
	return n.Project()
}

func TestBuildDefaultScenarios(t *testing.T) {
	scenarios := BuildDefaultScenarios(model.DefaultPolicy())
	require.Len(t, scenarios, 6)

	assert.Equal(t, "Current Policy", scenarios[0].Name)
	assert.True(t, scenarios[1].Policy.UseFixedSide)
	assert.Equal(t, "Fixed Side 300mm", scenarios[1].Name)
	assert.InDelta(t, 0.08, scenarios[2].Policy.FrictionRate, 1e-9)
	assert.InDelta(t, 0.15, scenarios[3].Policy.FrictionRate, 1e-9)
	assert.Equal(t, 1.0, scenarios[4].Policy.AspectRatio)
	assert.Equal(t, 3.0, scenarios[5].Policy.AspectRatio)

	for _, s := range scenarios {
		assert.NoError(t, s.Policy.Validate(), s.Name)
	}
}

func TestBuildDefaultScenarios_FixedSideBase(t *testing.T) {
	base := model.DefaultPolicy()
	base.UseFixedSide = true

	scenarios := BuildDefaultScenarios(base)
	require.Len(t, scenarios, 4)
	assert.False(t, scenarios[1].Policy.UseFixedSide)
	assert.Equal(t, "Aspect Ratio 2.0", scenarios[1].Name)
}

func TestComparePolicies(t *testing.T) {
	p := singleRunProject(t)
	results := ComparePolicies(p, BuildDefaultScenarios(model.DefaultPolicy()))
	require.Len(t, results, 6)

	for _, r := range results {
		require.NoError(t, r.Err, r.Scenario.Name)
		assert.Equal(t, 0, r.Unreachable)
		assert.Equal(t, 0, r.Unsized)
		assert.InDelta(t, 4.0, r.TotalLength, 1e-9)
		assert.Greater(t, r.MaxVelocity, 0.0)
	}

	current, low, high := results[0], results[2], results[3]
	assert.Equal(t, "350x200", current.LargestDuct)
	assert.InDelta(t, 4.4, current.TotalSurface, 1e-9)
	assert.Greater(t, low.TotalSurface, current.TotalSurface)
	assert.Less(t, high.TotalSurface, current.TotalSurface)
	assert.Greater(t, high.MaxVelocity, low.MaxVelocity)

	assert.Empty(t, p.Segments, "the project itself is not modified")
}

func TestComparePolicies_InvalidScenario(t *testing.T) {
	bad := model.DefaultPolicy()
	bad.FrictionRate = -1

	results := ComparePolicies(singleRunProject(t), []PolicyScenario{{Name: "Broken", Policy: bad}})
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, model.ErrInvalidFrictionRate)
}
