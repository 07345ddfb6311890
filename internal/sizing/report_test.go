package sizing

import (
	"strings"
	"testing"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetArea(t *testing.T) {
	assert.InDelta(t, 3.0, SheetArea(500, 250, 2), 1e-12)
	assert.Zero(t, SheetArea(0, 250, 2))
	assert.Zero(t, SheetArea(500, 250, 0))
}

func TestVelocity(t *testing.T) {
	// 1800 m³/h through 0.5 x 0.25 m = 0.5 m³/s / 0.125 m²
	assert.InDelta(t, 4.0, Velocity(1800, 500, 250), 1e-12)
	assert.Zero(t, Velocity(0, 500, 250))
	assert.Zero(t, Velocity(1000, 0, 250))
}

func TestSizeReport(t *testing.T) {
	rep, err := SizeReport(1000, model.DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, 279.0, rep.Diameter)
	assert.Equal(t, 300.0, rep.RoundedDiam)
	assert.Equal(t, 350, rep.Rect.BigMM)
	assert.Equal(t, 200, rep.Rect.SmallMM)
	assert.InDelta(t, Velocity(1000, 350, 200), rep.Velocity, 1e-12)
	assert.Positive(t, rep.RoundVelocity)

	lines := rep.Lines()
	require.Len(t, lines, 6)
	assert.True(t, strings.Contains(lines[4], "350 x 200 mm"), lines[4])
}

func TestSizeReport_FixedSideOmitsTheory(t *testing.T) {
	p := model.DefaultPolicy()
	p.UseFixedSide = true
	rep, err := SizeReport(1000, p)
	require.NoError(t, err)
	assert.Len(t, rep.Lines(), 5)
}

func TestSizeReport_Validation(t *testing.T) {
	_, err := SizeReport(0, model.DefaultPolicy())
	assert.Error(t, err)

	p := model.DefaultPolicy()
	p.FrictionRate = 0
	_, err = SizeReport(1000, p)
	assert.ErrorIs(t, err, model.ErrInvalidFrictionRate)
}
