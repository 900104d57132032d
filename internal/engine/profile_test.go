package engine

import (
	"testing"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefinity/tracebin/internal/geom"
)

func TestLerpTable_BaseBreakpoints(t *testing.T) {
	// The table values themselves are the dimensional contract.
	assert.InDelta(t, 17.8, lerpTable(baseProfile, 0), 1e-9)
	assert.InDelta(t, 18.6, lerpTable(baseProfile, 0.8), 1e-9)
	assert.InDelta(t, 18.6, lerpTable(baseProfile, 2.6), 1e-9)
	assert.InDelta(t, 20.75, lerpTable(baseProfile, 4.75), 1e-9)

	// Midpoints interpolate linearly.
	assert.InDelta(t, 18.2, lerpTable(baseProfile, 0.4), 1e-9)
	assert.InDelta(t, 18.6, lerpTable(baseProfile, 1.7), 1e-9)

	// Out of range clamps.
	assert.InDelta(t, 17.8, lerpTable(baseProfile, -1), 1e-9)
	assert.InDelta(t, 20.75, lerpTable(baseProfile, 10), 1e-9)
}

func TestWallTop(t *testing.T) {
	assert.InDelta(t, 32.75, WallTop(4), 1e-9)
	assert.InDelta(t, 11.75, WallTop(1), 1e-9)
}

func TestCellCenters_Grid(t *testing.T) {
	pb := NewProfileBuilder(2, 2)
	centers := pb.CellCenters()
	require.Len(t, centers, 4)
	assert.Contains(t, centers, polyclip.Point{X: -21, Y: -21})
	assert.Contains(t, centers, polyclip.Point{X: 21, Y: 21})

	single := NewProfileBuilder(1, 1).CellCenters()
	require.Len(t, single, 1)
	assert.Equal(t, polyclip.Point{X: 0, Y: 0}, single[0])
}

func TestBaseSection_TopMatchesCellWidth(t *testing.T) {
	pb := NewProfileBuilder(1, 1)
	top := pb.BaseSection(BaseHeight)
	min, max := geom.BoundingBox(top)
	assert.InDelta(t, CellWidth, max.X-min.X, 1e-9)
	assert.InDelta(t, CellWidth, max.Y-min.Y, 1e-9)
}

func TestBaseSection_BottomNarrower(t *testing.T) {
	pb := NewProfileBuilder(1, 1)
	bottom := pb.BaseSection(0)
	min, max := geom.BoundingBox(bottom)
	assert.InDelta(t, 35.6, max.X-min.X, 1e-9)
}

func TestBaseSection_ContoursCorrespondAcrossHeights(t *testing.T) {
	pb := NewProfileBuilder(3, 2)
	a := pb.BaseSection(0)
	b := pb.BaseSection(BaseHeight)
	require.Len(t, a, 6)
	require.Len(t, b, 6)
	for i := range a {
		assert.Len(t, b[i], len(a[i]), "contour %d must loft 1:1", i)
	}
}

func TestOutline_SpansFullGrid(t *testing.T) {
	pb := NewProfileBuilder(2, 2)
	min, max := geom.BoundingBox(polyclip.Polygon{pb.Outline()})
	assert.InDelta(t, 84, max.X-min.X, 1e-9)
	assert.InDelta(t, 84, max.Y-min.Y, 1e-9)
}

func TestLipSection_TapersClosed(t *testing.T) {
	pb := NewProfileBuilder(1, 1)

	bottom := pb.LipSection(0)
	require.Len(t, bottom, 2)
	outerMin, outerMax := geom.BoundingBox(polyclip.Polygon{bottom[0]})
	innerMin, innerMax := geom.BoundingBox(polyclip.Polygon{bottom[1]})
	assert.InDelta(t, 42, outerMax.X-outerMin.X, 1e-9)
	assert.InDelta(t, 42-2*2.6, innerMax.X-innerMin.X, 1e-9)

	top := pb.LipSection(LipHeight)
	_, topInnerMax := geom.BoundingBox(polyclip.Polygon{top[1]})
	// The opening nearly reaches the outline at the rim.
	assert.Greater(t, topInnerMax.X, 20.0)

	for i := range bottom {
		assert.Len(t, top[i], len(bottom[i]), "lip contour %d must loft 1:1", i)
	}
}
