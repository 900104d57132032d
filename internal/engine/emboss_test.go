package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/model"
)

func TestTextOutline_RendersCentered(t *testing.T) {
	out, err := textOutline("A", 8)
	require.NoError(t, err)
	require.NotNil(t, out)

	min, max := geom.BoundingBox(out)
	assert.InDelta(t, 0, (min.X+max.X)/2, 1e-6)
	assert.InDelta(t, 0, (min.Y+max.Y)/2, 1e-6)

	// The glyph fits the em square and is not degenerate.
	assert.LessOrEqual(t, max.Y-min.Y, 8.0)
	assert.Greater(t, max.Y-min.Y, 2.0)
	assert.Greater(t, geom.Area(out), 0.0)
}

func TestTextOutline_ScalesWithFontSize(t *testing.T) {
	small, err := textOutline("B", 4)
	require.NoError(t, err)
	large, err := textOutline("B", 8)
	require.NoError(t, err)

	sMin, sMax := geom.BoundingBox(small)
	lMin, lMax := geom.BoundingBox(large)
	assert.InDelta(t, 2*(sMax.Y-sMin.Y), lMax.Y-lMin.Y, 1e-6)
}

func TestTextOutline_MultipleGlyphsAdvance(t *testing.T) {
	one, err := textOutline("I", 8)
	require.NoError(t, err)
	three, err := textOutline("III", 8)
	require.NoError(t, err)

	_, oneMax := geom.BoundingBox(one)
	_, threeMax := geom.BoundingBox(three)
	assert.Greater(t, threeMax.X, oneMax.X)
}

func TestTextOutline_NoGeometry(t *testing.T) {
	out, err := textOutline(" ", 8)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestApplyLabels_EmbossBuildsRaisedBody(t *testing.T) {
	cfg := plainConfig()
	s, pb := assembleShell(cfg, false)
	wallTop := WallTop(cfg.HeightUnits)

	raised, warns, err := applyLabels(s, []model.TextLabel{
		{ID: "l1", Text: "M4", X: 0, Y: 20, FontSize: 8, Emboss: true, Depth: 0.6},
	}, wallTop, carveBound(pb, cfg))
	require.NoError(t, err)
	assert.Empty(t, warns)
	require.NotNil(t, raised)

	assert.True(t, raised.IsWatertight())
	min, max := raised.BoundingBox()
	assert.InDelta(t, wallTop, min.Z, 1e-9)
	assert.InDelta(t, wallTop+0.6, max.Z, 1e-9)
}

func TestApplyLabels_RecessCarvesShell(t *testing.T) {
	cfg := plainConfig()
	wallTop := WallTop(cfg.HeightUnits)

	plain, _ := assembleShell(cfg, false)
	plainMesh, err := plain.mesh()
	require.NoError(t, err)

	carved, pb := assembleShell(cfg, false)
	raised, _, err := applyLabels(carved, []model.TextLabel{
		{ID: "l1", Text: "HEX", X: 0, Y: 20, FontSize: 8, Emboss: false, Depth: 0.6},
	}, wallTop, carveBound(pb, cfg))
	require.NoError(t, err)
	assert.Nil(t, raised)

	carvedMesh, err := carved.mesh()
	require.NoError(t, err)
	assert.True(t, carvedMesh.IsWatertight())
	assert.Less(t, carvedMesh.Volume(), plainMesh.Volume())
}

func TestApplyLabels_RecessDepthClamped(t *testing.T) {
	cfg := plainConfig()
	cfg.HeightUnits = 1
	s, pb := assembleShell(cfg, false)
	wallTop := WallTop(cfg.HeightUnits)

	raised, warns, err := applyLabels(s, []model.TextLabel{
		{ID: "l1", Text: "DEEP", X: 0, Y: 10, FontSize: 8, Emboss: false, Depth: 50},
	}, wallTop, carveBound(pb, cfg))
	require.NoError(t, err)
	assert.Nil(t, raised)
	require.NotEmpty(t, warns)
	assert.Contains(t, warns[0], "clamped")

	// The recess floor stops MinFloor above the base, never below.
	lowest := wallTop
	for _, sl := range s.Slabs {
		if len(sl.Holes) > 0 && sl.Z0 < lowest {
			lowest = sl.Z0
		}
	}
	assert.InDelta(t, BaseHeight+MinFloor, lowest, 1e-9)

	m, err := s.mesh()
	require.NoError(t, err)
	assert.True(t, m.IsWatertight())
}

func TestApplyLabels_RecessOverCutoutSkipped(t *testing.T) {
	cfg := plainConfig()
	s, pb := assembleShell(cfg, false)
	wallTop := WallTop(cfg.HeightUnits)

	tool := rectTool(-15, -15, 15, 15)
	_, err := carveCutouts(context.Background(), s, pb, cfg, []model.PlacedTool{tool}, DefaultTolerance())
	require.NoError(t, err)
	before, err := s.mesh()
	require.NoError(t, err)

	raised, warns, err := applyLabels(s, []model.TextLabel{
		{ID: "l1", Text: "X", X: 0, Y: 0, FontSize: 8, Emboss: false, Depth: 0.6},
	}, wallTop, carveBound(pb, cfg))
	require.NoError(t, err)
	assert.Nil(t, raised)
	require.NotEmpty(t, warns)
	assert.Contains(t, warns[len(warns)-1], "overlaps a cutout")

	// The label was skipped: nothing further carved, mesh still closed.
	after, err := s.mesh()
	require.NoError(t, err)
	assert.True(t, after.IsWatertight())
	assert.InDelta(t, before.Volume(), after.Volume(), 1e-6)
}

func TestApplyLabels_EmptyTextWarns(t *testing.T) {
	cfg := plainConfig()
	s, pb := assembleShell(cfg, false)

	raised, warns, err := applyLabels(s, []model.TextLabel{
		{ID: "l1", Text: " ", FontSize: 8, Emboss: true, Depth: 0.6},
	}, WallTop(cfg.HeightUnits), carveBound(pb, cfg))
	require.NoError(t, err)
	assert.Nil(t, raised)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "no geometry")
}

func TestApplyLabels_GroupsSharedDepth(t *testing.T) {
	cfg := plainConfig()
	s, pb := assembleShell(cfg, false)
	wallTop := WallTop(cfg.HeightUnits)

	raised, _, err := applyLabels(s, []model.TextLabel{
		{ID: "a", Text: "A", X: -20, Y: 20, FontSize: 8, Emboss: true, Depth: 0.6},
		{ID: "b", Text: "B", X: 20, Y: 20, FontSize: 8, Emboss: true, Depth: 0.6},
	}, wallTop, carveBound(pb, cfg))
	require.NoError(t, err)
	require.NotNil(t, raised)
	assert.True(t, raised.IsWatertight())

	min, max := raised.BoundingBox()
	assert.Less(t, min.X, -15.0)
	assert.Greater(t, max.X, 15.0)
}
