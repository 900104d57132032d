package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/model"
)

func TestPocketDepth_Clamps(t *testing.T) {
	cfg := plainConfig() // 4 height units: usable depth 26mm

	cfg.CutoutDepth = 10
	d, warn := pocketDepth(cfg)
	assert.InDelta(t, 10, d, 1e-9)
	assert.Empty(t, warn)

	cfg.CutoutDepth = 30
	d, warn = pocketDepth(cfg)
	assert.InDelta(t, 26, d, 1e-9)
	assert.NotEmpty(t, warn)

	cfg.CutoutDepth = 2
	d, warn = pocketDepth(cfg)
	assert.InDelta(t, 5, d, 1e-9)
	assert.NotEmpty(t, warn)

	// A one-unit wall caps the depth below the usual minimum.
	cfg.HeightUnits = 1
	cfg.CutoutDepth = 20
	d, warn = pocketDepth(cfg)
	assert.InDelta(t, 5, d, 1e-9)
	assert.NotEmpty(t, warn)
}

func TestToolFootprint_ClearanceOffset(t *testing.T) {
	tool := rectTool(-10, -10, 10, 10)
	fp, warn, err := toolFootprint(tool, 1, 48)
	require.NoError(t, err)
	assert.Empty(t, warn)

	// Round-join offset of a 20mm square by 1mm.
	want := 400 + 80 + math.Pi
	assert.InDelta(t, want, geom.Area(fp), want*0.01)
}

func TestToolFootprint_HolesAndFingerHoles(t *testing.T) {
	tool := rectTool(-10, -10, 10, 10)
	tool.Holes = []model.Ring{{
		{X: -3, Y: -3}, {X: 3, Y: -3}, {X: 3, Y: 3}, {X: -3, Y: 3},
	}}
	tool.FingerHoles = []model.FingerHole{{X: 30, Y: 0, Radius: 5}}

	fp, _, err := toolFootprint(tool, 1, 96)
	require.NoError(t, err)

	// Offset square minus the 6mm post, plus the disjoint finger disc.
	want := 400 + 80 + math.Pi - 36 + math.Pi*25
	assert.InDelta(t, want, geom.Area(fp), want*0.01)
}

func TestToolFootprint_DegenerateFallsBackToBounds(t *testing.T) {
	tool := model.PlacedTool{
		ID:     "trace",
		Points: model.Ring{{X: 0, Y: 0}, {X: 20, Y: 10}},
	}
	fp, warn, err := toolFootprint(tool, 1, 48)
	require.NoError(t, err)
	assert.NotEmpty(t, warn)

	// Bounding box expanded by the clearance on every side.
	assert.InDelta(t, 22*12, geom.Area(fp), 1e-6)
}

func TestToolFootprint_NoAreaFails(t *testing.T) {
	tool := model.PlacedTool{
		ID:     "line",
		Points: model.Ring{{X: 0, Y: 0}, {X: 10, Y: 0}},
	}
	_, _, err := toolFootprint(tool, 1, 48)
	require.Error(t, err)
}

func TestCarveCutouts_PocketRemovesVolume(t *testing.T) {
	cfg := plainConfig()
	cfg.CutoutDepth = 10
	cfg.CutoutClearance = 1
	tool := rectTool(-10, -10, 10, 10)

	plain, _ := assembleShell(cfg, false)
	plainMesh, err := plain.mesh()
	require.NoError(t, err)

	carved, pb := assembleShell(cfg, false)
	warns, err := carveCutouts(context.Background(), carved, pb, cfg, []model.PlacedTool{tool}, DefaultTolerance())
	require.NoError(t, err)
	assert.Empty(t, warns)

	carvedMesh, err := carved.mesh()
	require.NoError(t, err)
	assert.True(t, carvedMesh.IsWatertight())

	want := (400 + 80 + math.Pi) * 10
	got := plainMesh.Volume() - carvedMesh.Volume()
	assert.InDelta(t, want, got, want*0.01)
}

func TestCarveCutouts_ClipsPocketToOutline(t *testing.T) {
	cfg := plainConfig()
	// The tool overhangs the 84mm-wide bin outline on the right.
	tool := rectTool(30, -10, 50, 10)

	s, pb := assembleShell(cfg, false)
	_, err := carveCutouts(context.Background(), s, pb, cfg, []model.PlacedTool{tool}, DefaultTolerance())
	require.NoError(t, err)

	m, err := s.mesh()
	require.NoError(t, err)
	assert.True(t, m.IsWatertight())

	min, max := m.BoundingBox()
	assert.LessOrEqual(t, max.X, 42.0+1e-6, "pocket must not widen the bin")
	assert.GreaterOrEqual(t, min.X, -42.0-1e-6)
}

func TestCarveCutouts_LipKeepsPocketInsideOpening(t *testing.T) {
	cfg := plainConfig()
	cfg.StackingLip = true
	// The tool overhangs the outline; without the lip bound the pocket
	// would open under the lip taper.
	tool := rectTool(10, -10, 60, 10)

	s, pb := assembleShell(cfg, false)
	_, err := carveCutouts(context.Background(), s, pb, cfg, []model.PlacedTool{tool}, DefaultTolerance())
	require.NoError(t, err)

	lipInset := lipProfile[0].V
	for _, sl := range s.Slabs {
		if len(sl.Holes) == 0 {
			continue
		}
		_, max := geom.BoundingBox(sl.Holes)
		assert.LessOrEqual(t, max.X, 42.0-lipInset, "pocket must stay inside the lip opening")
	}

	m, err := s.mesh()
	require.NoError(t, err)
	assert.True(t, m.IsWatertight())
}

func TestCarveCutouts_MagnetBores(t *testing.T) {
	cfg := plainConfig()
	cfg.Magnets = true

	s, pb := assembleShell(cfg, false)
	_, err := carveCutouts(context.Background(), s, pb, cfg, nil, DefaultTolerance())
	require.NoError(t, err)

	m, err := s.mesh()
	require.NoError(t, err)
	assert.True(t, m.IsWatertight())

	// Bores stop at MagnetDepth, leaving the bin floor closed.
	min, _ := m.BoundingBox()
	assert.InDelta(t, 0, min.Z, 1e-9)
}
