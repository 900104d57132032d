package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTool() PlacedTool {
	return PlacedTool{
		ID: "t1",
		Points: Ring{
			{X: -10, Y: -5}, {X: 10, Y: -5}, {X: 10, Y: 5}, {X: -10, Y: 5},
		},
	}
}

func TestBinConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultBinConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*BinConfig)
	}{
		{"grid too small", func(c *BinConfig) { c.GridX = 0 }},
		{"grid too large", func(c *BinConfig) { c.GridY = 11 }},
		{"height too small", func(c *BinConfig) { c.HeightUnits = 0 }},
		{"height too large", func(c *BinConfig) { c.HeightUnits = 21 }},
		{"depth too small", func(c *BinConfig) { c.CutoutDepth = 0.5 }},
		{"depth too large", func(c *BinConfig) { c.CutoutDepth = 250 }},
		{"negative clearance", func(c *BinConfig) { c.CutoutClearance = -1 }},
		{"clearance too large", func(c *BinConfig) { c.CutoutClearance = 11 }},
		{"wall too thin", func(c *BinConfig) { c.WallThickness = 0.2 }},
		{"wall too thick", func(c *BinConfig) { c.WallThickness = 6 }},
		{"negative bed", func(c *BinConfig) { c.BedSize = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultBinConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPlacedTool_Validate(t *testing.T) {
	assert.NoError(t, validTool().Validate())

	short := validTool()
	short.Points = short.Points[:2]
	assert.Error(t, short.Validate())

	badHole := validTool()
	badHole.Holes = []Ring{{{X: 0, Y: 0}, {X: 1, Y: 1}}}
	assert.Error(t, badHole.Validate())

	badShape := validTool()
	badShape.FingerHoles = []FingerHole{{ID: "f", Shape: "hexagon", Radius: 5}}
	assert.Error(t, badShape.Validate())

	legacy := validTool()
	legacy.FingerHoles = []FingerHole{{ID: "f", Radius: 5}}
	assert.NoError(t, legacy.Validate(), "empty shape is a legacy circle")

	zeroRadius := validTool()
	zeroRadius.FingerHoles = []FingerHole{{ID: "f", Shape: HoleCircle}}
	assert.Error(t, zeroRadius.Validate())

	rect := validTool()
	rect.FingerHoles = []FingerHole{{ID: "f", Shape: HoleRectangle, Width: 12, Height: 8}}
	assert.NoError(t, rect.Validate())

	flatRect := validTool()
	flatRect.FingerHoles = []FingerHole{{ID: "f", Shape: HoleRectangle, Width: 12}}
	assert.Error(t, flatRect.Validate(), "a rectangle without a height has no area")

	thinRect := validTool()
	thinRect.FingerHoles = []FingerHole{{ID: "f", Shape: HoleRectangle, Height: 8}}
	assert.Error(t, thinRect.Validate())
}

func TestTextLabel_Validate(t *testing.T) {
	ok := TextLabel{Text: "M3", FontSize: 8, Depth: 0.6}
	assert.NoError(t, ok.Validate())

	assert.Error(t, TextLabel{FontSize: 8, Depth: 0.6}.Validate())
	assert.Error(t, TextLabel{Text: "x", Depth: 0.6}.Validate())
	assert.Error(t, TextLabel{Text: "x", FontSize: 8}.Validate())
}

func TestGenerateRequest_ValidatePropagates(t *testing.T) {
	req := GenerateRequest{Config: DefaultBinConfig(), Tools: []PlacedTool{validTool()}}
	assert.NoError(t, req.Validate())

	req.Tools[0].Points = nil
	assert.Error(t, req.Validate())
}

func TestContentHash_StableAndDistinct(t *testing.T) {
	a := GenerateRequest{Config: DefaultBinConfig(), Tools: []PlacedTool{validTool()}}
	b := GenerateRequest{Config: DefaultBinConfig(), Tools: []PlacedTool{validTool()}}
	require.Equal(t, a.ContentHash(), b.ContentHash())
	assert.Len(t, a.ContentHash(), 64)

	b.Config.HeightUnits = 5
	assert.NotEqual(t, a.ContentHash(), b.ContentHash())

	c := a
	c.AutoSize = true
	assert.NotEqual(t, a.ContentHash(), c.ContentHash())
}

func TestRing_BoundingBox(t *testing.T) {
	r := Ring{{X: -3, Y: 7}, {X: 5, Y: -2}, {X: 1, Y: 4}}
	min, max := r.BoundingBox()
	assert.Equal(t, Point{X: -3, Y: -2}, min)
	assert.Equal(t, Point{X: 5, Y: 7}, max)
}

func TestRing_Rotate(t *testing.T) {
	r := Ring{{X: 1, Y: 0}}
	got := r.Rotate(90, Point{})
	assert.InDelta(t, 0, got[0].X, 1e-12)
	assert.InDelta(t, 1, got[0].Y, 1e-12)
}

func TestPlacedTool_Translate(t *testing.T) {
	tool := validTool()
	tool.Holes = []Ring{{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}}
	tool.FingerHoles = []FingerHole{{ID: "f", Radius: 5, X: 2, Y: 3}}

	moved := tool.Translate(10, -5)
	assert.Equal(t, Point{X: 0, Y: -10}, moved.Points[0])
	assert.Equal(t, Point{X: 10, Y: -5}, moved.Holes[0][0])
	assert.InDelta(t, 12, moved.FingerHoles[0].X, 1e-12)
	assert.InDelta(t, -2, moved.FingerHoles[0].Y, 1e-12)

	// The original is untouched.
	assert.Equal(t, Point{X: -10, Y: -5}, tool.Points[0])
}
