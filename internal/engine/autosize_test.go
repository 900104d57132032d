package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tracefinity/tracebin/internal/model"
)

func rectTool(x0, y0, x1, y1 float64) model.PlacedTool {
	return model.PlacedTool{
		ID: "tool",
		Points: model.Ring{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		},
	}
}

func TestAutoSize_GridFromToolExtents(t *testing.T) {
	// 120 x 40 tool, clearance 1, wall 1.6: spans of 125.2 and 45.2 round
	// up to 3 and 2 cells.
	cfg := model.DefaultBinConfig()
	cfg.CutoutClearance = 1
	cfg.WallThickness = 1.6
	tool := rectTool(-60, -20, 60, 20)

	gx, gy, dx, dy := AutoSize([]model.PlacedTool{tool}, cfg)
	assert.Equal(t, 3, gx)
	assert.Equal(t, 2, gy)
	assert.InDelta(t, 0, dx, 1e-9)
	assert.InDelta(t, 0, dy, 1e-9)
}

func TestAutoSize_RecentersOffsetTools(t *testing.T) {
	cfg := model.DefaultBinConfig()
	tool := rectTool(10, 30, 50, 60)

	gx, gy, dx, dy := AutoSize([]model.PlacedTool{tool}, cfg)
	assert.GreaterOrEqual(t, gx, 2)
	assert.GreaterOrEqual(t, gy, 2)
	assert.InDelta(t, -30, dx, 1e-9)
	assert.InDelta(t, -45, dy, 1e-9)
}

func TestAutoSize_Idempotent(t *testing.T) {
	cfg := model.DefaultBinConfig()
	tool := rectTool(7, -3, 91, 55)

	gx, gy, dx, dy := AutoSize([]model.PlacedTool{tool}, cfg)
	moved := tool.Translate(dx, dy)

	gx2, gy2, dx2, dy2 := AutoSize([]model.PlacedTool{moved}, cfg)
	assert.Equal(t, gx, gx2)
	assert.Equal(t, gy, gy2)
	assert.InDelta(t, 0, dx2, 1e-9)
	assert.InDelta(t, 0, dy2, 1e-9)
}

func TestAutoSize_NoTools(t *testing.T) {
	cfg := model.DefaultBinConfig()
	gx, gy, dx, dy := AutoSize(nil, cfg)
	assert.Equal(t, cfg.GridX, gx)
	assert.Equal(t, cfg.GridY, gy)
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestAutoSize_TinyToolFloorsAtOne(t *testing.T) {
	cfg := model.DefaultBinConfig()
	gx, gy, _, _ := AutoSize([]model.PlacedTool{rectTool(-2, -2, 2, 2)}, cfg)
	assert.Equal(t, 1, gx)
	assert.Equal(t, 1, gy)
}

func TestAutoSize_MultipleToolsCombinedBox(t *testing.T) {
	cfg := model.DefaultBinConfig()
	tools := []model.PlacedTool{
		rectTool(-50, -10, -10, 10),
		rectTool(10, -10, 50, 10),
	}
	gx, gy, _, _ := AutoSize(tools, cfg)
	// Combined 100 mm span plus margins needs 3 cells.
	assert.Equal(t, 3, gx)
	assert.Equal(t, 1, gy)
}
