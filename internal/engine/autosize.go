package engine

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/model"
)

// AutoSize computes the smallest grid that fits the placed tools with the
// configured clearance plus a wall margin on every side, and the
// translation that recenters the tool group on the bin footprint. With no
// tools the configured grid is kept unchanged.
//
// The function is pure and idempotent: running it again on the translated
// tools yields the same grid and a zero offset.
func AutoSize(tools []model.PlacedTool, cfg model.BinConfig) (gridX, gridY int, dx, dy float64) {
	if len(tools) == 0 {
		return cfg.GridX, cfg.GridY, 0, 0
	}

	min := polyclip.Point{X: math.Inf(1), Y: math.Inf(1)}
	max := polyclip.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, t := range tools {
		lo, hi := geom.BoundingBox(polyclip.Polygon{geom.FromRing(t.Points)})
		min.X = math.Min(min.X, lo.X)
		min.Y = math.Min(min.Y, lo.Y)
		max.X = math.Max(max.X, hi.X)
		max.Y = math.Max(max.Y, hi.Y)
	}

	margin := 2*cfg.CutoutClearance + 2*cfg.WallThickness
	gridX = cellsFor(max.X - min.X + margin)
	gridY = cellsFor(max.Y - min.Y + margin)

	// Recenter the tool group on the origin, where the bin is centered.
	dx = -(min.X + max.X) / 2
	dy = -(min.Y + max.Y) / 2
	return gridX, gridY, dx, dy
}

func cellsFor(span float64) int {
	n := int(math.Ceil(span / GridPitch))
	if n < 1 {
		n = 1
	}
	return n
}
