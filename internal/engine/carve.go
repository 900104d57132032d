package engine

import (
	"context"
	"fmt"
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"golang.org/x/sync/errgroup"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/model"
)

// pocketDepth clamps the requested cutout depth to the printable range:
// at most wall height minus MinFloor, at least MinPocketDepth when the
// wall allows it. Returns the effective depth plus a warning when the
// request was clamped.
func pocketDepth(cfg model.BinConfig) (float64, string) {
	maxDepth := HeightUnit*float64(cfg.HeightUnits) - MinFloor
	minDepth := math.Min(MinPocketDepth, maxDepth)
	d := cfg.CutoutDepth
	switch {
	case d > maxDepth:
		return maxDepth, fmt.Sprintf("cutout depth %.1f mm exceeds wall capacity; clamped to %.1f mm", d, maxDepth)
	case d < minDepth:
		return minDepth, fmt.Sprintf("cutout depth %.1f mm below minimum; clamped to %.1f mm", d, minDepth)
	default:
		return d, ""
	}
}

// toolFootprint builds the pocket outline of one placed tool: the
// exterior ring inflated by the clearance, minus the interior rings
// (which stay solid as posts), unioned with the tool's finger holes.
// When the round offset collapses the footprint falls back to an
// inflated bounding box and reports a warning.
func toolFootprint(t model.PlacedTool, clearance float64, segs int) (polyclip.Polygon, string, error) {
	ring := geom.FromRing(t.Points)
	var warning string

	pocket := geom.Buffer(ring, clearance, segs)
	if pocket == nil {
		min, max := geom.BoundingBox(polyclip.Polygon{ring})
		if max.X-min.X < 1e-9 || max.Y-min.Y < 1e-9 {
			return nil, "", geomErrf("carve", "tool %s: outline has no area", t.ID)
		}
		pocket = polyclip.Polygon{geom.Rect(
			(min.X+max.X)/2, (min.Y+max.Y)/2,
			max.X-min.X+2*clearance, max.Y-min.Y+2*clearance, 0,
		)}
		warning = fmt.Sprintf("tool %s: clearance offset failed, pocket uses expanded bounding box", t.ID)
	}

	for _, h := range t.Holes {
		if len(h) >= 3 {
			pocket = geom.Difference(pocket, polyclip.Polygon{geom.FromRing(h)})
		}
	}

	for _, fh := range t.FingerHoles {
		var c polyclip.Contour
		switch fh.Shape {
		case model.HoleSquare:
			c = geom.Rect(fh.X, fh.Y, 2*fh.Radius, 2*fh.Radius, fh.Rotation)
		case model.HoleRectangle:
			c = geom.Rect(fh.X, fh.Y, fh.Width, fh.Height, fh.Rotation)
		default:
			c = geom.Circle(fh.X, fh.Y, fh.Radius, segs)
		}
		pocket = geom.Union(pocket, polyclip.Polygon{c})
	}

	return geom.Clean(pocket), warning, nil
}

// carveCutouts subtracts every tool pocket and, when enabled, the magnet
// bores from the shell. Pocket footprints are built concurrently, then
// unioned into a single cutter and subtracted in one pass. Every cutter
// is clipped to the carveable region, so carving can never widen the
// exterior bounding box or undercut a stacking lip.
func carveCutouts(ctx context.Context, s *solid, pb *ProfileBuilder, cfg model.BinConfig, tools []model.PlacedTool, tol Tolerance) ([]string, error) {
	var warnings []string

	wallTop := WallTop(cfg.HeightUnits)

	if len(tools) > 0 {
		depth, warn := pocketDepth(cfg)
		if warn != "" {
			warnings = append(warnings, warn)
		}

		footprints := make([]polyclip.Polygon, len(tools))
		toolWarns := make([]string, len(tools))
		g, _ := errgroup.WithContext(ctx)
		for i, t := range tools {
			g.Go(func() error {
				fp, warn, err := toolFootprint(t, cfg.CutoutClearance, tol.ArcSegments)
				if err != nil {
					return err
				}
				footprints[i] = fp
				toolWarns[i] = warn
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return warnings, err
		}
		for _, w := range toolWarns {
			if w != "" {
				warnings = append(warnings, w)
			}
		}

		combined := geom.Union(footprints...)
		if tol.Nudge != 0 {
			combined = geom.Translate(combined, tol.Nudge, tol.Nudge)
		}
		combined = geom.Clean(geom.Intersection(combined, carveBound(pb, cfg)))
		if geom.Area(combined) <= 0 {
			return warnings, geomErrf("carve", "combined pocket footprint is empty after clipping to the bin outline")
		}
		s.subtractPrism(combined, wallTop-depth, wallTop)
	}

	if cfg.Magnets {
		var bores polyclip.Polygon
		for _, c := range pb.CellCenters() {
			for _, sx := range []float64{-1, 1} {
				for _, sy := range []float64{-1, 1} {
					bores = append(bores, geom.Circle(
						c.X+sx*MagnetOffset, c.Y+sy*MagnetOffset,
						MagnetDiameter/2, tol.ArcSegments,
					))
				}
			}
		}
		s.subtractPrism(bores, 0, MagnetDepth)
	}

	return warnings, nil
}

// carveBound is the region cutters may occupy: the bin outline pulled in
// by SkinMargin so carving never opens the exterior face and, with a
// stacking lip, pulled in to the lip's narrowest inner opening so a
// pocket or recess cannot undercut the lip.
func carveBound(pb *ProfileBuilder, cfg model.BinConfig) polyclip.Polygon {
	inset := SkinMargin
	if cfg.StackingLip {
		inset += lipProfile[0].V
	}
	w, h := pb.Bounds()
	r := CornerRadius - inset
	if r < 0.05 {
		r = 0.05
	}
	return polyclip.Polygon{geom.RoundedRect(0, 0, w-2*inset, h-2*inset, r, pb.Segments)}
}
