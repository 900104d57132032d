package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// Buffer expands a single ring outward by delta, returning the offset
// polygon. The offset is the Minkowski sum of the ring with a disc of
// radius delta: the filled ring unioned with a rectangle swept along every
// edge and a disc at every vertex. This matches the round-join buffer the
// original pipeline applied as tool clearance.
//
// A nil result means the union collapsed (degenerate input); the caller
// decides whether to fall back to a bounding-box expansion.
func Buffer(ring polyclip.Contour, delta float64, segs int) polyclip.Polygon {
	if len(ring) < 3 {
		return nil
	}
	if delta <= 0 {
		return polyclip.Polygon{ring}
	}

	parts := make([]polyclip.Polygon, 0, 2*len(ring)+1)
	parts = append(parts, polyclip.Polygon{ring})

	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length > 1e-12 {
			// Rectangle of width 2*delta swept along edge a-b.
			nx, ny := -dy/length*delta, dx/length*delta
			quad := polyclip.Contour{
				{X: a.X + nx, Y: a.Y + ny},
				{X: b.X + nx, Y: b.Y + ny},
				{X: b.X - nx, Y: b.Y - ny},
				{X: a.X - nx, Y: a.Y - ny},
			}
			parts = append(parts, polyclip.Polygon{quad})
		}
		parts = append(parts, polyclip.Polygon{Circle(a.X, a.Y, delta, segs)})
	}

	out := Clean(Union(parts...))
	if Area(out) <= 0 {
		return nil
	}
	return out
}
