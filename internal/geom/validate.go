package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
)

// SelfIntersects reports whether any two non-adjacent edges of the ring
// cross. Shared endpoints between adjacent edges are not intersections.
// Quadratic in ring length, which is fine for hand-edited tool outlines.
func SelfIntersects(ring polyclip.Contour) bool {
	n := len(ring)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1 := ring[i]
		a2 := ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			// Skip the edge itself and the two adjacent edges.
			if j == i || (j+1)%n == i || (i+1)%n == j {
				continue
			}
			b1 := ring[j]
			b2 := ring[(j+1)%n]
			if segmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing between segments a1-a2 and b1-b2.
func segmentsCross(a1, a2, b1, b2 polyclip.Point) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func cross(o, a, b polyclip.Point) float64 {
	v := (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	if math.Abs(v) < 1e-12 {
		return 0
	}
	return v
}
