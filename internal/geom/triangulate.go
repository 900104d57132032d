package geom

import (
	"fmt"
	"math"
	"sort"

	polyclip "github.com/ctessum/polyclip-go"
)

// Triangle2D is one triangle of a triangulated planar region.
type Triangle2D [3]polyclip.Point

// Triangulate decomposes the filled region of p (even-odd semantics) into
// triangles. Each even-depth contour is treated as an exterior boundary
// with its directly contained odd-depth contours as holes; holes are
// bridged into the exterior ring and the result is ear-clipped. Input
// contours are used verbatim, so every boundary edge of the region
// appears as a triangle edge exactly once. A region that cannot be
// triangulated is an error, never a silently incomplete result.
func Triangulate(p polyclip.Polygon) ([]Triangle2D, error) {
	var contours polyclip.Polygon
	for _, c := range p {
		if len(c) >= 3 {
			contours = append(contours, c)
		}
	}
	p = contours
	if len(p) == 0 {
		return nil, nil
	}
	depths := Depths(p)

	var tris []Triangle2D
	for i, c := range p {
		if depths[i]%2 != 0 {
			continue
		}
		outer := orient(c, true)

		var holes []polyclip.Contour
		for j, h := range p {
			if j == i || depths[j] != depths[i]+1 {
				continue
			}
			if len(h) >= 3 && contains(c, h[0]) {
				holes = append(holes, orient(h, false))
			}
		}

		merged := outer
		// Bridge holes right-to-left so earlier bridges cannot occlude
		// later ones.
		sort.Slice(holes, func(a, b int) bool {
			return maxX(holes[a]) > maxX(holes[b])
		})
		for _, h := range holes {
			var err error
			merged, err = bridgeHole(merged, h)
			if err != nil {
				return nil, err
			}
		}
		t, err := earClip(merged)
		if err != nil {
			return nil, err
		}
		tris = append(tris, t...)
	}
	return tris, nil
}

// orient returns the contour wound counterclockwise (ccw=true) or
// clockwise (ccw=false).
func orient(c polyclip.Contour, ccw bool) polyclip.Contour {
	if (SignedArea(c) >= 0) == ccw {
		return c
	}
	out := make(polyclip.Contour, len(c))
	for i, p := range c {
		out[len(c)-1-i] = p
	}
	return out
}

func maxX(c polyclip.Contour) float64 {
	m := math.Inf(-1)
	for _, p := range c {
		if p.X > m {
			m = p.X
		}
	}
	return m
}

// bridgeHole splices a clockwise hole into a counterclockwise outer ring
// by connecting the hole's rightmost vertex to a visible outer vertex
// (David Eberly's method, as used by earcut).
func bridgeHole(outer, hole polyclip.Contour) (polyclip.Contour, error) {
	// Rightmost hole vertex.
	hi := 0
	for i, p := range hole {
		if p.X > hole[hi].X {
			hi = i
		}
	}
	m := hole[hi]

	// Closest intersection of the +X ray from m with an outer edge.
	bestX := math.Inf(1)
	bridge := -1
	var ipt polyclip.Point
	n := len(outer)
	for i := 0; i < n; i++ {
		a, b := outer[i], outer[(i+1)%n]
		if (a.Y > m.Y) == (b.Y > m.Y) {
			continue
		}
		x := a.X + (m.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
		if x >= m.X-1e-12 && x < bestX {
			bestX = x
			ipt = polyclip.Point{X: x, Y: m.Y}
			// Candidate bridge vertex: the edge endpoint with the larger X.
			if a.X > b.X {
				bridge = i
			} else {
				bridge = (i + 1) % n
			}
		}
	}
	if bridge < 0 {
		return nil, fmt.Errorf("hole near (%.3f, %.3f) is not enclosed by its outer ring", m.X, m.Y)
	}

	// If a reflex outer vertex lies inside the triangle (m, ipt, candidate),
	// bridge to the one closest in angle to the ray instead.
	cand := outer[bridge]
	bestTan := math.Inf(1)
	for i, p := range outer {
		if i == bridge || !reflex(outer, i) {
			continue
		}
		if pointInTriangle(m, ipt, cand, p) {
			tan := math.Abs(p.Y-m.Y) / (p.X - m.X)
			if p.X > m.X && (tan < bestTan || (tan == bestTan && p.X > outer[bridge].X)) {
				bridge = i
				bestTan = tan
			}
		}
	}

	// Splice: outer[0..bridge] + hole[hi..] + hole[..hi] + hole[hi] + outer[bridge..].
	out := make(polyclip.Contour, 0, len(outer)+len(hole)+2)
	out = append(out, outer[:bridge+1]...)
	for k := 0; k < len(hole); k++ {
		out = append(out, hole[(hi+k)%len(hole)])
	}
	out = append(out, hole[hi])
	out = append(out, outer[bridge:]...)
	return out, nil
}

// reflex reports whether vertex i of a counterclockwise ring is reflex.
func reflex(c polyclip.Contour, i int) bool {
	n := len(c)
	a, b, d := c[(i-1+n)%n], c[i], c[(i+1)%n]
	return (b.X-a.X)*(d.Y-b.Y)-(b.Y-a.Y)*(d.X-b.X) < 0
}

func pointInTriangle(a, b, c, p polyclip.Point) bool {
	d1 := (p.X-a.X)*(b.Y-a.Y) - (p.Y-a.Y)*(b.X-a.X)
	d2 := (p.X-b.X)*(c.Y-b.Y) - (p.Y-b.Y)*(c.X-b.X)
	d3 := (p.X-c.X)*(a.Y-c.Y) - (p.Y-c.Y)*(a.X-c.X)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// earClip triangulates a simple counterclockwise ring (bridge vertices may
// repeat) by iterative ear removal.
func earClip(ring polyclip.Contour) ([]Triangle2D, error) {
	n := len(ring)
	if n < 3 {
		return nil, nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris []Triangle2D
	for len(idx) > 3 {
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i-1+len(idx))%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			a, b, c := ring[prev], ring[cur], ring[next]

			// Must be convex.
			if (b.X-a.X)*(c.Y-b.Y)-(b.Y-a.Y)*(c.X-b.X) <= 1e-12 {
				continue
			}
			// No remaining vertex may lie inside the candidate ear.
			ok := true
			for _, j := range idx {
				if j == prev || j == cur || j == next {
					continue
				}
				p := ring[j]
				if samePoint(p, a) || samePoint(p, b) || samePoint(p, c) {
					continue
				}
				if pointInTriangle(a, b, c, p) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			tris = append(tris, Triangle2D{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// A stall means the remainder is not a simple polygon; emitting
			// a partial fan here would leave unpaired boundary edges.
			return nil, fmt.Errorf("ear clipping stalled with %d of %d vertices left", len(idx), n)
		}
	}
	if len(idx) == 3 {
		a, b, c := ring[idx[0]], ring[idx[1]], ring[idx[2]]
		if math.Abs((b.X-a.X)*(c.Y-b.Y)-(b.Y-a.Y)*(c.X-b.X)) > 1e-12 {
			tris = append(tris, Triangle2D{a, b, c})
		}
	}
	return tris, nil
}

func samePoint(a, b polyclip.Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}
