// Package geom implements the 2D polygon operations the geometry engine is
// built on: shape primitives, boolean set operations (via polyclip-go's
// Martinez-Rueda clipping), outward offsets, validity checks, and
// triangulation of polygons with holes. All coordinates are millimeters.
package geom

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/model"
)

// FromRing converts a model ring to a clipping contour.
func FromRing(r model.Ring) polyclip.Contour {
	c := make(polyclip.Contour, len(r))
	for i, p := range r {
		c[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return c
}

// ToRing converts a clipping contour back to a model ring.
func ToRing(c polyclip.Contour) model.Ring {
	r := make(model.Ring, len(c))
	for i, p := range c {
		r[i] = model.Point{X: p.X, Y: p.Y}
	}
	return r
}

// FromPolygon builds a clipping polygon from an exterior ring and interior
// rings. Contour orientation is irrelevant to the clipper (even-odd
// containment decides holes), so rings are used as supplied.
func FromPolygon(outer model.Ring, holes []model.Ring) polyclip.Polygon {
	p := polyclip.Polygon{FromRing(outer)}
	for _, h := range holes {
		p = append(p, FromRing(h))
	}
	return p
}

// SignedArea returns the signed area of a contour (positive for
// counterclockwise winding).
func SignedArea(c polyclip.Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var s float64
	for i, p := range c {
		q := c[(i+1)%len(c)]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// Area returns the total filled area of a polygon under even-odd semantics.
func Area(p polyclip.Polygon) float64 {
	var total float64
	for i, c := range p {
		a := math.Abs(SignedArea(c))
		if nestingDepth(p, i)%2 == 0 {
			total += a
		} else {
			total -= a
		}
	}
	return total
}

// Translate shifts every contour of p by dx, dy.
func Translate(p polyclip.Polygon, dx, dy float64) polyclip.Polygon {
	out := make(polyclip.Polygon, len(p))
	for i, c := range p {
		oc := make(polyclip.Contour, len(c))
		for j, pt := range c {
			oc[j] = polyclip.Point{X: pt.X + dx, Y: pt.Y + dy}
		}
		out[i] = oc
	}
	return out
}

// Rotate rotates every contour by the given angle in degrees about (cx, cy).
func Rotate(p polyclip.Polygon, degrees, cx, cy float64) polyclip.Polygon {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	out := make(polyclip.Polygon, len(p))
	for i, c := range p {
		oc := make(polyclip.Contour, len(c))
		for j, pt := range c {
			dx, dy := pt.X-cx, pt.Y-cy
			oc[j] = polyclip.Point{X: cx + dx*cos - dy*sin, Y: cy + dx*sin + dy*cos}
		}
		out[i] = oc
	}
	return out
}

// BoundingBox returns the min/max corners over all contours.
func BoundingBox(p polyclip.Polygon) (min, max polyclip.Point) {
	first := true
	for _, c := range p {
		for _, pt := range c {
			if first {
				min, max = pt, pt
				first = false
				continue
			}
			if pt.X < min.X {
				min.X = pt.X
			}
			if pt.Y < min.Y {
				min.Y = pt.Y
			}
			if pt.X > max.X {
				max.X = pt.X
			}
			if pt.Y > max.Y {
				max.Y = pt.Y
			}
		}
	}
	return min, max
}

// Filled reports whether pt lies inside the filled region of p under
// even-odd semantics.
func Filled(p polyclip.Polygon, pt polyclip.Point) bool {
	in := false
	for _, c := range p {
		if len(c) >= 3 && contains(c, pt) {
			in = !in
		}
	}
	return in
}

// contains reports whether point pt lies inside contour c (ray casting;
// points exactly on the boundary are classified arbitrarily).
func contains(c polyclip.Contour, pt polyclip.Point) bool {
	inside := false
	n := len(c)
	for i := 0; i < n; i++ {
		a, b := c[i], c[(i+1)%n]
		if (a.Y > pt.Y) != (b.Y > pt.Y) {
			x := a.X + (pt.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// nestingDepth counts how many other contours of p enclose contour i.
// Even depth means an exterior boundary, odd depth a hole.
func nestingDepth(p polyclip.Polygon, i int) int {
	if len(p[i]) == 0 {
		return 0
	}
	pt := p[i][0]
	depth := 0
	for j, c := range p {
		if j == i || len(c) < 3 {
			continue
		}
		if contains(c, pt) {
			depth++
		}
	}
	return depth
}

// Depths returns the nesting depth of every contour of p.
func Depths(p polyclip.Polygon) []int {
	d := make([]int, len(p))
	for i := range p {
		d[i] = nestingDepth(p, i)
	}
	return d
}
