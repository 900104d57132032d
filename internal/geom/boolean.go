package geom

import (
	polyclip "github.com/ctessum/polyclip-go"
)

// Union folds all polygons into one clipped union.
func Union(polys ...polyclip.Polygon) polyclip.Polygon {
	var acc polyclip.Polygon
	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		if len(acc) == 0 {
			acc = p
			continue
		}
		acc = acc.Construct(polyclip.UNION, p)
	}
	return acc
}

// Difference returns a minus b.
func Difference(a, b polyclip.Polygon) polyclip.Polygon {
	if len(a) == 0 {
		return nil
	}
	if len(b) == 0 {
		return a
	}
	return a.Construct(polyclip.DIFFERENCE, b)
}

// Intersection returns the overlap of a and b.
func Intersection(a, b polyclip.Polygon) polyclip.Polygon {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	return a.Construct(polyclip.INTERSECTION, b)
}

// dropSlivers removes contours whose area is below the given threshold.
// Clipping at shared edges can leave degenerate sliver contours that would
// later triangulate to zero-area faces.
func dropSlivers(p polyclip.Polygon, minArea float64) polyclip.Polygon {
	out := p[:0:0]
	for _, c := range p {
		if len(c) >= 3 && absArea(c) >= minArea {
			out = append(out, c)
		}
	}
	return out
}

func absArea(c polyclip.Contour) float64 {
	a := SignedArea(c)
	if a < 0 {
		return -a
	}
	return a
}

// Clean drops sliver contours from a clipping result.
func Clean(p polyclip.Polygon) polyclip.Polygon {
	return dropSlivers(p, 1e-6)
}
