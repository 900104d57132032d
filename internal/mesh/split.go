package mesh

import (
	"fmt"
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/geom"
)

// Axis selects a splitting plane orientation.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

const planeEps = 1e-7

// SplitPlane cuts a watertight mesh with the plane axis=offset and returns
// the negative-side and positive-side halves, both capped so each remains
// watertight. Either half may be empty if the plane misses the mesh.
func (m *Mesh) SplitPlane(axis Axis, offset float64) (neg, pos *Mesh, err error) {
	neg, pos = New(), New()

	coord := func(v Vec3) float64 {
		if axis == AxisX {
			return v.X
		}
		return v.Y
	}

	// Chords where faces cross the plane; they close into the cap outline.
	type chord struct{ a, b Vec3 }
	var chords []chord

	for _, f := range m.Faces {
		tri := [3]Vec3{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
		var d [3]float64
		allNeg, allPos := true, true
		for i, v := range tri {
			d[i] = coord(v) - offset
			if math.Abs(d[i]) < planeEps {
				d[i] = 0
			}
			if d[i] > 0 {
				allNeg = false
			}
			if d[i] < 0 {
				allPos = false
			}
		}
		switch {
		case allNeg:
			neg.AddTriangle(tri[0], tri[1], tri[2])
		case allPos:
			pos.AddTriangle(tri[0], tri[1], tri[2])
		default:
			np, pp, cut := clipTriangle(tri, d)
			addPolygon(neg, np)
			addPolygon(pos, pp)
			if cut[0] != cut[1] {
				chords = append(chords, chord{cut[0], cut[1]})
			}
		}
	}

	if len(chords) > 0 {
		// Project chords into plane coordinates and assemble cap loops.
		uv := func(v Vec3) polyclip.Point {
			if axis == AxisX {
				return polyclip.Point{X: v.Y, Y: v.Z}
			}
			return polyclip.Point{X: v.X, Y: v.Z}
		}
		var segs [][2]polyclip.Point
		for _, c := range chords {
			a, b := uv(c.a), uv(c.b)
			if math.Hypot(a.X-b.X, a.Y-b.Y) > 1e-9 {
				segs = append(segs, [2]polyclip.Point{a, b})
			}
		}
		loops, lerr := assembleLoops(segs)
		if lerr != nil {
			return nil, nil, fmt.Errorf("cap outline at %v=%.3f: %w", axisName(axis), offset, lerr)
		}
		tris, terr := geom.Triangulate(loops)
		if terr != nil {
			return nil, nil, fmt.Errorf("cap fill at %v=%.3f: %w", axisName(axis), offset, terr)
		}
		for _, t := range tris {
			var p [3]Vec3
			for i, pt := range t {
				if axis == AxisX {
					p[i] = Vec3{X: offset, Y: pt.X, Z: pt.Y}
				} else {
					p[i] = Vec3{X: pt.X, Y: offset, Z: pt.Y}
				}
			}
			if axis == AxisX {
				// CCW in (y, z) faces +x: outward for the negative half.
				neg.AddTriangle(p[0], p[1], p[2])
				pos.AddTriangle(p[0], p[2], p[1])
			} else {
				// CCW in (x, z) faces -y: outward for the positive half.
				pos.AddTriangle(p[0], p[1], p[2])
				neg.AddTriangle(p[0], p[2], p[1])
			}
		}
	}

	return neg, pos, nil
}

func axisName(a Axis) string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// clipTriangle splits one triangle crossing the plane into the polygon on
// each side, plus the chord endpoints on the plane.
func clipTriangle(tri [3]Vec3, d [3]float64) (negPoly, posPoly []Vec3, cut [2]Vec3) {
	var cuts []Vec3
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		vi, vj := tri[i], tri[j]
		if d[i] <= 0 {
			negPoly = append(negPoly, vi)
		}
		if d[i] >= 0 {
			posPoly = append(posPoly, vi)
		}
		if (d[i] < 0 && d[j] > 0) || (d[i] > 0 && d[j] < 0) {
			t := d[i] / (d[i] - d[j])
			p := Vec3{
				X: vi.X + t*(vj.X-vi.X),
				Y: vi.Y + t*(vj.Y-vi.Y),
				Z: vi.Z + t*(vj.Z-vi.Z),
			}
			negPoly = append(negPoly, p)
			posPoly = append(posPoly, p)
			cuts = append(cuts, p)
		} else if d[i] == 0 {
			cuts = append(cuts, vi)
		}
	}
	if len(cuts) >= 2 {
		cut[0], cut[1] = cuts[0], cuts[1]
	}
	return negPoly, posPoly, cut
}

// addPolygon fan-triangulates a convex clip polygon into the mesh.
func addPolygon(m *Mesh, poly []Vec3) {
	for i := 1; i+1 < len(poly); i++ {
		m.AddTriangle(poly[0], poly[i], poly[i+1])
	}
}

// assembleLoops chains undirected segments into closed loops by endpoint
// adjacency. The input comes from slicing a watertight mesh, so every
// endpoint must be shared by exactly two segments.
func assembleLoops(segs [][2]polyclip.Point) (polyclip.Polygon, error) {
	const q = 1e-6
	type key struct{ x, y int64 }
	kf := func(p polyclip.Point) key {
		return key{int64(math.Round(p.X / q)), int64(math.Round(p.Y / q))}
	}

	adj := make(map[key][]int)
	for i, s := range segs {
		adj[kf(s[0])] = append(adj[kf(s[0])], i)
		adj[kf(s[1])] = append(adj[kf(s[1])], i)
	}

	used := make([]bool, len(segs))
	var loops polyclip.Polygon
	for start := range segs {
		if used[start] {
			continue
		}
		var loop polyclip.Contour
		cur := start
		pt := segs[start][0]
		for {
			used[cur] = true
			loop = append(loop, pt)
			// Advance to the far endpoint of the current segment.
			if kf(segs[cur][0]) == kf(pt) {
				pt = segs[cur][1]
			} else {
				pt = segs[cur][0]
			}
			next := -1
			for _, cand := range adj[kf(pt)] {
				if !used[cand] {
					next = cand
					break
				}
			}
			if next < 0 {
				break
			}
			cur = next
		}
		if len(loop) < 3 {
			return nil, fmt.Errorf("open cross-section loop with %d points", len(loop))
		}
		if kf(pt) != kf(loop[0]) {
			return nil, fmt.Errorf("cross-section loop does not close")
		}
		loops = append(loops, loop)
	}
	return loops, nil
}
