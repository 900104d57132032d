package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/mesh"
)

// A slab is one z-interval of a solid. Bottom and Top are the outer
// cross-sections at Z0 and Z1; side walls are lofted between them, so
// both must carry the same contour structure (same contours, same vertex
// counts). Holes are carved with vertical walls across the whole slab.
type slab struct {
	Z0, Z1 float64
	Bottom polyclip.Polygon
	Top    polyclip.Polygon
	Holes  polyclip.Polygon
}

// prism returns a slab with identical top and bottom sections.
func prism(section polyclip.Polygon, z0, z1 float64) slab {
	s := orientSection(section, false)
	return slab{Z0: z0, Z1: z1, Bottom: s, Top: s}
}

// loft returns a slab lofted between two sections of identical structure.
func loft(bottom, top polyclip.Polygon, z0, z1 float64) slab {
	return slab{
		Z0:     z0,
		Z1:     z1,
		Bottom: orientSection(bottom, false),
		Top:    orientSection(top, false),
	}
}

// solid is a stack of slabs ordered by Z0. Consecutive slabs need not
// share cross-sections; mismatched areas at an interface become
// horizontal ring caps when meshed.
type solid struct {
	Slabs []slab
}

// orientSection rewinds every contour of p so that even nesting depths
// are counterclockwise and odd depths clockwise. With that convention one
// quad winding rule makes every extruded wall face outward. flip inverts
// the convention, which is what subtracted hole outlines need.
func orientSection(p polyclip.Polygon, flip bool) polyclip.Polygon {
	if len(p) == 0 {
		return p
	}
	depths := geom.Depths(p)
	out := make(polyclip.Polygon, len(p))
	for i, c := range p {
		ccw := depths[i]%2 == 0
		if flip {
			ccw = !ccw
		}
		out[i] = orientContour(c, ccw)
	}
	return out
}

func orientContour(c polyclip.Contour, ccw bool) polyclip.Contour {
	if (geom.SignedArea(c) >= 0) == ccw {
		return c
	}
	r := make(polyclip.Contour, len(c))
	for i, p := range c {
		r[len(c)-1-i] = p
	}
	return r
}

// splitZ subdivides the slab containing z so that z becomes a slab
// boundary. Lofted cross-sections are interpolated vertex-wise. No-op if
// z already lies on a boundary or outside the stack.
func (s *solid) splitZ(z float64) {
	const eps = 1e-9
	for i, sl := range s.Slabs {
		if z <= sl.Z0+eps || z >= sl.Z1-eps {
			continue
		}
		mid := sectionAt(sl, z)
		lower := slab{Z0: sl.Z0, Z1: z, Bottom: sl.Bottom, Top: mid, Holes: sl.Holes}
		upper := slab{Z0: z, Z1: sl.Z1, Bottom: mid, Top: sl.Top, Holes: sl.Holes}
		s.Slabs = append(s.Slabs[:i], append([]slab{lower, upper}, s.Slabs[i+1:]...)...)
		return
	}
}

// sectionAt interpolates a slab's cross-section at height z.
func sectionAt(sl slab, z float64) polyclip.Polygon {
	t := (z - sl.Z0) / (sl.Z1 - sl.Z0)
	out := make(polyclip.Polygon, len(sl.Bottom))
	for i, bc := range sl.Bottom {
		tc := sl.Top[i]
		c := make(polyclip.Contour, len(bc))
		for j, bp := range bc {
			tp := tc[j]
			c[j] = polyclip.Point{
				X: bp.X + t*(tp.X-bp.X),
				Y: bp.Y + t*(tp.Y-bp.Y),
			}
		}
		out[i] = c
	}
	return out
}

// subtractPrism carves a vertical-walled hole with footprint p between
// z0 and z1. The footprint must stay inside the solid's cross-sections
// and must not partially overlap holes already carved in the range;
// callers check overlap before carving. Appending the contours keeps
// them vertex-identical across slab boundaries, which the seam caps
// rely on.
func (s *solid) subtractPrism(p polyclip.Polygon, z0, z1 float64) {
	if len(p) == 0 || z1 <= z0 {
		return
	}
	s.splitZ(z0)
	s.splitZ(z1)
	const eps = 1e-9
	for i := range s.Slabs {
		sl := &s.Slabs[i]
		if sl.Z0 >= z0-eps && sl.Z1 <= z1+eps {
			sl.Holes = append(sl.Holes[:len(sl.Holes):len(sl.Holes)], p...)
		}
	}
}

// holesWithin returns the union of hole footprints carved into slabs
// overlapping the interval [z0, z1].
func (s *solid) holesWithin(z0, z1 float64) polyclip.Polygon {
	const eps = 1e-9
	var out polyclip.Polygon
	for _, sl := range s.Slabs {
		if sl.Z1 <= z0+eps || sl.Z0 >= z1-eps || len(sl.Holes) == 0 {
			continue
		}
		if out == nil {
			out = sl.Holes
		} else {
			out = geom.Union(out, sl.Holes)
		}
	}
	return out
}

// mesh emits the watertight triangle mesh of the stack: lofted side
// walls, vertical hole walls, and horizontal caps at the bottom, top,
// and every seam where consecutive cross-sections differ.
func (s *solid) mesh() (*mesh.Mesh, error) {
	m := mesh.New()

	for i := range s.Slabs {
		sl := &s.Slabs[i]
		if len(sl.Bottom) != len(sl.Top) {
			return nil, geomErrf("mesh", "loft sections differ: %d vs %d contours", len(sl.Bottom), len(sl.Top))
		}
		// Lofted outer walls.
		for ci, bc := range sl.Bottom {
			tc := sl.Top[ci]
			if len(bc) != len(tc) {
				return nil, geomErrf("mesh", "loft contour %d differs: %d vs %d points", ci, len(bc), len(tc))
			}
			wallLoop(m, bc, tc, sl.Z0, sl.Z1)
		}
		// Vertical hole walls: subtracted outlines use flipped winding so
		// their faces point into the opening.
		for _, hc := range orientSection(sl.Holes, true) {
			wallLoop(m, hc, hc, sl.Z0, sl.Z1)
		}
	}

	// Caps are triangulated from the exact contours the wall loops use,
	// never from re-clipped geometry, so every cap boundary edge pairs
	// one-to-one with a wall edge.
	first, last := s.Slabs[0], s.Slabs[len(s.Slabs)-1]
	if err := capFaces(m, faceContours(first.Bottom, first.Holes), first.Z0, false); err != nil {
		return nil, err
	}
	if err := capFaces(m, faceContours(last.Top, last.Holes), last.Z1, true); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(s.Slabs); i++ {
		if err := seamCaps(m, &s.Slabs[i], &s.Slabs[i+1]); err != nil {
			return nil, err
		}
	}

	if m.Empty() {
		return nil, geomErrf("mesh", "empty solid")
	}
	return m, nil
}

// faceContours collects the boundary contours of one horizontal slab
// face: the cross-section plus its hole outlines, filled even-odd.
func faceContours(section, holes polyclip.Polygon) polyclip.Polygon {
	out := make(polyclip.Polygon, 0, len(section)+len(holes))
	out = append(out, section...)
	out = append(out, holes...)
	return out
}

// capFaces triangulates one horizontal face region at height z.
func capFaces(m *mesh.Mesh, region polyclip.Polygon, z float64, up bool) error {
	tris, err := geom.Triangulate(region)
	if err != nil {
		return geomErrf("mesh", "cap at z=%.3f: %v", z, err)
	}
	for _, t := range tris {
		a := mesh.Vec3{X: t[0].X, Y: t[0].Y, Z: z}
		b := mesh.Vec3{X: t[1].X, Y: t[1].Y, Z: z}
		c := mesh.Vec3{X: t[2].X, Y: t[2].Y, Z: z}
		if up {
			m.AddTriangle(a, b, c)
		} else {
			m.AddTriangle(a, c, b)
		}
	}
	return nil
}

// seamCaps emits the horizontal caps where two stacked slabs meet.
// Contours present on both faces cancel: material (or an opening)
// continues through the seam there. What remains bounds, under even-odd
// filling, the region exposed on exactly one side; each triangle faces
// up when the lower slab holds the material, down when the upper slab
// does.
func seamCaps(m *mesh.Mesh, below, above *slab) error {
	b := faceContours(below.Top, below.Holes)
	a := faceContours(above.Bottom, above.Holes)
	b, a = cancelMatching(b, a)
	if len(b)+len(a) == 0 {
		return nil
	}
	z := below.Z1
	tris, err := geom.Triangulate(append(b, a...))
	if err != nil {
		return geomErrf("mesh", "seam at z=%.3f: %v", z, err)
	}
	for _, t := range tris {
		cx := (t[0].X + t[1].X + t[2].X) / 3
		cy := (t[0].Y + t[1].Y + t[2].Y) / 3
		up := solidAt(below, polyclip.Point{X: cx, Y: cy})
		va := mesh.Vec3{X: t[0].X, Y: t[0].Y, Z: z}
		vb := mesh.Vec3{X: t[1].X, Y: t[1].Y, Z: z}
		vc := mesh.Vec3{X: t[2].X, Y: t[2].Y, Z: z}
		if up {
			m.AddTriangle(va, vb, vc)
		} else {
			m.AddTriangle(va, vc, vb)
		}
	}
	return nil
}

// solidAt reports whether the slab holds material at the 2D point p on
// its top face.
func solidAt(sl *slab, p polyclip.Point) bool {
	return geom.Filled(sl.Top, p) && !geom.Filled(sl.Holes, p)
}

// cancelMatching removes contours that appear, as point sets, on both
// faces of a seam. Matching is order- and winding-insensitive and
// quantized to the mesh vertex resolution.
func cancelMatching(b, a polyclip.Polygon) (polyclip.Polygon, polyclip.Polygon) {
	avail := make(map[string]int, len(a))
	for _, c := range a {
		avail[contourSig(c)]++
	}
	matched := make(map[string]int, len(a))
	var bOut polyclip.Polygon
	for _, c := range b {
		sig := contourSig(c)
		if matched[sig] < avail[sig] {
			matched[sig]++
			continue
		}
		bOut = append(bOut, c)
	}
	var aOut polyclip.Polygon
	for _, c := range a {
		sig := contourSig(c)
		if matched[sig] > 0 {
			matched[sig]--
			continue
		}
		aOut = append(aOut, c)
	}
	return bOut, aOut
}

func contourSig(c polyclip.Contour) string {
	pts := make([]string, len(c))
	for i, p := range c {
		pts[i] = fmt.Sprintf("%d,%d",
			int64(math.Round(p.X/1e-6)), int64(math.Round(p.Y/1e-6)))
	}
	sort.Strings(pts)
	return strings.Join(pts, ";")
}

// wallLoop extrudes one contour between two heights as a quad strip. The
// bottom and top contours must have equal length; for vertical walls they
// are the same contour.
func wallLoop(m *mesh.Mesh, bottom, top polyclip.Contour, z0, z1 float64) {
	n := len(bottom)
	for j := 0; j < n; j++ {
		k := (j + 1) % n
		b0 := mesh.Vec3{X: bottom[j].X, Y: bottom[j].Y, Z: z0}
		b1 := mesh.Vec3{X: bottom[k].X, Y: bottom[k].Y, Z: z0}
		t1 := mesh.Vec3{X: top[k].X, Y: top[k].Y, Z: z1}
		t0 := mesh.Vec3{X: top[j].X, Y: top[j].Y, Z: z1}
		m.AddQuad(b0, b1, t1, t0)
	}
}

// footprint returns the union of every slab's larger cross-section,
// useful for bounding checks.
func (s *solid) footprint() polyclip.Polygon {
	var out polyclip.Polygon
	for _, sl := range s.Slabs {
		sec := sl.Bottom
		if area(sl.Top) > area(sl.Bottom) {
			sec = sl.Top
		}
		if out == nil {
			out = sec
		} else {
			out = geom.Union(out, sec)
		}
	}
	return out
}

func area(p polyclip.Polygon) float64 {
	var a float64
	for _, c := range p {
		a += math.Abs(geom.SignedArea(c))
	}
	return a
}
