// Package mesh provides an indexed triangle mesh with the operations the
// bin generator needs: merging, measurement, watertightness checking, and
// capped plane splitting. Vertices are deduplicated on insertion so shared
// edges index the same vertex, which is what makes the watertightness test
// meaningful.
package mesh

import (
	"math"
)

// Vec3 is a point in 3D space, millimeters.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Cross returns the cross product v x w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Dot returns the dot product.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// quantum is the vertex merge resolution. Coordinates within 1e-6 mm are
// the same vertex.
const quantum = 1e-6

type vkey struct{ x, y, z int64 }

func keyOf(v Vec3) vkey {
	return vkey{
		x: int64(math.Round(v.X / quantum)),
		y: int64(math.Round(v.Y / quantum)),
		z: int64(math.Round(v.Z / quantum)),
	}
}

// Mesh is an indexed triangle mesh. Faces wind counterclockwise when seen
// from outside the solid.
type Mesh struct {
	Vertices []Vec3
	Faces    [][3]int

	index map[vkey]int
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{index: make(map[vkey]int)}
}

func (m *Mesh) vertex(v Vec3) int {
	if m.index == nil {
		m.rebuildIndex()
	}
	k := keyOf(v)
	if i, ok := m.index[k]; ok {
		return i
	}
	i := len(m.Vertices)
	m.Vertices = append(m.Vertices, v)
	m.index[k] = i
	return i
}

func (m *Mesh) rebuildIndex() {
	m.index = make(map[vkey]int, len(m.Vertices))
	for i, v := range m.Vertices {
		if _, ok := m.index[keyOf(v)]; !ok {
			m.index[keyOf(v)] = i
		}
	}
}

// AddTriangle appends one face, merging coincident vertices and dropping
// degenerate (zero-area) triangles.
func (m *Mesh) AddTriangle(a, b, c Vec3) {
	ia, ib, ic := m.vertex(a), m.vertex(b), m.vertex(c)
	if ia == ib || ib == ic || ic == ia {
		return
	}
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < 1e-12 {
		return
	}
	m.Faces = append(m.Faces, [3]int{ia, ib, ic})
}

// AddQuad appends two triangles for the quad a-b-c-d (counterclockwise).
func (m *Mesh) AddQuad(a, b, c, d Vec3) {
	m.AddTriangle(a, b, c)
	m.AddTriangle(a, c, d)
}

// Append copies all faces of other into m.
func (m *Mesh) Append(other *Mesh) {
	for _, f := range other.Faces {
		m.AddTriangle(other.Vertices[f[0]], other.Vertices[f[1]], other.Vertices[f[2]])
	}
}

// Translate shifts the whole mesh in place.
func (m *Mesh) Translate(d Vec3) {
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Add(d)
	}
	m.index = nil
}

// Volume returns the enclosed volume in mm^3, computed as the sum of signed
// tetrahedra against the origin. Meaningful for watertight meshes.
func (m *Mesh) Volume() float64 {
	var total float64
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		total += a.Dot(b.Cross(c)) / 6
	}
	return math.Abs(total)
}

// BoundingBox returns the axis-aligned extent of the mesh.
func (m *Mesh) BoundingBox() (min, max Vec3) {
	if len(m.Vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	min, max = m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		min.X = math.Min(min.X, v.X)
		min.Y = math.Min(min.Y, v.Y)
		min.Z = math.Min(min.Z, v.Z)
		max.X = math.Max(max.X, v.X)
		max.Y = math.Max(max.Y, v.Y)
		max.Z = math.Max(max.Z, v.Z)
	}
	return min, max
}

// IsWatertight reports whether every edge is shared by exactly two faces
// with opposite direction. A mesh that fails this check has holes or
// non-manifold seams and must not be exported.
func (m *Mesh) IsWatertight() bool {
	if len(m.Faces) == 0 {
		return false
	}
	type edge struct{ a, b int }
	counts := make(map[edge]int, len(m.Faces)*3)
	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			if a < b {
				counts[edge{a, b}]++
			} else {
				counts[edge{b, a}]--
			}
		}
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// Empty reports whether the mesh has no faces.
func (m *Mesh) Empty() bool { return len(m.Faces) == 0 }
