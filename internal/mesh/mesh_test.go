package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// box builds a closed axis-aligned box mesh with outward-facing quads.
func box(min, max Vec3) *Mesh {
	m := New()
	v := [8]Vec3{
		{min.X, min.Y, min.Z}, {max.X, min.Y, min.Z},
		{max.X, max.Y, min.Z}, {min.X, max.Y, min.Z},
		{min.X, min.Y, max.Z}, {max.X, min.Y, max.Z},
		{max.X, max.Y, max.Z}, {min.X, max.Y, max.Z},
	}
	m.AddQuad(v[3], v[2], v[1], v[0]) // bottom, -z
	m.AddQuad(v[4], v[5], v[6], v[7]) // top, +z
	m.AddQuad(v[0], v[1], v[5], v[4]) // front, -y
	m.AddQuad(v[2], v[3], v[7], v[6]) // back, +y
	m.AddQuad(v[1], v[2], v[6], v[5]) // right, +x
	m.AddQuad(v[3], v[0], v[4], v[7]) // left, -x
	return m
}

func TestBox_WatertightAndVolume(t *testing.T) {
	m := box(Vec3{0, 0, 0}, Vec3{10, 10, 10})
	assert.True(t, m.IsWatertight())
	assert.InDelta(t, 1000, m.Volume(), 1e-9)
}

func TestVertexDeduplication(t *testing.T) {
	m := box(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	assert.Len(t, m.Vertices, 8)
	assert.Len(t, m.Faces, 12)
}

func TestAddTriangle_DropsDegenerate(t *testing.T) {
	m := New()
	m.AddTriangle(Vec3{0, 0, 0}, Vec3{1, 1, 1}, Vec3{2, 2, 2})
	assert.Empty(t, m.Faces)
}

func TestTranslate_MovesBounds(t *testing.T) {
	m := box(Vec3{0, 0, 0}, Vec3{2, 2, 2})
	m.Translate(Vec3{10, 0, -1})
	min, max := m.BoundingBox()
	assert.InDelta(t, 10, min.X, 1e-9)
	assert.InDelta(t, 12, max.X, 1e-9)
	assert.InDelta(t, -1, min.Z, 1e-9)
}

func TestIsWatertight_DetectsHole(t *testing.T) {
	m := box(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	m.Faces = m.Faces[:len(m.Faces)-1]
	assert.False(t, m.IsWatertight())
}

func TestSplitPlane_PreservesVolume(t *testing.T) {
	m := box(Vec3{-10, -5, 0}, Vec3{10, 5, 8})
	total := m.Volume()

	neg, pos, err := m.SplitPlane(AxisX, 2)
	require.NoError(t, err)

	assert.True(t, neg.IsWatertight(), "negative half must stay closed")
	assert.True(t, pos.IsWatertight(), "positive half must stay closed")
	assert.InDelta(t, total, neg.Volume()+pos.Volume(), total*1e-6)

	// The halves carry the expected share.
	assert.InDelta(t, 12*10*8, neg.Volume(), 1e-6)
	assert.InDelta(t, 8*10*8, pos.Volume(), 1e-6)

	_, maxNeg := neg.BoundingBox()
	minPos, _ := pos.BoundingBox()
	assert.InDelta(t, 2, maxNeg.X, 1e-9)
	assert.InDelta(t, 2, minPos.X, 1e-9)
}

func TestSplitPlane_YAxis(t *testing.T) {
	m := box(Vec3{0, -6, 0}, Vec3{4, 6, 4})
	neg, pos, err := m.SplitPlane(AxisY, 0)
	require.NoError(t, err)
	assert.True(t, neg.IsWatertight())
	assert.True(t, pos.IsWatertight())
	assert.InDelta(t, neg.Volume(), pos.Volume(), 1e-6)
}

func TestSplitPlane_MissesMesh(t *testing.T) {
	m := box(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	neg, pos, err := m.SplitPlane(AxisX, 5)
	require.NoError(t, err)
	assert.False(t, neg.Empty())
	assert.True(t, pos.Empty())
	assert.InDelta(t, 1, neg.Volume(), 1e-9)
}

func TestSplitPlane_DisjointBodies(t *testing.T) {
	m := box(Vec3{0, 0, 0}, Vec3{4, 4, 4})
	m.Append(box(Vec3{10, 0, 0}, Vec3{14, 4, 4}))

	neg, pos, err := m.SplitPlane(AxisX, 7)
	require.NoError(t, err)
	assert.True(t, neg.IsWatertight())
	assert.True(t, pos.IsWatertight())
	assert.InDelta(t, 64, neg.Volume(), 1e-9)
	assert.InDelta(t, 64, pos.Volume(), 1e-9)
}

func TestSplitPlane_CutThroughBothBodies(t *testing.T) {
	m := box(Vec3{-4, 0, 0}, Vec3{4, 2, 2})
	m.Append(box(Vec3{-4, 6, 0}, Vec3{4, 8, 2}))

	neg, pos, err := m.SplitPlane(AxisX, 0)
	require.NoError(t, err)
	assert.True(t, neg.IsWatertight())
	assert.True(t, pos.IsWatertight())
	assert.InDelta(t, m.Volume()/2, neg.Volume(), 1e-6)
	assert.InDelta(t, m.Volume()/2, pos.Volume(), 1e-6)
}
