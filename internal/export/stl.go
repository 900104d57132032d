// Package export writes generated bin meshes to the printable output
// formats: binary STL, 3MF, the multi-part ZIP bundle, QR-coded part
// labels, and DXF outline drawings.
package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/tracefinity/tracebin/internal/mesh"
)

// WriteSTL writes the mesh as binary STL. The header carries the model
// name truncated to the 80-byte header field.
func WriteSTL(w io.Writer, m *mesh.Mesh, name string) error {
	bw := bufio.NewWriter(w)

	var header [80]byte
	copy(header[:], name)
	if _, err := bw.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return err
	}

	var rec [50]byte
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		if l := n.Length(); l > 0 {
			n = mesh.Vec3{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
		}
		off := 0
		for _, v := range []mesh.Vec3{n, a, b, c} {
			binary.LittleEndian.PutUint32(rec[off:], math.Float32bits(float32(v.X)))
			binary.LittleEndian.PutUint32(rec[off+4:], math.Float32bits(float32(v.Y)))
			binary.LittleEndian.PutUint32(rec[off+8:], math.Float32bits(float32(v.Z)))
			off += 12
		}
		rec[48], rec[49] = 0, 0
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSTLFile writes the mesh to a binary STL file.
func WriteSTLFile(path string, m *mesh.Mesh, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSTL(f, m, name); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadSTL parses a binary STL stream back into a mesh, merging shared
// vertices. Used to verify round trips; ASCII STL is not supported.
func ReadSTL(r io.Reader) (*mesh.Mesh, error) {
	br := bufio.NewReader(r)

	var header [80]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var count uint32
	if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("read triangle count: %w", err)
	}

	m := mesh.New()
	var rec [50]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, rec[:]); err != nil {
			return nil, fmt.Errorf("read triangle %d: %w", i, err)
		}
		var tri [3]mesh.Vec3
		for v := 0; v < 3; v++ {
			off := 12 + v*12 // skip the stored normal
			tri[v] = mesh.Vec3{
				X: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))),
				Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+4:]))),
				Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(rec[off+8:]))),
			}
		}
		m.AddTriangle(tri[0], tri[1], tri[2])
	}
	return m, nil
}
