package export

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/tracefinity/tracebin/internal/mesh"
)

// Body is one named mesh of a multi-body 3MF model.
type Body struct {
	Name string
	Mesh *mesh.Mesh
}

const (
	threemfContentTypes = `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
 <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
 <Default Extension="model" ContentType="application/vnd.ms-package.3dmanufacturing-3dmodel+xml"/>
</Types>`

	threemfRels = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Target="/3D/3dmodel.model" Id="rel-1" Type="http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"/>
</Relationships>`
)

type threemfModel struct {
	XMLName   xml.Name        `xml:"model"`
	Unit      string          `xml:"unit,attr"`
	Namespace string          `xml:"xmlns,attr"`
	Objects   []threemfObject `xml:"resources>object"`
	Items     []threemfItem   `xml:"build>item"`
}

type threemfObject struct {
	ID   int         `xml:"id,attr"`
	Type string      `xml:"type,attr"`
	Name string      `xml:"name,attr,omitempty"`
	Mesh threemfMesh `xml:"mesh"`
}

type threemfMesh struct {
	Vertices  []threemfVertex   `xml:"vertices>vertex"`
	Triangles []threemfTriangle `xml:"triangles>triangle"`
}

type threemfVertex struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
	Z float64 `xml:"z,attr"`
}

type threemfTriangle struct {
	V1 int `xml:"v1,attr"`
	V2 int `xml:"v2,attr"`
	V3 int `xml:"v3,attr"`
}

// Write3MF writes the bodies as a single 3MF package with one object per
// body, all placed in the build without transforms.
func Write3MF(w io.Writer, bodies []Body) error {
	if len(bodies) == 0 {
		return fmt.Errorf("no bodies to export")
	}

	doc := threemfModel{
		Unit:      "millimeter",
		Namespace: "http://schemas.microsoft.com/3dmanufacturing/core/2015/02",
	}
	for i, b := range bodies {
		obj := threemfObject{ID: i + 1, Type: "model", Name: b.Name}
		obj.Mesh.Vertices = make([]threemfVertex, len(b.Mesh.Vertices))
		for j, v := range b.Mesh.Vertices {
			obj.Mesh.Vertices[j] = threemfVertex{X: v.X, Y: v.Y, Z: v.Z}
		}
		obj.Mesh.Triangles = make([]threemfTriangle, len(b.Mesh.Faces))
		for j, f := range b.Mesh.Faces {
			obj.Mesh.Triangles[j] = threemfTriangle{V1: f[0], V2: f[1], V3: f[2]}
		}
		doc.Objects = append(doc.Objects, obj)
		doc.Items = append(doc.Items, threemfItem{ObjectID: i + 1})
	}

	zw := zip.NewWriter(w)
	files := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(threemfContentTypes)},
		{"_rels/.rels", []byte(threemfRels)},
	}
	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(f.body); err != nil {
			return err
		}
	}

	fw, err := zw.Create("3D/3dmodel.model")
	if err != nil {
		return err
	}
	if _, err := fw.Write([]byte(xml.Header)); err != nil {
		return err
	}
	enc := xml.NewEncoder(fw)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return zw.Close()
}

type threemfItem struct {
	ObjectID int `xml:"objectid,attr"`
}

// Write3MFFile writes the bodies to a 3MF file.
func Write3MFFile(path string, bodies []Body) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write3MF(f, bodies); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
