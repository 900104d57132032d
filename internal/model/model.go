// Package model defines the data types exchanged between the editing layer
// and the geometry engine: tool outlines, bin configuration, text labels,
// and generation requests/artifacts. All coordinates are millimeters.
package model

import (
	"math"

	"github.com/google/uuid"
)

// HoleShape enumerates the supported finger hole shapes.
type HoleShape string

const (
	HoleCircle    HoleShape = "circle"
	HoleSquare    HoleShape = "square"
	HoleRectangle HoleShape = "rectangle"
)

// Point is a 2D coordinate in mm.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Ring is a closed polygon ring as an ordered point sequence.
// The ring is implicitly closed: the last point connects back to the first.
type Ring []Point

// BoundingBox returns the min and max corners of the ring.
func (r Ring) BoundingBox() (min, max Point) {
	if len(r) == 0 {
		return Point{}, Point{}
	}
	min, max = r[0], r[0]
	for _, p := range r[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (r Ring) Translate(dx, dy float64) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// Rotate rotates the ring by the given angle in degrees about the anchor point.
func (r Ring) Rotate(degrees float64, anchor Point) Ring {
	rad := degrees * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	out := make(Ring, len(r))
	for i, p := range r {
		dx, dy := p.X-anchor.X, p.Y-anchor.Y
		out[i] = Point{
			X: anchor.X + dx*cos - dy*sin,
			Y: anchor.Y + dx*sin + dy*cos,
		}
	}
	return out
}

// Centroid returns the arithmetic mean of the ring points.
func (r Ring) Centroid() Point {
	if len(r) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range r {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(r))
	return Point{X: sx / n, Y: sy / n}
}

// FingerHole is a cutout intended to ease tool removal from its pocket.
// Radius is the half-width for square holes; Width/Height apply to
// rectangles only.
type FingerHole struct {
	ID       string    `json:"id"`
	Shape    HoleShape `json:"shape"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Radius   float64   `json:"radius"`
	Width    float64   `json:"width,omitempty"`
	Height   float64   `json:"height,omitempty"`
	Rotation float64   `json:"rotation"` // degrees
}

// Polygon is a traced tool silhouette: an exterior ring, zero or more
// interior rings (holes already cut by the editor), and finger holes.
type Polygon struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Points      Ring         `json:"points"`
	Holes       []Ring       `json:"holes,omitempty"`
	FingerHoles []FingerHole `json:"finger_holes,omitempty"`
}

// NewPolygon creates a labeled polygon with a fresh id.
func NewPolygon(label string, points Ring) Polygon {
	return Polygon{
		ID:     uuid.New().String()[:8],
		Label:  label,
		Points: points,
	}
}

// PlacedTool is a Polygon positioned within a bin: its points, interior
// rings and finger holes are in absolute bin coordinates, with Rotation
// recording the placement rotation applied by the editor.
type PlacedTool struct {
	ID          string       `json:"id"`
	ToolID      string       `json:"tool_id,omitempty"`
	Label       string       `json:"label"`
	Points      Ring         `json:"points"`
	Holes       []Ring       `json:"holes,omitempty"`
	FingerHoles []FingerHole `json:"finger_holes,omitempty"`
	Rotation    float64      `json:"rotation"` // degrees
}

// Translate shifts the tool outline, interior rings and finger holes.
func (t PlacedTool) Translate(dx, dy float64) PlacedTool {
	out := t
	out.Points = t.Points.Translate(dx, dy)
	if len(t.Holes) > 0 {
		out.Holes = make([]Ring, len(t.Holes))
		for i, h := range t.Holes {
			out.Holes[i] = h.Translate(dx, dy)
		}
	}
	if len(t.FingerHoles) > 0 {
		out.FingerHoles = make([]FingerHole, len(t.FingerHoles))
		for i, fh := range t.FingerHoles {
			fh.X += dx
			fh.Y += dy
			out.FingerHoles[i] = fh
		}
	}
	return out
}

// BinConfig holds the parametric bin description.
type BinConfig struct {
	GridX           int     `json:"grid_x"`
	GridY           int     `json:"grid_y"`
	HeightUnits     int     `json:"height_units"`
	Magnets         bool    `json:"magnets"`
	StackingLip     bool    `json:"stacking_lip"`
	WallThickness   float64 `json:"wall_thickness"`   // mm
	CutoutDepth     float64 `json:"cutout_depth"`     // mm
	CutoutClearance float64 `json:"cutout_clearance"` // mm
	BedSize         float64 `json:"bed_size"`         // mm, 0 = unconstrained
}

// DefaultBinConfig returns the standard 2x2x4 magnet bin configuration.
func DefaultBinConfig() BinConfig {
	return BinConfig{
		GridX:           2,
		GridY:           2,
		HeightUnits:     4,
		Magnets:         true,
		StackingLip:     true,
		WallThickness:   1.6,
		CutoutDepth:     20.0,
		CutoutClearance: 1.0,
		BedSize:         0,
	}
}

// TextLabel is a text annotation on the bin top surface. Emboss keeps the
// text as a separate raised body; otherwise the text is recessed into the
// shell. Depth is the extrusion depth in mm.
type TextLabel struct {
	ID       string  `json:"id,omitempty"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"` // mm cap height scale
	Rotation float64 `json:"rotation"`  // degrees about the anchor
	Emboss   bool    `json:"emboss"`
	Depth    float64 `json:"depth"` // mm
}

// GenerateRequest is the full input to one generation run. It is supplied
// fresh by the session layer on every request and is the unit the content
// hash is computed over.
type GenerateRequest struct {
	Config BinConfig    `json:"bin_config"`
	Tools  []PlacedTool `json:"placed_tools"`
	Labels []TextLabel  `json:"text_labels,omitempty"`

	// AutoSize recomputes the grid from the tool extents and recenters
	// the tools before generating, overriding GridX and GridY.
	AutoSize bool `json:"auto_size,omitempty"`
}

// Dimensions describes an axis-aligned extent in mm.
type Dimensions struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

// PartInfo describes one exported part of a (possibly split) bin.
type PartInfo struct {
	Index    int        `json:"index"` // 1-based print order
	FileName string     `json:"file_name"`
	Size     Dimensions `json:"size"`
	Volume   float64    `json:"volume_mm3"`
}

// GeneratedArtifact is the metadata of a completed generation: the output
// mesh files plus the inputs' content hash. It is superseded, never merged,
// by the next successful generation for the same entity.
type GeneratedArtifact struct {
	Hash      string     `json:"hash"`
	Bounds    Dimensions `json:"bounds"`
	PartCount int        `json:"part_count"`
	Split     bool       `json:"split"`
	Parts     []PartInfo `json:"parts,omitempty"`
	Files     []string   `json:"files"`
	Warnings  []string   `json:"warnings,omitempty"`
}
