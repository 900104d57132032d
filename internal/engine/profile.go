// Package engine turns a validated generation request into watertight
// print-ready meshes: the gridfinity shell, the tool pockets and magnet
// bores carved into it, optional embossed or recessed text, and, when the
// bin exceeds the print bed, the split parts.
package engine

import (
	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/geom"
)

// Gridfinity system dimensions, millimeters.
const (
	GridPitch      = 42.0 // cell spacing
	HeightUnit     = 7.0  // one height unit
	BaseHeight     = 4.75 // stacking base, below the wall
	CellWidth      = 41.5 // cell outer width at the base top (GridPitch - 0.5)
	CornerRadius   = 3.75 // outer corner radius at the base top
	LipHeight      = 4.4  // stacking lip above the wall top
	MagnetDiameter = 6.0
	MagnetDepth    = 2.4
	MagnetOffset   = 13.0 // magnet center from cell center, both axes

	// MinFloor is the material kept between the deepest pocket and the
	// base top.
	MinFloor = 2.0
	// MinPocketDepth is the shallowest useful pocket.
	MinPocketDepth = 5.0
	// CavityFloor is the floor thickness above the base in an empty bin.
	CavityFloor = 1.0
	// SkinMargin keeps a thin skin between a carved pocket and the outer
	// wall face so carving can never open the exterior surface.
	SkinMargin = 0.01
)

// breakpoint is one row of a piecewise-linear loft table.
type breakpoint struct {
	Z float64
	V float64
}

// baseProfile gives the half-width of a cell's outer cross-section at
// height Z above the bin bottom. The three spans are the standard base:
// a 0.8 mm taper, a 1.8 mm straight riser, and a 2.15 mm taper out to
// the full cell width.
var baseProfile = []breakpoint{
	{Z: 0, V: 17.8},
	{Z: 0.8, V: 18.6},
	{Z: 2.6, V: 18.6},
	{Z: 4.75, V: 20.75},
}

// lipProfile gives the inset of the lip's inner opening from the bin
// outline at height Z above the wall top. The mating taper mirrors the
// base profile so bins stack. The top row keeps a 0.2 mm flat rim so
// the lip does not terminate in a knife edge.
var lipProfile = []breakpoint{
	{Z: 0, V: 2.6},
	{Z: 0.7, V: 1.9},
	{Z: 2.5, V: 1.9},
	{Z: 4.4, V: 0.2},
}

// lerpTable evaluates a loft table at z, clamping outside its range.
func lerpTable(tbl []breakpoint, z float64) float64 {
	if z <= tbl[0].Z {
		return tbl[0].V
	}
	for i := 1; i < len(tbl); i++ {
		if z <= tbl[i].Z {
			a, b := tbl[i-1], tbl[i]
			t := (z - a.Z) / (b.Z - a.Z)
			return a.V + t*(b.V-a.V)
		}
	}
	return tbl[len(tbl)-1].V
}

// ProfileBuilder produces the cross-sections of a gridfinity bin: the
// per-cell base sections, the outer wall outline, and the stacking lip
// opening. All sections are centered on the origin.
type ProfileBuilder struct {
	GridX, GridY int
	Segments     int // arc tessellation per rounded corner
}

// NewProfileBuilder returns a builder with the default tessellation.
func NewProfileBuilder(gridX, gridY int) *ProfileBuilder {
	return &ProfileBuilder{GridX: gridX, GridY: gridY, Segments: 12}
}

// WallTop returns the z of the wall's top face for the given height units.
func WallTop(heightUnits int) float64 {
	return BaseHeight + HeightUnit*float64(heightUnits)
}

// CellCenters returns the center of every grid cell, row-major.
func (b *ProfileBuilder) CellCenters() []polyclip.Point {
	pts := make([]polyclip.Point, 0, b.GridX*b.GridY)
	for iy := 0; iy < b.GridY; iy++ {
		for ix := 0; ix < b.GridX; ix++ {
			pts = append(pts, polyclip.Point{
				X: (float64(ix) - float64(b.GridX-1)/2) * GridPitch,
				Y: (float64(iy) - float64(b.GridY-1)/2) * GridPitch,
			})
		}
	}
	return pts
}

// BaseSection returns the cross-section of all base cells at height z in
// [0, BaseHeight]. Each cell is a rounded square lofted per baseProfile;
// the corner radius shrinks with the half-width so the flat span of each
// side stays constant and corresponding tessellation vertices line up
// across heights.
func (b *ProfileBuilder) BaseSection(z float64) polyclip.Polygon {
	half := lerpTable(baseProfile, z)
	r := CornerRadius - (CellWidth/2 - half)
	if r < 0.05 {
		r = 0.05
	}
	var out polyclip.Polygon
	for _, c := range b.CellCenters() {
		out = append(out, geom.RoundedRect(c.X, c.Y, half*2, half*2, r, b.Segments))
	}
	return out
}

// Outline returns the bin's outer wall outline, a single rounded
// rectangle spanning all cells.
func (b *ProfileBuilder) Outline() polyclip.Contour {
	w := float64(b.GridX) * GridPitch
	h := float64(b.GridY) * GridPitch
	return geom.RoundedRect(0, 0, w, h, CornerRadius, b.Segments)
}

// LipSection returns the stacking lip cross-section at height z in
// [0, LipHeight] above the wall top: the outer outline with the tapered
// inner opening as a hole.
func (b *ProfileBuilder) LipSection(z float64) polyclip.Polygon {
	inset := lerpTable(lipProfile, z)
	w := float64(b.GridX) * GridPitch
	h := float64(b.GridY) * GridPitch
	ri := CornerRadius - inset
	if ri < 0.05 {
		ri = 0.05
	}
	outer := b.Outline()
	inner := geom.RoundedRect(0, 0, w-2*inset, h-2*inset, ri, b.Segments)
	return polyclip.Polygon{outer, inner}
}

// Bounds returns the overall outer footprint dimensions.
func (b *ProfileBuilder) Bounds() (w, h float64) {
	return float64(b.GridX) * GridPitch, float64(b.GridY) * GridPitch
}
