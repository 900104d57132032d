package engine

import (
	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/model"
)

// assembleShell builds the uncut bin solid: the lofted base cells, the
// straight wall, and, when enabled, the stacking lip. When the request
// carries no cutouts the bin is hollowed into an open tray with
// WallThickness walls and a thin floor above the base; with cutouts the
// wall stays solid and pockets are carved later.
func assembleShell(cfg model.BinConfig, hollow bool) (*solid, *ProfileBuilder) {
	pb := NewProfileBuilder(cfg.GridX, cfg.GridY)
	wallTop := WallTop(cfg.HeightUnits)

	var s solid

	// Base: one lofted slab per span of the profile table.
	for i := 0; i+1 < len(baseProfile); i++ {
		z0, z1 := baseProfile[i].Z, baseProfile[i+1].Z
		s.Slabs = append(s.Slabs, loft(pb.BaseSection(z0), pb.BaseSection(z1), z0, z1))
	}

	// Wall: straight extrusion of the outer outline.
	s.Slabs = append(s.Slabs, prism(polyclip.Polygon{pb.Outline()}, BaseHeight, wallTop))

	// Stacking lip above the wall top.
	if cfg.StackingLip {
		for i := 0; i+1 < len(lipProfile); i++ {
			z0, z1 := lipProfile[i].Z, lipProfile[i+1].Z
			s.Slabs = append(s.Slabs, loft(pb.LipSection(z0), pb.LipSection(z1), wallTop+z0, wallTop+z1))
		}
	}

	if hollow {
		w, h := pb.Bounds()
		t := cfg.WallThickness
		ri := CornerRadius - t
		if ri < 0.05 {
			ri = 0.05
		}
		cavity := geom.RoundedRect(0, 0, w-2*t, h-2*t, ri, pb.Segments)
		s.subtractPrism(polyclip.Polygon{cavity}, BaseHeight+CavityFloor, wallTop)
	}

	return &s, pb
}
