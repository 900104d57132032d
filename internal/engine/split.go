package engine

import (
	"fmt"
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/mesh"
	"github.com/tracefinity/tracebin/internal/model"
)

// splitPlan lists the cut plane coordinates, all on grid cell boundaries.
type splitPlan struct {
	XCuts []float64
	YCuts []float64
}

func (p *splitPlan) empty() bool {
	return p == nil || (len(p.XCuts) == 0 && len(p.YCuts) == 0)
}

// fitsBed reports whether a w x h footprint can be printed on a square
// bed, either axis-aligned or rotated 45 degrees across the diagonal.
func fitsBed(w, h, bed float64) bool {
	if w <= bed && h <= bed {
		return true
	}
	return (w+h)/math.Sqrt2 <= bed
}

// blockedInterval is a coordinate range no cut plane may pass through
// because a carved pocket crosses it.
type blockedInterval struct{ lo, hi float64 }

func (b blockedInterval) covers(x float64) bool { return x >= b.lo && x <= b.hi }

// planSplit decides where to cut a bin that exceeds the print bed. Cuts
// run along grid cell boundaries, distributed as evenly as the pockets
// allow; a cut landing inside a pocket footprint is shifted to the
// nearest free boundary. A zero bed size disables splitting.
func planSplit(cfg model.BinConfig, tools []model.PlacedTool) (*splitPlan, []string, error) {
	bed := cfg.BedSize
	if bed <= 0 {
		return nil, nil, nil
	}
	w := float64(cfg.GridX) * GridPitch
	h := float64(cfg.GridY) * GridPitch
	if fitsBed(w, h, bed) {
		return nil, nil, nil
	}

	// Pocket footprints, inflated by the clearance, block cut planes.
	pad := cfg.CutoutClearance + SkinMargin
	blockedX := make([]blockedInterval, 0, len(tools))
	blockedY := make([]blockedInterval, 0, len(tools))
	for _, t := range tools {
		lo, hi := geom.BoundingBox(polyclip.Polygon{geom.FromRing(t.Points)})
		blockedX = append(blockedX, blockedInterval{lo.X - pad, hi.X + pad})
		blockedY = append(blockedY, blockedInterval{lo.Y - pad, hi.Y + pad})
	}

	var plan splitPlan
	var warnings []string
	if w > bed {
		cuts, ws, err := axisCuts("x", cfg.GridX, bed, blockedX)
		warnings = append(warnings, ws...)
		if err != nil {
			return nil, warnings, err
		}
		plan.XCuts = cuts
	}
	if h > bed {
		cuts, ws, err := axisCuts("y", cfg.GridY, bed, blockedY)
		warnings = append(warnings, ws...)
		if err != nil {
			return nil, warnings, err
		}
		plan.YCuts = cuts
	}
	return &plan, warnings, nil
}

// axisCuts picks cut boundaries along one axis of n cells. It starts from
// the evenly distributed ideal, shifts each cut to the nearest boundary
// clear of every blocked interval, and fails with
// UnsplittableGeometryError when no boundary in a cut's feasible range is
// clear.
func axisCuts(axis string, n int, bed float64, blocked []blockedInterval) ([]float64, []string, error) {
	maxUnits := int(bed / GridPitch)
	if maxUnits < 1 {
		return nil, nil, &UnsplittableGeometryError{
			Axis:   axis,
			Reason: fmt.Sprintf("a single %.0f mm cell exceeds the %.0f mm bed", GridPitch, bed),
		}
	}
	if n <= maxUnits {
		return nil, nil, nil
	}

	pieces := (n + maxUnits - 1) / maxUnits

	// Even distribution of cells over pieces; boundaries are running sums.
	ideal := make([]int, 0, pieces-1)
	base, extra := n/pieces, n%pieces
	acc := 0
	for i := 0; i < pieces-1; i++ {
		size := base
		if i < extra {
			size++
		}
		acc += size
		ideal = append(ideal, acc)
	}

	// Boundary k separates cells [0,k) from [k,n); the bin is centered.
	coord := func(k int) float64 { return (float64(k) - float64(n)/2) * GridPitch }
	clear := func(k int) bool {
		x := coord(k)
		for _, b := range blocked {
			if b.covers(x) {
				return false
			}
		}
		return true
	}

	var warnings []string
	cuts := make([]float64, 0, len(ideal))
	prev := 0
	for i, want := range ideal {
		// Feasible range for this boundary: the piece behind it may not
		// exceed maxUnits, and the remaining pieces must still be able to
		// cover the rest.
		lo := n - maxUnits*(pieces-1-i)
		if lo < prev+1 {
			lo = prev + 1
		}
		hi := prev + maxUnits
		if hi > n-1 {
			hi = n - 1
		}

		chosen := -1
		for d := 0; chosen < 0; d++ {
			above, below := want+d, want-d
			if above > hi && below < lo {
				break
			}
			if above >= lo && above <= hi && clear(above) {
				chosen = above
			} else if d > 0 && below >= lo && below <= hi && clear(below) {
				chosen = below
			}
		}
		if chosen < 0 {
			return nil, warnings, &UnsplittableGeometryError{
				Axis:   axis,
				Reason: "every usable grid boundary crosses a tool cutout",
			}
		}
		if chosen != want {
			warnings = append(warnings, fmt.Sprintf(
				"%s split moved from cell boundary %d to %d to avoid a cutout", axis, want, chosen))
		}
		cuts = append(cuts, coord(chosen))
		prev = chosen
	}
	return cuts, warnings, nil
}

// applySplit cuts the mesh along every planned plane and returns the
// watertight parts, ordered x-major then y.
func applySplit(m *mesh.Mesh, plan *splitPlan) ([]*mesh.Mesh, error) {
	parts := []*mesh.Mesh{m}

	cutAll := func(axis mesh.Axis, cuts []float64) error {
		for _, c := range cuts {
			next := make([]*mesh.Mesh, 0, len(parts)+1)
			for _, p := range parts {
				neg, pos, err := p.SplitPlane(axis, c)
				if err != nil {
					return geomErrf("split", "cut at %s=%.2f: %w", axisLabel(axis), c, err)
				}
				if !neg.Empty() {
					next = append(next, neg)
				}
				if !pos.Empty() {
					next = append(next, pos)
				}
			}
			parts = next
		}
		return nil
	}

	if err := cutAll(mesh.AxisX, plan.XCuts); err != nil {
		return nil, err
	}
	if err := cutAll(mesh.AxisY, plan.YCuts); err != nil {
		return nil, err
	}

	for i, p := range parts {
		if !p.IsWatertight() {
			return nil, geomErrf("split", "part %d is not watertight after cutting", i+1)
		}
	}
	return parts, nil
}

func axisLabel(a mesh.Axis) string {
	if a == mesh.AxisX {
		return "x"
	}
	return "y"
}
