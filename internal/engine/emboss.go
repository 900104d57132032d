package engine

import (
	"fmt"
	"sync"

	polyclip "github.com/ctessum/polyclip-go"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/mesh"
	"github.com/tracefinity/tracebin/internal/model"
)

var (
	labelFontOnce sync.Once
	labelFont     *sfnt.Font
	labelFontErr  error
)

func loadLabelFont() (*sfnt.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = sfnt.Parse(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// glyphPPEM is the pixel size glyph outlines are loaded at before being
// rescaled to millimeters.
const glyphPPEM = 64

func fixedToF(v fixed.Int26_6) float64 { return float64(v) / 64 }

// textOutline renders a text string as filled 2D outlines, scaled so the
// em square spans sizeMM millimeters, centered on the origin with y up.
// Returns nil (no error) when the text produces no geometry.
func textOutline(text string, sizeMM float64) (polyclip.Polygon, error) {
	f, err := loadLabelFont()
	if err != nil {
		return nil, geomErrf("emboss", "load font: %w", err)
	}

	var buf sfnt.Buffer
	ppem := fixed.I(glyphPPEM)
	scale := sizeMM / glyphPPEM

	var polys polyclip.Polygon
	var pen float64
	var prev sfnt.GlyphIndex
	havePrev := false

	for _, r := range text {
		gi, err := f.GlyphIndex(&buf, r)
		if err != nil || gi == 0 {
			// Unmapped rune: advance half an em and move on.
			pen += glyphPPEM / 2
			havePrev = false
			continue
		}
		if havePrev {
			if k, err := f.Kern(&buf, prev, gi, ppem, font.HintingNone); err == nil {
				pen += fixedToF(k)
			}
		}
		segs, err := f.LoadGlyph(&buf, gi, ppem, nil)
		if err != nil {
			return nil, geomErrf("emboss", "load glyph %q: %w", r, err)
		}
		polys = append(polys, glyphContours(segs, pen)...)

		adv, err := f.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			return nil, geomErrf("emboss", "advance for %q: %w", r, err)
		}
		pen += fixedToF(adv)
		prev, havePrev = gi, true
	}

	polys = geom.Clean(polys)
	if len(polys) == 0 {
		return nil, nil
	}

	// Scale to millimeters with the font's y-down axis flipped, then center
	// the whole block on the origin.
	out := make(polyclip.Polygon, len(polys))
	for i, c := range polys {
		oc := make(polyclip.Contour, len(c))
		for j, p := range c {
			oc[j] = polyclip.Point{X: p.X * scale, Y: -p.Y * scale}
		}
		out[i] = oc
	}
	min, max := geom.BoundingBox(out)
	return geom.Translate(out, -(min.X+max.X)/2, -(min.Y+max.Y)/2), nil
}

// glyphContours converts one glyph's segments to closed contours in pixel
// coordinates, offset by the pen position. Quadratic and cubic curves are
// flattened with a fixed subdivision.
func glyphContours(segs sfnt.Segments, pen float64) polyclip.Polygon {
	const steps = 8
	var polys polyclip.Polygon
	var cur polyclip.Contour

	pt := func(p fixed.Point26_6) polyclip.Point {
		return polyclip.Point{X: pen + fixedToF(p.X), Y: fixedToF(p.Y)}
	}
	flush := func() {
		if len(cur) >= 3 {
			polys = append(polys, cur)
		}
		cur = nil
	}

	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			cur = append(cur, pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			if len(cur) == 0 {
				continue
			}
			p0, p1, p2 := cur[len(cur)-1], pt(s.Args[0]), pt(s.Args[1])
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = append(cur, polyclip.Point{
					X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
					Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
				})
			}
		case sfnt.SegmentOpCubeTo:
			if len(cur) == 0 {
				continue
			}
			p0, p1, p2, p3 := cur[len(cur)-1], pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = append(cur, polyclip.Point{
					X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
					Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
				})
			}
		}
	}
	flush()
	return polys
}

// applyLabels places every text label on the wall top. Recessed labels
// are carved into the shell one at a time: their depth is clamped to
// what the wall can absorb, their outline is clipped to the carveable
// region, and a label overlapping an already carved opening is skipped
// with a warning, since a partial overlap cannot be meshed cleanly.
// Embossed labels are collected into a separate raised body; the
// returned mesh is nil when no label embosses.
func applyLabels(s *solid, labels []model.TextLabel, wallTop float64, bound polyclip.Polygon) (*mesh.Mesh, []string, error) {
	var warnings []string

	maxDepth := wallTop - BaseHeight - MinFloor

	// Group embossed outlines by depth so each depth becomes one body.
	groups := make(map[float64]polyclip.Polygon)

	for _, l := range labels {
		outline, err := textOutline(l.Text, l.FontSize)
		if err != nil {
			return nil, warnings, err
		}
		if outline == nil {
			warnings = append(warnings, fmt.Sprintf("label %s: text %q produced no geometry, skipped", l.ID, l.Text))
			continue
		}
		if l.Rotation != 0 {
			outline = geom.Rotate(outline, l.Rotation, 0, 0)
		}
		outline = geom.Translate(outline, l.X, l.Y)

		if l.Emboss {
			if existing, ok := groups[l.Depth]; ok {
				groups[l.Depth] = geom.Union(existing, outline)
			} else {
				groups[l.Depth] = outline
			}
			continue
		}

		depth := l.Depth
		if depth > maxDepth {
			warnings = append(warnings, fmt.Sprintf("label %s: recess depth %.1f mm exceeds wall capacity; clamped to %.1f mm", l.ID, depth, maxDepth))
			depth = maxDepth
		}
		outline = geom.Clean(geom.Intersection(outline, bound))
		if geom.Area(outline) <= 0 {
			warnings = append(warnings, fmt.Sprintf("label %s: outside the carveable wall area, skipped", l.ID))
			continue
		}
		if existing := s.holesWithin(wallTop-depth, wallTop); len(existing) > 0 &&
			geom.Area(geom.Intersection(outline, existing)) > 1e-9 {
			warnings = append(warnings, fmt.Sprintf("label %s: overlaps a cutout, skipped", l.ID))
			continue
		}
		s.subtractPrism(outline, wallTop-depth, wallTop)
	}

	var raised *mesh.Mesh
	for depth, outline := range groups {
		body := &solid{Slabs: []slab{prism(outline, wallTop, wallTop+depth)}}
		m, err := body.mesh()
		if err != nil {
			return nil, warnings, err
		}
		if raised == nil {
			raised = m
		} else {
			raised.Append(m)
		}
	}

	return raised, warnings, nil
}
