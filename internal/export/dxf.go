package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/tracefinity/tracebin/internal/model"
)

// ExportDXF writes a 2D reference drawing of the bin: the outer outline
// on one layer and each pocket outline on another. Useful for checking a
// layout against real tools before committing to a print.
func ExportDXF(path string, outline model.Ring, pockets []model.Ring) error {
	if len(outline) < 3 {
		return fmt.Errorf("bin outline has fewer than 3 points")
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer("OUTLINE", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("add layer: %w", err)
	}
	drawRing(d, outline)

	if len(pockets) > 0 {
		if _, err := d.AddLayer("POCKETS", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer: %w", err)
		}
		for _, p := range pockets {
			if len(p) >= 3 {
				drawRing(d, p)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// drawRing emits a closed ring as a chain of LINE entities.
func drawRing(d *drawing.Drawing, ring model.Ring) {
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		d.Line(a.X, a.Y, 0, b.X, b.Y, 0)
	}
}
