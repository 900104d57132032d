package model

import "fmt"

// Validation ranges for bin parameters. Outside these the printed result is
// either not a Gridfinity bin or not printable.
const (
	MinGrid        = 1
	MaxGrid        = 10
	MinHeightUnits = 1
	MaxHeightUnits = 20
	MinCutoutDepth = 1.0
	MaxCutoutDepth = 200.0
	MaxClearance   = 10.0
	MinWall        = 0.4
	MaxWall        = 5.0
)

// Validate checks the configuration against the allowed parameter ranges.
func (c BinConfig) Validate() error {
	if c.GridX < MinGrid || c.GridX > MaxGrid || c.GridY < MinGrid || c.GridY > MaxGrid {
		return fmt.Errorf("grid size must be between %d and %d, got %dx%d", MinGrid, MaxGrid, c.GridX, c.GridY)
	}
	if c.HeightUnits < MinHeightUnits || c.HeightUnits > MaxHeightUnits {
		return fmt.Errorf("height must be between %d and %d units, got %d", MinHeightUnits, MaxHeightUnits, c.HeightUnits)
	}
	if c.CutoutDepth < MinCutoutDepth || c.CutoutDepth > MaxCutoutDepth {
		return fmt.Errorf("cutout depth must be between %g and %gmm, got %g", MinCutoutDepth, MaxCutoutDepth, c.CutoutDepth)
	}
	if c.CutoutClearance < 0 || c.CutoutClearance > MaxClearance {
		return fmt.Errorf("clearance must be between 0 and %gmm, got %g", MaxClearance, c.CutoutClearance)
	}
	if c.WallThickness < MinWall || c.WallThickness > MaxWall {
		return fmt.Errorf("wall thickness must be between %g and %gmm, got %g", MinWall, MaxWall, c.WallThickness)
	}
	if c.BedSize < 0 {
		return fmt.Errorf("bed size must not be negative, got %g", c.BedSize)
	}
	return nil
}

// Validate checks the structural validity of a placed tool outline.
// Geometric validity (self-intersection) is checked by the engine.
func (t PlacedTool) Validate() error {
	if len(t.Points) < 3 {
		return fmt.Errorf("tool %q: outline has %d points, need at least 3", t.ID, len(t.Points))
	}
	for i, h := range t.Holes {
		if len(h) < 3 {
			return fmt.Errorf("tool %q: interior ring %d has %d points, need at least 3", t.ID, i, len(h))
		}
	}
	for _, fh := range t.FingerHoles {
		switch fh.Shape {
		case HoleCircle, HoleSquare:
			if fh.Radius <= 0 {
				return fmt.Errorf("tool %q: finger hole %q has non-positive radius", t.ID, fh.ID)
			}
		case HoleRectangle:
			if fh.Width <= 0 || fh.Height <= 0 {
				return fmt.Errorf("tool %q: finger hole %q needs positive width and height, got %gx%g", t.ID, fh.ID, fh.Width, fh.Height)
			}
		case "":
			// Editors predating the shape field send circles.
		default:
			return fmt.Errorf("tool %q: finger hole %q has unknown shape %q", t.ID, fh.ID, fh.Shape)
		}
	}
	return nil
}

// Validate checks a text label for renderability.
func (l TextLabel) Validate() error {
	if l.Text == "" {
		return fmt.Errorf("text label %q: empty text", l.ID)
	}
	if l.FontSize <= 0 {
		return fmt.Errorf("text label %q: font size must be positive, got %g", l.ID, l.FontSize)
	}
	if l.Depth <= 0 {
		return fmt.Errorf("text label %q: depth must be positive, got %g", l.ID, l.Depth)
	}
	return nil
}

// Validate checks the whole request. The engine performs the deeper
// geometric checks (ring self-intersection) during generation.
func (r GenerateRequest) Validate() error {
	if err := r.Config.Validate(); err != nil {
		return err
	}
	for _, t := range r.Tools {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, l := range r.Labels {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}
