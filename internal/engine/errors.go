package engine

import "fmt"

// ValidationError reports malformed geometric input. It is never retried
// and never auto-fixed; the request is rejected before any geometry is
// built.
type ValidationError struct {
	Entity string // offending entity id, empty for the request itself
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Entity == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: entity %s: %s", e.Entity, e.Reason)
}

// GeometryError reports a numerical failure in a boolean, offset, or
// meshing step. The generator retries the whole pipeline once with a
// relaxed tolerance before treating it as fatal.
type GeometryError struct {
	Stage string
	Err   error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry: stage %s: %v", e.Stage, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

// geomErrf builds a GeometryError for the given stage.
func geomErrf(stage, format string, args ...any) error {
	return &GeometryError{Stage: stage, Err: fmt.Errorf(format, args...)}
}

// UnsplittableGeometryError reports an oversized bin for which no valid
// split line exists: every candidate grid line would slice through a tool
// cutout, or a single grid cell already exceeds the bed.
type UnsplittableGeometryError struct {
	Axis   string
	Reason string
}

func (e *UnsplittableGeometryError) Error() string {
	return fmt.Sprintf("unsplittable bin: axis %s: %s", e.Axis, e.Reason)
}

// GenerationError is the catch-all fatal failure wrapper carrying the
// stage and entity that caused the abort.
type GenerationError struct {
	Stage  string
	Entity string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("generation failed at %s (entity %s): %v", e.Stage, e.Entity, e.Err)
	}
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
