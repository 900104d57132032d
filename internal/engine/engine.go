package engine

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/mesh"
	"github.com/tracefinity/tracebin/internal/model"
)

// Tolerance controls tessellation and numerical slack for one pipeline
// run. The relaxed variant changes arc phase and nudges cutters off exact
// coincidences, which resolves the degenerate overlaps that make a first
// run fail.
type Tolerance struct {
	ArcSegments int     // circle tessellation for offsets, bores, finger holes
	Nudge       float64 // cutter translation to break exact vertex coincidence
}

// DefaultTolerance is the normal production setting.
func DefaultTolerance() Tolerance {
	return Tolerance{ArcSegments: 48}
}

func (t Tolerance) relaxed() Tolerance {
	return Tolerance{ArcSegments: t.ArcSegments + 5, Nudge: 2e-4}
}

// Result is the outcome of one generation run.
type Result struct {
	// Parts holds the printable shell meshes: one mesh for a bin that
	// fits the bed, several when it was split.
	Parts []*mesh.Mesh
	// Label is the raised label body, nil when no label embosses or when
	// the bin was split (the body is merged into the shell before
	// splitting so every part keeps its text).
	Label *mesh.Mesh

	Split    bool
	Bounds   model.Dimensions
	Config   model.BinConfig // effective config after auto-sizing
	Warnings []string
}

// Generator runs the full bin pipeline: validate, size, build the shell,
// carve, label, and split.
type Generator struct {
	logger *log.Logger
	tol    Tolerance
}

// New returns a generator logging through the given logger. A nil logger
// falls back to the package default.
func New(logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{logger: logger, tol: DefaultTolerance()}
}

// Generate builds the meshes for one request. Validation failures return
// a *ValidationError immediately; a numerical failure is retried once
// with a relaxed tolerance before being returned as a *GenerationError.
func (g *Generator) Generate(ctx context.Context, req model.GenerateRequest) (*Result, error) {
	if err := g.validate(req); err != nil {
		return nil, err
	}

	res, err := g.run(ctx, req, g.tol)
	var gerr *GeometryError
	if errors.As(err, &gerr) {
		g.logger.Warn("geometry failure, retrying with relaxed tolerance",
			"stage", gerr.Stage, "err", gerr.Err)
		res, err = g.run(ctx, req, g.tol.relaxed())
		if err == nil {
			res.Warnings = append(res.Warnings,
				"geometry pipeline needed a relaxed tolerance retry")
		}
	}
	if err != nil {
		var verr *ValidationError
		var uerr *UnsplittableGeometryError
		if errors.As(err, &verr) || errors.As(err, &uerr) || ctx.Err() != nil {
			return nil, err
		}
		return nil, &GenerationError{Stage: stageOf(err), Err: err}
	}
	return res, nil
}

func stageOf(err error) string {
	var gerr *GeometryError
	if errors.As(err, &gerr) {
		return gerr.Stage
	}
	return "generate"
}

func (g *Generator) validate(req model.GenerateRequest) error {
	if err := req.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	for _, t := range req.Tools {
		if geom.SelfIntersects(geom.FromRing(t.Points)) {
			return &ValidationError{Entity: t.ID, Reason: "tool outline self-intersects"}
		}
		for _, h := range t.Holes {
			if geom.SelfIntersects(geom.FromRing(h)) {
				return &ValidationError{Entity: t.ID, Reason: "tool interior ring self-intersects"}
			}
		}
	}
	return nil
}

func (g *Generator) run(ctx context.Context, req model.GenerateRequest, tol Tolerance) (*Result, error) {
	cfg := req.Config
	tools := req.Tools

	if req.AutoSize {
		gx, gy, dx, dy := AutoSize(tools, cfg)
		cfg.GridX, cfg.GridY = gx, gy
		if dx != 0 || dy != 0 {
			moved := make([]model.PlacedTool, len(tools))
			for i, t := range tools {
				moved[i] = t.Translate(dx, dy)
			}
			tools = moved
		}
		if err := cfg.Validate(); err != nil {
			return nil, &ValidationError{Reason: "auto-sized: " + err.Error()}
		}
		g.logger.Debug("auto-sized bin", "grid_x", gx, "grid_y", gy, "dx", dx, "dy", dy)
	}

	res := &Result{Config: cfg}

	// Shell.
	start := time.Now()
	hollow := len(tools) == 0
	shell, pb := assembleShell(cfg, hollow)
	g.logger.Debug("assembled shell", "grid", [2]int{cfg.GridX, cfg.GridY},
		"hollow", hollow, "took", time.Since(start))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Cutouts.
	start = time.Now()
	warns, err := carveCutouts(ctx, shell, pb, cfg, tools, tol)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("carved cutouts", "tools", len(tools),
		"magnets", cfg.Magnets, "took", time.Since(start))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Labels.
	var labelBody *mesh.Mesh
	if len(req.Labels) > 0 {
		start = time.Now()
		labelBody, warns, err = applyLabels(shell, req.Labels, WallTop(cfg.HeightUnits), carveBound(pb, cfg))
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			return nil, err
		}
		g.logger.Debug("applied labels", "count", len(req.Labels), "took", time.Since(start))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Mesh emission.
	start = time.Now()
	shellMesh, err := shell.mesh()
	if err != nil {
		return nil, err
	}
	if !shellMesh.IsWatertight() {
		return nil, geomErrf("mesh", "shell mesh is not watertight")
	}
	min, max := shellMesh.BoundingBox()
	res.Bounds = model.Dimensions{
		Width:  max.X - min.X,
		Depth:  max.Y - min.Y,
		Height: max.Z - min.Z,
	}
	g.logger.Debug("meshed shell", "faces", len(shellMesh.Faces), "took", time.Since(start))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Split.
	plan, warns, err := planSplit(cfg, tools)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		return nil, err
	}
	if plan.empty() {
		res.Parts = []*mesh.Mesh{shellMesh}
		res.Label = labelBody
		return res, nil
	}

	// Fold the label body in before cutting so each part keeps its text.
	if labelBody != nil {
		shellMesh.Append(labelBody)
	}
	start = time.Now()
	parts, err := applySplit(shellMesh, plan)
	if err != nil {
		return nil, err
	}
	res.Parts = parts
	res.Split = true
	g.logger.Info("split oversized bin", "parts", len(parts),
		"x_cuts", len(plan.XCuts), "y_cuts", len(plan.YCuts), "took", time.Since(start))
	return res, nil
}
