package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tracefinity/tracebin/internal/engine"
	"github.com/tracefinity/tracebin/internal/export"
	"github.com/tracefinity/tracebin/internal/mesh"
	"github.com/tracefinity/tracebin/internal/model"
	"github.com/tracefinity/tracebin/internal/project"
	"github.com/tracefinity/tracebin/internal/store"
)

func newGenerateCmd() *cobra.Command {
	var (
		file         string
		name         string
		outDir       string
		templateName string
		labelText    string
		gridX        int
		gridY        int
		height       int
		wall         float64
		depth        float64
		clearance    float64
		bed          float64
		noMagnets    bool
		noLip        bool
		autoSize     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate bin meshes from a request file or flags",
		Long: `Generate builds the printable meshes for one bin. With --file it loads a
saved request (tool outlines included); without it, flags and templates
describe an empty bin. Results are filed in the artifact store under the
request's content hash and copied to the output directory, so repeating
an identical request reuses the stored meshes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			binName := "bin"
			var req model.GenerateRequest
			if file != "" {
				loadedName, loaded, err := project.LoadRequest(file)
				if err != nil {
					return err
				}
				req = loaded
				if loadedName != "" {
					binName = loadedName
				}
			} else {
				cfg := appCfg.BinDefaults()
				if templateName != "" {
					t, err := project.TemplateByName(templateName)
					if err != nil {
						return err
					}
					cfg = t.Config
				}
				req.Config = cfg
			}

			// Flag overrides beat both file and template values.
			flags := cmd.Flags()
			if flags.Changed("grid-x") {
				req.Config.GridX = gridX
			}
			if flags.Changed("grid-y") {
				req.Config.GridY = gridY
			}
			if flags.Changed("height") {
				req.Config.HeightUnits = height
			}
			if flags.Changed("wall") {
				req.Config.WallThickness = wall
			}
			if flags.Changed("depth") {
				req.Config.CutoutDepth = depth
			}
			if flags.Changed("clearance") {
				req.Config.CutoutClearance = clearance
			}
			if flags.Changed("bed") {
				req.Config.BedSize = bed
			}
			if noMagnets {
				req.Config.Magnets = false
			}
			if noLip {
				req.Config.StackingLip = false
			}
			if autoSize {
				req.AutoSize = true
			}
			if labelText != "" {
				req.Labels = append(req.Labels, model.TextLabel{
					Text:     labelText,
					FontSize: 8,
					Depth:    0.6,
				})
			}
			if name != "" {
				binName = name
			}

			hash := req.ContentHash()

			st, err := store.New(storeRoot(appCfg), logger)
			if err != nil {
				return err
			}

			p := newProgress(logger)
			art, _, err := st.Materialize(hash, func(dir string) (*model.GeneratedArtifact, error) {
				return buildArtifact(ctx, logger, binName, hash, req, dir)
			})
			if err != nil {
				return err
			}
			if err := st.Link(binName, hash); err != nil {
				return fmt.Errorf("link %q: %w", binName, err)
			}

			target := outDir
			if target == "" {
				target = appCfg.OutputDir
			}
			if target == "" {
				target = "."
			}
			if _, err := st.ExportTo(target, hash); err != nil {
				return err
			}

			for _, w := range art.Warnings {
				logger.Warn(w)
			}

			// Remember the bin: requests built from flags are saved next to
			// the config so they can be reloaded with --file, and either way
			// the bin moves to the top of the recent list.
			binPath := file
			if binPath == "" {
				binPath = filepath.Join(project.DefaultConfigDir(), "bins", binName+".json")
				if err := project.SaveRequest(binPath, binName, req); err != nil {
					logger.Warn("could not save bin request", "path", binPath, "err", err)
					binPath = ""
				}
			}
			if binPath != "" {
				project.AddRecentBin(&appCfg, binPath)
				if err := project.SaveAppConfig(project.DefaultConfigPath(), appCfg); err != nil {
					logger.Warn("could not update recent bins", "err", err)
				}
			}

			p.done(fmt.Sprintf("Generated %s: %d part(s), %.1f x %.1f x %.1f mm, into %s",
				binName, art.PartCount, art.Bounds.Width, art.Bounds.Depth, art.Bounds.Height, target))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "saved bin request file (JSON)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "bin name used for store linking and labels")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: config output_dir or cwd)")
	cmd.Flags().StringVarP(&templateName, "template", "t", "", "built-in template to start from")
	cmd.Flags().StringVar(&labelText, "label", "", "recessed text label on the bin top")
	cmd.Flags().IntVar(&gridX, "grid-x", 2, "grid cells along x")
	cmd.Flags().IntVar(&gridY, "grid-y", 2, "grid cells along y")
	cmd.Flags().IntVar(&height, "height", 4, "bin height in 7 mm units")
	cmd.Flags().Float64Var(&wall, "wall", 1.6, "wall thickness in mm")
	cmd.Flags().Float64Var(&depth, "depth", 20, "cutout depth in mm")
	cmd.Flags().Float64Var(&clearance, "clearance", 1, "cutout clearance in mm")
	cmd.Flags().Float64Var(&bed, "bed", 0, "print bed size in mm, 0 = unconstrained")
	cmd.Flags().BoolVar(&noMagnets, "no-magnets", false, "skip magnet bores")
	cmd.Flags().BoolVar(&noLip, "no-lip", false, "skip the stacking lip")
	cmd.Flags().BoolVar(&autoSize, "auto-size", false, "size the grid from the tool extents")

	return cmd
}

func storeRoot(cfg model.AppConfig) string {
	if cfg.StoreDir != "" {
		return cfg.StoreDir
	}
	return project.DefaultStoreDir()
}

// buildArtifact runs the geometry pipeline and writes the output files
// into dir: bin.stl and bin.3mf for a bin that fits the bed, or one STL
// per part plus the ZIP bundle when the bin was split.
func buildArtifact(ctx context.Context, logger *log.Logger, binName, hash string, req model.GenerateRequest, dir string) (*model.GeneratedArtifact, error) {
	gen := engine.New(logger)
	res, err := gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	art := &model.GeneratedArtifact{
		Hash:      hash,
		Bounds:    res.Bounds,
		PartCount: len(res.Parts),
		Split:     res.Split,
		Warnings:  res.Warnings,
	}

	if !res.Split {
		shell := res.Parts[0]
		if err := export.WriteSTLFile(filepath.Join(dir, "bin.stl"), shell, binName); err != nil {
			return nil, err
		}
		art.Parts = []model.PartInfo{partInfo(1, "bin.stl", shell)}
		art.Files = []string{"bin.stl"}

		bodies := []export.Body{{Name: binName, Mesh: shell}}
		if res.Label != nil {
			bodies = append(bodies, export.Body{Name: binName + " label", Mesh: res.Label})
		}
		if err := export.Write3MFFile(filepath.Join(dir, "bin.3mf"), bodies); err != nil {
			return nil, err
		}
		art.Files = append(art.Files, "bin.3mf")
		return art, nil
	}

	bodies := make([]export.Body, 0, len(res.Parts))
	zipParts := make([]export.Body, 0, len(res.Parts))
	for i, part := range res.Parts {
		fn := fmt.Sprintf("bin_part%d.stl", i+1)
		if err := export.WriteSTLFile(filepath.Join(dir, fn), part, fn); err != nil {
			return nil, err
		}
		art.Parts = append(art.Parts, partInfo(i+1, fn, part))
		art.Files = append(art.Files, fn)
		bodies = append(bodies, export.Body{Name: fmt.Sprintf("%s part %d", binName, i+1), Mesh: part})
		zipParts = append(zipParts, export.Body{Name: fn, Mesh: part})
	}

	if err := export.Write3MFFile(filepath.Join(dir, "bin.3mf"), bodies); err != nil {
		return nil, err
	}
	art.Files = append(art.Files, "bin.3mf")

	// The bundle carries everything a print shop needs: the part meshes,
	// the manifest in JSON and spreadsheet form, and the QR part labels.
	manifestJSON, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return nil, err
	}
	labelsPDF, err := export.LabelsPDF(export.CollectPartLabels(binName, *art))
	if err != nil {
		return nil, err
	}
	manifestXLSX, err := export.ManifestXLSX(req.Config, *art)
	if err != nil {
		return nil, err
	}
	extras := map[string][]byte{
		"manifest.json": manifestJSON,
		"labels.pdf":    labelsPDF,
		"manifest.xlsx": manifestXLSX,
	}
	if err := export.WriteBundleFile(filepath.Join(dir, "bin_parts.zip"), zipParts, extras); err != nil {
		return nil, err
	}
	art.Files = append(art.Files, "bin_parts.zip")
	return art, nil
}

func partInfo(index int, fileName string, m *mesh.Mesh) model.PartInfo {
	min, max := m.BoundingBox()
	return model.PartInfo{
		Index:    index,
		FileName: fileName,
		Size: model.Dimensions{
			Width:  max.X - min.X,
			Depth:  max.Y - min.Y,
			Height: max.Z - min.Z,
		},
		Volume: m.Volume(),
	}
}
