package cli

import (
	"fmt"

	polyclip "github.com/ctessum/polyclip-go"
	"github.com/spf13/cobra"

	"github.com/tracefinity/tracebin/internal/engine"
	"github.com/tracefinity/tracebin/internal/export"
	"github.com/tracefinity/tracebin/internal/geom"
	"github.com/tracefinity/tracebin/internal/model"
	"github.com/tracefinity/tracebin/internal/project"
)

func newDXFCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "dxf <request-file>",
		Short: "Export a 2D DXF reference drawing of a bin layout",
		Long: `Dxf draws the bin's outer outline and every tool pocket footprint
(outline inflated by the clearance) as a DXF file, for checking a layout
against real tools before printing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			_, req, err := project.LoadRequest(args[0])
			if err != nil {
				return err
			}
			cfg := req.Config
			tools := req.Tools
			if req.AutoSize {
				gx, gy, dx, dy := engine.AutoSize(tools, cfg)
				cfg.GridX, cfg.GridY = gx, gy
				moved := make([]model.PlacedTool, len(tools))
				for i, t := range tools {
					moved[i] = t.Translate(dx, dy)
				}
				tools = moved
			}

			pb := engine.NewProfileBuilder(cfg.GridX, cfg.GridY)
			outline := geom.ToRing(pb.Outline())

			var pockets []model.Ring
			for _, t := range tools {
				buffered := geom.Buffer(geom.FromRing(t.Points), cfg.CutoutClearance, 48)
				if buffered == nil {
					logger.Warn("tool pocket outline collapsed, drawing raw outline", "tool", t.ID)
					buffered = polyclip.Polygon{geom.FromRing(t.Points)}
				}
				for _, c := range buffered {
					pockets = append(pockets, geom.ToRing(c))
				}
			}

			if err := export.ExportDXF(out, outline, pockets); err != nil {
				return err
			}
			logger.Info("wrote DXF drawing", "path", out,
				"grid", fmt.Sprintf("%dx%d", cfg.GridX, cfg.GridY), "pockets", len(pockets))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "bin.dxf", "output DXF path")
	return cmd
}
