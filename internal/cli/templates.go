package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracefinity/tracebin/internal/project"
)

func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the built-in bin templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range project.Templates() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %dx%d, %d units  %s\n",
					t.Name, t.Config.GridX, t.Config.GridY, t.Config.HeightUnits, t.Description)
			}
			return nil
		},
	}
}
