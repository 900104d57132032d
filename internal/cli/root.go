package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the tracebin CLI and returns an error if any command
// fails. The root command wires up logging (info by default, debug with
// --verbose) and attaches the logger to the command context.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "tracebin",
		Short:        "Tracebin generates printable Gridfinity bins with tool cutouts",
		Long:         `Tracebin turns traced tool outlines into watertight Gridfinity storage bin meshes: it sizes the grid, builds the stacking base and lip, carves clearance pockets and magnet bores, embosses labels, and splits oversized bins to fit the print bed.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("tracebin %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newTemplatesCmd())
	root.AddCommand(newDXFCmd())
	root.AddCommand(newStoreCmd())

	return root.ExecuteContext(context.Background())
}
