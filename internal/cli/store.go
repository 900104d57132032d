package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracefinity/tracebin/internal/project"
	"github.com/tracefinity/tracebin/internal/store"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the artifact store",
	}
	cmd.AddCommand(newStorePathCmd(), newStorePruneCmd(), newStoreResolveCmd())
	return cmd
}

func newStorePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the artifact store location",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), storeRoot(appCfg))
			return nil
		},
	}
}

func newStorePruneCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove stored artifacts older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
			if err != nil {
				return err
			}
			st, err := store.New(storeRoot(appCfg), logger)
			if err != nil {
				return err
			}
			removed, err := st.Prune(olderThan)
			if err != nil {
				return err
			}
			logger.Info("pruned artifact store", "removed", removed, "older_than", olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age cutoff for pruning")
	return cmd
}

func newStoreResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <bin-name>",
		Short: "Print the artifact hash a bin name points to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			appCfg, err := project.LoadAppConfig(project.DefaultConfigPath())
			if err != nil {
				return err
			}
			st, err := store.New(storeRoot(appCfg), logger)
			if err != nil {
				return err
			}
			hash, err := st.Resolve(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
