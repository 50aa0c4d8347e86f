package main

import (
	"context"
	"fmt"

	"param-server/src/config"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func newSymbolsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List symbols held in the local archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := setupDatabase(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			symbols, err := store.Symbols(context.Background())
			if err != nil {
				return err
			}
			for _, s := range symbols {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

// -----------------------------------------------------------------------------

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "write PATH",
		Short: "Write the effective configuration (defaults, file and environment merged) as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s provider=%s\n", cfg.Address(), cfg.DataSource.Provider)
			return nil
		},
	})

	return configCmd
}
