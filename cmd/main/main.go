package main

import (
	"fmt"
	"os"

	"param-server/src/config"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "param-server",
		Short: "Serves drift, volatility and last price for ticker symbols",
		Long: `param-server estimates simulation parameters from daily closing prices and
serves them over a line protocol: "GET <SYMBOL> [<YEARS>]" -> "<mu> <sigma> <S0>".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnvFile(envFile); err != nil {
				return err
			}
			loaded, err := config.NewConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			*cfg = *loaded
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with PARAMSERVER_* overrides")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newImportCmd(cfg))
	rootCmd.AddCommand(newGetCmd(cfg))
	rootCmd.AddCommand(newSymbolsCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))

	return rootCmd
}
