package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"param-server/src/config"
	"param-server/src/logger"
	"param-server/src/models"

	"github.com/spf13/cobra"
)

// -----------------------------------------------------------------------------

func newImportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import SYMBOL [SYMBOL...]",
		Short: "Download daily closes into the local archive used by the stored provider",
		Example: `  param-server import AAPL MSFT --years 10
  param-server import BMW.DE --from financego`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			years, _ := cmd.Flags().GetInt("years")
			from, _ := cmd.Flags().GetString("from")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			if years <= 0 {
				return fmt.Errorf("--years must be positive")
			}
			if from == "stored" {
				return fmt.Errorf("--from must be an upstream provider")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runImport(ctx, cfg, args, years, from, concurrency)
		},
	}

	cmd.Flags().Int("years", 5, "lookback to download")
	cmd.Flags().String("from", "yahoo", "upstream provider (yahoo, financego)")
	cmd.Flags().Int("concurrency", 4, "symbols fetched in parallel")
	return cmd
}

// -----------------------------------------------------------------------------

func runImport(ctx context.Context, cfg *config.Config, symbols []string, years int, from string, concurrency int) error {
	appLogger := logger.NewLogger(cfg.MConfig, "Import")

	registry, store, err := setupSources(cfg, true)
	if err != nil {
		return err
	}
	defer store.Close()

	for i, s := range symbols {
		symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	err = registry.FetchMany(ctx, from, symbols, years, concurrency, func(ctx context.Context, series models.MPriceSeries) error {
		if err := store.SaveSeries(ctx, series); err != nil {
			return fmt.Errorf("saving %s: %w", series.Symbol, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	appLogger.Info("Imported %d symbols (%d years from %s) into %s", len(symbols), years, from, cfg.Storage.DBType)
	return nil
}
