package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"param-server/src/config"
	"param-server/src/grpc_params"
	"param-server/src/interfaces"
	"param-server/src/listener"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the parameter listener (plus admin and gRPC fronts when enabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				cfg.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("provider") {
				cfg.DataSource.Provider, _ = cmd.Flags().GetString("provider")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().Int("port", 0, "override the listener port")
	cmd.Flags().String("provider", "", "override data_source.provider (yahoo, financego, stored)")
	return cmd
}

// -----------------------------------------------------------------------------

// runServe starts every enabled front and returns when ctx is done or one of
// them fails.
func runServe(ctx context.Context, cfg *config.Config) error {
	appLogger := logger.NewLogger(cfg.MConfig, cfg.Name)

	registry, store, err := setupSources(cfg, false)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	collector := metrics.NewCollector()
	facade, err := setupAnalysis(cfg, registry, collector)
	if err != nil {
		return err
	}

	var events interfaces.IEventSink
	var admin *server.AdminServer
	if cfg.Admin.Enabled {
		admin = server.NewAdminServer(cfg.MConfig, facade, collector, logger.NewLogger(cfg.MConfig, "AdminServer"))
		events = admin
	}

	paramListener := listener.NewParamListener(cfg.MConfig, facade, collector, events,
		logger.NewLogger(cfg.MConfig, "ParamListener"))
	if err := paramListener.Listen(ctx); err != nil {
		appLogger.Critical("%v", err)
	}

	appLogger.Info("Serving %s parameters (provider=%s, default years=%d)",
		cfg.Address(), cfg.DataSource.Provider, cfg.DefaultYears)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return paramListener.Serve(gctx)
	})

	if admin != nil {
		g.Go(func() error {
			return admin.Start(gctx)
		})
	}

	if cfg.Grpc.Enabled {
		svc := grpc_params.NewParamService(cfg.MConfig, facade, registry.Names, collector,
			logger.NewLogger(cfg.MConfig, "ParamService"))
		addr := fmt.Sprintf("%s:%d", cfg.Grpc.Host, cfg.Grpc.Port)
		g.Go(func() error {
			return grpc_params.Serve(gctx, grpc_params.NewServer(svc), addr, appLogger)
		})
	}

	if err := g.Wait(); err != nil {
		appLogger.Error("Shutting down after failure: %v", err)
		return err
	}
	appLogger.Info("Shut down cleanly")
	return nil
}
