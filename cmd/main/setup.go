package main

import (
	"fmt"

	"param-server/src/analysis"
	"param-server/src/config"
	datasource "param-server/src/data_source"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/network"
	"param-server/src/storage"
)

// -----------------------------------------------------------------------------

// setupDatabase opens the price archive named by storage.db_type.
func setupDatabase(cfg *config.Config) (interfaces.IPriceStore, error) {
	dbLogger := logger.NewLogger(cfg.MConfig, "PriceStore")
	return storage.NewPriceStore(cfg.MConfig, dbLogger)
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(cfg *config.Config) interfaces.INetworkManager {
	networkLogger := logger.NewLogger(cfg.MConfig, "NetworkManager")
	return network.NewAsyncNetworkManager(cfg.MConfig, networkLogger)
}

// -----------------------------------------------------------------------------

// setupSources registers every provider. The archive is opened only when the
// stored provider is in use or withStore is set; the returned store may be nil.
func setupSources(cfg *config.Config, withStore bool) (*datasource.SourceRegistry, interfaces.IPriceStore, error) {
	var store interfaces.IPriceStore
	if withStore || cfg.DataSource.Provider == "stored" {
		db, err := setupDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		store = db
	}

	registry := datasource.NewDefaultRegistry(cfg.MConfig, setupNetwork(cfg), store,
		logger.NewLogger(cfg.MConfig, "SourceRegistry"))
	return registry, store, nil
}

// -----------------------------------------------------------------------------

// setupAnalysis wires the configured provider into the estimator.
func setupAnalysis(cfg *config.Config, registry *datasource.SourceRegistry, m *metrics.Collector) (*analysis.AnalysisFacade, error) {
	source, err := registry.GetSource(cfg.DataSource.Provider)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", cfg.DataSource.Provider, err)
	}
	analysisLogger := logger.NewLogger(cfg.MConfig, "Analysis")
	return analysis.NewAnalysisFacade(cfg.MConfig, source, m, analysisLogger), nil
}
