package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"param-server/src/data_source/financego"
	"param-server/src/data_source/stored"
	"param-server/src/data_source/yahoo"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/models"

	"golang.org/x/sync/errgroup"
)

// SourceRegistry maps provider names to history sources.
type SourceRegistry struct {
	Sources map[string]interfaces.IHistorySource
	Logger  *logger.Logger
	mu      sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewSourceRegistry(sources []interfaces.IHistorySource, log *logger.Logger) *SourceRegistry {
	r := &SourceRegistry{
		Sources: make(map[string]interfaces.IHistorySource),
		Logger:  log,
	}

	for _, s := range sources {
		r.Sources[s.Name()] = s
	}

	return r
}

// -----------------------------------------------------------------------------

// NewDefaultRegistry registers yahoo and financego, plus stored when a store
// is given.
func NewDefaultRegistry(cfg *models.MConfig, netMgr interfaces.INetworkManager, store interfaces.IPriceStore, log *logger.Logger) *SourceRegistry {
	sources := []interfaces.IHistorySource{
		yahoo.NewYahooHistorySource(cfg, netMgr),
		financego.NewFinanceGoSource(cfg),
	}
	if store != nil {
		sources = append(sources, stored.NewStoredSource(store))
	}
	return NewSourceRegistry(sources, log)
}

// -----------------------------------------------------------------------------

// AddSource registers a source under its name.
func (r *SourceRegistry) AddSource(source interfaces.IHistorySource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := source.Name()
	if _, exists := r.Sources[name]; exists {
		return fmt.Errorf("source %s already exists", name)
	}

	r.Sources[name] = source
	r.Logger.Info("Added source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// RemoveSource drops a source.
func (r *SourceRegistry) RemoveSource(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Sources[name]; !exists {
		return fmt.Errorf("source %s not found", name)
	}

	delete(r.Sources, name)
	r.Logger.Info("Removed source: %s", name)
	return nil
}

// -----------------------------------------------------------------------------

// GetSource retrieves a source by name
func (r *SourceRegistry) GetSource(name string) (interfaces.IHistorySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, exists := r.Sources[name]
	if !exists {
		return nil, fmt.Errorf("source %s not found", name)
	}
	return source, nil
}

// -----------------------------------------------------------------------------

// Names returns the registered names, sorted.
func (r *SourceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// -----------------------------------------------------------------------------

// FetchMany fetches symbols from one source with at most limit requests in
// flight and hands every series to sink. The first error cancels the rest.
func (r *SourceRegistry) FetchMany(ctx context.Context, name string, symbols []string, years, limit int,
	sink func(context.Context, models.MPriceSeries) error) error {

	source, err := r.GetSource(name)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, symbol := range symbols {
		g.Go(func() error {
			series, err := source.Fetch(gctx, symbol, years)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			if series.Symbol == "" {
				series.Symbol = symbol
			}
			r.Logger.Info("%s: fetched %d closes for %s", name, len(series.Points), symbol)
			return sink(gctx, series)
		})
	}

	return g.Wait()
}
