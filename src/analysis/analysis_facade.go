package analysis

import (
	"context"
	"errors"
	"strings"
	"time"

	"param-server/src/helpers"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/models"
	"param-server/src/utils"
)

// lowCoverage triggers a warning when the series misses many trading days.
const lowCoverage = 0.8

// AnalysisFacade turns a symbol request into parameters: fetch, check, estimate.
// It keeps no state between calls.
type AnalysisFacade struct {
	Config  *models.MConfig
	Source  interfaces.IHistorySource
	Metrics *metrics.Collector
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, source interfaces.IHistorySource, m *metrics.Collector, log *logger.Logger) *AnalysisFacade {
	return &AnalysisFacade{
		Config:  cfg,
		Source:  source,
		Metrics: m,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Estimate fetches symbol's history and derives its parameters. Errors are
// always one of the helpers taxonomy types.
func (a *AnalysisFacade) Estimate(ctx context.Context, symbol string, years int) (models.MParameters, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.MParameters{}, helpers.NewProtocolError("empty symbol")
	}
	if years <= 0 {
		return models.MParameters{}, helpers.NewProtocolError("years must be positive, got %d", years)
	}

	series, err := a.fetch(ctx, symbol, years)
	if err != nil {
		return models.MParameters{}, err
	}

	if cov := Coverage(series, utils.GetCalendar(symbol)); cov > 0 && cov < lowCoverage {
		a.Logger.Warning("%s: series covers %.0f%% of trading days", symbol, cov*100)
	}

	minPrices := 0
	if a.Config != nil {
		minPrices = a.Config.DataSource.MinPrices
	}
	return EstimateParameters(series, minPrices)
}

// -----------------------------------------------------------------------------

func (a *AnalysisFacade) fetch(ctx context.Context, symbol string, years int) (models.MPriceSeries, error) {
	if a.Config != nil && a.Config.FetchTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(a.Config.FetchTimeoutSeconds)*time.Second)
		defer cancel()
	}

	start := time.Now()
	series, err := a.Source.Fetch(ctx, symbol, years)
	err = classifyFetchError(ctx, symbol, err)
	a.Metrics.ObserveFetch(a.Source.Name(), time.Since(start), err)
	if err != nil {
		return models.MPriceSeries{}, err
	}

	if series.Symbol == "" {
		series.Symbol = symbol
	}
	return series, nil
}

// -----------------------------------------------------------------------------

// classifyFetchError makes sure whatever a source returned lands in the taxonomy.
func classifyFetchError(ctx context.Context, symbol string, err error) error {
	if err == nil {
		return nil
	}

	var (
		de *helpers.DataUnavailableError
		fe *helpers.FetchError
		te *helpers.TimeoutError
	)
	switch {
	case errors.As(err, &te):
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return helpers.NewTimeoutError("fetch "+symbol, err)
	case errors.As(err, &de), errors.As(err, &fe):
		return err
	case errors.Is(err, helpers.ErrNoData):
		return helpers.NewDataUnavailableError(symbol, "%v", err)
	default:
		return helpers.NewFetchError(symbol, err)
	}
}
