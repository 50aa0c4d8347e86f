package analysis

import (
	"param-server/src/analysis/core"
	"param-server/src/helpers"
	"param-server/src/models"
)

// MinPricesFloor is the smallest series the estimator accepts: three prices
// give two log-returns, the least a sample standard deviation can use.
const MinPricesFloor = 3

// -----------------------------------------------------------------------------

// EstimateParameters derives drift, volatility and the latest price from a
// daily close series. minPrices below MinPricesFloor is raised to the floor.
//
// Non-positive closes reject the whole series. Other non-finite returns are
// dropped, and the call fails if fewer than two survive. S0 is the last close
// of the series as given.
func EstimateParameters(series models.MPriceSeries, minPrices int) (models.MParameters, error) {
	if minPrices < MinPricesFloor {
		minPrices = MinPricesFloor
	}

	closes := series.Closes()
	if len(closes) == 0 {
		return models.MParameters{}, helpers.NewDataUnavailableError(series.Symbol, "empty series")
	}
	if len(closes) < minPrices {
		return models.MParameters{}, helpers.NewDataUnavailableError(series.Symbol,
			"need at least %d prices, got %d", minPrices, len(closes))
	}
	if idx := core.FirstNonPositive(closes); idx >= 0 {
		return models.MParameters{}, helpers.NewDataUnavailableError(series.Symbol,
			"non-positive price %g at index %d", closes[idx], idx)
	}

	s0 := closes[len(closes)-1]
	if !core.IsFinite(s0) {
		return models.MParameters{}, helpers.NewDataUnavailableError(series.Symbol, "latest price is not finite")
	}

	returns, _ := core.FilterFinite(core.CalculateLogReturns(closes))
	if len(returns) < 2 {
		return models.MParameters{}, helpers.NewDataUnavailableError(series.Symbol,
			"only %d valid log-returns", len(returns))
	}

	mu, sigma := core.CalculateMeanStd(returns)
	if !core.IsFinite(mu) || !core.IsFinite(sigma) {
		return models.MParameters{}, helpers.NewDataUnavailableError(series.Symbol, "statistics are not finite")
	}

	return models.MParameters{Mu: mu, Sigma: sigma, S0: s0}, nil
}
