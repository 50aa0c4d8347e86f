package interfaces

import (
	"context"

	"param-server/src/models"
)

// -----------------------------------------------------------------------------
// IHistorySource provides daily closing prices for a symbol.
// -----------------------------------------------------------------------------

type IHistorySource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch returns the closes of symbol over the last years, ascending.
	// Unknown symbols and empty results fail with a data-unavailable error,
	// upstream availability problems with a fetch error.
	Fetch(ctx context.Context, symbol string, years int) (models.MPriceSeries, error)
}
