package interfaces

import (
	"context"
	"time"

	"param-server/src/models"
)

// -----------------------------------------------------------------------------
// IPriceStore is the local archive of daily closes.
// -----------------------------------------------------------------------------

type IPriceStore interface {

	// Initialize opens the connection and creates the schema if needed.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveSeries upserts every point of series.
	SaveSeries(ctx context.Context, series models.MPriceSeries) error

	// -----------------------------------------------------------------------------

	// LoadSeries returns the stored closes of symbol at or after since, ascending.
	LoadSeries(ctx context.Context, symbol string, since time.Time) (models.MPriceSeries, error)

	// -----------------------------------------------------------------------------

	// Symbols lists every archived symbol.
	Symbols(ctx context.Context) ([]string, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
