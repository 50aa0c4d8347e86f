package stored

import (
	"context"
	"time"

	"param-server/src/helpers"
	"param-server/src/interfaces"
	"param-server/src/models"
)

// StoredSource serves history from the local archive filled by `import`.
type StoredSource struct {
	Store interfaces.IPriceStore
	Now   func() time.Time
}

// -----------------------------------------------------------------------------

func NewStoredSource(store interfaces.IPriceStore) *StoredSource {
	return &StoredSource{Store: store, Now: time.Now}
}

// -----------------------------------------------------------------------------

func (s *StoredSource) Name() string {
	return "stored"
}

// -----------------------------------------------------------------------------

func (s *StoredSource) Fetch(ctx context.Context, symbol string, years int) (models.MPriceSeries, error) {
	since := s.Now().UTC().AddDate(-years, 0, 0)

	series, err := s.Store.LoadSeries(ctx, symbol, since)
	if err != nil {
		if ctx.Err() != nil {
			return models.MPriceSeries{}, helpers.NewTimeoutError("fetch "+symbol, ctx.Err())
		}
		return models.MPriceSeries{}, helpers.NewFetchError(symbol, err)
	}
	if len(series.Points) == 0 {
		return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "not in archive")
	}
	return series, nil
}
