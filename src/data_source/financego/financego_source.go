package financego

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"param-server/src/helpers"
	"param-server/src/logger"
	"param-server/src/models"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

// BarIterator is the subset of *chart.Iter the source consumes.
type BarIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// FinanceGoSource reads daily bars through the finance-go chart client.
type FinanceGoSource struct {
	Logger *logger.Logger

	// Chart opens the bar iterator; defaults to chart.Get.
	Chart func(*chart.Params) BarIterator
	Now   func() time.Time
}

// -----------------------------------------------------------------------------

func NewFinanceGoSource(cfg *models.MConfig) *FinanceGoSource {
	return &FinanceGoSource{
		Logger: logger.NewLogger(cfg, "FinanceGoSource"),
		Chart:  func(p *chart.Params) BarIterator { return chart.Get(p) },
		Now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *FinanceGoSource) Name() string {
	return "financego"
}

// -----------------------------------------------------------------------------

type fetchResult struct {
	series models.MPriceSeries
	err    error
}

// Fetch walks the daily bars over [now-years, now]. The client has no
// cancellation of its own, so the walk runs aside and ctx bounds the wait.
// On timeout that goroutine is left to finish on its own; its result is dropped.
func (s *FinanceGoSource) Fetch(ctx context.Context, symbol string, years int) (models.MPriceSeries, error) {
	end := s.Now().UTC()
	start := end.AddDate(-years, 0, 0)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	done := make(chan fetchResult, 1)
	go func() {
		series, err := s.collect(symbol, s.Chart(params))
		done <- fetchResult{series: series, err: err}
	}()

	select {
	case r := <-done:
		return r.series, r.err
	case <-ctx.Done():
		return models.MPriceSeries{}, helpers.NewTimeoutError("fetch "+symbol, ctx.Err())
	}
}

// -----------------------------------------------------------------------------

func (s *FinanceGoSource) collect(symbol string, iter BarIterator) (models.MPriceSeries, error) {
	byTs := make(map[int64]float64)
	for iter.Next() {
		bar := iter.Bar()
		if bar == nil {
			continue
		}
		if c, ok := closeOf(bar.Close, bar.Volume); ok {
			byTs[int64(bar.Timestamp)] = c
		}
	}
	if err := iter.Err(); err != nil {
		return models.MPriceSeries{}, helpers.NewFetchError(symbol, fmt.Errorf("chart iterator: %w", err))
	}

	if len(byTs) == 0 {
		return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "no bars returned")
	}

	points := make([]models.MPricePoint, 0, len(byTs))
	for ts, c := range byTs {
		points = append(points, models.MPricePoint{Timestamp: ts, Close: c})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	s.Logger.Info("Fetched %s: %d daily bars", symbol, len(points))
	return models.MPriceSeries{Symbol: symbol, Points: points}, nil
}

// -----------------------------------------------------------------------------

// closeOf converts a bar close. A zero close with zero volume is the empty
// placeholder bar for a non-trading day and is skipped. Closes beyond float64
// range are skipped too. Negative or zero closes with volume are kept so the
// estimator can reject the series.
func closeOf(d decimal.Decimal, volume int) (float64, bool) {
	if d.Equal(decimal.Zero) && volume == 0 {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
