package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"param-server/src/helpers"
	"param-server/src/logger"
	"param-server/src/models"
	"param-server/src/network"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartOK = `{"chart":{"result":[{"meta":{"symbol":"AAPL","dataGranularity":"1d","range":"2y"},
"timestamp":[1700179200,1700006400,1700092800,1700179200,1700265600],
"indicators":{"quote":[{"close":[101.5,100.0,null,102.0,103.25]}]}}],"error":null}}`

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newSource(t *testing.T, h http.HandlerFunc) *YahooHistorySource {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := &models.MConfig{
		Network:    models.MNetworkConfig{RequestTimeout: 5},
		DataSource: models.MDataSourceConfig{BaseURL: srv.URL + "/v8/finance/chart/"},
	}
	return NewYahooHistorySource(cfg, network.NewAsyncNetworkManager(cfg, logger.NewLogger(nil, "test")))
}

func TestFetchParsesDailyCloses(t *testing.T) {
	src := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "2y", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(chartOK))
	})

	series, err := src.Fetch(context.Background(), "AAPL", 2)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, []models.MPricePoint{
		{Timestamp: 1700006400, Close: 100.0},
		{Timestamp: 1700179200, Close: 102.0},
		{Timestamp: 1700265600, Close: 103.25},
	}, series.Points)
}

func TestFetchUnknownSymbol(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404 with api error", http.StatusNotFound, chartNotFound},
		{"200 with api error", http.StatusOK, chartNotFound},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"all nulls", http.StatusOK, `{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"close":[null,null]}]}}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := src.Fetch(context.Background(), "ZZZZ", 5)
			require.Error(t, err)

			var de *helpers.DataUnavailableError
			assert.True(t, errors.As(err, &de), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), "ZZZZ")
		})
	}
}

func TestFetchUpstreamFailure(t *testing.T) {
	src := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := src.Fetch(context.Background(), "AAPL", 5)
	require.Error(t, err)
	assert.Equal(t, "fetch", helpers.Category(err))
}

func TestFetchMalformedPayload(t *testing.T) {
	src := newSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})
	_, err := src.Fetch(context.Background(), "AAPL", 5)
	assert.Equal(t, "fetch", helpers.Category(err))
}

func TestBuildSeriesKeepsNonPositive(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	series, err := buildSeries("X", []int64{3, 1, 2}, []*float64{v(5), v(-1), v(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 5}, series.Closes())
}
