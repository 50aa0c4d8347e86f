package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"param-server/src/helpers"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/models"
	"param-server/src/network"
)

// DefaultBaseURL is the v8 chart endpoint; the symbol is appended as a path segment.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// YahooHistorySource reads daily closes from the Yahoo chart API.
type YahooHistorySource struct {
	BaseURL string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func (s *YahooHistorySource) Name() string {
	return "yahoo"
}

// -----------------------------------------------------------------------------

func NewYahooHistorySource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooHistorySource {
	base := DefaultBaseURL
	if cfg != nil && cfg.DataSource.BaseURL != "" {
		base = strings.TrimRight(cfg.DataSource.BaseURL, "/")
	}
	return &YahooHistorySource{
		BaseURL: base,
		Network: netMgr,
		Logger:  logger.NewLogger(cfg, "YahooHistorySource"),
	}
}

// -----------------------------------------------------------------------------

// Fetch requests range={years}y at a daily interval.
func (s *YahooHistorySource) Fetch(ctx context.Context, symbol string, years int) (models.MPriceSeries, error) {
	params := map[string]string{
		"interval":       "1d",
		"range":          fmt.Sprintf("%dy", years),
		"includePrePost": "false",
	}
	endpoint := s.BaseURL + "/" + url.PathEscape(symbol)

	respBytes, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		var se *network.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "%s", apiErrorText(se.Body, "not found"))
		}
		if ctx.Err() != nil {
			return models.MPriceSeries{}, helpers.NewTimeoutError("fetch "+symbol, ctx.Err())
		}
		return models.MPriceSeries{}, helpers.NewFetchError(symbol, err)
	}

	return s.parseChartResponse(symbol, respBytes)
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency         string `json:"currency"`
				Symbol           string `json:"symbol"`
				ExchangeName     string `json:"exchangeName"`
				DataGranularity  string `json:"dataGranularity"`
				Range            string `json:"range"`
				ExchangeTimezone string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"` // Use pointers to handle null
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooAPIError `json:"error"`
	} `json:"chart"`
}

type yahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *yahooAPIError) String() string {
	if e.Description == "" {
		return e.Code
	}
	return e.Code + ": " + e.Description
}

// -----------------------------------------------------------------------------

// apiErrorText extracts chart.error from a payload, or returns fallback.
func apiErrorText(body []byte, fallback string) string {
	var resp YahooChartResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Chart.Error == nil {
		return fallback
	}
	return resp.Chart.Error.String()
}

// -----------------------------------------------------------------------------

func (s *YahooHistorySource) parseChartResponse(symbol string, data []byte) (models.MPriceSeries, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return models.MPriceSeries{}, helpers.NewFetchError(symbol, fmt.Errorf("json unmarshal failed: %w", err))
	}

	if resp.Chart.Error != nil {
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "%s", resp.Chart.Error.String())
		}
		return models.MPriceSeries{}, helpers.NewFetchError(symbol, fmt.Errorf("yahoo api error: %s", resp.Chart.Error.String()))
	}

	if len(resp.Chart.Result) == 0 {
		return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "no result in response")
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "no quotes in response")
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		s.Logger.Info("Data alignment error for %s: %d timestamps, %d closes", symbol, len(result.Timestamp), len(closes))
		return models.MPriceSeries{}, helpers.NewFetchError(symbol, fmt.Errorf("data alignment error"))
	}

	return buildSeries(symbol, result.Timestamp, closes, s.Logger)
}

// -----------------------------------------------------------------------------

// buildSeries drops null closes, sorts ascending and keeps the last close
// seen for a repeated timestamp. Non-positive closes are kept so the
// estimator can reject the series.
func buildSeries(symbol string, timestamps []int64, closes []*float64, log *logger.Logger) (models.MPriceSeries, error) {
	byTs := make(map[int64]float64, len(timestamps))
	skipped := 0
	for i, ts := range timestamps {
		c := closes[i]
		if c == nil || math.IsNaN(*c) || math.IsInf(*c, 0) {
			skipped++
			continue
		}
		byTs[ts] = *c
	}

	if len(byTs) == 0 {
		return models.MPriceSeries{}, helpers.NewDataUnavailableError(symbol, "no valid closes")
	}

	points := make([]models.MPricePoint, 0, len(byTs))
	for ts, c := range byTs {
		points = append(points, models.MPricePoint{Timestamp: ts, Close: c})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	if skipped > 0 && log != nil {
		log.Debug("%s: skipped %d null closes", symbol, skipped)
	}
	if log != nil {
		log.Info("Fetched %s: %d daily closes [%d -> %d]", symbol, len(points), points[0].Timestamp, points[len(points)-1].Timestamp)
	}

	return models.MPriceSeries{Symbol: symbol, Points: points}, nil
}
