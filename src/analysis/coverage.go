package analysis

import (
	"param-server/src/models"
	"param-server/src/utils"
)

// -----------------------------------------------------------------------------

// Coverage is the share of expected trading days present in series, between
// its first and last point. Zero for fewer than two points.
func Coverage(series models.MPriceSeries, cal *utils.TradingCalendar) float64 {
	if len(series.Points) < 2 || cal == nil {
		return 0
	}

	first, last := series.Span()
	expected := cal.TradingDaysBetween(first, last)
	if expected == 0 {
		return 0
	}

	ratio := float64(len(series.Points)) / float64(expected)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}
