package models

import "time"

// MPricePoint is one daily close.
type MPricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Close     float64 `json:"close"`
}

// MPriceSeries holds the closes of one symbol, ascending by timestamp.
type MPriceSeries struct {
	Symbol string        `json:"symbol"`
	Points []MPricePoint `json:"points"`
}

// -----------------------------------------------------------------------------

// Closes returns the closing prices in series order.
func (s MPriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// -----------------------------------------------------------------------------

// Span returns the first and last timestamps as UTC times.
func (s MPriceSeries) Span() (time.Time, time.Time) {
	if len(s.Points) == 0 {
		return time.Time{}, time.Time{}
	}
	first := time.Unix(s.Points[0].Timestamp, 0).UTC()
	last := time.Unix(s.Points[len(s.Points)-1].Timestamp, 0).UTC()
	return first, last
}
