package core

import "math"

// -----------------------------------------------------------------------------

// CalculateLogReturn is ln(current/previous). Non-positive inputs give a
// non-finite or meaningless result; callers validate prices first.
func CalculateLogReturn(current, previous float64) float64 {
	return math.Log(current / previous)
}

// -----------------------------------------------------------------------------

// CalculateLogReturns maps N prices onto N-1 log-returns, element i being
// ln(prices[i+1]/prices[i]). Fewer than two prices yield an empty slice.
func CalculateLogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = CalculateLogReturn(prices[i], prices[i-1])
	}
	return returns
}

// -----------------------------------------------------------------------------

// FirstNonPositive returns the index of the first price <= 0, or -1.
func FirstNonPositive(prices []float64) int {
	for i, p := range prices {
		if p <= 0 {
			return i
		}
	}
	return -1
}
