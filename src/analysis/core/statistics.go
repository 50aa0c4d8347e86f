package core

import "math"

// -----------------------------------------------------------------------------

// CalculateMean computes the arithmetic mean. Empty input yields NaN.
func CalculateMean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// -----------------------------------------------------------------------------

// CalculateMeanStd computes the mean and the sample standard deviation
// (N-1 denominator). Fewer than two values leave the std undefined (NaN).
func CalculateMeanStd(data []float64) (float64, float64) {
	mean := CalculateMean(data)
	if len(data) < 2 {
		return mean, math.NaN()
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)-1))
	return mean, std
}

// -----------------------------------------------------------------------------

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// -----------------------------------------------------------------------------

// FilterFinite returns the finite values of data and how many were dropped.
func FilterFinite(data []float64) ([]float64, int) {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if IsFinite(v) {
			out = append(out, v)
		}
	}
	return out, len(data) - len(out)
}
