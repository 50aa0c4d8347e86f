package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMeanStd(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	// sample variance = 32/7
	assert.InDelta(t, math.Sqrt(32.0/7.0), std, 1e-12)
}

func TestCalculateMeanStdDegenerate(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{0.25})
	assert.Equal(t, 0.25, mean)
	assert.True(t, math.IsNaN(std))

	mean, std = CalculateMeanStd(nil)
	assert.True(t, math.IsNaN(mean))
	assert.True(t, math.IsNaN(std))
}

func TestFilterFinite(t *testing.T) {
	in := []float64{1, math.NaN(), 2, math.Inf(1), math.Inf(-1), 3}
	out, dropped := FilterFinite(in)
	assert.Equal(t, []float64{1, 2, 3}, out)
	assert.Equal(t, 3, dropped)
}

func TestCalculateLogReturns(t *testing.T) {
	returns := CalculateLogReturns([]float64{100, 110, 99})
	if assert.Len(t, returns, 2) {
		assert.InDelta(t, math.Log(1.1), returns[0], 1e-15)
		assert.InDelta(t, math.Log(0.9), returns[1], 1e-15)
	}

	assert.Empty(t, CalculateLogReturns([]float64{100}))
	assert.Empty(t, CalculateLogReturns(nil))
}

func TestFirstNonPositive(t *testing.T) {
	assert.Equal(t, -1, FirstNonPositive([]float64{1, 2, 3}))
	assert.Equal(t, 1, FirstNonPositive([]float64{1, 0, 3}))
	assert.Equal(t, 2, FirstNonPositive([]float64{1, 2, -3}))
}
