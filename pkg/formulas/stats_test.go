package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, Mean(nil))
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, StdDev(nil))
}

func TestPercentile(t *testing.T) {
	data := []float64{40, 10, 30, 20}

	// Empirical quantile: smallest value with cumulative weight >= p.
	assert.InDelta(t, 20.0, Percentile(data, 50), 1e-9)
	assert.InDelta(t, 10.0, Percentile(data, 5), 1e-9)
	assert.InDelta(t, 40.0, Percentile(data, 95), 1e-9)
	assert.Zero(t, Percentile(nil, 50))

	// The input order is preserved.
	assert.Equal(t, []float64{40, 10, 30, 20}, data)
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-9)
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, Correlation(x, x), 1e-9)
	assert.InDelta(t, -1.0, Correlation(x, []float64{4, 3, 2, 1}), 1e-9)
	assert.Zero(t, Correlation(x, []float64{1, 2}))
}

func TestSuccessRate(t *testing.T) {
	assert.InDelta(t, 0.75, SuccessRate([]bool{false, false, true, false}), 1e-9)
	assert.InDelta(t, 1.0, SuccessRate([]bool{false}), 1e-9)
	assert.Zero(t, SuccessRate(nil))
}
