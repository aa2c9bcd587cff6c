package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Median calculates the 50th percentile of a slice of float64 values
func Median(data []float64) float64 {
	return Percentile(data, 50)
}

// Percentile calculates the pct-th percentile (0-100) of a slice of values.
// The input is not modified; a sorted copy is taken internally.
func Percentile(data []float64, pct float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(pct/100.0, stat.Empirical, sorted, nil)
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// SuccessRate returns the fraction of entries in the failure vector that did
// NOT fail.
func SuccessRate(failures []bool) float64 {
	if len(failures) == 0 {
		return 0
	}

	failed := 0
	for _, f := range failures {
		if f {
			failed++
		}
	}

	return 1.0 - float64(failed)/float64(len(failures))
}
