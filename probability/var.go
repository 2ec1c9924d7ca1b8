package probability

import (
	"math"
	"sort"

	"github.com/bcdannyboy/stocvar/models"
	"gonum.org/v1/gonum/floats"
)

// Percentile returns the (100-confidence)th percentile of values, i.e. the
// outcome at the VaR tail for a confidence level given in percent.
func Percentile(values []float64, confidence int) (float64, error) {
	return Quantile(values, float64(100-confidence))
}

// Quantile returns the pth percentile (0 < p <= 100) of values, interpolating
// at position p(n+1)/100 of the sorted sample. Positions before the first
// observation yield the minimum and positions past the last yield the maximum.
func Quantile(values []float64, p float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, models.Errorf(models.KindNumerical, "", "percentile of an empty sample")
	}
	if p <= 0 || p > 100 || math.IsNaN(p) {
		return 0, models.Errorf(models.KindConfiguration, "", "percentile %v outside (0,100]", p)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0], nil
	}

	pos := p * float64(n+1) / 100
	if pos < 1 {
		return sorted[0], nil
	}
	if pos >= float64(n) {
		return sorted[n-1], nil
	}
	floor := math.Floor(pos)
	lower := sorted[int(floor)-1]
	upper := sorted[int(floor)]
	return lower + (pos-floor)*(upper-lower), nil
}

// Min returns the smallest value, or an error for an empty sample.
func Min(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, models.Errorf(models.KindNumerical, "", "minimum of an empty sample")
	}
	return floats.Min(values), nil
}
