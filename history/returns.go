package history

import (
	"math"

	"github.com/bcdannyboy/stocvar/models"
	"gonum.org/v1/gonum/floats"
)

// LogReturns derives daily log returns from prices ordered most recent
// first: returns[i] = ln(prices[i] / prices[i+1]).
func LogReturns(prices []float64) ([]float64, error) {
	if len(prices) < 2 {
		return nil, models.Errorf(models.KindNumerical, "", "need at least 2 prices to derive returns, got %d", len(prices))
	}
	returns := make([]float64, len(prices)-1)
	for i := range returns {
		if prices[i] <= 0 || prices[i+1] <= 0 {
			return nil, models.Errorf(models.KindNumerical, "", "non-positive price at day %d", i)
		}
		returns[i] = math.Log(prices[i] / prices[i+1])
	}
	return returns, nil
}

// SlidingWindowReturns sums returns over every window of horizon consecutive
// days; entry i covers returns[i..i+horizon-1].
func SlidingWindowReturns(returns []float64, horizon int) ([]float64, error) {
	if horizon < 1 || horizon > len(returns) {
		return nil, models.Errorf(models.KindConfiguration, "", "horizon %d outside [1,%d]", horizon, len(returns))
	}
	windows := make([]float64, len(returns)-horizon+1)
	for i := range windows {
		windows[i] = floats.Sum(returns[i : i+horizon])
	}
	return windows, nil
}
