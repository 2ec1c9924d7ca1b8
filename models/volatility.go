package models

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Estimator selects a daily volatility estimator.
type Estimator int

const (
	Standard Estimator = iota + 1
	EWMA
	GARCH
)

func (e Estimator) String() string {
	switch e {
	case Standard:
		return "standard"
	case EWMA:
		return "ewma"
	case GARCH:
		return "garch"
	}
	return "unknown"
}

// Volatility dispatches to the selected estimator.
func (p Params) Volatility(e Estimator, returns []float64) (float64, error) {
	switch e {
	case Standard:
		return StandardVolatility(returns)
	case EWMA:
		return p.EWMAVolatility(returns)
	case GARCH:
		return p.GARCHVolatility(returns)
	}
	return 0, Errorf(KindConfiguration, e.String(), "unknown volatility estimator")
}

// StandardVolatility is the sample standard deviation of returns.
func StandardVolatility(returns []float64) (float64, error) {
	if len(returns) < 2 {
		return 0, Errorf(KindNumerical, "", "standard volatility needs at least 2 returns, got %d", len(returns))
	}
	return stat.StdDev(returns, nil), nil
}

// EWMAVolatility runs the EWMA variance recursion from the oldest return
// (index n-1) toward the most recent one (index 0).
func (p Params) EWMAVolatility(returns []float64) (float64, error) {
	n := len(returns)
	if n < 1 {
		return 0, Errorf(KindNumerical, "", "ewma volatility needs at least 1 return")
	}
	lambda := p.Lambda

	variance := lambda*p.FirstDayVariance + (1-lambda)*math.Pow(lambda, float64(n-1))*p.FirstDayReturn*p.FirstDayReturn
	for day := n - 2; day >= 0; day-- {
		weight := (1 - lambda) * math.Pow(lambda, float64(day))
		variance = lambda*variance + weight*returns[day+1]*returns[day+1]
	}

	ewma := lambda*variance + (1-lambda)*returns[0]*returns[0]
	return math.Sqrt(ewma), nil
}

// GARCHVolatility runs the GARCH(1,1) recursion with fixed weights against
// the sample variance of returns as the long run variance.
func (p Params) GARCHVolatility(returns []float64) (float64, error) {
	n := len(returns)
	if n < 2 {
		return 0, Errorf(KindNumerical, "", "garch volatility needs at least 2 returns, got %d", n)
	}
	w := p.GARCH
	longRun := stat.Variance(returns, nil)

	variance := w.Gamma*longRun + w.Alpha*p.FirstDayReturn*p.FirstDayReturn + w.Beta*p.FirstDayVariance
	for day := n - 2; day >= 0; day-- {
		variance = w.Gamma*longRun + w.Alpha*returns[day+1]*returns[day+1] + w.Beta*variance
	}
	return math.Sqrt(variance), nil
}
