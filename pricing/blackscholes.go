package pricing

import (
	"math"

	"github.com/bcdannyboy/stocvar/models"
)

// CNDF is the cumulative standard normal distribution using the Zelen-Severo
// polynomial approximation (absolute error below 7.5e-8).
func CNDF(x float64) float64 {
	neg := x < 0
	if neg {
		x = -x
	}
	k := 1 / (1 + 0.2316419*x)
	y := ((((1.330274429*k-1.821255978)*k+1.781477937)*k-0.356563782)*k + 0.319381530) * k
	y = 1 - 0.398942280401*math.Exp(-0.5*x*x)*y
	if neg {
		return 1 - y
	}
	return y
}

func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func d1d2(S, X, T, r, sigma float64) (float64, float64) {
	d1 := (math.Log(S/X) + (r+0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	return d1, d1 - sigma*math.Sqrt(T)
}

// BlackScholes prices a European option. T is in years, r and sigma are annual.
func BlackScholes(isCall bool, S, X, T, r, sigma float64) float64 {
	if T <= 0 {
		if isCall {
			return math.Max(S-X, 0)
		}
		return math.Max(X-S, 0)
	}
	if sigma <= 0 {
		pv := X * math.Exp(-r*T)
		if isCall {
			return math.Max(S-pv, 0)
		}
		return math.Max(pv-S, 0)
	}

	d1, d2 := d1d2(S, X, T, r, sigma)
	if isCall {
		return S*CNDF(d1) - X*math.Exp(-r*T)*CNDF(d2)
	}
	return X*math.Exp(-r*T)*CNDF(-d2) - S*CNDF(-d1)
}

// Greeks are the Black-Scholes sensitivities. Theta is per year.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// BlackScholesGreeks computes sensitivities for a European option.
func BlackScholesGreeks(isCall bool, S, X, T, r, sigma float64) Greeks {
	if T <= 0 || sigma <= 0 {
		return Greeks{}
	}
	d1, d2 := d1d2(S, X, T, r, sigma)
	sqrtT := math.Sqrt(T)
	discount := math.Exp(-r * T)

	g := Greeks{
		Gamma: normPDF(d1) / (S * sigma * sqrtT),
		Vega:  S * normPDF(d1) * sqrtT,
	}
	if isCall {
		g.Delta = CNDF(d1)
		g.Theta = -(S*normPDF(d1)*sigma)/(2*sqrtT) - r*X*discount*CNDF(d2)
		g.Rho = X * T * discount * CNDF(d2)
	} else {
		g.Delta = CNDF(d1) - 1
		g.Theta = -(S*normPDF(d1)*sigma)/(2*sqrtT) + r*X*discount*CNDF(-d2)
		g.Rho = -X * T * discount * CNDF(-d2)
	}
	return g
}

// BlackScholesPricer prices European options in closed form.
type BlackScholesPricer struct{}

func (BlackScholesPricer) Price(o models.Option) (Quote, error) {
	if o.Type.IsAmerican() {
		return Quote{}, models.Errorf(models.KindNumerical, o.Name, "unsupported option type %s for %s", o.Type, models.BlackScholes)
	}
	v := BlackScholes(o.Type.IsCall(), o.InitialStockPrice, o.Strike, o.Years(), o.Interest, o.AnnualVolatility())
	return Quote{Value: v, WorstCase: v}, nil
}

// Greeks returns the sensitivities of a European option.
func (BlackScholesPricer) Greeks(o models.Option) (Greeks, error) {
	if o.Type.IsAmerican() {
		return Greeks{}, models.Errorf(models.KindNumerical, o.Name, "unsupported option type %s for %s", o.Type, models.BlackScholes)
	}
	return BlackScholesGreeks(o.Type.IsCall(), o.InitialStockPrice, o.Strike, o.Years(), o.Interest, o.AnnualVolatility()), nil
}
