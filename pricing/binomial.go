package pricing

import (
	"math"

	"github.com/bcdannyboy/stocvar/models"
)

// BinomialTree prices an option on a recombining lattice with one step per
// trading day. T is in years, sigma and r are annual.
func BinomialTree(t models.OptionType, S, X, T, sigma, r float64) (float64, error) {
	steps := int(math.Floor(T*models.TradingDays + 1e-9))
	return binomial(t, S, X, T, sigma, r, steps)
}

func binomial(t models.OptionType, S, X, T, sigma, r float64, steps int) (float64, error) {
	intrinsic := func(price float64) float64 {
		if t.IsCall() {
			return math.Max(price-X, 0)
		}
		return math.Max(X-price, 0)
	}
	if steps <= 0 {
		return intrinsic(S), nil
	}

	dt := T / float64(steps)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1 / u
	growth := math.Exp(r * dt)
	p := (growth - d) / (u - d)

	switch {
	case !(u >= 1):
		return 0, models.Errorf(models.KindNumerical, "", "binomial tree: up factor %v below 1", u)
	case !(d > 0 && d <= 1):
		return 0, models.Errorf(models.KindNumerical, "", "binomial tree: down factor %v outside (0,1]", d)
	case !(p >= 0 && p <= 1):
		return 0, models.Errorf(models.KindNumerical, "", "binomial tree: risk neutral probability %v outside [0,1]", p)
	}

	ups := make([]float64, steps+1)
	downs := make([]float64, steps+1)
	ups[0], downs[0] = 1, 1
	for k := 1; k <= steps; k++ {
		ups[k] = ups[k-1] * u
		downs[k] = downs[k-1] * d
	}

	values := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		values[i] = intrinsic(S * ups[steps-i] * downs[i])
	}

	discount := 1 / growth
	american := t.IsAmerican()
	for step := steps - 1; step >= 0; step-- {
		for i := 0; i <= step; i++ {
			v := discount * (p*values[i] + (1-p)*values[i+1])
			if american {
				v = math.Max(v, intrinsic(S*ups[step-i]*downs[i]))
			}
			values[i] = v
		}
	}
	return values[0], nil
}

// BinomialPricer prices American and European options on a daily lattice.
type BinomialPricer struct{}

func (BinomialPricer) Price(o models.Option) (Quote, error) {
	v, err := binomial(o.Type, o.InitialStockPrice, o.Strike, o.Years(), o.AnnualVolatility(), o.Interest, o.TimeToMaturity)
	if err != nil {
		return Quote{}, models.Wrap(models.KindNumerical, o.Name, err)
	}
	return Quote{Value: v, WorstCase: v}, nil
}
