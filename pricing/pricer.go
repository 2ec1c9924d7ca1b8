package pricing

import "github.com/bcdannyboy/stocvar/models"

// Quote is a price together with the worst value seen while estimating it.
// Closed form and lattice engines report the same number twice.
type Quote struct {
	Value     float64
	WorstCase float64
}

// Pricer values a single option per unit.
type Pricer interface {
	Price(o models.Option) (Quote, error)
}

// New returns the engine for kind. mc configures the Monte Carlo engine and
// is ignored by the others.
func New(kind models.PricingModel, mc MonteCarloPricer) (Pricer, error) {
	switch kind {
	case models.BlackScholes:
		return BlackScholesPricer{}, nil
	case models.BinomialTree:
		return BinomialPricer{}, nil
	case models.MonteCarloPricing:
		return mc, nil
	}
	return nil, models.Errorf(models.KindConfiguration, kind.String(), "unknown pricing model")
}

// Position values NumShares units of o.
func Position(p Pricer, o models.Option) (Quote, error) {
	q, err := p.Price(o)
	if err != nil {
		return Quote{}, err
	}
	n := float64(o.NumShares)
	return Quote{Value: q.Value * n, WorstCase: q.WorstCase * n}, nil
}
