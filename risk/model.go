package risk

import (
	"math"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/pricing"
	"github.com/shopspring/decimal"
)

// Estimate is a VaR pair in currency units, rounded half up on the absolute
// value. Max is the loss at the worst simulated or observed outcome.
type Estimate struct {
	Final float64 `json:"final_var"`
	Max   float64 `json:"max_var"`
}

// Model estimates VaR for a portfolio at a confidence level over horizon days.
type Model interface {
	Estimate(p *models.Portfolio, c models.Confidence, horizon int) (Estimate, error)
}

// Config carries what every model needs; fields a model does not use are ignored.
type Config struct {
	Source      history.Source
	Params      models.Params
	Pricing     models.PricingModel
	MonteCarlo  pricing.MonteCarloPricer
	Simulations int
	Seed        uint64
	Workers     int
}

// New builds a fresh model of kind.
func New(kind models.VaRModel, cfg Config) (Model, error) {
	if cfg.Source == nil {
		return nil, models.Errorf(models.KindConfiguration, kind.String(), "no price data source")
	}
	var pricer pricing.Pricer
	if kind != models.ModelBuilding && cfg.Pricing.Valid() {
		mc := cfg.MonteCarlo
		if mc.Workers == 0 {
			mc.Workers = cfg.Workers
		}
		var err error
		if pricer, err = pricing.New(cfg.Pricing, mc); err != nil {
			return nil, err
		}
	}

	switch kind {
	case models.ModelBuilding:
		return &ModelBuilding{Source: cfg.Source, Params: cfg.Params, Estimator: models.Standard}, nil
	case models.HistoricalSimulation:
		return &HistoricalSimulation{Source: cfg.Source, Pricer: pricer, Workers: cfg.Workers}, nil
	case models.MonteCarlo:
		return &MonteCarloSimulation{
			Source:      cfg.Source,
			Params:      cfg.Params,
			Pricer:      pricer,
			Estimator:   models.EWMA,
			Simulations: cfg.Simulations,
			Seed:        cfg.Seed,
			Workers:     cfg.Workers,
		}, nil
	}
	return nil, models.Errorf(models.KindConfiguration, kind.String(), "unknown VaR model")
}

// Round rounds v to whole currency units, half up on |v|, keeping the sign.
func Round(v float64) float64 {
	r := decimal.NewFromFloat(math.Abs(v)).Round(0).InexactFloat64()
	if v < 0 {
		return -r
	}
	return r
}

func newEstimate(final, max float64) (Estimate, error) {
	for _, v := range []float64{final, max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Estimate{}, models.Errorf(models.KindNumerical, "", "non-finite VaR (final=%v, max=%v)", final, max)
		}
	}
	return Estimate{Final: Round(final), Max: Round(max)}, nil
}

func assetReturns(src history.Source, a models.Asset) ([]float64, error) {
	r, err := history.Returns(src, a.PriceData)
	if err != nil {
		return nil, models.Wrap(models.KindDataIO, a.ID, err)
	}
	return r, nil
}
