package engine

import (
	"math"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/pricing"
	"go.uber.org/zap"
)

// VolatilityReading is one estimator's view of a price history.
type VolatilityReading struct {
	Estimator string  `json:"estimator"`
	Daily     float64 `json:"daily"`
	Annual    float64 `json:"annual"`
}

func reading(name string, daily float64) VolatilityReading {
	return VolatilityReading{Estimator: name, Daily: daily, Annual: daily * math.Sqrt(models.TradingDays)}
}

// Volatilities runs every estimator over the price file at ref. The range
// estimators only see the most recent days bars; they are skipped when the
// file carries no OHLC columns.
func (s *Service) Volatilities(ref string, days int) ([]VolatilityReading, error) {
	var out []VolatilityReading
	fields := []zap.Field{zap.String("data", ref), zap.Int("days", days)}

	err := s.run("vol", "volatility", fields, func(log *zap.Logger) error {
		q, err := s.source().History(ref)
		if err != nil {
			return err
		}
		returns, err := q.Returns()
		if err != nil {
			return models.Wrap(models.KindNumerical, ref, err)
		}
		for _, e := range []models.Estimator{models.Standard, models.EWMA, models.GARCH} {
			v, err := s.params.Volatility(e, returns)
			if err != nil {
				return models.Wrap(models.KindNumerical, ref, err)
			}
			out = append(out, reading(e.String(), v))
		}

		bars := q.Bars(days)
		for _, e := range models.RangeEstimators() {
			v, err := models.RangeVolatility(e, bars)
			if err != nil {
				log.Debug("range estimator skipped", zap.Stringer("estimator", e), zap.Error(err))
				continue
			}
			out = append(out, reading(e.String(), v))
		}
		return nil
	})
	return out, err
}

// OptionQuote is one pricer's value for a single option unit.
type OptionQuote struct {
	Pricer    string          `json:"pricer"`
	Value     float64         `json:"value"`
	WorstCase float64         `json:"worst_case"`
	Greeks    *pricing.Greeks `json:"greeks,omitempty"`
}

// PriceOption prices o under every pricing model that supports its type.
func (s *Service) PriceOption(o models.Option) ([]OptionQuote, error) {
	var out []OptionQuote
	fields := []zap.Field{zap.Stringer("type", o.Type), zap.Int("maturity_days", o.TimeToMaturity)}

	err := s.run("price", "pricing", fields, func(log *zap.Logger) error {
		if err := o.Validate(); err != nil {
			return err
		}
		mc := pricing.MonteCarloPricer{
			Simulations: s.simulations,
			TimePeriod:  s.timePeriod,
			Seed:        resolveSeed(s.seed),
			Workers:     s.workers,
		}
		for _, kind := range []models.PricingModel{models.BlackScholes, models.BinomialTree, models.MonteCarloPricing} {
			if kind == models.BlackScholes && o.Type.IsAmerican() {
				continue
			}
			p, err := pricing.New(kind, mc)
			if err != nil {
				return err
			}
			q, err := p.Price(o)
			if err != nil {
				return err
			}
			quote := OptionQuote{Pricer: kind.String(), Value: q.Value, WorstCase: q.WorstCase}
			if bs, ok := p.(pricing.BlackScholesPricer); ok {
				g, err := bs.Greeks(o)
				if err != nil {
					return err
				}
				quote.Greeks = &g
			}
			out = append(out, quote)
		}
		return nil
	})
	return out, err
}

// Source returns a fresh price source as configured.
func (s *Service) Source() history.Source { return s.source() }
