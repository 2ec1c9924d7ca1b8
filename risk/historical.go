package risk

import (
	"math"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/pricing"
	"github.com/bcdannyboy/stocvar/probability"
)

// HistoricalSimulation revalues the portfolio under every observed
// horizon-day return and reads VaR off the resulting distribution.
type HistoricalSimulation struct {
	Source  history.Source
	Pricer  pricing.Pricer
	Workers int
}

func (m *HistoricalSimulation) Estimate(p *models.Portfolio, c models.Confidence, horizon int) (Estimate, error) {
	if p.Empty() {
		return Estimate{}, models.Errorf(models.KindConfiguration, p.Name, "portfolio is empty")
	}

	initial := p.TotalValue()
	var final, worst float64

	if assets := p.Assets(); len(assets) > 0 {
		scenarios, err := m.assetScenarios(assets, horizon)
		if err != nil {
			return Estimate{}, err
		}
		pct, err := probability.Percentile(scenarios, int(c))
		if err != nil {
			return Estimate{}, models.Wrap(models.KindNumerical, p.Name, err)
		}
		low, _ := probability.Min(scenarios)
		final += pct
		worst += low
	}

	for _, o := range p.Options() {
		today, pct, low, err := m.optionScenarios(o, c, horizon)
		if err != nil {
			return Estimate{}, err
		}
		initial += today
		final += pct
		worst += low
	}

	return newEstimate(initial-final, initial-worst)
}

// assetScenarios sums every asset's revalued position per historical window,
// aligned by index and truncated to the shortest history.
func (m *HistoricalSimulation) assetScenarios(assets []models.Asset, horizon int) ([]float64, error) {
	windows := make([][]float64, len(assets))
	n := math.MaxInt
	for i, a := range assets {
		returns, err := assetReturns(m.Source, a)
		if err != nil {
			return nil, err
		}
		if windows[i], err = history.SlidingWindowReturns(returns, horizon); err != nil {
			return nil, models.Wrap(models.KindConfiguration, a.ID, err)
		}
		n = min(n, len(windows[i]))
	}

	scenarios := make([]float64, n)
	for i, a := range assets {
		for day := 0; day < n; day++ {
			scenarios[day] += a.Investment * math.Exp(windows[i][day])
		}
	}
	return scenarios, nil
}

// optionScenarios values the option position today and under each
// historical move of its underlying, priced as of the end of the horizon.
func (m *HistoricalSimulation) optionScenarios(o models.Option, c models.Confidence, horizon int) (today, pct, low float64, err error) {
	if m.Pricer == nil {
		return 0, 0, 0, models.Errorf(models.KindConfiguration, o.Name, "no option pricing model selected")
	}
	now, err := pricing.Position(m.Pricer, o)
	if err != nil {
		return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
	}

	returns, err := history.Returns(m.Source, o.PriceData)
	if err != nil {
		return 0, 0, 0, models.Wrap(models.KindDataIO, o.Name, err)
	}
	windows, err := history.SlidingWindowReturns(returns, horizon)
	if err != nil {
		return 0, 0, 0, models.Wrap(models.KindConfiguration, o.Name, err)
	}

	remaining := max(o.TimeToMaturity-horizon, 0)
	values := make([]float64, len(windows))
	lows := make([]float64, len(windows))
	err = probability.Parallel(len(windows), m.Workers, func(i int) error {
		q, err := pricing.Position(m.Pricer, o.AsOf(o.InitialStockPrice*math.Exp(windows[i]), remaining))
		if err != nil {
			return err
		}
		values[i], lows[i] = q.Value, q.WorstCase
		return nil
	})
	if err != nil {
		return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
	}

	if pct, err = probability.Percentile(values, int(c)); err != nil {
		return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
	}
	low, _ = probability.Min(lows)
	return now.Value, pct, low, nil
}
