package risk

import (
	"math"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/pricing"
	"github.com/bcdannyboy/stocvar/probability"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MonteCarloSimulation estimates VaR from simulated price paths. A single
// asset follows a random walk at its estimated daily volatility; several
// assets draw correlated log-return shocks through the Cholesky factor of
// their covariance matrix.
type MonteCarloSimulation struct {
	Source      history.Source
	Params      models.Params
	Pricer      pricing.Pricer
	Estimator   models.Estimator
	Simulations int
	Seed        uint64
	Workers     int
}

func (m *MonteCarloSimulation) simulations() int {
	if m.Simulations <= 0 {
		return probability.DefaultSimulations
	}
	return m.Simulations
}

func (m *MonteCarloSimulation) Estimate(p *models.Portfolio, c models.Confidence, horizon int) (Estimate, error) {
	if p.Empty() {
		return Estimate{}, models.Errorf(models.KindConfiguration, p.Name, "portfolio is empty")
	}
	if horizon < 1 {
		return Estimate{}, models.Errorf(models.KindConfiguration, p.Name, "time horizon must be at least 1 day, got %d", horizon)
	}

	initial := p.TotalValue()
	var final, worst float64

	if assets := p.Assets(); len(assets) > 0 {
		var terminal, minimum []float64
		var err error
		if len(assets) == 1 {
			terminal, minimum, err = m.simulateAsset(assets[0], horizon)
		} else {
			terminal, minimum, err = m.simulatePortfolio(p.Name, assets, horizon)
		}
		if err != nil {
			return Estimate{}, err
		}
		pct, err := probability.Percentile(terminal, int(c))
		if err != nil {
			return Estimate{}, models.Wrap(models.KindNumerical, p.Name, err)
		}
		low, _ := probability.Min(minimum)
		final += pct
		worst += low
	}

	for k, o := range p.Options() {
		today, pct, low, err := m.optionPaths(o, k, c, horizon)
		if err != nil {
			return Estimate{}, err
		}
		initial += today
		final += pct
		worst += low
	}

	return newEstimate(initial-final, initial-worst)
}

// SimulateValue runs random walk paths for a single position and returns
// the terminal value and the lowest value of every path.
func SimulateValue(value, vol float64, horizon, simulations, workers int, seed uint64) (terminal, minimum []float64, err error) {
	terminal = make([]float64, simulations)
	minimum = make([]float64, simulations)
	err = probability.Walk(simulations, workers, seed, value, vol, horizon, func(sim int, path []float64) error {
		if len(path) == 0 {
			terminal[sim], minimum[sim] = value, value
			return nil
		}
		terminal[sim], minimum[sim] = path[len(path)-1], floats.Min(path)
		return nil
	})
	return terminal, minimum, err
}

func (m *MonteCarloSimulation) simulateAsset(a models.Asset, horizon int) ([]float64, []float64, error) {
	returns, err := assetReturns(m.Source, a)
	if err != nil {
		return nil, nil, err
	}
	vol, err := m.Params.Volatility(m.Estimator, returns)
	if err != nil {
		return nil, nil, models.Wrap(models.KindNumerical, a.ID, err)
	}
	return SimulateValue(a.Investment, vol, horizon, m.simulations(), m.Workers, m.Seed)
}

func (m *MonteCarloSimulation) simulatePortfolio(name string, assets []models.Asset, horizon int) ([]float64, []float64, error) {
	series := make([][]float64, len(assets))
	for i, a := range assets {
		var err error
		if series[i], err = assetReturns(m.Source, a); err != nil {
			return nil, nil, err
		}
	}
	cov, err := models.CovarianceMatrix(series)
	if err != nil {
		return nil, nil, models.Wrap(models.KindNumerical, name, err)
	}
	l, err := models.Decompose(cov)
	if err != nil {
		return nil, nil, models.Wrap(models.KindNumerical, name, err)
	}
	return correlatedPaths(l, assets, horizon, m.simulations(), m.Workers, m.Seed)
}

// correlatedPaths accumulates L·z daily log-return shocks per asset and
// sums the terminal and lowest position values of each simulation.
func correlatedPaths(l *mat.TriDense, assets []models.Asset, horizon, simulations, workers int, seed uint64) ([]float64, []float64, error) {
	n := len(assets)
	terminal := make([]float64, simulations)
	minimum := make([]float64, simulations)
	err := probability.Simulate(simulations, workers, seed, func(rng *rand.Rand, sim int) error {
		z := make([]float64, n)
		shock := make([]float64, n)
		cum := make([]float64, n)
		low := make([]float64, n)
		for i := range low {
			low[i] = math.Inf(1)
		}
		for d := 0; d < horizon; d++ {
			for i := range z {
				z[i] = rng.NormFloat64()
			}
			models.Correlate(l, z, shock)
			for i := range cum {
				cum[i] += shock[i]
				low[i] = math.Min(low[i], cum[i])
			}
		}
		for i, a := range assets {
			terminal[sim] += a.Investment * math.Exp(cum[i])
			minimum[sim] += a.Investment * math.Exp(low[i])
		}
		return nil
	})
	return terminal, minimum, err
}

// optionPaths values the option position today and along simulated paths of
// its underlying. Closed form and lattice engines reprice the option as of
// every simulated day; the Monte Carlo engine simulates its own paths over
// the horizon.
func (m *MonteCarloSimulation) optionPaths(o models.Option, k int, c models.Confidence, horizon int) (today, pct, low float64, err error) {
	if m.Pricer == nil {
		return 0, 0, 0, models.Errorf(models.KindConfiguration, o.Name, "no option pricing model selected")
	}
	now, err := pricing.Position(m.Pricer, o)
	if err != nil {
		return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
	}
	seed := probability.Derive(m.Seed, uint64(k+1))

	if mc, ok := m.Pricer.(pricing.MonteCarloPricer); ok {
		mc.TimePeriod = horizon
		mc.Seed = seed
		q, err := pricing.Position(mc, o)
		if err != nil {
			return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
		}
		return now.Value, q.Value, q.WorstCase, nil
	}

	sims := m.simulations()
	finals := make([]float64, sims)
	lows := make([]float64, sims)
	err = probability.Walk(sims, m.Workers, seed, o.InitialStockPrice, o.DailyVolatility, horizon, func(sim int, path []float64) error {
		lowest := math.Inf(1)
		var q pricing.Quote
		for d, s := range path {
			var err error
			if q, err = pricing.Position(m.Pricer, o.AsOf(s, max(o.TimeToMaturity-d-1, 0))); err != nil {
				return err
			}
			lowest = math.Min(lowest, q.WorstCase)
		}
		finals[sim], lows[sim] = q.Value, lowest
		return nil
	})
	if err != nil {
		return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
	}

	if pct, err = probability.Percentile(finals, int(c)); err != nil {
		return 0, 0, 0, models.Wrap(models.KindNumerical, o.Name, err)
	}
	low, _ = probability.Min(lows)
	return now.Value, pct, low, nil
}
