package backtest

import (
	"fmt"
	"math"
	"strings"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/probability"
	"github.com/bcdannyboy/stocvar/risk"
	"gonum.org/v1/gonum/floats"
)

// DefaultDays is the number of trading days replayed when none is configured.
const DefaultDays = 100

// Backtester replays a VaR model over the most recent days of a single
// asset's history and counts the days whose realized loss beat the estimate.
type Backtester struct {
	Source      history.Source
	Params      models.Params
	Days        int
	Simulations int
	Seed        uint64
	Workers     int

	// Progress, when set, is called after every replayed day.
	Progress func(done, total int)
}

// Report is the outcome of one backtest.
type Report struct {
	Model      models.VaRModel   `json:"-"`
	ModelName  string            `json:"model"`
	AssetID    string            `json:"asset"`
	Confidence models.Confidence `json:"confidence"`
	Horizon    int               `json:"horizon"`
	Days       int               `json:"days"`
	Acceptable int               `json:"acceptable_exceptions"`
	Exceptions int               `json:"exceptions"`
	Estimates  []float64         `json:"estimates"`
	Losses     []float64         `json:"losses"`
}

func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Backtesting %s:\n", r.Model)
	fmt.Fprintf(&sb, "\t Acceptable exceptions: %d Number of exceptions = %d\n", r.Acceptable, r.Exceptions)
	return sb.String()
}

// AcceptableExceptions is floor(days·(1 − c/100)), computed on integers.
func AcceptableExceptions(days int, c models.Confidence) int {
	return days * (100 - int(c)) / 100
}

func (b *Backtester) days() int {
	if b.Days <= 0 {
		return DefaultDays
	}
	return b.Days
}

// Run backtests the setup's model on the first asset of its portfolio.
func (b *Backtester) Run(setup models.SimulationSetup) (Report, error) {
	assets := setup.Portfolio().Assets()
	if len(assets) == 0 {
		return Report{}, models.Errorf(models.KindConfiguration, setup.Portfolio().Name, "backtesting needs an asset")
	}
	return b.RunAsset(assets[0], setup.Model(), setup.Confidence(), setup.Horizon())
}

// RunAsset backtests model on a single asset. For test day k the estimate
// only sees returns older than the realized horizon window it is compared with.
func (b *Backtester) RunAsset(a models.Asset, model models.VaRModel, c models.Confidence, horizon int) (Report, error) {
	if !model.Valid() {
		return Report{}, models.Errorf(models.KindConfiguration, a.ID, "no VaR model selected")
	}
	if horizon < 1 {
		return Report{}, models.Errorf(models.KindConfiguration, a.ID, "time horizon must be at least 1 day, got %d", horizon)
	}
	z, err := b.Params.Z(int(c))
	if err != nil {
		return Report{}, err
	}
	returns, err := history.Returns(b.Source, a.PriceData)
	if err != nil {
		return Report{}, models.Wrap(models.KindDataIO, a.ID, err)
	}

	n := b.days()
	if need := n + horizon - 1 + max(horizon, 2); len(returns) < need {
		return Report{}, models.Errorf(models.KindConfiguration, a.ID, "backtesting %d days over %d-day horizon needs %d returns, got %d", n, horizon, need, len(returns))
	}

	value := a.Investment
	report := Report{
		Model:      model,
		ModelName:  model.String(),
		AssetID:    a.ID,
		Confidence: c,
		Horizon:    horizon,
		Days:       n,
		Acceptable: AcceptableExceptions(n, c),
		Estimates:  make([]float64, n),
		Losses:     make([]float64, n),
	}

	for k := 0; k < n; k++ {
		j := n + horizon - 1 - k
		estimate, err := b.estimate(model, returns[j:], value, z, c, horizon, uint64(k))
		if err != nil {
			return Report{}, models.Wrap(models.KindNumerical, a.ID, err)
		}
		loss := value - value*math.Exp(floats.Sum(returns[j-horizon:j]))

		report.Estimates[k] = estimate
		report.Losses[k] = loss
		if loss > estimate {
			report.Exceptions++
		}
		if b.Progress != nil {
			b.Progress(k+1, n)
		}
	}
	return report, nil
}

func (b *Backtester) estimate(model models.VaRModel, past []float64, value, z float64, c models.Confidence, horizon int, day uint64) (float64, error) {
	switch model {
	case models.ModelBuilding:
		vol, err := b.Params.GARCHVolatility(past)
		if err != nil {
			return 0, err
		}
		return risk.SingleAssetVaR(z, vol, value, horizon), nil

	case models.HistoricalSimulation:
		windows, err := history.SlidingWindowReturns(past, horizon)
		if err != nil {
			return 0, err
		}
		values := make([]float64, len(windows))
		for i, w := range windows {
			values[i] = value * math.Exp(w)
		}
		pct, err := probability.Percentile(values, int(c))
		if err != nil {
			return 0, err
		}
		return value - pct, nil

	case models.MonteCarlo:
		vol, err := b.Params.GARCHVolatility(past)
		if err != nil {
			return 0, err
		}
		sims := b.Simulations
		if sims <= 0 {
			sims = probability.DefaultSimulations
		}
		terminal, _, err := risk.SimulateValue(value, vol, horizon, sims, b.Workers, probability.Derive(b.Seed, day))
		if err != nil {
			return 0, err
		}
		pct, err := probability.Percentile(terminal, int(c))
		if err != nil {
			return 0, err
		}
		return value - pct, nil
	}
	return 0, models.Errorf(models.KindConfiguration, model.String(), "unknown VaR model")
}
