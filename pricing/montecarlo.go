package pricing

import (
	"math"

	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/probability"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTimePeriod is the simulated horizon in days when none is set.
const DefaultTimePeriod = 10

// MonteCarloPricer averages terminal payoffs over simulated random walk
// paths of TimePeriod days and discounts the mean over the days to maturity
// left after the simulated period. American options are priced on their
// terminal payoff, without early exercise.
type MonteCarloPricer struct {
	Simulations int
	TimePeriod  int
	Seed        uint64
	Workers     int
}

func (m MonteCarloPricer) simulations() int {
	if m.Simulations <= 0 {
		return probability.DefaultSimulations
	}
	return m.Simulations
}

func (m MonteCarloPricer) period() int {
	if m.TimePeriod <= 0 {
		return DefaultTimePeriod
	}
	return m.TimePeriod
}

func (m MonteCarloPricer) Price(o models.Option) (Quote, error) {
	sims, period := m.simulations(), m.period()

	payoffs := make([]float64, sims)
	err := probability.Walk(sims, m.Workers, m.Seed, o.InitialStockPrice, o.DailyVolatility, period, func(sim int, path []float64) error {
		payoffs[sim] = o.Intrinsic(path[len(path)-1])
		return nil
	})
	if err != nil {
		return Quote{}, models.Wrap(models.KindNumerical, o.Name, err)
	}

	discount := Discount(o.Interest, o.TimeToMaturity-period)
	return Quote{
		Value:     stat.Mean(payoffs, nil) * discount,
		WorstCase: floats.Min(payoffs) * discount,
	}, nil
}

// Discount is the present value factor (1+r)^-(days/252). Non-positive day
// counts do not discount.
func Discount(rate float64, days int) float64 {
	if days <= 0 {
		return 1
	}
	return math.Pow(1+rate, -float64(days)/models.TradingDays)
}
