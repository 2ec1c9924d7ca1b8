package pricing

import (
	"math"
	"testing"

	"github.com/bcdannyboy/stocvar/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func option(t models.OptionType) models.Option {
	return models.Option{
		Name:              "XYZ",
		InitialStockPrice: 80,
		Strike:            100,
		Interest:          0.07,
		DailyVolatility:   0.03,
		TimeToMaturity:    126,
		Type:              t,
		NumShares:         1,
	}
}

func TestCNDF(t *testing.T) {
	for _, x := range []float64{-3, -1.5, -0.2, 0, 0.7, 2.33, 4} {
		assert.InDelta(t, distuv.UnitNormal.CDF(x), CNDF(x), 1e-7, "x=%v", x)
	}
}

func TestBlackScholes(t *testing.T) {
	sigma := 0.03 * math.Sqrt(252)
	assert.InDelta(t, 5.29, BlackScholes(true, 80, 100, 0.5, 0.07, sigma), 0.01)
	assert.InDelta(t, 21.85, BlackScholes(false, 80, 100, 0.5, 0.07, sigma), 0.01)

	q, err := BlackScholesPricer{}.Price(option(models.EuropeanCall))
	require.NoError(t, err)
	assert.InDelta(t, 5.29, q.Value, 0.01)
	assert.Equal(t, q.Value, q.WorstCase)

	q, err = BlackScholesPricer{}.Price(option(models.EuropeanPut))
	require.NoError(t, err)
	assert.InDelta(t, 21.85, q.Value, 0.01)
}

func TestBlackScholesParity(t *testing.T) {
	S, X, T, r, sigma := 95.0, 100.0, 0.75, 0.03, 0.25
	call := BlackScholes(true, S, X, T, r, sigma)
	put := BlackScholes(false, S, X, T, r, sigma)
	assert.InDelta(t, S-X*math.Exp(-r*T), call-put, 1e-5)
}

func TestBlackScholesExpired(t *testing.T) {
	assert.Equal(t, 20.0, BlackScholes(true, 120, 100, 0, 0.05, 0.2))
	assert.Equal(t, 0.0, BlackScholes(false, 120, 100, 0, 0.05, 0.2))

	o := option(models.EuropeanPut).AsOf(70, 0)
	q, err := BlackScholesPricer{}.Price(o)
	require.NoError(t, err)
	assert.Equal(t, 30.0, q.Value)
}

func TestBlackScholesRejectsAmerican(t *testing.T) {
	_, err := BlackScholesPricer{}.Price(option(models.AmericanPut))
	assert.ErrorIs(t, err, models.ErrNumerical)

	_, err = BlackScholesPricer{}.Greeks(option(models.AmericanCall))
	assert.ErrorIs(t, err, models.ErrNumerical)
}

func TestGreeks(t *testing.T) {
	S, X, T, r, sigma := 100.0, 100.0, 1.0, 0.05, 0.2
	call := BlackScholesGreeks(true, S, X, T, r, sigma)
	put := BlackScholesGreeks(false, S, X, T, r, sigma)

	assert.InDelta(t, 0.6368, call.Delta, 1e-3)
	assert.InDelta(t, call.Delta-1, put.Delta, 1e-9)
	assert.InDelta(t, call.Gamma, put.Gamma, 1e-12)
	assert.InDelta(t, call.Vega, put.Vega, 1e-12)
	assert.Greater(t, call.Rho, 0.0)
	assert.Less(t, put.Rho, 0.0)

	// delta against a central difference
	h := 0.01
	fd := (BlackScholes(true, S+h, X, T, r, sigma) - BlackScholes(true, S-h, X, T, r, sigma)) / (2 * h)
	assert.InDelta(t, fd, call.Delta, 1e-4)

	g, err := BlackScholesPricer{}.Greeks(option(models.EuropeanCall))
	require.NoError(t, err)
	assert.Greater(t, g.Delta, 0.0)
}

func TestBinomialTree(t *testing.T) {
	// 5 month at-the-money put, 21 trading days a month
	T := 105.0 / 252

	american, err := BinomialTree(models.AmericanPut, 50, 50, T, 0.4, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 4.28, american, 0.03)

	european, err := BinomialTree(models.EuropeanPut, 50, 50, T, 0.4, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, BlackScholes(false, 50, 50, T, 0.1, 0.4), european, 0.02)
	assert.Greater(t, american, european)

	call, err := BinomialTree(models.EuropeanCall, 50, 50, T, 0.4, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, BlackScholes(true, 50, 50, T, 0.1, 0.4), call, 0.02)

	earlyCall, err := BinomialTree(models.AmericanCall, 50, 50, T, 0.4, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, call, earlyCall, 1e-9, "no early exercise premium on a call without dividends")
}

func TestBinomialInvalidLattice(t *testing.T) {
	// a huge rate over a flat lattice pushes p above 1
	_, err := BinomialTree(models.EuropeanCall, 50, 50, 1, 0.001, 5)
	assert.ErrorIs(t, err, models.ErrNumerical)

	o := option(models.AmericanPut)
	o.DailyVolatility = 0
	_, err = BinomialPricer{}.Price(o)
	require.Error(t, err)
	var e *models.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "XYZ", e.Subject)
}

func TestBinomialPricer(t *testing.T) {
	q, err := BinomialPricer{}.Price(option(models.EuropeanCall))
	require.NoError(t, err)
	assert.InDelta(t, 5.29, q.Value, 0.05)

	expired, err := BinomialPricer{}.Price(option(models.AmericanPut).AsOf(70, 0))
	require.NoError(t, err)
	assert.Equal(t, 30.0, expired.Value)
}

func TestMonteCarloPricer(t *testing.T) {
	mc := MonteCarloPricer{Simulations: 2000, TimePeriod: 10, Seed: 11}
	o := option(models.EuropeanPut)

	a, err := mc.Price(o)
	require.NoError(t, err)
	b, err := mc.Price(o)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.LessOrEqual(t, a.WorstCase, a.Value)
	assert.Greater(t, a.Value, 0.0)

	mc.Seed = 12
	c, err := mc.Price(o)
	require.NoError(t, err)
	assert.NotEqual(t, a.Value, c.Value)

	// no volatility leaves every path at the strike gap
	flat := o
	flat.DailyVolatility = 0
	q, err := MonteCarloPricer{Simulations: 10}.Price(flat)
	require.NoError(t, err)
	assert.InDelta(t, 20*Discount(0.07, 116), q.Value, 1e-12)
}

func TestDiscount(t *testing.T) {
	assert.Equal(t, 1.0, Discount(0.05, 0))
	assert.Equal(t, 1.0, Discount(0.05, -3))
	assert.InDelta(t, 1/1.05, Discount(0.05, 252), 1e-12)
}

func TestNewAndPosition(t *testing.T) {
	for _, kind := range []models.PricingModel{models.BlackScholes, models.BinomialTree, models.MonteCarloPricing} {
		p, err := New(kind, MonteCarloPricer{Simulations: 100, Seed: 1})
		require.NoError(t, err, kind.String())

		o := option(models.EuropeanCall)
		o.NumShares = 3
		unit, err := p.Price(o)
		require.NoError(t, err)
		pos, err := Position(p, o)
		require.NoError(t, err)
		assert.InDelta(t, 3*unit.Value, pos.Value, 1e-9, kind.String())
	}

	_, err := New(models.PricingModel(0), MonteCarloPricer{})
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
