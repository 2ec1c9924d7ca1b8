package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	err := Errorf(KindNumerical, "AAPL", "bad %s", "thing")
	assert.EqualError(t, err, "numerical error: AAPL: bad thing")
	assert.ErrorIs(t, err, ErrNumerical)
	assert.NotErrorIs(t, err, ErrParse)

	kind, ok := KindOf(fmt.Errorf("outer: %w", err))
	require.True(t, ok)
	assert.Equal(t, KindNumerical, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(KindDataIO, "x", nil))

	plain := Wrap(KindDataIO, "prices.csv", errors.New("boom"))
	assert.ErrorIs(t, plain, ErrDataIO)

	inner := Errorf(KindParse, "", "row 3")
	wrapped := Wrap(KindDataIO, "prices.csv", inner)
	assert.ErrorIs(t, wrapped, ErrParse, "existing kind is kept")
	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "prices.csv", e.Subject)

	named := Errorf(KindParse, "first", "row 3")
	assert.Same(t, named, Wrap(KindDataIO, "second", named))
}

func TestParams(t *testing.T) {
	p := DefaultParams()
	require.NoError(t, p.Validate())

	z, err := p.Z(99)
	require.NoError(t, err)
	assert.Equal(t, 2.33, z)

	_, err = p.Z(42)
	assert.ErrorIs(t, err, ErrConfiguration)

	other := DefaultParams()
	other.ZTable[99] = 3
	z, _ = p.Z(99)
	assert.Equal(t, 2.33, z, "defaults must not share a z-table")

	custom := p.WithZTable(map[int]float64{99: 2.326})
	custom.ZTable[95] = 1.645
	_, err = p.Z(95)
	require.NoError(t, err)
	assert.Len(t, p.ZTable, 9)

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"lambda zero", func(p *Params) { p.Lambda = 0 }},
		{"lambda one", func(p *Params) { p.Lambda = 1 }},
		{"negative variance", func(p *Params) { p.FirstDayVariance = -1 }},
		{"negative garch", func(p *Params) { p.GARCH.Beta = -0.1 }},
		{"empty table", func(p *Params) { p.ZTable = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrConfiguration)
		})
	}
}

func TestOptionType(t *testing.T) {
	tests := []struct {
		in       string
		want     OptionType
		call     bool
		american bool
	}{
		{"european_call", EuropeanCall, true, false},
		{"EuropeanPut", EuropeanPut, false, false},
		{"american-call", AmericanCall, true, true},
		{"American Put", AmericanPut, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOptionType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.call, got.IsCall())
			assert.Equal(t, tt.american, got.IsAmerican())
		})
	}

	_, err := ParseOptionType("bermudan")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, OptionType(0).Valid())
}

func testOption() Option {
	return Option{
		Name:              "XYZ 100C",
		UnderlyingID:      "XYZ",
		PriceData:         "xyz.csv",
		InitialStockPrice: 80,
		Strike:            100,
		Interest:          0.07,
		DailyVolatility:   0.03,
		TimeToMaturity:    126,
		Type:              EuropeanCall,
		NumShares:         10,
	}
}

func TestOption(t *testing.T) {
	o := testOption()
	require.NoError(t, o.Validate())
	assert.InDelta(t, 0.5, o.Years(), 1e-12)
	assert.InDelta(t, 0.47623, o.AnnualVolatility(), 1e-5)
	assert.Equal(t, 0.0, o.Intrinsic(90))
	assert.Equal(t, 10.0, o.Intrinsic(110))

	moved := o.AsOf(90, 100)
	assert.Equal(t, 90.0, moved.InitialStockPrice)
	assert.Equal(t, 100, moved.TimeToMaturity)
	assert.Equal(t, 80.0, o.InitialStockPrice)

	withVol, err := o.WithVolatilityFrom([]float64{0.01, -0.02, 0.015, 0.005, -0.01})
	require.NoError(t, err)
	assert.InDelta(t, 0.0145774, withVol.DailyVolatility, 1e-7)

	_, err = o.WithVolatilityFrom([]float64{0.01})
	assert.ErrorIs(t, err, ErrNumerical)

	bad := o
	bad.Strike = 0
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)
	bad = o
	bad.Type = 0
	assert.ErrorIs(t, bad.Validate(), ErrConfiguration)
}

func TestPortfolio(t *testing.T) {
	p := NewPortfolio("test")
	assert.True(t, p.Empty())

	require.NoError(t, p.AddAsset(Asset{ID: "A", PriceData: "a.csv", Investment: 100}))
	require.NoError(t, p.AddAsset(Asset{ID: "B", PriceData: "b.csv", Investment: 250}))
	assert.Equal(t, 350.0, p.TotalValue())
	assert.Equal(t, []float64{100, 250}, p.Investments())
	assert.Equal(t, []string{"a.csv", "b.csv"}, p.PriceData())

	assert.ErrorIs(t, p.AddAsset(Asset{ID: "C", Investment: 1}), ErrConfiguration)
	assert.ErrorIs(t, p.AddAsset(Asset{ID: "C", PriceData: "c.csv", Investment: -1}), ErrConfiguration)

	assert.True(t, p.RemoveAsset("A"))
	assert.False(t, p.RemoveAsset("A"))
	assert.Equal(t, 250.0, p.TotalValue())
	assert.Equal(t, []string{"b.csv"}, p.PriceData())

	require.NoError(t, p.AddOption(testOption()))
	assert.True(t, p.HasOptions())
	assert.Equal(t, 250.0, p.TotalValue(), "options are not part of the asset value")

	clone := p.Clone()
	assert.True(t, p.RemoveOption("XYZ 100C"))
	assert.False(t, p.HasOptions())
	assert.True(t, clone.HasOptions())

	assets := clone.Assets()
	assets[0].Investment = 1
	assert.Equal(t, 250.0, clone.Assets()[0].Investment)
}

func TestConfidence(t *testing.T) {
	for _, c := range Confidences() {
		got, err := ParseConfidence(int(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
		_, err = DefaultParams().Z(int(c))
		assert.NoError(t, err, "confidence %d has a z-score", c)
	}
	_, err := ParseConfidence(98)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.InDelta(t, 0.05, Confidence95.Tail(), 1e-12)
}

func TestParseModels(t *testing.T) {
	m, err := ParseVaRModel("hs")
	require.NoError(t, err)
	assert.Equal(t, HistoricalSimulation, m)
	m, err = ParseVaRModel("Monte Carlo")
	require.NoError(t, err)
	assert.Equal(t, MonteCarlo, m)
	_, err = ParseVaRModel("delta-gamma")
	assert.ErrorIs(t, err, ErrConfiguration)

	pm, err := ParsePricingModel("black-scholes")
	require.NoError(t, err)
	assert.Equal(t, BlackScholes, pm)
	pm, err = ParsePricingModel("bt")
	require.NoError(t, err)
	assert.Equal(t, BinomialTree, pm)
}

func TestNewSimulationSetup(t *testing.T) {
	stocks := NewPortfolio("stocks")
	require.NoError(t, stocks.AddAsset(Asset{ID: "A", PriceData: "a.csv", Investment: 100}))

	withCall := stocks.Clone()
	require.NoError(t, withCall.AddOption(testOption()))

	american := testOption()
	american.Type = AmericanPut
	withAmerican := stocks.Clone()
	require.NoError(t, withAmerican.AddOption(american))

	onlyOptions := NewPortfolio("options")
	require.NoError(t, onlyOptions.AddOption(testOption()))

	tests := []struct {
		name       string
		p          *Portfolio
		model      VaRModel
		pricing    PricingModel
		confidence Confidence
		horizon    int
		want       error
	}{
		{"stocks model building", stocks, ModelBuilding, 0, Confidence99, 10, nil},
		{"options historical", withCall, HistoricalSimulation, BlackScholes, Confidence95, 1, nil},
		{"american on tree", withAmerican, MonteCarlo, BinomialTree, Confidence99, 5, nil},
		{"empty portfolio", NewPortfolio("empty"), HistoricalSimulation, 0, Confidence99, 1, ErrConfiguration},
		{"nil portfolio", nil, HistoricalSimulation, 0, Confidence99, 1, ErrConfiguration},
		{"no model", stocks, 0, 0, Confidence99, 1, ErrConfiguration},
		{"bad confidence", stocks, ModelBuilding, 0, Confidence(98), 1, ErrConfiguration},
		{"zero horizon", stocks, ModelBuilding, 0, Confidence99, 0, ErrConfiguration},
		{"model building with options", withCall, ModelBuilding, BlackScholes, Confidence99, 1, ErrUnsupported},
		{"model building without assets", onlyOptions, ModelBuilding, 0, Confidence99, 1, ErrUnsupported},
		{"options without pricer", withCall, MonteCarlo, 0, Confidence99, 1, ErrConfiguration},
		{"american on black-scholes", withAmerican, HistoricalSimulation, BlackScholes, Confidence99, 1, ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSimulationSetup(tt.p, tt.model, tt.pricing, tt.confidence, tt.horizon)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, s.Model())
			assert.Equal(t, tt.pricing, s.PricingModel())
			assert.Equal(t, tt.confidence, s.Confidence())
			assert.Equal(t, tt.horizon, s.Horizon())
		})
	}
}

func TestSimulationSetupSnapshot(t *testing.T) {
	p := NewPortfolio("snap")
	require.NoError(t, p.AddAsset(Asset{ID: "A", PriceData: "a.csv", Investment: 100}))
	s, err := NewSimulationSetup(p, ModelBuilding, 0, Confidence99, 1)
	require.NoError(t, err)

	require.NoError(t, p.AddAsset(Asset{ID: "B", PriceData: "b.csv", Investment: 100}))
	assert.Len(t, s.Portfolio().Assets(), 1)

	s.Portfolio().RemoveAsset("A")
	assert.Len(t, s.Portfolio().Assets(), 1)
}
