package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var sampleReturns = []float64{0.01, -0.02, 0.015, 0.005, -0.01}

func TestVolatilityEstimators(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		estimator Estimator
		want      float64
	}{
		{Standard, 0.0145773797},
		{EWMA, 0.0834099172},
		{GARCH, 0.0779292124},
	}
	for _, tt := range tests {
		t.Run(tt.estimator.String(), func(t *testing.T) {
			got, err := p.Volatility(tt.estimator, sampleReturns)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-8)
		})
	}

	_, err := p.Volatility(Estimator(9), sampleReturns)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestVolatilityShortSeries(t *testing.T) {
	p := DefaultParams()

	_, err := StandardVolatility([]float64{0.01})
	assert.ErrorIs(t, err, ErrNumerical)
	_, err = p.GARCHVolatility([]float64{0.01})
	assert.ErrorIs(t, err, ErrNumerical)
	_, err = p.EWMAVolatility(nil)
	assert.ErrorIs(t, err, ErrNumerical)

	// a single return only sees the seeded first day variance
	v, err := p.EWMAVolatility([]float64{0.01})
	require.NoError(t, err)
	want := math.Sqrt(0.94*(0.94*0.01+0.06*0.02*0.02) + 0.06*0.01*0.01)
	assert.InDelta(t, want, v, 1e-12)
}

func TestEWMAOverriddenLambda(t *testing.T) {
	p := DefaultParams()
	p.Lambda = 0.5
	v, err := p.EWMAVolatility(sampleReturns)
	require.NoError(t, err)

	d, err := DefaultParams().EWMAVolatility(sampleReturns)
	require.NoError(t, err)
	assert.NotEqual(t, d, v)
}

func TestCovariance(t *testing.T) {
	a := []float64{1.1, 1.7, 2.1, 1.4, 0.2}
	b := []float64{3, 4.2, 4.9, 4.1, 2.5}

	got, err := Covariance(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0.665, got, 1e-12)
	assert.InDelta(t, covarianceManual(a, b), got, 0.01)

	long := append(append([]float64(nil), b...), 9, 1, 7)
	truncated, err := Covariance(a, long)
	require.NoError(t, err)
	assert.InDelta(t, 0.665, truncated, 1e-12)
	assert.InDelta(t, covarianceManual(a, long), truncated, 0.01)

	_, err = Covariance([]float64{1}, []float64{2, 3})
	assert.ErrorIs(t, err, ErrNumerical)
}

func TestCovarianceMatrixAndCholesky(t *testing.T) {
	series := [][]float64{
		{0.01, -0.02, 0.015, 0.005, -0.01, 0.002},
		{0.004, -0.01, 0.012, -0.003, -0.006, 0.001},
	}
	cov, err := CovarianceMatrix(series)
	require.NoError(t, err)
	assert.Equal(t, 2, cov.SymmetricDim())

	c01, err := Covariance(series[0], series[1])
	require.NoError(t, err)
	assert.InDelta(t, c01, cov.At(1, 0), 1e-15)

	l, err := Decompose(cov)
	require.NoError(t, err)

	var back mat.Dense
	back.Mul(l, l.T())
	assert.True(t, mat.EqualApprox(&back, cov, 1e-14))

	z := []float64{1, -1}
	shock := Correlate(l, z, nil)
	assert.InDelta(t, l.At(0, 0), shock[0], 1e-15)
	assert.InDelta(t, l.At(1, 0)-l.At(1, 1), shock[1], 1e-15)

	_, err = CovarianceMatrix(nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestDecomposeNotPositiveDefinite(t *testing.T) {
	m := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	_, err := Decompose(m)
	assert.ErrorIs(t, err, ErrNumerical)

	_, err = Decompose(mat.NewSymDense(2, []float64{1, 1, 1, 1}))
	assert.ErrorIs(t, err, ErrNumerical, "positive semi-definite but singular")
}

func TestRangeVolatility(t *testing.T) {
	bars := []Bar{
		{Open: 101.5, High: 103, Low: 100.75, Close: 102},
		{Open: 100, High: 102.1, Low: 99.5, Close: 101},
		{Open: 99.2, High: 100.4, Low: 98.8, Close: 100},
	}
	want := map[RangeEstimator]float64{
		Parkinson:      0.0130257827,
		GarmanKlass:    0.0145275041,
		RogersSatchell: 0.0145083649,
		YangZhang:      0.0142097251,
	}
	for _, e := range RangeEstimators() {
		t.Run(e.String(), func(t *testing.T) {
			got, err := RangeVolatility(e, bars)
			require.NoError(t, err)
			assert.InDelta(t, want[e], got, 1e-9)
		})
	}

	_, err := RangeVolatility(YangZhang, bars[:2])
	assert.ErrorIs(t, err, ErrNumerical)

	_, err = RangeVolatility(Parkinson, []Bar{{Close: 100}})
	assert.ErrorIs(t, err, ErrParse)

	_, err = RangeVolatility(Parkinson, nil)
	assert.ErrorIs(t, err, ErrNumerical)
}
