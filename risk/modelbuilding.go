package risk

import (
	"math"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"gonum.org/v1/gonum/mat"
)

// ModelBuilding is the variance-covariance (parametric) VaR model.
type ModelBuilding struct {
	Source    history.Source
	Params    models.Params
	Estimator models.Estimator
}

func (m *ModelBuilding) Estimate(p *models.Portfolio, c models.Confidence, horizon int) (Estimate, error) {
	if p.HasOptions() {
		return Estimate{}, models.Errorf(models.KindUnsupported, p.Name, "options cannot be valued under %s", models.ModelBuilding)
	}
	assets := p.Assets()
	if len(assets) == 0 {
		return Estimate{}, models.Errorf(models.KindConfiguration, p.Name, "%s needs at least one asset", models.ModelBuilding)
	}
	z, err := m.Params.Z(int(c))
	if err != nil {
		return Estimate{}, err
	}

	var v float64
	if len(assets) == 1 {
		a := assets[0]
		returns, err := assetReturns(m.Source, a)
		if err != nil {
			return Estimate{}, err
		}
		vol, err := m.Params.Volatility(m.Estimator, returns)
		if err != nil {
			return Estimate{}, models.Wrap(models.KindNumerical, a.ID, err)
		}
		v = SingleAssetVaR(z, vol, a.Investment, horizon)
	} else {
		series := make([][]float64, len(assets))
		for i, a := range assets {
			if series[i], err = assetReturns(m.Source, a); err != nil {
				return Estimate{}, err
			}
		}
		cov, err := models.CovarianceMatrix(series)
		if err != nil {
			return Estimate{}, models.Wrap(models.KindNumerical, p.Name, err)
		}
		if v, err = PortfolioVaR(z, p.Investments(), cov, horizon); err != nil {
			return Estimate{}, models.Wrap(models.KindNumerical, p.Name, err)
		}
	}
	return newEstimate(v, v)
}

// SingleAssetVaR is z·σ·V·√h.
func SingleAssetVaR(z, vol, value float64, horizon int) float64 {
	return z * vol * value * math.Sqrt(float64(horizon))
}

// PortfolioVaR is z·√(vᵀ·Σ·v)·√h for position values v and covariance Σ.
func PortfolioVaR(z float64, values []float64, cov mat.Symmetric, horizon int) (float64, error) {
	x := mat.NewVecDense(len(values), append([]float64(nil), values...))
	variance := mat.Inner(x, cov, x)
	if variance < 0 || math.IsNaN(variance) {
		return 0, models.Errorf(models.KindNumerical, "", "negative portfolio variance %v", variance)
	}
	return z * math.Sqrt(variance) * math.Sqrt(float64(horizon)), nil
}
