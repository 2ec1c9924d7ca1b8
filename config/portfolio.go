package config

import (
	"os"
	"path/filepath"

	"github.com/bcdannyboy/stocvar/history"
	"github.com/bcdannyboy/stocvar/models"
	"gopkg.in/yaml.v3"
)

// PortfolioFile is the YAML layout of a portfolio definition.
type PortfolioFile struct {
	Name    string       `yaml:"name"`
	Assets  []AssetSpec  `yaml:"assets"`
	Options []OptionSpec `yaml:"options"`
}

type AssetSpec struct {
	ID         string  `yaml:"id"`
	Data       string  `yaml:"data"`
	Investment float64 `yaml:"investment"`
}

// OptionSpec describes an option position. A zero stock_price takes the
// latest close of data and a zero daily_volatility is estimated from it.
type OptionSpec struct {
	Name            string  `yaml:"name"`
	Underlying      string  `yaml:"underlying"`
	Data            string  `yaml:"data"`
	Type            string  `yaml:"type"`
	StockPrice      float64 `yaml:"stock_price"`
	Strike          float64 `yaml:"strike"`
	Interest        float64 `yaml:"interest"`
	DailyVolatility float64 `yaml:"daily_volatility"`
	MaturityDays    int     `yaml:"maturity_days"`
	Shares          int     `yaml:"shares"`
}

// LoadPortfolio decodes the portfolio at path. Relative data paths are
// resolved against the file's directory.
func LoadPortfolio(path string, src history.Source) (*models.Portfolio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, models.Wrap(models.KindDataIO, path, err)
	}
	defer f.Close()

	var pf PortfolioFile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, models.Wrap(models.KindParse, path, err)
	}
	return pf.Build(filepath.Dir(path), src)
}

// Build turns the file into a portfolio, reading price data from src.
func (pf PortfolioFile) Build(dir string, src history.Source) (*models.Portfolio, error) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || dir == "" {
			return p
		}
		return filepath.Join(dir, p)
	}

	p := models.NewPortfolio(pf.Name)
	for _, a := range pf.Assets {
		asset := models.Asset{ID: a.ID, PriceData: resolve(a.Data), Investment: a.Investment}
		if err := p.AddAsset(asset); err != nil {
			return nil, err
		}
	}

	for _, o := range pf.Options {
		t, err := models.ParseOptionType(o.Type)
		if err != nil {
			return nil, models.Wrap(models.KindConfiguration, o.Name, err)
		}
		opt := models.Option{
			Name:              o.Name,
			UnderlyingID:      o.Underlying,
			PriceData:         resolve(o.Data),
			InitialStockPrice: o.StockPrice,
			Strike:            o.Strike,
			Interest:          o.Interest,
			DailyVolatility:   o.DailyVolatility,
			TimeToMaturity:    o.MaturityDays,
			Type:              t,
			NumShares:         o.Shares,
		}
		if opt.InitialStockPrice == 0 || opt.DailyVolatility == 0 {
			if opt, err = fillFromHistory(opt, src); err != nil {
				return nil, err
			}
		}
		if err := p.AddOption(opt); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func fillFromHistory(o models.Option, src history.Source) (models.Option, error) {
	q, err := src.History(o.PriceData)
	if err != nil {
		return o, models.Wrap(models.KindDataIO, o.Name, err)
	}
	if o.InitialStockPrice == 0 && len(q.Days) > 0 {
		o.InitialStockPrice = q.Days[0].Close
	}
	if o.DailyVolatility == 0 {
		returns, err := q.Returns()
		if err != nil {
			return o, models.Wrap(models.KindNumerical, o.Name, err)
		}
		return o.WithVolatilityFrom(returns)
	}
	return o, nil
}
