package models

import "math"

// Asset is an equity holding valued at Investment, with its history at PriceData.
type Asset struct {
	ID         string
	PriceData  string
	Investment float64
}

func (a Asset) Validate() error {
	switch {
	case a.PriceData == "":
		return Errorf(KindConfiguration, a.ID, "asset has no price data")
	case a.Investment < 0 || math.IsNaN(a.Investment) || math.IsInf(a.Investment, 0):
		return Errorf(KindConfiguration, a.ID, "investment must be a non-negative amount, got %v", a.Investment)
	}
	return nil
}

// Portfolio is an ordered collection of assets and options. The derived views
// are rebuilt from the asset list after every mutation.
type Portfolio struct {
	Name string

	assets  []Asset
	options []Option

	investments []float64
	priceData   []string
	total       float64
}

func NewPortfolio(name string) *Portfolio {
	return &Portfolio{Name: name}
}

func (p *Portfolio) AddAsset(a Asset) error {
	if err := a.Validate(); err != nil {
		return err
	}
	p.assets = append(p.assets, a)
	p.refresh()
	return nil
}

// RemoveAsset drops the first asset with id and reports whether one was found.
func (p *Portfolio) RemoveAsset(id string) bool {
	for i, a := range p.assets {
		if a.ID == id {
			p.assets = append(p.assets[:i:i], p.assets[i+1:]...)
			p.refresh()
			return true
		}
	}
	return false
}

func (p *Portfolio) AddOption(o Option) error {
	if err := o.Validate(); err != nil {
		return err
	}
	p.options = append(p.options, o)
	return nil
}

func (p *Portfolio) RemoveOption(name string) bool {
	for i, o := range p.options {
		if o.Name == name {
			p.options = append(p.options[:i:i], p.options[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Portfolio) refresh() {
	p.investments = make([]float64, len(p.assets))
	p.priceData = make([]string, len(p.assets))
	p.total = 0
	for i, a := range p.assets {
		p.investments[i] = a.Investment
		p.priceData[i] = a.PriceData
		p.total += a.Investment
	}
}

func (p *Portfolio) Assets() []Asset { return append([]Asset(nil), p.assets...) }

func (p *Portfolio) Options() []Option { return append([]Option(nil), p.options...) }

func (p *Portfolio) Investments() []float64 { return append([]float64(nil), p.investments...) }

func (p *Portfolio) PriceData() []string { return append([]string(nil), p.priceData...) }

// TotalValue is the sum of asset investments. Option positions are valued by
// the pricing engines, not here.
func (p *Portfolio) TotalValue() float64 { return p.total }

func (p *Portfolio) HasOptions() bool { return len(p.options) > 0 }

func (p *Portfolio) Empty() bool { return len(p.assets) == 0 && len(p.options) == 0 }

// Clone returns an independent copy.
func (p *Portfolio) Clone() *Portfolio {
	cp := &Portfolio{
		Name:    p.Name,
		assets:  p.Assets(),
		options: p.Options(),
	}
	cp.refresh()
	return cp
}
