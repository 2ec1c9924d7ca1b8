package models

import (
	"fmt"
	"strconv"
)

// Confidence is one of the supported VaR confidence levels, in percent.
type Confidence int

const (
	Confidence99 Confidence = 99
	Confidence95 Confidence = 95
	Confidence90 Confidence = 90
	Confidence85 Confidence = 85
	Confidence80 Confidence = 80
	Confidence75 Confidence = 75
)

var confidences = []Confidence{Confidence99, Confidence95, Confidence90, Confidence85, Confidence80, Confidence75}

func Confidences() []Confidence { return append([]Confidence(nil), confidences...) }

func ParseConfidence(v int) (Confidence, error) {
	for _, c := range confidences {
		if int(c) == v {
			return c, nil
		}
	}
	return 0, Errorf(KindConfiguration, strconv.Itoa(v), "unsupported confidence level (allowed: %v)", confidences)
}

func (c Confidence) Valid() bool {
	_, err := ParseConfidence(int(c))
	return err == nil
}

// Tail is the probability mass beyond the VaR quantile, e.g. 0.01 for 99%.
func (c Confidence) Tail() float64 { return 1 - float64(c)/100 }

// VaRModel selects the estimation method.
type VaRModel int

const (
	ModelBuilding VaRModel = iota + 1
	HistoricalSimulation
	MonteCarlo
)

func (m VaRModel) String() string {
	switch m {
	case ModelBuilding:
		return "Model Building"
	case HistoricalSimulation:
		return "Historical Simulation"
	case MonteCarlo:
		return "Monte Carlo Simulation"
	}
	return fmt.Sprintf("VaRModel(%d)", int(m))
}

func (m VaRModel) Valid() bool { return m >= ModelBuilding && m <= MonteCarlo }

func ParseVaRModel(s string) (VaRModel, error) {
	switch normalizeName(s) {
	case "modelbuilding", "mb", "parametric":
		return ModelBuilding, nil
	case "historicalsimulation", "historical", "hs":
		return HistoricalSimulation, nil
	case "montecarlosimulation", "montecarlo", "mc":
		return MonteCarlo, nil
	}
	return 0, Errorf(KindConfiguration, s, "unknown VaR model")
}

// PricingModel selects the option pricing engine.
type PricingModel int

const (
	BlackScholes PricingModel = iota + 1
	BinomialTree
	MonteCarloPricing
)

func (m PricingModel) String() string {
	switch m {
	case BlackScholes:
		return "Black-Scholes"
	case BinomialTree:
		return "Binomial Tree"
	case MonteCarloPricing:
		return "Monte Carlo"
	}
	return fmt.Sprintf("PricingModel(%d)", int(m))
}

func (m PricingModel) Valid() bool { return m >= BlackScholes && m <= MonteCarloPricing }

func ParsePricingModel(s string) (PricingModel, error) {
	switch normalizeName(s) {
	case "blackscholes", "bs":
		return BlackScholes, nil
	case "binomialtree", "binomial", "bt":
		return BinomialTree, nil
	case "montecarlo", "mc":
		return MonteCarloPricing, nil
	}
	return 0, Errorf(KindConfiguration, s, "unknown pricing model")
}

// SimulationSetup binds a portfolio snapshot to a model choice. It is only
// constructed through NewSimulationSetup, which rejects invalid combinations.
type SimulationSetup struct {
	portfolio  *Portfolio
	model      VaRModel
	pricing    PricingModel
	confidence Confidence
	horizon    int
}

func NewSimulationSetup(p *Portfolio, model VaRModel, pricing PricingModel, confidence Confidence, horizon int) (SimulationSetup, error) {
	if p == nil || p.Empty() {
		return SimulationSetup{}, Errorf(KindConfiguration, "portfolio", "portfolio is empty")
	}
	if !model.Valid() {
		return SimulationSetup{}, Errorf(KindConfiguration, p.Name, "no VaR model selected")
	}
	if !confidence.Valid() {
		return SimulationSetup{}, Errorf(KindConfiguration, strconv.Itoa(int(confidence)), "unsupported confidence level (allowed: %v)", confidences)
	}
	if horizon < 1 {
		return SimulationSetup{}, Errorf(KindConfiguration, p.Name, "time horizon must be at least 1 day, got %d", horizon)
	}

	if model == ModelBuilding {
		if p.HasOptions() {
			return SimulationSetup{}, Errorf(KindUnsupported, p.Name, "options cannot be valued under %s", model)
		}
		if len(p.assets) == 0 {
			return SimulationSetup{}, Errorf(KindConfiguration, p.Name, "%s needs at least one asset", model)
		}
	} else if p.HasOptions() {
		if !pricing.Valid() {
			return SimulationSetup{}, Errorf(KindConfiguration, p.Name, "no option pricing model selected")
		}
		if pricing == BlackScholes {
			for _, o := range p.options {
				if o.Type.IsAmerican() {
					return SimulationSetup{}, Errorf(KindUnsupported, o.Name, "%s cannot price %s options", pricing, o.Type)
				}
			}
		}
	}

	return SimulationSetup{
		portfolio:  p.Clone(),
		model:      model,
		pricing:    pricing,
		confidence: confidence,
		horizon:    horizon,
	}, nil
}

// Portfolio returns a copy of the bound portfolio.
func (s SimulationSetup) Portfolio() *Portfolio {
	if s.portfolio == nil {
		return NewPortfolio("")
	}
	return s.portfolio.Clone()
}

func (s SimulationSetup) Model() VaRModel            { return s.model }
func (s SimulationSetup) PricingModel() PricingModel { return s.pricing }
func (s SimulationSetup) Confidence() Confidence     { return s.confidence }
func (s SimulationSetup) Horizon() int               { return s.horizon }
