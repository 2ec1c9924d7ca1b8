package models

import (
	"fmt"
	"sort"
)

// GARCHWeights are the GARCH(1,1) weights on long run variance (Gamma), the
// previous squared return (Alpha) and the previous variance (Beta).
type GARCHWeights struct {
	Gamma float64 `mapstructure:"gamma"`
	Alpha float64 `mapstructure:"alpha"`
	Beta  float64 `mapstructure:"beta"`
}

// Params holds the coefficients shared by the estimators. It is passed by
// value; DefaultParams hands out a fresh z-table on every call so overriding
// one copy never leaks into another.
type Params struct {
	Lambda           float64         `mapstructure:"lambda"`
	FirstDayVariance float64         `mapstructure:"first_day_variance"`
	FirstDayReturn   float64         `mapstructure:"first_day_return"`
	GARCH            GARCHWeights    `mapstructure:"garch"`
	ZTable           map[int]float64 `mapstructure:"-"`
}

func DefaultParams() Params {
	return Params{
		Lambda:           0.94,
		FirstDayVariance: 0.01,
		FirstDayReturn:   0.02,
		GARCH:            GARCHWeights{Gamma: 0.05, Alpha: 0.13, Beta: 0.90},
		ZTable:           DefaultZTable(),
	}
}

// DefaultZTable maps confidence percentages to one-tailed normal z-scores.
func DefaultZTable() map[int]float64 {
	return map[int]float64{
		99: 2.33,
		98: 2.05,
		97: 1.88,
		96: 1.75,
		95: 1.65,
		90: 1.29,
		85: 1.04,
		80: 0.84,
		75: 0.68,
	}
}

// Z returns the z-score for a confidence percentage.
func (p Params) Z(confidence int) (float64, error) {
	z, ok := p.ZTable[confidence]
	if !ok {
		return 0, Errorf(KindConfiguration, fmt.Sprintf("confidence %d", confidence), "no z-score mapped (known: %v)", p.knownConfidences())
	}
	return z, nil
}

func (p Params) knownConfidences() []int {
	keys := make([]int, 0, len(p.ZTable))
	for k := range p.ZTable {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	return keys
}

// WithZTable returns a copy of p using table.
func (p Params) WithZTable(table map[int]float64) Params {
	cp := make(map[int]float64, len(table))
	for k, v := range table {
		cp[k] = v
	}
	p.ZTable = cp
	return p
}

func (p Params) Validate() error {
	switch {
	case p.Lambda <= 0 || p.Lambda >= 1:
		return Errorf(KindConfiguration, "lambda", "must be in (0,1), got %v", p.Lambda)
	case p.FirstDayVariance < 0:
		return Errorf(KindConfiguration, "first_day_variance", "must not be negative, got %v", p.FirstDayVariance)
	case p.GARCH.Gamma < 0 || p.GARCH.Alpha < 0 || p.GARCH.Beta < 0:
		return Errorf(KindConfiguration, "garch", "weights must not be negative, got %+v", p.GARCH)
	case len(p.ZTable) == 0:
		return Errorf(KindConfiguration, "z_table", "empty")
	}
	return nil
}
