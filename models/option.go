package models

import (
	"math"
	"strings"
)

// TradingDays is the number of trading days used to annualize.
const TradingDays = 252

type OptionType int

const (
	EuropeanCall OptionType = iota + 1
	EuropeanPut
	AmericanCall
	AmericanPut
)

var optionTypeNames = map[OptionType]string{
	EuropeanCall: "european_call",
	EuropeanPut:  "european_put",
	AmericanCall: "american_call",
	AmericanPut:  "american_put",
}

func (t OptionType) String() string {
	if s, ok := optionTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

func (t OptionType) Valid() bool {
	_, ok := optionTypeNames[t]
	return ok
}

func (t OptionType) IsCall() bool { return t == EuropeanCall || t == AmericanCall }

func (t OptionType) IsAmerican() bool { return t == AmericanCall || t == AmericanPut }

// ParseOptionType accepts "european_call", "EuropeanCall", "american-put" and
// similar spellings.
func ParseOptionType(s string) (OptionType, error) {
	key := normalizeName(s)
	for t, name := range optionTypeNames {
		if normalizeName(name) == key {
			return t, nil
		}
	}
	return 0, Errorf(KindConfiguration, s, "unknown option type")
}

func normalizeName(s string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Option is an equity option position. Values are immutable; pricing along a
// path works on copies produced by AsOf.
type Option struct {
	Name              string
	UnderlyingID      string
	PriceData         string
	InitialStockPrice float64
	Strike            float64
	Interest          float64 // annual, decimal
	DailyVolatility   float64
	TimeToMaturity    int // trading days
	Type              OptionType
	NumShares         int
}

// AsOf returns a copy of o priced as of a different underlying price and
// remaining time to maturity.
func (o Option) AsOf(stockPrice float64, timeToMaturity int) Option {
	o.InitialStockPrice = stockPrice
	o.TimeToMaturity = timeToMaturity
	return o
}

// WithVolatilityFrom returns a copy of o whose daily volatility is the sample
// standard deviation of the underlying's returns.
func (o Option) WithVolatilityFrom(returns []float64) (Option, error) {
	vol, err := StandardVolatility(returns)
	if err != nil {
		return o, Wrap(KindNumerical, o.Name, err)
	}
	o.DailyVolatility = vol
	return o, nil
}

func (o Option) Years() float64 { return float64(o.TimeToMaturity) / TradingDays }

func (o Option) AnnualVolatility() float64 { return o.DailyVolatility * math.Sqrt(TradingDays) }

// Intrinsic is the exercise value at stockPrice.
func (o Option) Intrinsic(stockPrice float64) float64 {
	if o.Type.IsCall() {
		return math.Max(stockPrice-o.Strike, 0)
	}
	return math.Max(o.Strike-stockPrice, 0)
}

func (o Option) Validate() error {
	switch {
	case !o.Type.Valid():
		return Errorf(KindConfiguration, o.Name, "invalid option type %d", int(o.Type))
	case o.InitialStockPrice <= 0 || math.IsNaN(o.InitialStockPrice):
		return Errorf(KindConfiguration, o.Name, "stock price must be positive, got %v", o.InitialStockPrice)
	case o.Strike <= 0 || math.IsNaN(o.Strike):
		return Errorf(KindConfiguration, o.Name, "strike must be positive, got %v", o.Strike)
	case o.DailyVolatility < 0 || math.IsNaN(o.DailyVolatility):
		return Errorf(KindConfiguration, o.Name, "volatility must not be negative, got %v", o.DailyVolatility)
	case o.TimeToMaturity < 0:
		return Errorf(KindConfiguration, o.Name, "time to maturity must not be negative, got %d", o.TimeToMaturity)
	case o.NumShares < 0:
		return Errorf(KindConfiguration, o.Name, "number of shares must not be negative, got %d", o.NumShares)
	}
	return nil
}
