package stress

import (
	"fmt"
	"strings"

	"github.com/bcdannyboy/stocvar/models"
	"github.com/bcdannyboy/stocvar/probability"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultTotalDays   = 100
	DefaultCrashFactor = 0.5
	maxDailyMove       = 4 // percent
)

// Tester simulates a crash scenario: small random daily moves of up to ±4%
// with a single drop by CrashFactor on day TotalDays/4. The daily noise is
// drawn from golang.org/x/exp/rand seeded with Seed.
type Tester struct {
	TotalDays   int
	CrashFactor float64
	Seed        uint64
}

// Report holds the simulated values and the losses against the starting value.
type Report struct {
	OriginalValue float64   `json:"original_value"`
	CrashDay      int       `json:"crash_day"`
	Values        []float64 `json:"values"`
	Losses        []float64 `json:"losses"`
	MinValue      float64   `json:"min_value"`
	MaxValue      float64   `json:"max_value"`
	MinLoss       float64   `json:"min_loss"`
	MaxLoss       float64   `json:"max_loss"`
}

func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Original portfolio value: %s\n", money(r.OriginalValue))
	fmt.Fprintf(&sb, "Min | Max portfolio value = %s | %s\n", money(r.MinValue), money(r.MaxValue))
	fmt.Fprintf(&sb, "Min | Max portfolio loss  = %s | %s", money(r.MinLoss), money(r.MaxLoss))
	sb.WriteString("\n \n NOTE: Negative loss indicates a profit.")
	return sb.String()
}

func money(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }

func round2(v float64) float64 { return decimal.NewFromFloat(v).Round(2).InexactFloat64() }

func (t Tester) withDefaults() Tester {
	if t.TotalDays == 0 {
		t.TotalDays = DefaultTotalDays
	}
	if t.CrashFactor == 0 {
		t.CrashFactor = DefaultCrashFactor
	}
	return t
}

// Run stress tests the asset value of p.
func (t Tester) Run(p *models.Portfolio) (Report, error) {
	t = t.withDefaults()
	switch {
	case p == nil || len(p.Assets()) == 0:
		return Report{}, models.Errorf(models.KindConfiguration, "portfolio", "stress testing needs at least one asset")
	case t.TotalDays < 4:
		return Report{}, models.Errorf(models.KindConfiguration, p.Name, "stress test needs at least 4 days, got %d", t.TotalDays)
	case t.CrashFactor <= 0 || t.CrashFactor > 1:
		return Report{}, models.Errorf(models.KindConfiguration, p.Name, "crash factor must be in (0,1], got %v", t.CrashFactor)
	}

	initial := p.TotalValue()
	crashDay := t.TotalDays / 4
	values := make([]float64, t.TotalDays)
	losses := make([]float64, t.TotalDays)
	values[0] = initial

	rng := probability.NewRand(t.Seed, 0)
	for day := 1; day < t.TotalDays; day++ {
		prev := values[day-1]
		if day == crashDay {
			values[day] = prev * t.CrashFactor
		} else {
			move := float64(rng.Intn(maxDailyMove+1)) / 100
			if rng.Intn(2) == 0 {
				move = -move
			}
			values[day] = round2(prev + prev*move)
		}
		losses[day] = round2(initial - values[day])
	}

	return Report{
		OriginalValue: initial,
		CrashDay:      crashDay,
		Values:        values,
		Losses:        losses,
		MinValue:      floats.Min(values),
		MaxValue:      floats.Max(values),
		MinLoss:       floats.Min(losses),
		MaxLoss:       floats.Max(losses),
	}, nil
}
