package models

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Bar is one trading day of OHLC prices.
type Bar struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// RangeEstimator selects an OHLC range based daily volatility estimator.
type RangeEstimator int

const (
	Parkinson RangeEstimator = iota + 1
	GarmanKlass
	RogersSatchell
	YangZhang
)

func RangeEstimators() []RangeEstimator {
	return []RangeEstimator{Parkinson, GarmanKlass, RogersSatchell, YangZhang}
}

func (e RangeEstimator) String() string {
	switch e {
	case Parkinson:
		return "parkinson"
	case GarmanKlass:
		return "garman-klass"
	case RogersSatchell:
		return "rogers-satchell"
	case YangZhang:
		return "yang-zhang"
	}
	return "unknown"
}

// RangeVolatility estimates daily volatility from bars ordered most recent first.
func RangeVolatility(e RangeEstimator, bars []Bar) (float64, error) {
	if len(bars) == 0 {
		return 0, Errorf(KindNumerical, e.String(), "no bars")
	}
	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 || b.High < b.Low {
			return 0, Errorf(KindParse, e.String(), "bar %d has no usable OHLC prices: %+v", i, b)
		}
	}

	switch e {
	case Parkinson:
		return parkinson(bars), nil
	case GarmanKlass:
		return garmanKlass(bars), nil
	case RogersSatchell:
		return math.Sqrt(rogersSatchellVariance(bars)), nil
	case YangZhang:
		if len(bars) < 3 {
			return 0, Errorf(KindNumerical, e.String(), "needs at least 3 bars, got %d", len(bars))
		}
		return yangZhang(bars), nil
	}
	return 0, Errorf(KindConfiguration, e.String(), "unknown range estimator")
}

func parkinson(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		sum += hl * hl
	}
	return math.Sqrt(sum / (4 * float64(len(bars)) * math.Ln2))
}

func garmanKlass(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	return math.Sqrt(math.Max(sum, 0) / float64(len(bars)))
}

func rogersSatchellVariance(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += math.Log(b.High/b.Close)*math.Log(b.High/b.Open) +
			math.Log(b.Low/b.Close)*math.Log(b.Low/b.Open)
	}
	return sum / float64(len(bars))
}

func yangZhang(bars []Bar) float64 {
	n := len(bars)
	k := 0.34 / (1.34 + float64(n+1)/float64(n-1))

	overnight := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		overnight[i] = math.Log(bars[i].Open / bars[i+1].Close)
	}
	openClose := make([]float64, n)
	for i, b := range bars {
		openClose[i] = math.Log(b.Close / b.Open)
	}

	variance := stat.Variance(overnight, nil) + k*stat.Variance(openClose, nil) + (1-k)*rogersSatchellVariance(bars)
	return math.Sqrt(variance)
}
