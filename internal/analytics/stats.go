package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

type Significance string

const (
	SignificanceHigh Significance = "high"
	SignificanceLow  Significance = "low"
)

// Point is one dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a chronological sequence of points. Gaps are allowed.
type Series []Point

// Values returns the raw values in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Last returns the final value, 0 for an empty series.
func (s Series) Last() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Value
}

// Summary describes a series.
type Summary struct {
	Count            int          `json:"count"`
	Mean             float64      `json:"mean"`
	Median           float64      `json:"median"`
	StdDev           float64      `json:"std_dev"`
	Min              float64      `json:"min"`
	Max              float64      `json:"max"`
	Slope            float64      `json:"slope"`
	Intercept        float64      `json:"intercept"`
	RSquared         float64      `json:"r_squared"`
	StdErr           float64      `json:"std_err"`
	Trend            Trend        `json:"trend"`
	ChangePercentage float64      `json:"change_percentage"`
	ChangeDefined    bool         `json:"change_defined"`
	Significance     Significance `json:"significance"`
	InsufficientData bool         `json:"insufficient_data"`
}

// Describe summarizes series with the default configuration.
func Describe(series Series) (Summary, error) {
	return NewEngine(DefaultConfig()).Describe(series)
}

// Describe returns central tendency, dispersion, OLS trend and change for series.
func (e *Engine) Describe(series Series) (Summary, error) {
	return e.describe(series, e.cfg.SignificanceThreshold)
}

func (e *Engine) describe(series Series, significanceThreshold float64) (Summary, error) {
	n := len(series)
	if n == 0 {
		return Summary{}, fmt.Errorf("%w: empty series", nutrition.ErrInvalidInput)
	}
	values := series.Values()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Summary{}, fmt.Errorf("%w: non-finite value at index %d", nutrition.ErrInvalidInput, i)
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := Summary{
		Count:  n,
		Mean:   mean(values),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
	s.StdDev = stdDev(values, s.Mean)

	fit := fitLine(values)
	s.Slope, s.Intercept, s.RSquared, s.StdErr = fit.slope, fit.intercept, fit.rSquared, fit.stdErr
	s.InsufficientData = n < 2
	s.Trend = e.classify(s.Slope, s.Mean)

	first, last := values[0], values[n-1]
	if first != 0 {
		s.ChangePercentage = (last - first) / first * 100
		s.ChangeDefined = true
	}
	s.Significance = SignificanceLow
	if math.Abs(s.ChangePercentage) > significanceThreshold {
		s.Significance = SignificanceHigh
	}
	return s, nil
}

func (e *Engine) classify(slope, mean float64) Trend {
	measure := slope
	if e.cfg.RelativeSlope && mean != 0 {
		measure = slope / math.Abs(mean)
	}
	switch {
	case math.Abs(measure) < e.cfg.SlopeThreshold:
		return TrendStable
	case measure > 0:
		return TrendIncreasing
	default:
		return TrendDecreasing
	}
}

type lineFit struct {
	slope, intercept, rSquared, stdErr float64
}

// fitLine regresses values against their index.
func fitLine(values []float64) lineFit {
	n := float64(len(values))
	if len(values) < 2 {
		if len(values) == 1 {
			return lineFit{intercept: values[0]}
		}
		return lineFit{}
	}
	xMean := (n - 1) / 2
	yMean := mean(values)

	var sxy, sxx float64
	for i, y := range values {
		dx := float64(i) - xMean
		sxy += dx * (y - yMean)
		sxx += dx * dx
	}
	fit := lineFit{slope: sxy / sxx}
	fit.intercept = yMean - fit.slope*xMean

	var ssRes, ssTot float64
	for i, y := range values {
		pred := fit.intercept + fit.slope*float64(i)
		ssRes += (y - pred) * (y - pred)
		ssTot += (y - yMean) * (y - yMean)
	}
	if ssTot > 0 {
		fit.rSquared = 1 - ssRes/ssTot
	}
	if len(values) > 2 {
		fit.stdErr = math.Sqrt(ssRes / (n - 2))
	}
	return fit
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// stdDev is the population standard deviation.
func stdDev(values []float64, m float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)))
}

// quantile interpolates linearly between closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
