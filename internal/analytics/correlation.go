package analytics

import (
	"fmt"
	"math"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

type CorrelationSignificance string

const (
	CorrelationSignificant CorrelationSignificance = "significant"
	CorrelationLow         CorrelationSignificance = "low"
)

// Correlation is a Pearson coefficient with a fixed-cutoff bucket. The bucket
// is a reporting threshold, not a hypothesis test.
type Correlation struct {
	Coefficient  float64                 `json:"coefficient"`
	Significance CorrelationSignificance `json:"significance"`
	SampleSize   int                     `json:"sample_size"`
}

// Correlate computes the Pearson coefficient of x and y.
func (e *Engine) Correlate(x, y []float64) (Correlation, error) {
	if len(x) == 0 || len(x) != len(y) {
		return Correlation{}, fmt.Errorf("%w: series lengths %d and %d", nutrition.ErrInvalidInput, len(x), len(y))
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}

	c := Correlation{SampleSize: len(x), Significance: CorrelationLow}
	den := math.Sqrt(sxx * syy)
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return c, nil
	}
	c.Coefficient = math.Max(-1, math.Min(1, sxy/den))
	if math.Abs(c.Coefficient) > e.cfg.CorrelationThreshold {
		c.Significance = CorrelationSignificant
	}
	return c, nil
}
