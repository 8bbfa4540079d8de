package analytics

import (
	"math"
	"sort"
	"time"
)

type AnomalyMethod string

const (
	AnomalyZScore AnomalyMethod = "zscore"
	AnomalyIQR    AnomalyMethod = "iqr"
)

// Anomaly is a point that sits far outside the rest of its series.
type Anomaly struct {
	Date     time.Time     `json:"date"`
	Value    float64       `json:"value"`
	ZScore   float64       `json:"z_score"`
	Method   AnomalyMethod `json:"method"`
	Severity string        `json:"severity"`
}

// DetectAnomalies flags points whose z-score exceeds the configured threshold
// or that fall outside the Tukey fences. Short series return nil.
func (e *Engine) DetectAnomalies(series Series) []Anomaly {
	if len(series) < e.cfg.MinAnomalyPoints {
		return nil
	}
	values := series.Values()
	m := mean(values)
	sd := stdDev(values, m)

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := q3 - q1
	lower, upper := q1-e.cfg.AnomalyIQRMultiplier*iqr, q3+e.cfg.AnomalyIQRMultiplier*iqr

	var out []Anomaly
	for _, p := range series {
		var z float64
		if sd > 0 {
			z = (p.Value - m) / sd
		}
		switch {
		case math.Abs(z) > e.cfg.AnomalyZThreshold:
			out = append(out, Anomaly{Date: p.Date, Value: p.Value, ZScore: z, Method: AnomalyZScore, Severity: "high"})
		case p.Value < lower || p.Value > upper:
			out = append(out, Anomaly{Date: p.Date, Value: p.Value, ZScore: z, Method: AnomalyIQR, Severity: "moderate"})
		}
	}
	return out
}

// WeekdayPattern summarizes how a series varies by day of week.
type WeekdayPattern struct {
	Means            map[string]float64 `json:"means"`
	PeakDay          string             `json:"peak_day,omitempty"`
	LowDay           string             `json:"low_day,omitempty"`
	Variance         float64            `json:"variance"`
	InsufficientData bool               `json:"insufficient_data"`
}

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// WeekdayPattern groups series by weekday and reports the peak and low days.
func (e *Engine) WeekdayPattern(series Series) WeekdayPattern {
	sums := make(map[time.Weekday]float64)
	counts := make(map[time.Weekday]int)
	for _, p := range series {
		sums[p.Date.Weekday()] += p.Value
		counts[p.Date.Weekday()]++
	}

	wp := WeekdayPattern{Means: make(map[string]float64, len(counts))}
	if len(counts) < 2 {
		wp.InsufficientData = true
		for d, n := range counts {
			wp.Means[d.String()] = sums[d] / float64(n)
		}
		return wp
	}

	var means []float64
	peak, low := math.Inf(-1), math.Inf(1)
	for _, d := range weekdayOrder {
		n, ok := counts[d]
		if !ok {
			continue
		}
		avg := sums[d] / float64(n)
		wp.Means[d.String()] = avg
		means = append(means, avg)
		if avg > peak {
			peak, wp.PeakDay = avg, d.String()
		}
		if avg < low {
			low, wp.LowDay = avg, d.String()
		}
	}
	sd := stdDev(means, mean(means))
	wp.Variance = sd * sd
	return wp
}
