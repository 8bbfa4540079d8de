package analytics

import (
	"math"
	"strings"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// Acceptance is the average consumption percentage for one meal type.
type Acceptance struct {
	MealType           nutrition.MealType `json:"meal_type"`
	AverageConsumption float64            `json:"average_consumption"`
	Samples            int                `json:"samples"`
}

// PreferenceShift compares how often a label appeared in the first and
// second half of the window.
type PreferenceShift struct {
	Label         string  `json:"label"`
	Direction     Trend   `json:"direction"`
	Magnitude     float64 `json:"magnitude"`
	FirstHalfAvg  float64 `json:"first_half_avg"`
	SecondHalfAvg float64 `json:"second_half_avg"`
	Days          int     `json:"days"`
}

// AcceptanceRates averages consumption percentage per meal type.
func (e *Engine) AcceptanceRates(points []nutrition.DataPoint) map[nutrition.MealType]Acceptance {
	sums := make(map[nutrition.MealType]float64)
	counts := make(map[nutrition.MealType]int)
	for _, p := range points {
		if p.MealType == "" {
			continue
		}
		sums[p.MealType] += p.ConsumptionPercentage
		counts[p.MealType]++
	}

	out := make(map[nutrition.MealType]Acceptance, len(counts))
	for mt, n := range counts {
		out[mt] = Acceptance{
			MealType:           mt,
			AverageConsumption: sums[mt] / float64(n),
			Samples:            n,
		}
	}
	return out
}

// PreferenceShifts builds a zero-filled daily occurrence series per food label
// over the window's day range and compares its halves.
func (e *Engine) PreferenceShifts(points []nutrition.DataPoint) map[string]PreferenceShift {
	if len(points) == 0 {
		return map[string]PreferenceShift{}
	}

	start, end := dayOf(points[0].Date), dayOf(points[0].Date)
	for _, p := range points[1:] {
		d := dayOf(p.Date)
		if d.Before(start) {
			start = d
		}
		if d.After(end) {
			end = d
		}
	}
	days := daysBetween(start, end) + 1

	counts := make(map[string][]float64)
	for _, p := range points {
		idx := daysBetween(start, dayOf(p.Date))
		for _, raw := range p.FoodLabels {
			label := normalizeLabel(raw)
			if label == "" {
				continue
			}
			series, ok := counts[label]
			if !ok {
				series = make([]float64, days)
				counts[label] = series
			}
			series[idx]++
		}
	}

	out := make(map[string]PreferenceShift, len(counts))
	for label, series := range counts {
		out[label] = e.shift(label, series)
	}
	return out
}

func (e *Engine) shift(label string, series []float64) PreferenceShift {
	ps := PreferenceShift{Label: label, Direction: TrendStable, Days: len(series)}
	if len(series) < 2 {
		return ps
	}
	half := len(series) / 2
	ps.FirstHalfAvg = mean(series[:half])
	ps.SecondHalfAvg = mean(series[half:])

	if ps.FirstHalfAvg == 0 {
		if ps.SecondHalfAvg > 0 {
			ps.Direction = TrendIncreasing
			ps.Magnitude = e.cfg.ShiftMagnitudeCap
		}
		return ps
	}

	change := (ps.SecondHalfAvg - ps.FirstHalfAvg) / ps.FirstHalfAvg * 100
	ps.Magnitude = math.Abs(change)
	switch {
	case math.Abs(change) < e.cfg.PreferenceStableBand:
		ps.Direction = TrendStable
	case change > 0:
		ps.Direction = TrendIncreasing
	default:
		ps.Direction = TrendDecreasing
	}
	return ps
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// dayOf truncates t to its calendar day, keeping the caller's wall date.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
