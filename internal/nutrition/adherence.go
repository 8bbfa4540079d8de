package nutrition

import (
	"fmt"
	"math"
	"sort"
)

// Health score weights.
const (
	adherenceWeight  = 0.4
	varietyWeight    = 2.0  // 0-10 -> 0-20
	allergenWeight   = 0.15 // 0-100 -> 0-15
	maxVarietyScore  = 10.0
	maxAllergenScore = 100.0
)

var bmiBucketScores = map[BMIStatus]float64{
	BMINormal:      25,
	BMIOverweight:  15,
	BMIUnderweight: 10,
}

const otherBMIBucketScore = 5

// ScoreContext carries the externally supplied parts of the health score.
type ScoreContext struct {
	VarietyScore       float64   `json:"variety_score"`
	AllergenCompliance float64   `json:"allergen_compliance"`
	BMIStatus          BMIStatus `json:"bmi_status"`
}

// ScoreComponents breaks the health score down by contribution.
type ScoreComponents struct {
	Adherence float64 `json:"adherence"`
	Variety   float64 `json:"variety"`
	Allergen  float64 `json:"allergen"`
	BMI       float64 `json:"bmi"`
}

// AdherenceReport compares actual intake with a target.
type AdherenceReport struct {
	Percentages  map[string]float64 `json:"percentages"`
	Deficiencies []string           `json:"deficiencies"`
	Excesses     []string           `json:"excesses"`
	HealthScore  float64            `json:"health_score"`
	Components   ScoreComponents    `json:"components"`
}

// Scorer turns intake versus target into an AdherenceReport.
type Scorer struct {
	// DeficiencyBelow flags nutrients whose adherence is under this percentage.
	DeficiencyBelow float64
	// ExcessAbove flags nutrients whose adherence is over this percentage. Fiber is never flagged.
	ExcessAbove float64
	// CalorieTolerance, when > 0, replaces the general band for calories with 100±tolerance.
	CalorieTolerance float64
	// AdherenceCap limits each nutrient's contribution to the average.
	AdherenceCap float64
}

// DefaultScorer uses the general-purpose 80/120 band.
func DefaultScorer() Scorer {
	return Scorer{
		DeficiencyBelow: 80,
		ExcessAbove:     120,
		AdherenceCap:    120,
	}
}

// WithCalorieTolerance returns a copy of s with a tighter calorie band.
func (s Scorer) WithCalorieTolerance(pct float64) Scorer {
	s.CalorieTolerance = pct
	return s
}

// Score compares actual with target. Core nutrients are always scored;
// vitamins and minerals are scored when the actual vector reports them.
func (s Scorer) Score(actual NutrientVector, target RecommendedIntake, ctx ScoreContext) (AdherenceReport, error) {
	if err := actual.Validate(); err != nil {
		return AdherenceReport{}, err
	}

	names := append([]string{}, CoreNutrients...)
	actualFields := actual.Fields()
	targetFields := target.Fields()
	for _, name := range target.MicroNames() {
		if _, ok := actualFields[name]; ok {
			names = append(names, name)
		}
	}

	report := AdherenceReport{
		Percentages:  make(map[string]float64, len(names)),
		Deficiencies: []string{},
		Excesses:     []string{},
	}

	var capped float64
	for _, name := range names {
		t := targetFields[name]
		if t <= 0 || math.IsNaN(t) {
			return AdherenceReport{}, fmt.Errorf("%w: target for %s must be positive", ErrInvalidInput, name)
		}
		pct := math.Round(actualFields[name] / t * 100)
		report.Percentages[name] = pct

		low, high := s.band(name)
		if pct < low {
			report.Deficiencies = append(report.Deficiencies, name)
		}
		if name != Fiber && pct > high {
			report.Excesses = append(report.Excesses, name)
		}
		capped += math.Min(pct, s.cap())
	}
	sort.Strings(report.Deficiencies)
	sort.Strings(report.Excesses)

	avg := capped / float64(len(names))
	report.Components = ScoreComponents{
		Adherence: avg * adherenceWeight,
		Variety:   clamp(ctx.VarietyScore, 0, maxVarietyScore) * varietyWeight,
		Allergen:  clamp(ctx.AllergenCompliance, 0, maxAllergenScore) * allergenWeight,
		BMI:       bmiBucketScore(ctx.BMIStatus),
	}
	total := report.Components.Adherence + report.Components.Variety + report.Components.Allergen + report.Components.BMI
	report.HealthScore = clamp(math.Round(total), 0, 100)

	return report, nil
}

func (s Scorer) band(name string) (float64, float64) {
	if name == Calories && s.CalorieTolerance > 0 {
		return 100 - s.CalorieTolerance, 100 + s.CalorieTolerance
	}
	low, high := s.DeficiencyBelow, s.ExcessAbove
	if low <= 0 {
		low = 80
	}
	if high <= 0 {
		high = 120
	}
	return low, high
}

func (s Scorer) cap() float64 {
	if s.AdherenceCap <= 0 {
		return 120
	}
	return s.AdherenceCap
}

func bmiBucketScore(status BMIStatus) float64 {
	if v, ok := bmiBucketScores[status]; ok {
		return v
	}
	return otherBMIBucketScore
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
