package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// CaloriesBMI names the calorie/BMI correlation in reports.
const CaloriesBMI = "calories_bmi"

type NutrientTrend struct {
	Nutrient  string    `json:"nutrient"`
	Summary   Summary   `json:"summary"`
	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

type CorrelationResult struct {
	Name             string      `json:"name"`
	Correlation      Correlation `json:"correlation"`
	Pairs            int         `json:"pairs"`
	InsufficientData bool        `json:"insufficient_data"`
}

type BehavioralPatterns struct {
	Acceptance       map[nutrition.MealType]Acceptance `json:"acceptance"`
	PreferenceShifts map[string]PreferenceShift        `json:"preference_shifts"`
	Weekday          WeekdayPattern                    `json:"weekday"`
}

// Prediction is a linear extrapolation of one nutrient's daily series.
type Prediction struct {
	Nutrient    string  `json:"nutrient"`
	Current     float64 `json:"current"`
	Predicted   float64 `json:"predicted"`
	Lower       float64 `json:"lower"`
	Upper       float64 `json:"upper"`
	HorizonDays int     `json:"horizon_days"`
	Confidence  float64 `json:"confidence"`
	Trend       Trend   `json:"trend"`
}

// TrendReport is the full analysis of one data window.
type TrendReport struct {
	WindowStart        time.Time                `json:"window_start"`
	WindowEnd          time.Time                `json:"window_end"`
	DataPoints         int                      `json:"data_points"`
	Students           int                      `json:"students"`
	NutritionalTrends  map[string]NutrientTrend `json:"nutritional_trends"`
	Correlations       []CorrelationResult      `json:"correlations"`
	SeasonalTrends     map[Season]Summary       `json:"seasonal_trends"`
	BehavioralPatterns BehavioralPatterns       `json:"behavioral_patterns"`
	PredictiveInsights []Prediction             `json:"predictive_insights"`
}

// Composer runs every analysis over a window of meal records.
type Composer struct {
	engine *Engine
}

func NewComposer(engine *Engine) *Composer {
	if engine == nil {
		engine = NewEngine(DefaultConfig())
	}
	return &Composer{engine: engine}
}

// Compose analyzes points. The result depends only on the input.
func (c *Composer) Compose(points []nutrition.DataPoint) (*TrendReport, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no data points in window", nutrition.ErrInvalidInput)
	}
	for i, p := range points {
		if err := p.Nutrients.Validate(); err != nil {
			return nil, fmt.Errorf("data point %d: %w", i, err)
		}
	}

	daily := dailyStudentAverages(points)
	report := &TrendReport{
		WindowStart:       daily.days[0],
		WindowEnd:         daily.days[len(daily.days)-1],
		DataPoints:        len(points),
		Students:          len(daily.studentTotals),
		NutritionalTrends: make(map[string]NutrientTrend, len(nutrition.CoreNutrients)),
	}

	for _, name := range nutrition.CoreNutrients {
		series := daily.series(name)
		summary, err := c.engine.Describe(series)
		if err != nil {
			return nil, fmt.Errorf("failed to describe %s: %w", name, err)
		}
		report.NutritionalTrends[name] = NutrientTrend{
			Nutrient:  name,
			Summary:   summary,
			Anomalies: c.engine.DetectAnomalies(series),
		}
		if pred, ok := c.predict(name, series, summary); ok {
			report.PredictiveInsights = append(report.PredictiveInsights, pred)
		}
	}

	corr, err := c.caloriesVersusBMI(points, daily)
	if err != nil {
		return nil, err
	}
	report.Correlations = []CorrelationResult{corr}

	calories := daily.series(nutrition.Calories)
	report.SeasonalTrends, err = c.engine.BySeason(calories)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze seasons: %w", err)
	}

	report.BehavioralPatterns = BehavioralPatterns{
		Acceptance:       c.engine.AcceptanceRates(points),
		PreferenceShifts: c.engine.PreferenceShifts(points),
		Weekday:          c.engine.WeekdayPattern(calories),
	}
	return report, nil
}

func (c *Composer) predict(name string, series Series, s Summary) (Prediction, bool) {
	if s.InsufficientData {
		return Prediction{}, false
	}
	horizon := c.engine.cfg.ForecastHorizonDays
	current := series.Last()
	predicted := math.Max(0, current+s.Slope*float64(horizon))
	margin := 2 * s.StdErr

	confidence := c.engine.cfg.LowConfidence
	if s.Significance == SignificanceHigh {
		confidence = c.engine.cfg.HighConfidence
	}
	return Prediction{
		Nutrient:    name,
		Current:     current,
		Predicted:   predicted,
		Lower:       math.Max(0, predicted-margin),
		Upper:       predicted + margin,
		HorizonDays: horizon,
		Confidence:  confidence,
		Trend:       s.Trend,
	}, true
}

// caloriesVersusBMI pairs each student's average daily calories with their
// most recent BMI reading.
func (c *Composer) caloriesVersusBMI(points []nutrition.DataPoint, daily *dailyAggregate) (CorrelationResult, error) {
	res := CorrelationResult{Name: CaloriesBMI}

	latest := make(map[string]nutrition.DataPoint)
	for _, p := range points {
		if p.Health == nil || p.Health.BMI <= 0 {
			continue
		}
		if prev, ok := latest[p.StudentID]; !ok || p.Date.After(prev.Date) {
			latest[p.StudentID] = p
		}
	}

	students := make([]string, 0, len(latest))
	for id := range latest {
		students = append(students, id)
	}
	sort.Strings(students)

	var kcal, bmi []float64
	for _, id := range students {
		days := daily.studentTotals[id]
		if len(days) == 0 {
			continue
		}
		var sum float64
		for _, v := range days {
			sum += v.Calories
		}
		kcal = append(kcal, sum/float64(len(days)))
		bmi = append(bmi, latest[id].Health.BMI)
	}
	res.Pairs = len(kcal)
	if res.Pairs < c.engine.cfg.MinCorrelationPairs {
		res.InsufficientData = true
		return res, nil
	}

	corr, err := c.engine.Correlate(kcal, bmi)
	if err != nil {
		return res, fmt.Errorf("failed to correlate calories and bmi: %w", err)
	}
	res.Correlation = corr
	return res, nil
}

type dailyAggregate struct {
	days []time.Time
	// perDay[i] holds each student's summed intake on days[i].
	perDay []map[string]nutrition.NutrientVector
	// studentTotals[id][day] is that student's summed intake per day.
	studentTotals map[string]map[time.Time]nutrition.NutrientVector
}

func dailyStudentAverages(points []nutrition.DataPoint) *dailyAggregate {
	agg := &dailyAggregate{studentTotals: make(map[string]map[time.Time]nutrition.NutrientVector)}
	index := make(map[time.Time]int)

	sorted := append([]nutrition.DataPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, p := range sorted {
		day := dayOf(p.Date)
		i, ok := index[day]
		if !ok {
			i = len(agg.days)
			index[day] = i
			agg.days = append(agg.days, day)
			agg.perDay = append(agg.perDay, make(map[string]nutrition.NutrientVector))
		}
		agg.perDay[i][p.StudentID] = agg.perDay[i][p.StudentID].Add(p.Nutrients)

		byDay, ok := agg.studentTotals[p.StudentID]
		if !ok {
			byDay = make(map[time.Time]nutrition.NutrientVector)
			agg.studentTotals[p.StudentID] = byDay
		}
		byDay[day] = byDay[day].Add(p.Nutrients)
	}
	return agg
}

// series returns the per-student daily average of nutrient across the window.
func (a *dailyAggregate) series(nutrient string) Series {
	out := make(Series, len(a.days))
	for i, day := range a.days {
		var sum float64
		for _, v := range a.perDay[i] {
			sum += v.Get(nutrient)
		}
		out[i] = Point{Date: day, Value: sum / float64(len(a.perDay[i]))}
	}
	return out
}
