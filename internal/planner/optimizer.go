package planner

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// Gap reasons.
const (
	GapNoEligibleItems = "no eligible items after constraint filtering"
	GapOverBudget      = "no selection fits the meal budget"
)

// Optimizer builds multi-day meal plans from a catalog.
type Optimizer struct {
	cfg         Config
	recommender Recommender
	fallback    Recommender
	scorer      nutrition.Scorer
	log         *logger.Logger
}

// NewOptimizer creates an Optimizer. A nil recommender means every slot uses
// the deterministic fallback.
func NewOptimizer(cfg Config, recommender Recommender, log *logger.Logger) *Optimizer {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Optimizer{
		cfg:         cfg,
		recommender: recommender,
		fallback:    NewFallbackRecommender(cfg),
		scorer:      nutrition.DefaultScorer().WithCalorieTolerance(cfg.CalorieTolerance),
		log:         log,
	}
}

// Plan builds req.Days daily plans and the weekly summary. Days are built in
// parallel; slots without eligible items become gaps instead of errors.
func (o *Optimizer) Plan(ctx context.Context, catalog []nutrition.FoodItem, req Request) (*WeeklyPlan, error) {
	mealTypes, err := o.validate(catalog, &req)
	if err != nil {
		return nil, err
	}

	cons := req.constraints()
	for _, r := range req.DietaryRestrictions {
		if !KnownRestriction(r) {
			o.log.Warn("unknown dietary restriction ignored", "restriction", r)
		}
	}
	candidates := make(map[nutrition.MealType][]nutrition.FoodItem, len(mealTypes))
	for _, mt := range mealTypes {
		candidates[mt] = FilterCandidates(catalog, mt, cons)
	}

	start := time.Date(req.StartDate.Year(), req.StartDate.Month(), req.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	days := make([]DailyPlan, req.Days)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxParallelDays)
	for i := 0; i < req.Days; i++ {
		i := i
		g.Go(func() error {
			day, err := o.buildDay(gctx, i, start.AddDate(0, 0, i), mealTypes, candidates, req)
			if err != nil {
				return err
			}
			days[i] = day
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &WeeklyPlan{
		StartDate: start,
		Days:      days,
		Target:    req.Target,
	}
	plan.Summary = o.summarize(days, req.Target)
	plan.Insights = insights(plan.Summary, req, len(days))
	return plan, nil
}

func (o *Optimizer) validate(catalog []nutrition.FoodItem, req *Request) ([]nutrition.MealType, error) {
	if req.Days < 1 || req.Days > o.cfg.MaxDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d, got %d", nutrition.ErrInvalidInput, o.cfg.MaxDays, req.Days)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: catalog is empty", nutrition.ErrInvalidInput)
	}
	if req.BudgetPerDay < 0 {
		return nil, fmt.Errorf("%w: budget must not be negative", nutrition.ErrInvalidInput)
	}
	for _, name := range nutrition.CoreNutrients {
		if req.Target.Get(name) <= 0 {
			return nil, fmt.Errorf("%w: target %s must be positive", nutrition.ErrInvalidInput, name)
		}
	}
	for i, item := range catalog {
		if item.ID == "" {
			return nil, fmt.Errorf("%w: catalog item %d has no id", nutrition.ErrInvalidInput, i)
		}
		if err := item.Nutrients.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %s: %w", item.ID, err)
		}
		if item.Cost < 0 {
			return nil, fmt.Errorf("%w: catalog item %s has negative cost", nutrition.ErrInvalidInput, item.ID)
		}
	}

	mealTypes := req.MealTypes
	if len(mealTypes) == 0 {
		mealTypes = nutrition.AllMealTypes
	}
	seen := make(map[nutrition.MealType]bool, len(mealTypes))
	out := make([]nutrition.MealType, 0, len(mealTypes))
	for _, mt := range mealTypes {
		if _, ok := o.cfg.MealSplit[mt]; !ok {
			return nil, fmt.Errorf("%w: no calorie share configured for meal type %q", nutrition.ErrInvalidInput, mt)
		}
		if !seen[mt] {
			seen[mt] = true
			out = append(out, mt)
		}
	}
	if req.BMIStatus == "" {
		req.BMIStatus = nutrition.BMINormal
	}
	return out, nil
}

func (o *Optimizer) buildDay(ctx context.Context, index int, date time.Time, mealTypes []nutrition.MealType,
	candidates map[nutrition.MealType][]nutrition.FoodItem, req Request) (DailyPlan, error) {

	day := DailyPlan{
		Date:  date,
		Slots: make(map[nutrition.MealType]*MealSlot, len(mealTypes)),
	}

	var budgetShares float64
	for _, mt := range mealTypes {
		budgetShares += o.cfg.MealSplit[mt]
	}

	var selected []SelectedItem
	for _, mt := range mealTypes {
		if err := ctx.Err(); err != nil {
			return DailyPlan{}, err
		}
		share := o.cfg.MealSplit[mt]
		budget := math.Inf(1)
		if req.BudgetPerDay > 0 && budgetShares > 0 {
			budget = req.BudgetPerDay * share / budgetShares
		}

		pool := availableOn(candidates[mt], date)
		slot, reason := o.selectItems(ctx, index, mt, pool, req.Target.Calories*share, budget, req)
		if reason != "" {
			gap := Gap{Date: date, MealType: mt, Reason: reason}
			day.Gaps = append(day.Gaps, gap)
			o.log.Warn("meal slot left empty", "date", date.Format("2006-01-02"), "meal_type", mt, "reason", reason)
			continue
		}
		day.Slots[mt] = slot
		day.Nutrients = day.Nutrients.Add(slot.Nutrients)
		day.Cost += slot.Cost
		selected = append(selected, slot.Items...)
	}

	day.VarietyScore = varietyScore(selected)
	report, err := o.scorer.Score(day.Nutrients, req.Target, nutrition.ScoreContext{
		VarietyScore:       day.VarietyScore,
		AllergenCompliance: allergenCompliance(selected, req.Allergies),
		BMIStatus:          req.BMIStatus,
	})
	if err != nil {
		return DailyPlan{}, fmt.Errorf("failed to score %s: %w", date.Format("2006-01-02"), err)
	}
	day.Adherence = report
	day.HealthScore = report.HealthScore
	return day, nil
}

// selectItems fills one slot. A non-empty reason means the slot is a gap.
func (o *Optimizer) selectItems(ctx context.Context, dayIndex int, mt nutrition.MealType, candidates []nutrition.FoodItem,
	targetKcal, budget float64, req Request) (*MealSlot, string) {

	if len(candidates) == 0 {
		return nil, GapNoEligibleItems
	}
	sreq := SuggestRequest{
		MealType:            mt,
		DayIndex:            dayIndex,
		Candidates:          candidates,
		TargetCalories:      targetKcal,
		MinItems:            o.cfg.MinItemsPerMeal,
		MaxItems:            o.cfg.MaxItemsPerMeal,
		PreferenceHistory:   req.PreferenceHistory,
		DietaryRestrictions: req.DietaryRestrictions,
		Allergies:           req.Allergies,
	}

	source := SourceFallback
	var items []SelectedItem
	if o.recommender != nil {
		suggested, err := o.suggest(ctx, sreq)
		switch {
		case err != nil:
			o.log.Warn("recommender failed, using fallback", "meal_type", mt, "day", dayIndex, "error", err)
		default:
			items = o.sanitize(suggested, candidates)
			switch {
			case len(items) == 0:
				o.log.Warn("recommender returned no usable items, using fallback", "meal_type", mt, "day", dayIndex)
			case len(items) < o.cfg.MinItemsPerMeal:
				o.log.Debug("topping up short recommendation", "meal_type", mt, "day", dayIndex, "items", len(items))
				items = o.topUp(ctx, items, sreq)
				source = SourceRecommender
			default:
				source = SourceRecommender
			}
		}
	}
	if len(items) == 0 {
		items = o.fallbackItems(ctx, sreq)
	}

	trimmed := trimToBudget(items, budget)
	if len(trimmed) == 0 && source == SourceRecommender {
		o.log.Debug("recommendation over budget, trying fallback", "meal_type", mt, "day", dayIndex)
		source = SourceFallback
		trimmed = trimToBudget(o.fallbackItems(ctx, sreq), budget)
	}
	items = trimmed
	if len(items) == 0 {
		return nil, GapOverBudget
	}

	slot := &MealSlot{MealType: mt, Items: items, TargetCalories: targetKcal, Source: source}
	for _, s := range items {
		slot.Nutrients = slot.Nutrients.Add(s.Item.Nutrients.Scale(s.Portion))
		slot.Cost += s.Item.Cost * s.Portion
	}
	return slot, ""
}

func (o *Optimizer) fallbackItems(ctx context.Context, req SuggestRequest) []SelectedItem {
	suggested, _ := o.fallback.Suggest(ctx, req)
	return o.sanitize(suggested, req.Candidates)
}

// topUp fills a short selection up to MinItemsPerMeal with unused candidates
// in catalog order, sized to the calories still missing.
func (o *Optimizer) topUp(ctx context.Context, items []SelectedItem, req SuggestRequest) []SelectedItem {
	chosen := make(map[string]bool, len(items))
	remaining := req.TargetCalories
	for _, s := range items {
		chosen[s.Item.ID] = true
		remaining -= s.Item.Nutrients.Calories * s.Portion
	}
	rest := make([]nutrition.FoodItem, 0, len(req.Candidates))
	for _, c := range req.Candidates {
		if !chosen[c.ID] {
			rest = append(rest, c)
		}
	}
	if len(rest) == 0 {
		return items
	}

	fill := req
	fill.Candidates = rest
	fill.MinItems = o.cfg.MinItemsPerMeal - len(items)
	fill.TargetCalories = math.Max(remaining, 0)
	extra := o.fallbackItems(ctx, fill)
	if remaining <= 0 {
		for i := range extra {
			extra[i].Portion = o.cfg.MinPortion
		}
	}
	return append(items, extra...)
}

type suggestResult struct {
	items []MealPlanItem
	err   error
}

// suggest calls the recommender under the configured timeout. A recommender
// that ignores its context is abandoned once the deadline passes.
func (o *Optimizer) suggest(ctx context.Context, req SuggestRequest) ([]MealPlanItem, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.RecommenderTimeout)
	defer cancel()

	done := make(chan suggestResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- suggestResult{err: fmt.Errorf("recommender panicked: %v", r)}
			}
		}()
		items, err := o.recommender.Suggest(ctx, req)
		done <- suggestResult{items: items, err: err}
	}()

	select {
	case res := <-done:
		return res.items, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("recommender timed out: %w", ctx.Err())
	}
}

// sanitize drops unknown or repeated ids and clamps every numeric field.
func (o *Optimizer) sanitize(suggested []MealPlanItem, candidates []nutrition.FoodItem) []SelectedItem {
	byID := make(map[string]nutrition.FoodItem, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}
	seen := make(map[string]bool, len(suggested))
	out := make([]SelectedItem, 0, len(suggested))
	for _, s := range suggested {
		item, ok := byID[s.ItemID]
		if !ok || seen[s.ItemID] {
			continue
		}
		seen[s.ItemID] = true
		out = append(out, SelectedItem{
			Item:         item,
			Portion:      clampOr(s.PortionSize, o.cfg.MinPortion, o.cfg.MaxPortion, 1),
			HealthScore:  clampOr(s.HealthScore, 0, 10, o.cfg.DefaultHealthScore),
			AppealFactor: clampOr(s.AppealFactor, 0, 1, o.cfg.DefaultAppeal),
		})
		if len(out) == o.cfg.MaxItemsPerMeal {
			break
		}
	}
	return out
}

// trimToBudget drops trailing items until the slot cost fits.
func trimToBudget(items []SelectedItem, budget float64) []SelectedItem {
	cost := 0.0
	for _, s := range items {
		cost += s.Item.Cost * s.Portion
	}
	for len(items) > 0 && cost > budget {
		last := items[len(items)-1]
		cost -= last.Item.Cost * last.Portion
		items = items[:len(items)-1]
	}
	return items
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

func (o *Optimizer) summarize(days []DailyPlan, target nutrition.RecommendedIntake) Summary {
	s := Summary{GoalAchievement: make(map[string]float64, len(nutrition.CoreNutrients))}
	if len(days) == 0 {
		return s
	}
	totals := make(map[string]float64, len(nutrition.CoreNutrients))
	for _, d := range days {
		s.TotalCost += d.Cost
		s.AvgHealthScore += d.HealthScore
		s.AvgVarietyScore += d.VarietyScore
		s.GapCount += len(d.Gaps)
		for _, slot := range d.Slots {
			if slot.Source == SourceFallback {
				s.FallbackSlots++
			}
		}
		for _, name := range nutrition.CoreNutrients {
			totals[name] += d.Nutrients.Get(name)
		}
	}
	n := float64(len(days))
	s.AvgHealthScore = round1(s.AvgHealthScore / n)
	s.AvgVarietyScore = round1(s.AvgVarietyScore / n)
	s.TotalCost = math.Round(s.TotalCost*100) / 100
	for _, name := range nutrition.CoreNutrients {
		s.GoalAchievement[name] = round1(totals[name] / n / target.Get(name) * 100)
	}
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
