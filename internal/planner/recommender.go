package planner

import (
	"context"
	"math"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// MealPlanItem is one suggestion from a Recommender. Every numeric field is
// untrusted and gets clamped by the optimizer.
type MealPlanItem struct {
	ItemID       string  `json:"item_id"`
	PortionSize  float64 `json:"portion_size"`
	HealthScore  float64 `json:"health_score"`
	AppealFactor float64 `json:"appeal_factor"`
	Reason       string  `json:"reason,omitempty"`
}

// SuggestRequest is what a Recommender gets for one meal slot. Candidates
// are already filtered by allergies and dietary restrictions.
type SuggestRequest struct {
	MealType            nutrition.MealType   `json:"meal_type"`
	DayIndex            int                  `json:"day_index"`
	Candidates          []nutrition.FoodItem `json:"candidates"`
	TargetCalories      float64              `json:"target_calories"`
	MinItems            int                  `json:"min_items"`
	MaxItems            int                  `json:"max_items"`
	PreferenceHistory   []string             `json:"preference_history,omitempty"`
	DietaryRestrictions []string             `json:"dietary_restrictions,omitempty"`
	Allergies           []string             `json:"allergies,omitempty"`
}

// Recommender ranks candidates for a meal slot.
type Recommender interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]MealPlanItem, error)
}

// FallbackRecommender picks the first MinItems candidates in catalog order and sizes
// portions to meet the slot's calorie target. It never fails.
type FallbackRecommender struct {
	HealthScore float64
	Appeal      float64
	MinPortion  float64
	MaxPortion  float64
}

func NewFallbackRecommender(cfg Config) *FallbackRecommender {
	cfg = cfg.withDefaults()
	return &FallbackRecommender{
		HealthScore: cfg.DefaultHealthScore,
		Appeal:      cfg.DefaultAppeal,
		MinPortion:  cfg.MinPortion,
		MaxPortion:  cfg.MaxPortion,
	}
}

func (f *FallbackRecommender) Suggest(_ context.Context, req SuggestRequest) ([]MealPlanItem, error) {
	n := req.MinItems
	if n <= 0 {
		n = req.MaxItems
	}
	if n <= 0 || n > len(req.Candidates) {
		n = len(req.Candidates)
	}
	picked := req.Candidates[:n]

	var kcal float64
	for _, item := range picked {
		kcal += item.Nutrients.Calories
	}
	portion := 1.0
	if kcal > 0 && req.TargetCalories > 0 {
		portion = req.TargetCalories / kcal
	}
	portion = math.Max(f.MinPortion, math.Min(f.MaxPortion, portion))

	out := make([]MealPlanItem, 0, n)
	for _, item := range picked {
		out = append(out, MealPlanItem{
			ItemID:       item.ID,
			PortionSize:  portion,
			HealthScore:  f.HealthScore,
			AppealFactor: f.Appeal,
			Reason:       "catalog order",
		})
	}
	return out, nil
}
