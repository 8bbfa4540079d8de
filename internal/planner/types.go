package planner

import (
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// Slot sources.
const (
	SourceRecommender = "recommender"
	SourceFallback    = "fallback"
)

type SelectedItem struct {
	Item         nutrition.FoodItem `json:"item"`
	Portion      float64            `json:"portion"`
	HealthScore  float64            `json:"health_score"`
	AppealFactor float64            `json:"appeal_factor"`
}

// MealSlot is one meal of one day.
type MealSlot struct {
	MealType       nutrition.MealType       `json:"meal_type"`
	Items          []SelectedItem           `json:"items"`
	Nutrients      nutrition.NutrientVector `json:"nutrients"`
	Cost           float64                  `json:"cost"`
	TargetCalories float64                  `json:"target_calories"`
	Source         string                   `json:"source"`
}

// Gap records a meal slot that could not be filled.
type Gap struct {
	Date     time.Time          `json:"date"`
	MealType nutrition.MealType `json:"meal_type"`
	Reason   string             `json:"reason"`
}

type DailyPlan struct {
	Date         time.Time                        `json:"date"`
	Slots        map[nutrition.MealType]*MealSlot `json:"slots"`
	Nutrients    nutrition.NutrientVector         `json:"nutrients"`
	HealthScore  float64                          `json:"health_score"`
	VarietyScore float64                          `json:"variety_score"`
	Cost         float64                          `json:"cost"`
	Adherence    nutrition.AdherenceReport        `json:"adherence"`
	Gaps         []Gap                            `json:"gaps,omitempty"`
}

type Summary struct {
	TotalCost       float64            `json:"total_cost"`
	AvgHealthScore  float64            `json:"avg_health_score"`
	AvgVarietyScore float64            `json:"avg_variety_score"`
	GoalAchievement map[string]float64 `json:"goal_achievement"`
	GapCount        int                `json:"gap_count"`
	FallbackSlots   int                `json:"fallback_slots"`
}

type WeeklyPlan struct {
	ID        string                      `json:"id,omitempty"`
	StartDate time.Time                   `json:"start_date"`
	Days      []DailyPlan                 `json:"days"`
	Summary   Summary                     `json:"summary"`
	Insights  []string                    `json:"insights"`
	Target    nutrition.RecommendedIntake `json:"target"`
}

// Request describes the plan a caller wants.
type Request struct {
	StartDate           time.Time
	Days                int
	MealTypes           []nutrition.MealType
	Target              nutrition.RecommendedIntake
	Allergies           []string
	DietaryRestrictions []string
	// BudgetPerDay is the daily cost ceiling. Zero means unlimited.
	BudgetPerDay      float64
	BMIStatus         nutrition.BMIStatus
	PreferenceHistory []string
}

func (r Request) constraints() Constraints {
	return Constraints{Allergies: r.Allergies, DietaryRestrictions: r.DietaryRestrictions}
}
