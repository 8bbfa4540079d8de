package types

import (
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
)

// DateLayout is the calendar-date format used in requests and query strings.
const DateLayout = "2006-01-02"

// StudentProfile identifies the DRI row a target is computed from.
type StudentProfile struct {
	Age           int    `json:"age" binding:"required"`
	Gender        string `json:"gender" binding:"required"`
	ActivityLevel string `json:"activity_level"`
}

// IntakeRequest is the body of POST /intake/recommend.
type IntakeRequest = StudentProfile

// AdherenceRequest is the body of POST /adherence/score.
// AllergenCompliance defaults to 100 when omitted.
type AdherenceRequest struct {
	Actual             nutrition.NutrientVector `json:"actual"`
	Profile            StudentProfile           `json:"profile"`
	VarietyScore       float64                  `json:"variety_score"`
	AllergenCompliance *float64                 `json:"allergen_compliance"`
	BMIStatus          string                   `json:"bmi_status"`
}

// TrendQuery selects the meal records a trend report covers.
type TrendQuery struct {
	SchoolID   string    `json:"school_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	StudentIDs []string  `json:"student_ids,omitempty"`
}

// PlanRequest is the body of POST /plans/weekly.
type PlanRequest struct {
	SchoolID            string         `json:"school_id" binding:"required"`
	StartDate           string         `json:"start_date" binding:"required"`
	Days                int            `json:"days"`
	MealTypes           []string       `json:"meal_types"`
	Profile             StudentProfile `json:"profile"`
	Allergies           []string       `json:"allergies"`
	DietaryRestrictions []string       `json:"dietary_restrictions"`
	BudgetPerDay        float64        `json:"budget_per_day"`
	BMIStatus           string         `json:"bmi_status"`
	PreferenceHistory   []string       `json:"preference_history"`
	Export              bool           `json:"export"`
}

// PlanResponse wraps a generated plan and, when requested, a download link.
type PlanResponse struct {
	Plan        *planner.WeeklyPlan `json:"plan"`
	ExportURL   string              `json:"export_url,omitempty"`
	ExportError string              `json:"export_error,omitempty"`
}

// CatalogItemRequest is the body of POST /catalog/items.
type CatalogItemRequest struct {
	SchoolID       string                   `json:"school_id" binding:"required"`
	Name           string                   `json:"name" binding:"required"`
	Category       string                   `json:"category"`
	Nutrients      nutrition.NutrientVector `json:"nutrients"`
	Cost           float64                  `json:"cost"`
	Allergens      []string                 `json:"allergens"`
	Tags           []string                 `json:"tags"`
	AvailableFrom  *time.Time               `json:"available_from"`
	AvailableUntil *time.Time               `json:"available_until"`
}

// MealRecordInput is one served meal in POST /meal-records.
type MealRecordInput struct {
	StudentID             string                   `json:"student_id" binding:"required"`
	ServedAt              time.Time                `json:"served_at" binding:"required"`
	MealType              string                   `json:"meal_type" binding:"required"`
	FoodItemID            string                   `json:"food_item_id"`
	Nutrients             nutrition.NutrientVector `json:"nutrients"`
	ConsumptionPercentage *float64                 `json:"consumption_percentage"`
	FoodLabels            []string                 `json:"food_labels"`
}

// StudentInput registers or updates a student alongside their meals.
type StudentInput struct {
	ID       string  `json:"id" binding:"required"`
	Age      int     `json:"age" binding:"required"`
	Gender   string  `json:"gender" binding:"required"`
	Grade    string  `json:"grade"`
	HeightCM float64 `json:"height_cm"`
	WeightKG float64 `json:"weight_kg"`
}

// RecordMealsRequest is the body of POST /meal-records.
type RecordMealsRequest struct {
	SchoolID string            `json:"school_id" binding:"required"`
	Students []StudentInput    `json:"students" binding:"dive"`
	Meals    []MealRecordInput `json:"meals" binding:"required,dive"`
}
