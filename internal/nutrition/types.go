package nutrition

import (
	"fmt"
	"strings"
	"time"
)

// Gender selects the reference column in the intake tables.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ActivityLevel scales base calories.
type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "very_active"
)

// MealType identifies one meal of a school day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// AllMealTypes is the default meal order used by planners and reports.
var AllMealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// BMIStatus is the weight category used by the health score.
type BMIStatus string

const (
	BMINormal      BMIStatus = "normal"
	BMIOverweight  BMIStatus = "overweight"
	BMIUnderweight BMIStatus = "underweight"
	BMIObese       BMIStatus = "obese"
)

// ParseGender normalizes a gender string.
func ParseGender(s string) (Gender, error) {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case Male:
		return Male, nil
	case Female:
		return Female, nil
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, s)
}

// ParseActivityLevel normalizes an activity level string.
func ParseActivityLevel(s string) (ActivityLevel, error) {
	level := ActivityLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := activityFactors[level]; !ok {
		return "", fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, s)
	}
	return level, nil
}

// ParseMealType normalizes a meal type string.
func ParseMealType(s string) (MealType, error) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllMealTypes {
		if mt == known {
			return mt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown meal type %q", ErrInvalidInput, s)
}

// ClassifyBMI maps a pediatric-agnostic BMI value to a status bucket.
func ClassifyBMI(bmi float64) BMIStatus {
	switch {
	case bmi <= 0:
		return ""
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25:
		return BMINormal
	case bmi < 30:
		return BMIOverweight
	default:
		return BMIObese
	}
}

type Demographics struct {
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
	Grade  string `json:"grade,omitempty"`
}

type HealthMetrics struct {
	BMI      float64 `json:"bmi"`
	HeightCM float64 `json:"height_cm,omitempty"`
	WeightKG float64 `json:"weight_kg,omitempty"`
}

// DataPoint is one consumed meal of one student. Health is optional.
type DataPoint struct {
	Date                  time.Time      `json:"date"`
	StudentID             string         `json:"student_id"`
	MealType              MealType       `json:"meal_type"`
	Nutrients             NutrientVector `json:"nutrients"`
	ConsumptionPercentage float64        `json:"consumption_percentage"`
	FoodLabels            []string       `json:"food_labels,omitempty"`
	Demographics          Demographics   `json:"demographics"`
	Health                *HealthMetrics `json:"health,omitempty"`
}

// FoodItem is a catalog entry. Nutrients are per single portion.
type FoodItem struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Category  string         `json:"category"`
	Nutrients NutrientVector `json:"nutrients"`
	Cost      float64        `json:"cost"`
	Allergens []string       `json:"allergens,omitempty"`
	Tags      []string       `json:"tags,omitempty"`

	// Whole-day inclusive availability bounds; nil is open.
	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
}

// AvailableOn reports whether the item can be served on date's UTC day.
func (f FoodItem) AvailableOn(date time.Time) bool {
	day := utcDay(date)
	if f.AvailableFrom != nil && day.Before(utcDay(*f.AvailableFrom)) {
		return false
	}
	if f.AvailableUntil != nil && day.After(utcDay(*f.AvailableUntil)) {
		return false
	}
	return true
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HasTag reports whether the item carries tag, case-insensitively.
func (f FoodItem) HasTag(tag string) bool {
	return containsFold(f.Tags, tag)
}

// HasAllergen reports whether the item declares allergen, case-insensitively.
func (f FoodItem) HasAllergen(allergen string) bool {
	return containsFold(f.Allergens, allergen)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(s)) {
			return true
		}
	}
	return false
}
