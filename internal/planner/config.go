package planner

import (
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// Config tunes meal-plan generation.
type Config struct {
	// MealSplit is each meal's share of the daily calorie target.
	MealSplit map[nutrition.MealType]float64 `yaml:"meal_split" json:"meal_split"`
	// CalorieTolerance is the ± percentage band for calories when scoring a day.
	CalorieTolerance float64 `yaml:"calorie_tolerance" json:"calorie_tolerance"`

	MinPortion      float64 `yaml:"min_portion" json:"min_portion"`
	MaxPortion      float64 `yaml:"max_portion" json:"max_portion"`
	MinItemsPerMeal int     `yaml:"min_items_per_meal" json:"min_items_per_meal"`
	MaxItemsPerMeal int     `yaml:"max_items_per_meal" json:"max_items_per_meal"`

	DefaultHealthScore float64 `yaml:"default_health_score" json:"default_health_score"`
	DefaultAppeal      float64 `yaml:"default_appeal" json:"default_appeal"`

	RecommenderTimeout time.Duration `yaml:"recommender_timeout" json:"recommender_timeout"`
	MaxParallelDays    int           `yaml:"max_parallel_days" json:"max_parallel_days"`
	MaxDays            int           `yaml:"max_days" json:"max_days"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MealSplit: map[nutrition.MealType]float64{
			nutrition.Breakfast: 0.25,
			nutrition.Lunch:     0.35,
			nutrition.Dinner:    0.25,
			nutrition.Snack:     0.15,
		},
		CalorieTolerance:   15,
		MinPortion:         0.1,
		MaxPortion:         3.0,
		MinItemsPerMeal:    3,
		MaxItemsPerMeal:    5,
		DefaultHealthScore: 7,
		DefaultAppeal:      0.7,
		RecommenderTimeout: 10 * time.Second,
		MaxParallelDays:    4,
		MaxDays:            31,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.MealSplit) == 0 {
		c.MealSplit = d.MealSplit
	}
	if c.CalorieTolerance <= 0 {
		c.CalorieTolerance = d.CalorieTolerance
	}
	if c.MinPortion <= 0 {
		c.MinPortion = d.MinPortion
	}
	if c.MaxPortion < c.MinPortion {
		c.MaxPortion = d.MaxPortion
	}
	if c.MinItemsPerMeal <= 0 {
		c.MinItemsPerMeal = d.MinItemsPerMeal
	}
	if c.MaxItemsPerMeal < c.MinItemsPerMeal {
		c.MaxItemsPerMeal = d.MaxItemsPerMeal
	}
	if c.DefaultHealthScore <= 0 {
		c.DefaultHealthScore = d.DefaultHealthScore
	}
	if c.DefaultAppeal <= 0 {
		c.DefaultAppeal = d.DefaultAppeal
	}
	if c.RecommenderTimeout <= 0 {
		c.RecommenderTimeout = d.RecommenderTimeout
	}
	if c.MaxParallelDays <= 0 {
		c.MaxParallelDays = d.MaxParallelDays
	}
	if c.MaxDays <= 0 {
		c.MaxDays = d.MaxDays
	}
	return c
}
