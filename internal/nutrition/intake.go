package nutrition

import (
	"fmt"
)

// Supported age range for school profiles.
const (
	MinAge = 3
	MaxAge = 18
)

// Macronutrient energy ratios and kcal per gram.
const (
	proteinShare = 0.15
	carbsShare   = 0.55
	fatShare     = 0.30

	kcalPerGramProtein = 4.0
	kcalPerGramCarbs   = 4.0
	kcalPerGramFat     = 9.0
)

var activityFactors = map[ActivityLevel]float64{
	Sedentary:  1.00,
	Light:      1.12,
	Moderate:   1.25,
	Active:     1.40,
	VeryActive: 1.60,
}

// ActivityLevels lists the levels in ascending energy order.
var ActivityLevels = []ActivityLevel{Sedentary, Light, Moderate, Active, VeryActive}

// bracketRow is indexed [male, female].
type bracketRow [2]float64

// Age brackets: <=5, <=8, <=13, <=18, >18.
var (
	baseCalories = [5]bracketRow{{1200, 1200}, {1400, 1300}, {1800, 1600}, {2400, 1900}, {2500, 2000}}
	fiberGrams   = [5]bracketRow{{20, 20}, {25, 25}, {31, 26}, {38, 26}, {38, 25}}
	sodiumMG     = [5]bracketRow{{1500, 1500}, {1900, 1900}, {2200, 2200}, {2300, 2300}, {2300, 2300}}
	sugarGrams   = [5]bracketRow{{25, 25}, {25, 25}, {25, 25}, {25, 25}, {36, 25}}

	vitaminTables = map[string][5]bracketRow{
		"a":   {{300, 300}, {400, 400}, {600, 600}, {900, 700}, {900, 700}}, // mcg RAE
		"c":   {{15, 15}, {25, 25}, {45, 45}, {75, 65}, {90, 75}},           // mg
		"d":   {{15, 15}, {15, 15}, {15, 15}, {15, 15}, {15, 15}},           // mcg
		"b12": {{0.9, 0.9}, {1.2, 1.2}, {1.8, 1.8}, {2.4, 2.4}, {2.4, 2.4}}, // mcg
	}
	mineralTables = map[string][5]bracketRow{
		"calcium":   {{700, 700}, {1000, 1000}, {1300, 1300}, {1300, 1300}, {1000, 1000}},
		"iron":      {{7, 7}, {10, 10}, {8, 8}, {11, 15}, {8, 18}},
		"zinc":      {{3, 3}, {5, 5}, {8, 8}, {11, 9}, {11, 8}},
		"magnesium": {{80, 80}, {130, 130}, {240, 240}, {410, 360}, {400, 310}},
	}
)

// RecommendedIntake is the daily target for one profile.
type RecommendedIntake struct {
	NutrientVector
	Age            int           `json:"age"`
	Gender         Gender        `json:"gender"`
	ActivityLevel  ActivityLevel `json:"activity_level"`
	BaseCalories   float64       `json:"base_calories"`
	ActivityFactor float64       `json:"activity_factor"`
}

// ValidateProfile checks the inputs accepted by Recommend.
func ValidateProfile(age int, gender Gender, level ActivityLevel) error {
	if age < MinAge || age > MaxAge {
		return fmt.Errorf("%w: age %d outside %d..%d", ErrInvalidInput, age, MinAge, MaxAge)
	}
	if gender != Male && gender != Female {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, gender)
	}
	if _, ok := activityFactors[level]; !ok {
		return fmt.Errorf("%w: unknown activity level %q", ErrInvalidInput, level)
	}
	return nil
}

// ActivityFactor returns the calorie multiplier for level. Unknown levels
// fall back to sedentary.
func ActivityFactor(level ActivityLevel) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return activityFactors[Sedentary]
}

// Recommend derives daily targets from age, gender and activity. Inputs are
// expected to have passed ValidateProfile; any non-male gender reads the
// female column.
func Recommend(age int, gender Gender, level ActivityLevel) RecommendedIntake {
	b := ageBracket(age)
	g := genderColumn(gender)

	base := baseCalories[b][g]
	factor := ActivityFactor(level)
	kcal := base * factor

	vitamins := make(map[string]float64, len(vitaminTables))
	for k, t := range vitaminTables {
		vitamins[k] = t[b][g]
	}
	minerals := make(map[string]float64, len(mineralTables))
	for k, t := range mineralTables {
		minerals[k] = t[b][g]
	}

	return RecommendedIntake{
		NutrientVector: NutrientVector{
			Calories: kcal,
			Protein:  kcal * proteinShare / kcalPerGramProtein,
			Carbs:    kcal * carbsShare / kcalPerGramCarbs,
			Fat:      kcal * fatShare / kcalPerGramFat,
			Fiber:    fiberGrams[b][g],
			Sodium:   sodiumMG[b][g],
			Sugar:    sugarGrams[b][g],
			Vitamins: vitamins,
			Minerals: minerals,
		},
		Age:            age,
		Gender:         gender,
		ActivityLevel:  level,
		BaseCalories:   base,
		ActivityFactor: factor,
	}
}

func ageBracket(age int) int {
	switch {
	case age <= 5:
		return 0
	case age <= 8:
		return 1
	case age <= 13:
		return 2
	case age <= 18:
		return 3
	default:
		return 4
	}
}

func genderColumn(g Gender) int {
	if g == Male {
		return 0
	}
	return 1
}
