package nutrition

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInput is returned when a caller violates a function contract,
// e.g. an empty series or a zero target.
var ErrInvalidInput = errors.New("invalid input")

// Nutrient names used in flattened vectors and adherence reports.
const (
	Calories = "calories"
	Protein  = "protein"
	Carbs    = "carbs"
	Fat      = "fat"
	Fiber    = "fiber"
	Sodium   = "sodium"
	Sugar    = "sugar"
)

// vitaminPrefix namespaces vitamin keys when a vector is flattened.
const vitaminPrefix = "vitamin_"

// CoreNutrients lists the scalar fields of a NutrientVector in a stable order.
var CoreNutrients = []string{Calories, Protein, Carbs, Fat, Fiber, Sodium, Sugar}

// NutrientVector holds macro and micro nutrient magnitudes. Calories are kcal,
// sodium is mg, everything else in the core set is grams. Vitamins and
// minerals carry whatever unit the reference table uses for that key.
type NutrientVector struct {
	Calories float64            `json:"calories"`
	Protein  float64            `json:"protein"`
	Carbs    float64            `json:"carbs"`
	Fat      float64            `json:"fat"`
	Fiber    float64            `json:"fiber"`
	Sodium   float64            `json:"sodium"`
	Sugar    float64            `json:"sugar"`
	Vitamins map[string]float64 `json:"vitamins,omitempty"`
	Minerals map[string]float64 `json:"minerals,omitempty"`
}

// Add returns the component-wise sum of v and o.
func (v NutrientVector) Add(o NutrientVector) NutrientVector {
	return NutrientVector{
		Calories: v.Calories + o.Calories,
		Protein:  v.Protein + o.Protein,
		Carbs:    v.Carbs + o.Carbs,
		Fat:      v.Fat + o.Fat,
		Fiber:    v.Fiber + o.Fiber,
		Sodium:   v.Sodium + o.Sodium,
		Sugar:    v.Sugar + o.Sugar,
		Vitamins: mergeMaps(v.Vitamins, o.Vitamins),
		Minerals: mergeMaps(v.Minerals, o.Minerals),
	}
}

// Scale returns v with every component multiplied by f.
func (v NutrientVector) Scale(f float64) NutrientVector {
	return NutrientVector{
		Calories: v.Calories * f,
		Protein:  v.Protein * f,
		Carbs:    v.Carbs * f,
		Fat:      v.Fat * f,
		Fiber:    v.Fiber * f,
		Sodium:   v.Sodium * f,
		Sugar:    v.Sugar * f,
		Vitamins: scaleMap(v.Vitamins, f),
		Minerals: scaleMap(v.Minerals, f),
	}
}

// Validate rejects negative or non-finite magnitudes.
func (v NutrientVector) Validate() error {
	for name, val := range v.Fields() {
		if math.IsNaN(val) || math.IsInf(val, 0) || val < 0 {
			return fmt.Errorf("%w: nutrient %s has invalid magnitude %v", ErrInvalidInput, name, val)
		}
	}
	return nil
}

// Fields flattens the vector into name -> value. Vitamin keys are prefixed
// with "vitamin_", mineral keys are used as-is.
func (v NutrientVector) Fields() map[string]float64 {
	out := map[string]float64{
		Calories: v.Calories,
		Protein:  v.Protein,
		Carbs:    v.Carbs,
		Fat:      v.Fat,
		Fiber:    v.Fiber,
		Sodium:   v.Sodium,
		Sugar:    v.Sugar,
	}
	for k, val := range v.Vitamins {
		out[vitaminPrefix+k] = val
	}
	for k, val := range v.Minerals {
		out[k] = val
	}
	return out
}

// Get returns a single flattened field, 0 when absent.
func (v NutrientVector) Get(name string) float64 {
	switch name {
	case Calories:
		return v.Calories
	case Protein:
		return v.Protein
	case Carbs:
		return v.Carbs
	case Fat:
		return v.Fat
	case Fiber:
		return v.Fiber
	case Sodium:
		return v.Sodium
	case Sugar:
		return v.Sugar
	}
	return v.Fields()[name]
}

// MicroNames returns the flattened vitamin and mineral names present in v, sorted.
func (v NutrientVector) MicroNames() []string {
	names := make([]string, 0, len(v.Vitamins)+len(v.Minerals))
	for k := range v.Vitamins {
		names = append(names, vitaminPrefix+k)
	}
	for k := range v.Minerals {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func mergeMaps(a, b map[string]float64) map[string]float64 {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]float64, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] += v
	}
	return out
}

func scaleMap(m map[string]float64, f float64) map[string]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v * f
	}
	return out
}
