package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pageza/nutrition-engine/backend/internal/analytics"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
)

//go:embed engine.yaml
var defaultEngineYAML []byte

// EngineConfig holds the tunables of the analytics engine and the planner.
type EngineConfig struct {
	Analytics analytics.Config `yaml:"analytics"`
	Planner   planner.Config   `yaml:"planner"`
}

// LoadEngineConfig reads path, or the embedded defaults when path is empty.
// Fields missing from the file keep the embedded values.
func LoadEngineConfig(path string) (EngineConfig, error) {
	var cfg EngineConfig
	if err := yaml.Unmarshal(defaultEngineYAML, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse embedded engine config: %w", err)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read engine config %s: %w", path, err)
	}
	override := cfg
	override.Planner.MealSplit = nil
	if err := yaml.Unmarshal(data, &override); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse engine config %s: %w", path, err)
	}
	if len(override.Planner.MealSplit) == 0 {
		override.Planner.MealSplit = cfg.Planner.MealSplit
	}
	if err := override.Validate(); err != nil {
		return EngineConfig{}, err
	}
	return override, nil
}

// Validate rejects meal splits naming unknown meals or holding out-of-range shares.
func (c EngineConfig) Validate() error {
	var errs ValidationErrors
	var total float64
	for mt, share := range c.Planner.MealSplit {
		if _, err := nutrition.ParseMealType(string(mt)); err != nil {
			errs = append(errs, ValidationError{"planner.meal_split", fmt.Sprintf("unknown meal type %q", mt)})
			continue
		}
		if share <= 0 || share > 1 {
			errs = append(errs, ValidationError{"planner.meal_split." + string(mt), "share must be in (0, 1]"})
		}
		total += share
	}
	if total > 1.0001 {
		errs = append(errs, ValidationError{"planner.meal_split", fmt.Sprintf("shares sum to %.2f, above 1", total)})
	}
	if c.Planner.RecommenderTimeout < 0 {
		errs = append(errs, ValidationError{"planner.recommender_timeout", "must not be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
