package planner

import (
	"fmt"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// insights turns the weekly summary into short human-readable notes.
func insights(s Summary, req Request, days int) []string {
	var out []string
	for _, name := range nutrition.CoreNutrients {
		pct, ok := s.GoalAchievement[name]
		if !ok {
			continue
		}
		switch {
		case pct < 80:
			out = append(out, fmt.Sprintf("Plan provides %.0f%% of the recommended %s; add items richer in %s.", pct, name, name))
		case pct > 120 && name != nutrition.Fiber:
			out = append(out, fmt.Sprintf("Plan exceeds the recommended %s at %.0f%% of target.", name, pct))
		}
	}
	if s.GapCount > 0 {
		out = append(out, fmt.Sprintf("%d meal slot(s) could not be filled; widen the catalog or relax constraints.", s.GapCount))
	}
	if s.FallbackSlots > 0 {
		out = append(out, fmt.Sprintf("%d meal slot(s) used catalog-order selection instead of ranked suggestions.", s.FallbackSlots))
	}
	if req.BudgetPerDay > 0 && days > 0 {
		out = append(out, fmt.Sprintf("Average daily cost %.2f against a budget of %.2f.", s.TotalCost/float64(days), req.BudgetPerDay))
	}
	if len(out) == 0 {
		out = append(out, "Plan meets the recommended targets for all tracked nutrients.")
	}
	return out
}
