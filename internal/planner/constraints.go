package planner

import (
	"strings"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// restrictionRules maps a dietary restriction to the category, tag or
// allergen labels it rules out.
var restrictionRules = map[string][]string{
	"vegetarian":     {"meat", "poultry", "fish", "seafood", "pork", "beef", "shellfish"},
	"vegan":          {"meat", "poultry", "fish", "seafood", "pork", "beef", "shellfish", "dairy", "egg", "eggs", "honey"},
	"pescatarian":    {"meat", "poultry", "pork", "beef"},
	"gluten-free":    {"gluten", "wheat"},
	"dairy-free":     {"dairy", "milk"},
	"lactose-free":   {"dairy", "milk", "lactose"},
	"nut-free":       {"nuts", "tree-nuts", "tree nuts", "peanuts", "peanut"},
	"soy-free":       {"soy"},
	"egg-free":       {"egg", "eggs"},
	"shellfish-free": {"shellfish"},
	"halal":          {"pork", "alcohol"},
	"kosher":         {"pork", "shellfish"},
}

// KnownRestriction reports whether r has a filtering rule.
func KnownRestriction(r string) bool {
	_, ok := restrictionRules[normalizeRestriction(r)]
	return ok
}

func normalizeRestriction(r string) string {
	r = strings.ToLower(strings.TrimSpace(r))
	r = strings.ReplaceAll(r, "_", "-")
	return strings.ReplaceAll(r, " ", "-")
}

// Constraints are the hard filters applied before any ranking.
type Constraints struct {
	Allergies           []string
	DietaryRestrictions []string
}

// Allows reports whether item is safe under c.
func (c Constraints) Allows(item nutrition.FoodItem) bool {
	for _, a := range c.Allergies {
		if item.HasAllergen(a) {
			return false
		}
	}
	for _, r := range c.DietaryRestrictions {
		for _, forbidden := range restrictionRules[normalizeRestriction(r)] {
			if strings.EqualFold(strings.TrimSpace(item.Category), forbidden) ||
				item.HasTag(forbidden) || item.HasAllergen(forbidden) {
				return false
			}
		}
	}
	return true
}

// servesMeal reports whether item may appear in mt. Items without any
// meal-type tag may appear in every meal.
func servesMeal(item nutrition.FoodItem, mt nutrition.MealType) bool {
	tagged := false
	for _, known := range nutrition.AllMealTypes {
		if item.HasTag(string(known)) {
			if known == mt {
				return true
			}
			tagged = true
		}
	}
	return !tagged
}

// FilterCandidates returns the catalog items eligible for mt under c, in
// catalog order.
func FilterCandidates(catalog []nutrition.FoodItem, mt nutrition.MealType, c Constraints) []nutrition.FoodItem {
	out := make([]nutrition.FoodItem, 0, len(catalog))
	for _, item := range catalog {
		if servesMeal(item, mt) && c.Allows(item) {
			out = append(out, item)
		}
	}
	return out
}

// allergenCompliance is the percentage of items that carry none of allergies.
func allergenCompliance(items []SelectedItem, allergies []string) float64 {
	if len(items) == 0 {
		return 100
	}
	var ok int
	for _, s := range items {
		safe := true
		for _, a := range allergies {
			if s.Item.HasAllergen(a) {
				safe = false
				break
			}
		}
		if safe {
			ok++
		}
	}
	return float64(ok) / float64(len(items)) * 100
}

// varietyScore rewards distinct categories, 2 points each up to 10.
func varietyScore(items []SelectedItem) float64 {
	seen := make(map[string]struct{})
	for _, s := range items {
		cat := strings.ToLower(strings.TrimSpace(s.Item.Category))
		if cat == "" {
			cat = strings.ToLower(s.Item.ID)
		}
		seen[cat] = struct{}{}
	}
	score := float64(len(seen)) * 2
	if score > 10 {
		return 10
	}
	return score
}

// availableOn keeps the items that can be served on date.
func availableOn(items []nutrition.FoodItem, date time.Time) []nutrition.FoodItem {
	out := make([]nutrition.FoodItem, 0, len(items))
	for _, it := range items {
		if it.AvailableOn(date) {
			out = append(out, it)
		}
	}
	return out
}
