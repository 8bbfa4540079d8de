package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

func TestConstraints_Allows(t *testing.T) {
	tests := []struct {
		name string
		cons Constraints
		item nutrition.FoodItem
		want bool
	}{
		{"no constraints", Constraints{}, item("chicken", "poultry", 1, 1, nil, nil), true},
		{"allergy case-insensitive", Constraints{Allergies: []string{"PEANUTS"}}, item("pb", "snack", 1, 1, nil, []string{"peanuts"}), false},
		{"vegetarian by category", Constraints{DietaryRestrictions: []string{"vegetarian"}}, item("chicken", "poultry", 1, 1, nil, nil), false},
		{"vegetarian by tag", Constraints{DietaryRestrictions: []string{"Vegetarian"}}, item("chili", "entree", 1, 1, []string{"meat"}, nil), false},
		{"vegetarian allows dairy", Constraints{DietaryRestrictions: []string{"vegetarian"}}, item("milk", "dairy", 1, 1, nil, []string{"dairy"}), true},
		{"vegan excludes dairy", Constraints{DietaryRestrictions: []string{"vegan"}}, item("milk", "dairy", 1, 1, nil, nil), false},
		{"gluten free spelled with underscore", Constraints{DietaryRestrictions: []string{"gluten_free"}}, item("bread", "grains", 1, 1, nil, []string{"gluten"}), false},
		{"halal excludes pork", Constraints{DietaryRestrictions: []string{"halal"}}, item("ham", "pork", 1, 1, nil, nil), false},
		{"unknown restriction ignored", Constraints{DietaryRestrictions: []string{"paleo"}}, item("bread", "grains", 1, 1, nil, nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cons.Allows(tt.item))
		})
	}
}

func TestFilterCandidates_MealTagsAndOrder(t *testing.T) {
	got := FilterCandidates(testCatalog(), nutrition.Snack, Constraints{Allergies: []string{"peanuts"}})
	var names []string
	for _, it := range got {
		names = append(names, it.ID)
	}
	assert.Equal(t, []string{"milk", "apple", "yogurt"}, names)
}

func TestKnownRestriction(t *testing.T) {
	assert.True(t, KnownRestriction("Nut Free"))
	assert.False(t, KnownRestriction("carnivore"))
}

func TestVarietyAndCompliance(t *testing.T) {
	items := []SelectedItem{
		{Item: item("a", "grains", 1, 1, nil, nil)},
		{Item: item("b", "grains", 1, 1, nil, nil)},
		{Item: item("c", "fruit", 1, 1, nil, []string{"sulfites"})},
	}
	assert.Equal(t, 4.0, varietyScore(items))
	assert.InDelta(t, 200.0/3.0, allergenCompliance(items, []string{"sulfites"}), 1e-9)
	assert.Equal(t, 100.0, allergenCompliance(nil, []string{"egg"}))

	var many []SelectedItem
	for _, c := range []string{"a", "b", "c", "d", "e", "f"} {
		many = append(many, SelectedItem{Item: item(c, c, 1, 1, nil, nil)})
	}
	assert.Equal(t, 10.0, varietyScore(many))
}

func TestFallbackRecommender(t *testing.T) {
	fb := NewFallbackRecommender(DefaultConfig())
	cands := []nutrition.FoodItem{
		item("a", "x", 100, 1, nil, nil),
		item("b", "y", 100, 1, nil, nil),
		item("c", "z", 100, 1, nil, nil),
		item("d", "w", 100, 1, nil, nil),
	}

	got, err := fb.Suggest(context.Background(), SuggestRequest{Candidates: cands, TargetCalories: 600, MinItems: 3, MaxItems: 5})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ItemID)
	assert.Equal(t, "c", got[2].ItemID)
	assert.Equal(t, 2.0, got[0].PortionSize)

	huge, err := fb.Suggest(context.Background(), SuggestRequest{Candidates: cands[:1], TargetCalories: 10000, MinItems: 3})
	require.NoError(t, err)
	require.Len(t, huge, 1)
	assert.Equal(t, 3.0, huge[0].PortionSize)

	zero, err := fb.Suggest(context.Background(), SuggestRequest{Candidates: []nutrition.FoodItem{item("w", "water", 0, 0, nil, nil)}, TargetCalories: 300, MinItems: 3})
	require.NoError(t, err)
	assert.Equal(t, 1.0, zero[0].PortionSize)
}
