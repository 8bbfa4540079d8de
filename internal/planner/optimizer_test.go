package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) Suggest(ctx context.Context, req SuggestRequest) ([]MealPlanItem, error) {
	args := m.Called(ctx, req)
	items, _ := args.Get(0).([]MealPlanItem)
	return items, args.Error(1)
}

type recommenderFunc func(ctx context.Context, req SuggestRequest) ([]MealPlanItem, error)

func (f recommenderFunc) Suggest(ctx context.Context, req SuggestRequest) ([]MealPlanItem, error) {
	return f(ctx, req)
}

func item(id, category string, kcal, cost float64, tags, allergens []string) nutrition.FoodItem {
	return nutrition.FoodItem{
		ID:        id,
		Name:      id,
		Category:  category,
		Nutrients: nutrition.NutrientVector{Calories: kcal, Protein: kcal * 0.04, Carbs: kcal * 0.13, Fat: kcal * 0.035, Fiber: 3, Sodium: 200, Sugar: 4},
		Cost:      cost,
		Tags:      tags,
		Allergens: allergens,
	}
}

func testCatalog() []nutrition.FoodItem {
	return []nutrition.FoodItem{
		item("oat", "grains", 300, 1.0, []string{"breakfast"}, nil),
		item("egg", "egg", 200, 1.5, []string{"breakfast"}, []string{"egg"}),
		item("milk", "dairy", 150, 0.5, nil, []string{"dairy"}),
		item("chicken", "poultry", 500, 3.0, []string{"lunch", "dinner"}, nil),
		item("beans", "legumes", 450, 2.0, []string{"lunch", "dinner"}, nil),
		item("salad", "vegetables", 150, 1.5, []string{"lunch", "dinner"}, nil),
		item("apple", "fruit", 95, 0.5, []string{"snack", "breakfast"}, nil),
		item("yogurt", "dairy", 120, 0.8, []string{"snack"}, []string{"dairy"}),
		item("pb", "snack", 200, 0.7, []string{"snack"}, []string{"peanuts"}),
	}
}

func baseRequest(days int) Request {
	return Request{
		StartDate: time.Date(2024, time.September, 2, 9, 30, 0, 0, time.UTC),
		Days:      days,
		Target:    nutrition.Recommend(10, nutrition.Female, nutrition.Moderate),
	}
}

func TestPlan_SevenDaysFallbackOnly(t *testing.T) {
	opt := NewOptimizer(DefaultConfig(), nil, nil)
	plan, err := opt.Plan(context.Background(), testCatalog(), baseRequest(7))
	require.NoError(t, err)

	require.Len(t, plan.Days, 7)
	for i, d := range plan.Days {
		assert.Equal(t, time.Date(2024, time.September, 2+i, 0, 0, 0, 0, time.UTC), d.Date)
		assert.GreaterOrEqual(t, d.Cost, 0.0)
		assert.GreaterOrEqual(t, d.HealthScore, 0.0)
		assert.LessOrEqual(t, d.HealthScore, 100.0)
		assert.Empty(t, d.Gaps)
		assert.Len(t, d.Slots, 4)
		for _, slot := range d.Slots {
			assert.Equal(t, SourceFallback, slot.Source)
			assert.NotEmpty(t, slot.Items)
		}
	}
	assert.Equal(t, 28, plan.Summary.FallbackSlots)
	assert.NotEmpty(t, plan.Insights)
}

func TestPlan_FallbackIsDeterministic(t *testing.T) {
	opt := NewOptimizer(DefaultConfig(), nil, nil)
	a, err := opt.Plan(context.Background(), testCatalog(), baseRequest(3))
	require.NoError(t, err)
	b, err := opt.Plan(context.Background(), testCatalog(), baseRequest(3))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	breakfast := a.Days[0].Slots[nutrition.Breakfast]
	require.Len(t, breakfast.Items, 3)
	assert.Equal(t, []string{"oat", "egg", "milk"}, ids(breakfast.Items))
	// 25% of 2000 kcal spread over 650 kcal of items
	assert.InDelta(t, 500.0/650.0, breakfast.Items[0].Portion, 1e-9)
	assert.InDelta(t, 500, breakfast.Nutrients.Calories, 1e-6)
	assert.Equal(t, 7.0, breakfast.Items[0].HealthScore)
	assert.Equal(t, 0.7, breakfast.Items[0].AppealFactor)
}

func TestPlan_RecommenderFailureFallsBack(t *testing.T) {
	rec := new(mockRecommender)
	rec.On("Suggest", mock.Anything, mock.Anything).Return(nil, errors.New("upstream unavailable"))

	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), baseRequest(2))
	require.NoError(t, err)

	for _, d := range plan.Days {
		require.Len(t, d.Slots, 4)
		for _, slot := range d.Slots {
			assert.Equal(t, SourceFallback, slot.Source)
			assert.NotEmpty(t, slot.Items)
		}
	}
	rec.AssertNumberOfCalls(t, "Suggest", 8)
}

func TestPlan_RecommenderPanicFallsBack(t *testing.T) {
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) {
		panic("boom")
	})
	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), baseRequest(1))
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, plan.Days[0].Slots[nutrition.Lunch].Source)
}

func TestPlan_RecommenderTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecommenderTimeout = 20 * time.Millisecond
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) {
		time.Sleep(300 * time.Millisecond)
		return []MealPlanItem{{ItemID: "milk", PortionSize: 1}}, nil
	})

	started := time.Now()
	plan, err := NewOptimizer(cfg, rec, nil).Plan(context.Background(), testCatalog(), baseRequest(1))
	require.NoError(t, err)
	assert.Less(t, time.Since(started), 250*time.Millisecond)
	for _, slot := range plan.Days[0].Slots {
		assert.Equal(t, SourceFallback, slot.Source)
	}
}

func TestPlan_SanitizesRecommenderOutput(t *testing.T) {
	rec := new(mockRecommender)
	rec.On("Suggest", mock.Anything, mock.Anything).Return([]MealPlanItem{
		{ItemID: "ghost", PortionSize: 1},
		{ItemID: "milk", PortionSize: 10, HealthScore: 50, AppealFactor: -1},
		{ItemID: "milk", PortionSize: 1},
	}, nil)

	cfg := DefaultConfig()
	cfg.MinItemsPerMeal = 1
	plan, err := NewOptimizer(cfg, rec, nil).Plan(context.Background(), testCatalog(), baseRequest(1))
	require.NoError(t, err)

	for _, slot := range plan.Days[0].Slots {
		assert.Equal(t, SourceRecommender, slot.Source)
		require.Len(t, slot.Items, 1)
		got := slot.Items[0]
		assert.Equal(t, "milk", got.Item.ID)
		assert.Equal(t, 3.0, got.Portion)
		assert.Equal(t, 10.0, got.HealthScore)
		assert.Equal(t, 0.0, got.AppealFactor)
		assert.InDelta(t, 450, slot.Nutrients.Calories, 1e-9)
		assert.InDelta(t, 1.5, slot.Cost, 1e-9)
	}
}

func TestPlan_CapsRecommenderItems(t *testing.T) {
	var all []MealPlanItem
	for _, it := range testCatalog() {
		all = append(all, MealPlanItem{ItemID: it.ID, PortionSize: 1, HealthScore: 8, AppealFactor: 0.9})
	}
	cfg := DefaultConfig()
	cfg.MaxItemsPerMeal = 3
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) { return all, nil })

	req := baseRequest(1)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}
	plan, err := NewOptimizer(cfg, rec, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)
	assert.Len(t, plan.Days[0].Slots[nutrition.Lunch].Items, 3)
}

func TestPlan_FiltersBeforeRecommender(t *testing.T) {
	rec := new(mockRecommender)
	rec.On("Suggest", mock.Anything, mock.MatchedBy(func(req SuggestRequest) bool {
		for _, c := range req.Candidates {
			if c.ID == "chicken" || c.ID == "egg" || c.ID == "pb" {
				return false
			}
		}
		return true
	})).Return([]MealPlanItem{{ItemID: "chicken", PortionSize: 1}, {ItemID: "egg", PortionSize: 1}}, nil)

	req := baseRequest(2)
	req.Allergies = []string{"Peanuts", "egg"}
	req.DietaryRestrictions = []string{"vegetarian"}

	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)

	for _, d := range plan.Days {
		for _, slot := range d.Slots {
			// suggested ids were all filtered out, so fallback fills the slot
			assert.Equal(t, SourceFallback, slot.Source)
			for _, s := range slot.Items {
				assert.NotContains(t, []string{"chicken", "egg", "pb"}, s.Item.ID)
			}
		}
		assert.InDelta(t, 15, d.Adherence.Components.Allergen, 1e-9)
	}
	rec.AssertExpectations(t)
}

func TestPlan_GapWhenNothingEligible(t *testing.T) {
	catalog := []nutrition.FoodItem{
		item("yogurt", "dairy", 120, 0.8, []string{"snack"}, []string{"dairy"}),
		item("pb", "snack", 200, 0.7, []string{"snack"}, []string{"peanuts"}),
		item("oat", "grains", 300, 1.0, []string{"breakfast"}, nil),
	}
	req := baseRequest(2)
	req.MealTypes = []nutrition.MealType{nutrition.Breakfast, nutrition.Snack}
	req.Allergies = []string{"peanuts"}
	req.DietaryRestrictions = []string{"dairy-free"}

	plan, err := NewOptimizer(DefaultConfig(), nil, nil).Plan(context.Background(), catalog, req)
	require.NoError(t, err)
	require.Len(t, plan.Days, 2)
	for _, d := range plan.Days {
		require.Len(t, d.Gaps, 1)
		assert.Equal(t, nutrition.Snack, d.Gaps[0].MealType)
		assert.Equal(t, GapNoEligibleItems, d.Gaps[0].Reason)
		assert.Contains(t, d.Slots, nutrition.Breakfast)
		assert.NotContains(t, d.Slots, nutrition.Snack)
		assert.GreaterOrEqual(t, d.HealthScore, 0.0)
		assert.LessOrEqual(t, d.HealthScore, 100.0)
	}
	assert.Equal(t, 2, plan.Summary.GapCount)
}

func TestPlan_BudgetCeiling(t *testing.T) {
	req := baseRequest(3)
	req.BudgetPerDay = 0.3

	plan, err := NewOptimizer(DefaultConfig(), nil, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)
	for _, d := range plan.Days {
		assert.LessOrEqual(t, d.Cost, req.BudgetPerDay+1e-9)
		assert.NotEmpty(t, d.Gaps)
	}
}

func TestPlan_BudgetTrimsTrailingItems(t *testing.T) {
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) {
		return []MealPlanItem{
			{ItemID: "beans", PortionSize: 1},
			{ItemID: "salad", PortionSize: 1},
			{ItemID: "chicken", PortionSize: 1},
		}, nil
	})
	req := baseRequest(1)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}
	req.BudgetPerDay = 4

	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)
	lunch := plan.Days[0].Slots[nutrition.Lunch]
	assert.Equal(t, []string{"beans", "salad"}, ids(lunch.Items))
	assert.InDelta(t, 3.5, lunch.Cost, 1e-9)
}

func TestPlan_TopsUpShortRecommendation(t *testing.T) {
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) {
		return []MealPlanItem{{ItemID: "beans", PortionSize: 1}}, nil
	})
	req := baseRequest(1)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}

	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)
	lunch := plan.Days[0].Slots[nutrition.Lunch]
	require.NotNil(t, lunch)
	assert.Equal(t, SourceRecommender, lunch.Source)
	assert.Equal(t, []string{"beans", "milk", "chicken"}, ids(lunch.Items))
	assert.Equal(t, 1.0, lunch.Items[0].Portion)
	// 35% of 2000 kcal; the filler covers the 250 kcal beans leave open
	assert.InDelta(t, 250.0/650.0, lunch.Items[1].Portion, 1e-9)
	assert.InDelta(t, 700, lunch.Nutrients.Calories, 1e-6)
}

func TestPlan_TopUpUsesMinimalPortionsWhenTargetMet(t *testing.T) {
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) {
		return []MealPlanItem{{ItemID: "chicken", PortionSize: 2}}, nil
	})
	req := baseRequest(1)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}

	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)
	lunch := plan.Days[0].Slots[nutrition.Lunch]
	assert.Equal(t, []string{"chicken", "milk", "beans"}, ids(lunch.Items))
	assert.Equal(t, 2.0, lunch.Items[0].Portion)
	assert.Equal(t, 0.1, lunch.Items[1].Portion)
	assert.Equal(t, 0.1, lunch.Items[2].Portion)
}

func TestPlan_OverBudgetRecommendationFallsBack(t *testing.T) {
	rec := recommenderFunc(func(context.Context, SuggestRequest) ([]MealPlanItem, error) {
		return []MealPlanItem{{ItemID: "chicken", PortionSize: 3}}, nil
	})
	req := baseRequest(1)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}
	req.BudgetPerDay = 2

	plan, err := NewOptimizer(DefaultConfig(), rec, nil).Plan(context.Background(), testCatalog(), req)
	require.NoError(t, err)
	day := plan.Days[0]
	assert.Empty(t, day.Gaps)
	lunch := day.Slots[nutrition.Lunch]
	require.NotNil(t, lunch)
	assert.Equal(t, SourceFallback, lunch.Source)
	assert.Equal(t, []string{"milk"}, ids(lunch.Items))
	assert.LessOrEqual(t, lunch.Cost, 2.0)
}

func TestPlan_ChecksAvailabilityPerDay(t *testing.T) {
	start := baseRequest(1).StartDate
	soupUntil := start.AddDate(0, 0, 1)
	pastaFrom := start.AddDate(0, 0, 3)

	soup := item("soup", "soup", 200, 1, []string{"lunch"}, nil)
	soup.AvailableUntil = &soupUntil
	pasta := item("pasta", "grains", 400, 1, []string{"lunch"}, nil)
	pasta.AvailableFrom = &pastaFrom
	catalog := []nutrition.FoodItem{soup, pasta, item("bread", "grains", 150, 1, []string{"lunch"}, nil)}

	req := baseRequest(7)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}
	plan, err := NewOptimizer(DefaultConfig(), nil, nil).Plan(context.Background(), catalog, req)
	require.NoError(t, err)
	require.Len(t, plan.Days, 7)

	want := [][]string{
		{"soup", "bread"},
		{"soup", "bread"},
		{"bread"},
		{"pasta", "bread"},
		{"pasta", "bread"},
		{"pasta", "bread"},
		{"pasta", "bread"},
	}
	for i, d := range plan.Days {
		assert.Equal(t, want[i], ids(d.Slots[nutrition.Lunch].Items), "day %d", i+1)
	}
}

func TestPlan_GapWhenNothingAvailableThatDay(t *testing.T) {
	until := baseRequest(1).StartDate
	soup := item("soup", "soup", 200, 1, []string{"lunch"}, nil)
	soup.AvailableUntil = &until

	req := baseRequest(2)
	req.MealTypes = []nutrition.MealType{nutrition.Lunch}
	plan, err := NewOptimizer(DefaultConfig(), nil, nil).Plan(context.Background(), []nutrition.FoodItem{soup}, req)
	require.NoError(t, err)
	assert.Empty(t, plan.Days[0].Gaps)
	require.Len(t, plan.Days[1].Gaps, 1)
	assert.Equal(t, GapNoEligibleItems, plan.Days[1].Gaps[0].Reason)
}

func TestPlan_SummaryGoalAchievement(t *testing.T) {
	plan, err := NewOptimizer(DefaultConfig(), nil, nil).Plan(context.Background(), testCatalog(), baseRequest(1))
	require.NoError(t, err)

	day := plan.Days[0]
	want := round1(day.Nutrients.Calories / plan.Target.Calories * 100)
	assert.Equal(t, want, plan.Summary.GoalAchievement[nutrition.Calories])
	assert.Equal(t, day.HealthScore, plan.Summary.AvgHealthScore)
	assert.InDelta(t, day.Cost, plan.Summary.TotalCost, 0.01)
}

func TestPlan_InvalidInput(t *testing.T) {
	opt := NewOptimizer(DefaultConfig(), nil, nil)
	ctx := context.Background()

	_, err := opt.Plan(ctx, testCatalog(), baseRequest(0))
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	_, err = opt.Plan(ctx, nil, baseRequest(7))
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	req := baseRequest(1)
	req.MealTypes = []nutrition.MealType{"brunch"}
	_, err = opt.Plan(ctx, testCatalog(), req)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	req = baseRequest(1)
	req.Target.Fiber = 0
	_, err = opt.Plan(ctx, testCatalog(), req)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	bad := testCatalog()
	bad[0].Nutrients.Calories = -1
	_, err = opt.Plan(ctx, bad, baseRequest(1))
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)
}

func TestPlan_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewOptimizer(DefaultConfig(), nil, nil).Plan(ctx, testCatalog(), baseRequest(3))
	assert.ErrorIs(t, err, context.Canceled)
}

func ids(items []SelectedItem) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = s.Item.ID
	}
	return out
}
