package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/testhelpers"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

func catalogItem(school, name, category string, kcal float64, tags ...string) *types.CatalogItemRequest {
	return &types.CatalogItemRequest{
		SchoolID:  school,
		Name:      name,
		Category:  category,
		Nutrients: nutrition.NutrientVector{Calories: kcal, Protein: kcal / 40},
		Cost:      1,
		Tags:      tags,
	}
}

func TestCatalogService_CreateAndGet(t *testing.T) {
	svc := NewCatalogService(testhelpers.SetupSQLite(t))
	ctx := context.Background()

	created, err := svc.CreateItem(ctx, catalogItem("school-1", " Apple ", "Fruit", 95, "snack"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Apple", created.Name)
	assert.Equal(t, "fruit", created.Category)

	got, err := svc.GetItem(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 95.0, got.Calories)
	assert.Equal(t, []string{"snack"}, []string(got.Tags))

	_, err = svc.GetItem(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetItem(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_CreateItemValidation(t *testing.T) {
	svc := NewCatalogService(testhelpers.SetupSQLite(t))
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, catalogItem("school-1", "", "fruit", 95))
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	neg := catalogItem("school-1", "Apple", "fruit", -1)
	_, err = svc.CreateItem(ctx, neg)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	costly := catalogItem("school-1", "Apple", "fruit", 95)
	costly.Cost = -2
	_, err = svc.CreateItem(ctx, costly)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)

	from := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(0, 0, -1)
	window := catalogItem("school-1", "Apple", "fruit", 95)
	window.AvailableFrom, window.AvailableUntil = &from, &until
	_, err = svc.CreateItem(ctx, window)
	assert.ErrorIs(t, err, nutrition.ErrInvalidInput)
}

func TestCatalogService_ListAvailableItems(t *testing.T) {
	svc := NewCatalogService(testhelpers.SetupSQLite(t))
	ctx := context.Background()

	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateItem(ctx, catalogItem("school-1", "Oatmeal", "grains", 150, "breakfast"))
	require.NoError(t, err)
	seasonal := catalogItem("school-1", "Strawberries", "fruit", 50)
	seasonal.AvailableFrom = &april
	_, err = svc.CreateItem(ctx, seasonal)
	require.NoError(t, err)
	expired := catalogItem("school-1", "Pumpkin soup", "soup", 120)
	until := march.AddDate(0, 0, -1)
	expired.AvailableUntil = &until
	_, err = svc.CreateItem(ctx, expired)
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, catalogItem("school-2", "Rice", "grains", 200))
	require.NoError(t, err)

	items, err := svc.ListAvailableItems(ctx, "school-1", march, march.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Oatmeal", items[0].Name)
	assert.Equal(t, []string{"breakfast"}, items[0].Tags)

	items, err = svc.ListAvailableItems(ctx, "school-1", march, april.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Oatmeal", items[0].Name)
	assert.Equal(t, "Strawberries", items[1].Name)
	require.NotNil(t, items[1].AvailableFrom)
	assert.True(t, april.Equal(*items[1].AvailableFrom))
	assert.Nil(t, items[1].AvailableUntil)

	items, err = svc.ListAvailableItems(ctx, "school-1", april.AddDate(0, 0, -7), april)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Oatmeal", items[0].Name)
}

func TestCatalogService_SearchItemsKeyword(t *testing.T) {
	svc := NewCatalogService(testhelpers.SetupSQLite(t))
	ctx := context.Background()

	for _, req := range []*types.CatalogItemRequest{
		catalogItem("school-1", "Whole wheat bread", "grains", 80),
		catalogItem("school-1", "Brown rice", "grains", 200),
		catalogItem("school-1", "Apple", "fruit", 95, "crunchy"),
		catalogItem("school-2", "Rye bread", "grains", 80),
	} {
		_, err := svc.CreateItem(ctx, req)
		require.NoError(t, err)
	}

	items, err := svc.SearchItems(ctx, "school-1", "GRAINS", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Brown rice", items[0].Name)

	items, err = svc.SearchItems(ctx, "school-1", "crunchy", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].Name)

	items, err = svc.SearchItems(ctx, "school-1", "", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCatalogService_SearchItemsSemantic(t *testing.T) {
	svc := NewCatalogService(testhelpers.SetupTestDatabase(t))
	ctx := context.Background()

	for _, req := range []*types.CatalogItemRequest{
		catalogItem("school-1", "Whole wheat bread", "grains", 80),
		catalogItem("school-1", "Apple slices", "fruit", 95),
		catalogItem("school-1", "Chicken wrap", "poultry", 350),
	} {
		_, err := svc.CreateItem(ctx, req)
		require.NoError(t, err)
	}

	items, err := svc.SearchItems(ctx, "school-1", "apple fruit", 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Apple slices", items[0].Name)
}

func TestNutritionService_PlanHonorsItemAvailability(t *testing.T) {
	catalog := NewCatalogService(testhelpers.SetupSQLite(t))
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	soup := catalogItem("school-1", "Seasonal soup", "soup", 200, "lunch")
	soupUntil := start.AddDate(0, 0, 1)
	soup.AvailableUntil = &soupUntil
	pasta := catalogItem("school-1", "Next week pasta", "grains", 400, "lunch")
	pastaFrom := start.AddDate(0, 0, 7)
	pasta.AvailableFrom = &pastaFrom
	for _, req := range []*types.CatalogItemRequest{soup, pasta, catalogItem("school-1", "Bread", "grains", 150, "lunch")} {
		_, err := catalog.CreateItem(ctx, req)
		require.NoError(t, err)
	}

	svc := NewNutritionService(NutritionServiceDeps{Catalog: catalog})
	req := planRequest()
	req.Days = 7
	req.MealTypes = []string{"lunch"}
	resp, err := svc.GenerateWeeklyPlan(ctx, req)
	require.NoError(t, err)
	require.Len(t, resp.Plan.Days, 7)

	names := func(day int) []string {
		slot := resp.Plan.Days[day].Slots[nutrition.Lunch]
		require.NotNil(t, slot)
		var out []string
		for _, s := range slot.Items {
			out = append(out, s.Item.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Seasonal soup", "Bread"}, names(0))
	assert.Equal(t, []string{"Seasonal soup", "Bread"}, names(1))
	for d := 2; d < 7; d++ {
		assert.Equal(t, []string{"Bread"}, names(d), "day %d", d+1)
	}
}
