// Package mocks holds testify mocks for the service interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/nutrition-engine/backend/internal/analytics"
	"github.com/pageza/nutrition-engine/backend/internal/model"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

// MockNutritionService mocks service.INutritionService.
type MockNutritionService struct {
	mock.Mock
}

func (m *MockNutritionService) RecommendIntake(ctx context.Context, profile types.StudentProfile) (*nutrition.RecommendedIntake, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nutrition.RecommendedIntake), args.Error(1)
}

func (m *MockNutritionService) ScoreAdherence(ctx context.Context, req *types.AdherenceRequest) (*nutrition.AdherenceReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nutrition.AdherenceReport), args.Error(1)
}

func (m *MockNutritionService) AnalyzeTrends(ctx context.Context, q types.TrendQuery) (*analytics.TrendReport, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.TrendReport), args.Error(1)
}

func (m *MockNutritionService) GenerateWeeklyPlan(ctx context.Context, req *types.PlanRequest) (*types.PlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PlanResponse), args.Error(1)
}

// MockCatalogService mocks service.ICatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) CreateItem(ctx context.Context, req *types.CatalogItemRequest) (*model.FoodItem, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FoodItem), args.Error(1)
}

func (m *MockCatalogService) GetItem(ctx context.Context, id string) (*model.FoodItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FoodItem), args.Error(1)
}

func (m *MockCatalogService) ListAvailableItems(ctx context.Context, schoolID string, from, to time.Time) ([]nutrition.FoodItem, error) {
	args := m.Called(ctx, schoolID, from, to)
	items, _ := args.Get(0).([]nutrition.FoodItem)
	return items, args.Error(1)
}

func (m *MockCatalogService) SearchItems(ctx context.Context, schoolID, query string, limit int) ([]model.FoodItem, error) {
	args := m.Called(ctx, schoolID, query, limit)
	items, _ := args.Get(0).([]model.FoodItem)
	return items, args.Error(1)
}

// MockRecordService mocks service.IRecordService.
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) RecordMeals(ctx context.Context, req *types.RecordMealsRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordService) ListDataPoints(ctx context.Context, q types.TrendQuery) ([]nutrition.DataPoint, error) {
	args := m.Called(ctx, q)
	points, _ := args.Get(0).([]nutrition.DataPoint)
	return points, args.Error(1)
}

// MockPlanExporter mocks service.PlanExporter.
type MockPlanExporter struct {
	mock.Mock
}

func (m *MockPlanExporter) Export(ctx context.Context, plan *planner.WeeklyPlan) (string, error) {
	args := m.Called(ctx, plan)
	return args.String(0), args.Error(1)
}

// MockTokenValidator mocks middleware.TokenValidator.
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}
