package service

import (
	"context"
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/analytics"
	"github.com/pageza/nutrition-engine/backend/internal/model"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

// INutritionService defines the engine operations exposed over HTTP
type INutritionService interface {
	RecommendIntake(ctx context.Context, profile types.StudentProfile) (*nutrition.RecommendedIntake, error)
	ScoreAdherence(ctx context.Context, req *types.AdherenceRequest) (*nutrition.AdherenceReport, error)
	AnalyzeTrends(ctx context.Context, query types.TrendQuery) (*analytics.TrendReport, error)
	GenerateWeeklyPlan(ctx context.Context, req *types.PlanRequest) (*types.PlanResponse, error)
}

// ICatalogService defines the interface for food catalog operations
type ICatalogService interface {
	CreateItem(ctx context.Context, req *types.CatalogItemRequest) (*model.FoodItem, error)
	GetItem(ctx context.Context, id string) (*model.FoodItem, error)
	ListAvailableItems(ctx context.Context, schoolID string, from, to time.Time) ([]nutrition.FoodItem, error)
	SearchItems(ctx context.Context, schoolID, query string, limit int) ([]model.FoodItem, error)
}

// IRecordService defines the interface for meal record operations
type IRecordService interface {
	RecordMeals(ctx context.Context, req *types.RecordMealsRequest) (int, error)
	ListDataPoints(ctx context.Context, query types.TrendQuery) ([]nutrition.DataPoint, error)
}

// ITokenService issues and validates API tokens
type ITokenService interface {
	GenerateToken(claims *types.TokenClaims) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// ReportCache stores serialized trend reports. Get returns ErrCacheMiss when absent.
// Keys embed the school's generation; Invalidate advances it after new records land.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Generation(ctx context.Context, schoolID string) (int64, error)
	Invalidate(ctx context.Context, schoolID string) error
}

// PlanExporter uploads a plan and returns a link to it.
type PlanExporter interface {
	Export(ctx context.Context, plan *planner.WeeklyPlan) (string, error)
}
