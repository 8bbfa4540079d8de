package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pageza/nutrition-engine/backend/internal/analytics"
	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/observability"
	"github.com/pageza/nutrition-engine/backend/internal/planner"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

const defaultPlanDays = 7

// ErrExportUnavailable is returned when a plan export is requested but no bucket is configured.
var ErrExportUnavailable = errors.New("plan export is not configured")

// NutritionServiceDeps wires a NutritionService. Cache and Exporter are optional.
type NutritionServiceDeps struct {
	Catalog   ICatalogService
	Records   IRecordService
	Composer  *analytics.Composer
	Optimizer *planner.Optimizer
	Scorer    nutrition.Scorer
	Cache     ReportCache
	Exporter  PlanExporter
	Log       *logger.Logger
}

// NutritionService runs intake, adherence, trend and planning requests
// against stored catalogs and meal records.
type NutritionService struct {
	catalog   ICatalogService
	records   IRecordService
	composer  *analytics.Composer
	optimizer *planner.Optimizer
	scorer    nutrition.Scorer
	cache     ReportCache
	exporter  PlanExporter
	log       *logger.Logger
}

func NewNutritionService(deps NutritionServiceDeps) *NutritionService {
	if deps.Composer == nil {
		deps.Composer = analytics.NewComposer(nil)
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Optimizer == nil {
		deps.Optimizer = planner.NewOptimizer(planner.DefaultConfig(), nil, deps.Log)
	}
	if deps.Scorer == (nutrition.Scorer{}) {
		deps.Scorer = nutrition.DefaultScorer()
	}
	return &NutritionService{
		catalog:   deps.Catalog,
		records:   deps.Records,
		composer:  deps.Composer,
		optimizer: deps.Optimizer,
		scorer:    deps.Scorer,
		cache:     deps.Cache,
		exporter:  deps.Exporter,
		log:       deps.Log,
	}
}

// ResolveProfile validates a profile; an empty activity level means moderate.
func ResolveProfile(p types.StudentProfile) (nutrition.RecommendedIntake, error) {
	gender, err := nutrition.ParseGender(p.Gender)
	if err != nil {
		return nutrition.RecommendedIntake{}, err
	}
	level := nutrition.Moderate
	if strings.TrimSpace(p.ActivityLevel) != "" {
		if level, err = nutrition.ParseActivityLevel(p.ActivityLevel); err != nil {
			return nutrition.RecommendedIntake{}, err
		}
	}
	if err := nutrition.ValidateProfile(p.Age, gender, level); err != nil {
		return nutrition.RecommendedIntake{}, err
	}
	return nutrition.Recommend(p.Age, gender, level), nil
}

// ParseBMIStatus accepts the four status names; empty means normal.
func ParseBMIStatus(s string) (nutrition.BMIStatus, error) {
	status := nutrition.BMIStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case "":
		return nutrition.BMINormal, nil
	case nutrition.BMINormal, nutrition.BMIOverweight, nutrition.BMIUnderweight, nutrition.BMIObese:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown bmi status %q", nutrition.ErrInvalidInput, s)
}

func (s *NutritionService) RecommendIntake(ctx context.Context, profile types.StudentProfile) (*nutrition.RecommendedIntake, error) {
	_, span := startSpan(ctx, "NutritionService.RecommendIntake",
		attribute.Int("student.age", profile.Age))
	defer span.End()

	target, err := ResolveProfile(profile)
	if err != nil {
		return nil, recordErr(span, err)
	}
	return &target, nil
}

func (s *NutritionService) ScoreAdherence(ctx context.Context, req *types.AdherenceRequest) (*nutrition.AdherenceReport, error) {
	_, span := startSpan(ctx, "NutritionService.ScoreAdherence")
	defer span.End()

	target, err := ResolveProfile(req.Profile)
	if err != nil {
		return nil, recordErr(span, err)
	}
	status, err := ParseBMIStatus(req.BMIStatus)
	if err != nil {
		return nil, recordErr(span, err)
	}
	compliance := 100.0
	if req.AllergenCompliance != nil {
		compliance = *req.AllergenCompliance
	}
	if compliance < 0 || compliance > 100 || req.VarietyScore < 0 || req.VarietyScore > 10 {
		return nil, recordErr(span, fmt.Errorf("%w: variety_score must be within [0, 10] and allergen_compliance within [0, 100]", nutrition.ErrInvalidInput))
	}

	report, err := s.scorer.Score(req.Actual, target, nutrition.ScoreContext{
		VarietyScore:       req.VarietyScore,
		AllergenCompliance: compliance,
		BMIStatus:          status,
	})
	if err != nil {
		return nil, recordErr(span, err)
	}
	span.SetAttributes(attribute.Float64("adherence.health_score", report.HealthScore))
	return &report, nil
}

// AnalyzeTrends builds, or serves from cache, the trend report for a window.
func (s *NutritionService) AnalyzeTrends(ctx context.Context, q types.TrendQuery) (*analytics.TrendReport, error) {
	ctx, span := startSpan(ctx, "NutritionService.AnalyzeTrends",
		attribute.String("school.id", q.SchoolID),
		attribute.Int("students.filter", len(q.StudentIDs)))
	defer span.End()

	cache := s.cache
	var key string
	if cache != nil {
		gen, err := cache.Generation(ctx, q.SchoolID)
		if err != nil {
			s.log.Warn("trend report cache unavailable", "school_id", q.SchoolID, "error", err)
			cache = nil
		}
		key = TrendCacheKey(q, gen)
	}
	if cache != nil {
		data, err := cache.Get(ctx, key)
		switch {
		case err == nil:
			var report analytics.TrendReport
			if err := json.Unmarshal(data, &report); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return &report, nil
			}
			s.log.Warn("discarding unreadable cached report", "key", key)
		case errors.Is(err, ErrCacheMiss):
			s.log.Debug("trend report cache miss", "key", key)
		default:
			s.log.Warn("trend report cache unavailable", "key", key, "error", err)
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	points, err := s.records.ListDataPoints(ctx, q)
	if err != nil {
		return nil, recordErr(span, err)
	}
	report, err := s.composer.Compose(points)
	if err != nil {
		return nil, recordErr(span, err)
	}
	span.SetAttributes(attribute.Int("report.data_points", report.DataPoints))

	if cache != nil {
		if data, err := json.Marshal(report); err != nil {
			s.log.Warn("failed to encode trend report", "error", err)
		} else if err := cache.Set(ctx, key, data); err != nil {
			s.log.Warn("failed to cache trend report", "key", key, "error", err)
		}
	}
	return report, nil
}

// GenerateWeeklyPlan plans meals from the school's catalog available in the plan window.
func (s *NutritionService) GenerateWeeklyPlan(ctx context.Context, req *types.PlanRequest) (*types.PlanResponse, error) {
	ctx, span := startSpan(ctx, "NutritionService.GenerateWeeklyPlan",
		attribute.String("school.id", req.SchoolID),
		attribute.Int("plan.days", req.Days))
	defer span.End()

	preq, err := s.planRequest(req)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if req.Export && s.exporter == nil {
		return nil, recordErr(span, ErrExportUnavailable)
	}

	end := preq.StartDate.AddDate(0, 0, preq.Days)
	catalog, err := s.catalog.ListAvailableItems(ctx, req.SchoolID, preq.StartDate, end)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if len(catalog) == 0 {
		return nil, recordErr(span, fmt.Errorf("%w: school %s has no catalog items available for the plan window", ErrNotFound, req.SchoolID))
	}

	plan, err := s.optimizer.Plan(ctx, catalog, preq)
	if err != nil {
		return nil, recordErr(span, err)
	}
	plan.ID = uuid.NewString()
	span.SetAttributes(
		attribute.String("plan.id", plan.ID),
		attribute.Int("plan.gaps", plan.Summary.GapCount),
		attribute.Int("plan.fallback_slots", plan.Summary.FallbackSlots))
	s.log.Info("generated meal plan", "plan_id", plan.ID, "school_id", req.SchoolID,
		"days", len(plan.Days), "gaps", plan.Summary.GapCount, "fallback_slots", plan.Summary.FallbackSlots)

	resp := &types.PlanResponse{Plan: plan}
	if req.Export {
		url, err := s.exporter.Export(ctx, plan)
		if err != nil {
			s.log.Error("plan export failed", "plan_id", plan.ID, "error", err)
			resp.ExportError = "export failed; the plan was generated but not stored"
		} else {
			resp.ExportURL = url
		}
	}
	return resp, nil
}

func (s *NutritionService) planRequest(req *types.PlanRequest) (planner.Request, error) {
	start, err := time.Parse(types.DateLayout, req.StartDate)
	if err != nil {
		return planner.Request{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", nutrition.ErrInvalidInput)
	}
	target, err := ResolveProfile(req.Profile)
	if err != nil {
		return planner.Request{}, err
	}
	status, err := ParseBMIStatus(req.BMIStatus)
	if err != nil {
		return planner.Request{}, err
	}

	days := req.Days
	if days == 0 {
		days = defaultPlanDays
	}
	mealTypes := make([]nutrition.MealType, 0, len(req.MealTypes))
	for _, m := range req.MealTypes {
		mt, err := nutrition.ParseMealType(m)
		if err != nil {
			return planner.Request{}, err
		}
		mealTypes = append(mealTypes, mt)
	}
	if len(mealTypes) == 0 {
		mealTypes = append(mealTypes, nutrition.AllMealTypes...)
	}

	return planner.Request{
		StartDate:           start,
		Days:                days,
		MealTypes:           mealTypes,
		Target:              target,
		Allergies:           req.Allergies,
		DietaryRestrictions: req.DietaryRestrictions,
		BudgetPerDay:        req.BudgetPerDay,
		BMIStatus:           status,
		PreferenceHistory:   req.PreferenceHistory,
	}, nil
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
