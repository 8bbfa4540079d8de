package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/nutrition-engine/backend/internal/logger"
	"github.com/pageza/nutrition-engine/backend/internal/model"
	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
	"github.com/pageza/nutrition-engine/backend/internal/types"
)

// RecordService stores students and the meals served to them.
type RecordService struct {
	db    *gorm.DB
	cache ReportCache
	log   *logger.Logger
}

func NewRecordService(db *gorm.DB) *RecordService {
	return &RecordService{db: db, log: logger.Nop()}
}

// WithReportCache makes successful writes invalidate the school's cached trend reports.
func (s *RecordService) WithReportCache(cache ReportCache, log *logger.Logger) *RecordService {
	s.cache = cache
	if log != nil {
		s.log = log
	}
	return s
}

// RecordMeals upserts the students in req and inserts its meals in one
// transaction. Every meal must reference a known or included student.
func (s *RecordService) RecordMeals(ctx context.Context, req *types.RecordMealsRequest) (int, error) {
	if strings.TrimSpace(req.SchoolID) == "" {
		return 0, fmt.Errorf("%w: school_id is required", nutrition.ErrInvalidInput)
	}

	students := make([]model.Student, 0, len(req.Students))
	known := make(map[string]bool, len(req.Students))
	for _, in := range req.Students {
		st, err := studentFromInput(req.SchoolID, in)
		if err != nil {
			return 0, err
		}
		students = append(students, st)
		known[st.ID] = true
	}

	records := make([]model.MealRecord, 0, len(req.Meals))
	var missing []string
	for i, in := range req.Meals {
		rec, err := mealFromInput(req.SchoolID, in)
		if err != nil {
			return 0, fmt.Errorf("meal %d: %w", i, err)
		}
		if !known[rec.StudentID] {
			missing = append(missing, rec.StudentID)
			known[rec.StudentID] = true
		}
		records = append(records, rec)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(missing) > 0 {
			var count int64
			if err := tx.Model(&model.Student{}).
				Where("school_id = ? AND id IN ?", req.SchoolID, missing).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check students: %w", err)
			}
			if int(count) != len(missing) {
				return fmt.Errorf("%w: meals reference unregistered students", ErrNotFound)
			}
		}
		if len(students) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&students).Error; err != nil {
				return fmt.Errorf("failed to save students: %w", err)
			}
		}
		if len(records) > 0 {
			if err := tx.Omit(clause.Associations).Create(&records).Error; err != nil {
				return fmt.Errorf("failed to save meal records: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if s.cache != nil && (len(records) > 0 || len(students) > 0) {
		if err := s.cache.Invalidate(ctx, req.SchoolID); err != nil {
			s.log.Error("failed to invalidate trend reports", "school_id", req.SchoolID, "error", err)
		}
	}
	return len(records), nil
}

// ListDataPoints returns the school's meals served in [From, To), oldest first.
func (s *RecordService) ListDataPoints(ctx context.Context, q types.TrendQuery) ([]nutrition.DataPoint, error) {
	if q.SchoolID == "" || q.From.IsZero() || q.To.IsZero() || !q.From.Before(q.To) {
		return nil, fmt.Errorf("%w: school_id and a non-empty date range are required", nutrition.ErrInvalidInput)
	}

	db := s.db.WithContext(ctx).
		Preload("Student").
		Where("school_id = ? AND served_at >= ? AND served_at < ?", q.SchoolID, q.From.UTC(), q.To.UTC())
	if len(q.StudentIDs) > 0 {
		db = db.Where("student_id IN ?", q.StudentIDs)
	}

	var rows []model.MealRecord
	if err := db.Order("served_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list meal records: %w", err)
	}

	points := make([]nutrition.DataPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, r.ToDomain())
	}
	return points, nil
}

func studentFromInput(schoolID string, in types.StudentInput) (model.Student, error) {
	gender, err := nutrition.ParseGender(in.Gender)
	if err != nil {
		return model.Student{}, err
	}
	if in.Age <= 0 || in.HeightCM < 0 || in.WeightKG < 0 {
		return model.Student{}, fmt.Errorf("%w: student %s has invalid measurements", nutrition.ErrInvalidInput, in.ID)
	}
	return model.Student{
		ID:       in.ID,
		SchoolID: schoolID,
		Age:      in.Age,
		Gender:   string(gender),
		Grade:    in.Grade,
		HeightCM: in.HeightCM,
		WeightKG: in.WeightKG,
		BMI:      bmi(in.HeightCM, in.WeightKG),
	}, nil
}

func mealFromInput(schoolID string, in types.MealRecordInput) (model.MealRecord, error) {
	if strings.TrimSpace(in.StudentID) == "" {
		return model.MealRecord{}, fmt.Errorf("%w: student_id is required", nutrition.ErrInvalidInput)
	}
	if in.ServedAt.IsZero() {
		return model.MealRecord{}, fmt.Errorf("%w: served_at is required", nutrition.ErrInvalidInput)
	}
	mt, err := nutrition.ParseMealType(in.MealType)
	if err != nil {
		return model.MealRecord{}, err
	}
	if err := in.Nutrients.Validate(); err != nil {
		return model.MealRecord{}, err
	}
	consumed := 100.0
	if in.ConsumptionPercentage != nil {
		consumed = *in.ConsumptionPercentage
	}
	if consumed < 0 || consumed > 100 || math.IsNaN(consumed) {
		return model.MealRecord{}, fmt.Errorf("%w: consumption_percentage must be within [0, 100]", nutrition.ErrInvalidInput)
	}

	rec := model.MealRecord{
		SchoolID:              schoolID,
		StudentID:             in.StudentID,
		ServedAt:              in.ServedAt.UTC(),
		MealType:              string(mt),
		Calories:              in.Nutrients.Calories,
		Protein:               in.Nutrients.Protein,
		Carbs:                 in.Nutrients.Carbs,
		Fat:                   in.Nutrients.Fat,
		Fiber:                 in.Nutrients.Fiber,
		Sodium:                in.Nutrients.Sodium,
		Sugar:                 in.Nutrients.Sugar,
		Vitamins:              in.Nutrients.Vitamins,
		Minerals:              in.Nutrients.Minerals,
		ConsumptionPercentage: consumed,
		FoodLabels:            in.FoodLabels,
	}
	if in.FoodItemID != "" {
		id, err := uuid.Parse(in.FoodItemID)
		if err != nil {
			return model.MealRecord{}, fmt.Errorf("%w: food_item_id %q", nutrition.ErrInvalidInput, in.FoodItemID)
		}
		rec.FoodItemID = &id
	}
	return rec, nil
}

// bmi is weight / height² rounded to one decimal; zero when either is unknown.
func bmi(heightCM, weightKG float64) float64 {
	if heightCM <= 0 || weightKG <= 0 {
		return 0
	}
	m := heightCM / 100
	return math.Round(weightKG/(m*m)*10) / 10
}
