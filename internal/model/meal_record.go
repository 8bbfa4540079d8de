package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// MealRecord is one meal served to one student.
type MealRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	SchoolID   string     `gorm:"size:64;not null;index:idx_meal_records_school_served" json:"school_id"`
	StudentID  string     `gorm:"size:64;not null;index" json:"student_id"`
	ServedAt   time.Time  `gorm:"not null;index:idx_meal_records_school_served" json:"served_at"`
	MealType   string     `gorm:"size:16;not null" json:"meal_type"`
	FoodItemID *uuid.UUID `gorm:"type:uuid" json:"food_item_id,omitempty"`

	Calories float64       `gorm:"type:float" json:"calories"`
	Protein  float64       `gorm:"type:float" json:"protein"`
	Carbs    float64       `gorm:"type:float" json:"carbs"`
	Fat      float64       `gorm:"type:float" json:"fat"`
	Fiber    float64       `gorm:"type:float" json:"fiber"`
	Sodium   float64       `gorm:"type:float" json:"sodium"`
	Sugar    float64       `gorm:"type:float" json:"sugar"`
	Vitamins JSONBFloatMap `gorm:"type:jsonb;not null;default:'{}'" json:"vitamins"`
	Minerals JSONBFloatMap `gorm:"type:jsonb;not null;default:'{}'" json:"minerals"`

	ConsumptionPercentage float64          `gorm:"type:float;not null;default:100" json:"consumption_percentage"`
	FoodLabels            JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"food_labels"`

	Student Student `gorm:"foreignKey:StudentID" json:"-"`
}

func (MealRecord) TableName() string { return "meal_records" }

func (m *MealRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ToDomain converts the record, with its preloaded student, to an analytics data point.
func (m MealRecord) ToDomain() nutrition.DataPoint {
	return nutrition.DataPoint{
		Date:      m.ServedAt.UTC(),
		StudentID: m.StudentID,
		MealType:  nutrition.MealType(m.MealType),
		Nutrients: nutrition.NutrientVector{
			Calories: m.Calories,
			Protein:  m.Protein,
			Carbs:    m.Carbs,
			Fat:      m.Fat,
			Fiber:    m.Fiber,
			Sodium:   m.Sodium,
			Sugar:    m.Sugar,
			Vitamins: m.Vitamins,
			Minerals: m.Minerals,
		},
		ConsumptionPercentage: m.ConsumptionPercentage,
		FoodLabels:            m.FoodLabels,
		Demographics:          m.Student.Demographics(),
		Health:                m.Student.Health(),
	}
}
