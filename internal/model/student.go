package model

import (
	"time"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// Student holds the demographics and latest health measurements of one student.
// ID is the school's own identifier.
type Student struct {
	ID        string    `gorm:"size:64;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SchoolID string `gorm:"size:64;not null;index" json:"school_id"`
	Age      int    `gorm:"not null" json:"age"`
	Gender   string `gorm:"size:16;not null" json:"gender"`
	Grade    string `gorm:"size:16" json:"grade"`

	HeightCM float64 `gorm:"type:float" json:"height_cm"`
	WeightKG float64 `gorm:"type:float" json:"weight_kg"`
	BMI      float64 `gorm:"type:float" json:"bmi"`
}

func (Student) TableName() string { return "students" }

func (s Student) Demographics() nutrition.Demographics {
	return nutrition.Demographics{Age: s.Age, Gender: nutrition.Gender(s.Gender), Grade: s.Grade}
}

// Health returns nil when no BMI has been recorded.
func (s Student) Health() *nutrition.HealthMetrics {
	if s.BMI <= 0 {
		return nil
	}
	return &nutrition.HealthMetrics{BMI: s.BMI, HeightCM: s.HeightCM, WeightKG: s.WeightKG}
}
