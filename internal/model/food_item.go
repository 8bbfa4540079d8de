package model

import (
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

// EmbeddingDimensions is the width of FoodItem.Embedding.
const EmbeddingDimensions = 16

// FoodItem is a school catalog entry. Nutrients are per single portion.
type FoodItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SchoolID string `gorm:"size:64;not null;index" json:"school_id"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Category string `gorm:"size:50" json:"category"`

	Calories float64       `gorm:"type:float" json:"calories"`
	Protein  float64       `gorm:"type:float" json:"protein"`
	Carbs    float64       `gorm:"type:float" json:"carbs"`
	Fat      float64       `gorm:"type:float" json:"fat"`
	Fiber    float64       `gorm:"type:float" json:"fiber"`
	Sodium   float64       `gorm:"type:float" json:"sodium"`
	Sugar    float64       `gorm:"type:float" json:"sugar"`
	Vitamins JSONBFloatMap `gorm:"type:jsonb;not null;default:'{}'" json:"vitamins"`
	Minerals JSONBFloatMap `gorm:"type:jsonb;not null;default:'{}'" json:"minerals"`

	Cost      float64          `gorm:"type:float;not null;default:0" json:"cost"`
	Allergens JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergens"`
	Tags      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`

	// Availability window; nil bounds are open.
	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`

	Embedding pgvector.Vector `gorm:"type:vector(16)" json:"-"`
}

func (FoodItem) TableName() string { return "food_items" }

// BeforeCreate assigns an ID so sqlite and postgres behave the same.
func (f *FoodItem) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// ToDomain converts the row to the engine's catalog type.
func (f FoodItem) ToDomain() nutrition.FoodItem {
	return nutrition.FoodItem{
		ID:       f.ID.String(),
		Name:     f.Name,
		Category: f.Category,
		Nutrients: nutrition.NutrientVector{
			Calories: f.Calories,
			Protein:  f.Protein,
			Carbs:    f.Carbs,
			Fat:      f.Fat,
			Fiber:    f.Fiber,
			Sodium:   f.Sodium,
			Sugar:    f.Sugar,
			Vitamins: f.Vitamins,
			Minerals: f.Minerals,
		},
		Cost:           f.Cost,
		Allergens:      f.Allergens,
		Tags:           f.Tags,
		AvailableFrom:  f.AvailableFrom,
		AvailableUntil: f.AvailableUntil,
	}
}

// FoodItemFromDomain builds a row for schoolID. A non-uuid item ID is replaced on create.
func FoodItemFromDomain(schoolID string, item nutrition.FoodItem) FoodItem {
	id, _ := uuid.Parse(item.ID)
	n := item.Nutrients
	return FoodItem{
		ID:        id,
		SchoolID:  schoolID,
		Name:      item.Name,
		Category:  item.Category,
		Calories:  n.Calories,
		Protein:   n.Protein,
		Carbs:     n.Carbs,
		Fat:       n.Fat,
		Fiber:     n.Fiber,
		Sodium:    n.Sodium,
		Sugar:     n.Sugar,
		Vitamins:  n.Vitamins,
		Minerals:  n.Minerals,
		Cost:           item.Cost,
		Allergens:      item.Allergens,
		Tags:           item.Tags,
		AvailableFrom:  item.AvailableFrom,
		AvailableUntil: item.AvailableUntil,
	}
}
