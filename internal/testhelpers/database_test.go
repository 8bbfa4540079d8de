package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/model"
)

func TestSetupSQLite(t *testing.T) {
	db := SetupSQLite(t)

	student := model.Student{ID: "s1", SchoolID: "school-1", Age: 9, Gender: "male"}
	require.NoError(t, db.Create(&student).Error)

	var got model.Student
	require.NoError(t, db.First(&got, "id = ?", "s1").Error)
	assert.Equal(t, 9, got.Age)
}

func TestSetupTestDatabase(t *testing.T) {
	db := SetupTestDatabase(t)

	item := model.FoodItem{SchoolID: "school-1", Name: "Apple", Category: "fruit", Calories: 95}
	require.NoError(t, db.Create(&item).Error)
	assert.NotZero(t, item.ID)

	var count int64
	require.NoError(t, db.Table("schema_migrations").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
