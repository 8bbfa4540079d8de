package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/nutrition-engine/backend/internal/nutrition"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, name := range []string{
		"SERVER_PORT", "DB_DRIVER", "DB_HOST", "DB_NAME", "DB_PASSWORD", "JWT_SECRET",
		"REDIS_URL", "REDIS_HOST", "PLAN_RATE_LIMIT", "PLAN_RATE_WINDOW", "LOG_MODE", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "nutrition")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("PLAN_RATE_LIMIT", "3")
	t.Setenv("PLAN_RATE_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 3, cfg.PlanRateLimit)
	assert.Equal(t, 30*time.Second, cfg.PlanRateWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "deepseek-chat", cfg.DeepSeekModel)
	assert.Equal(t, "development", cfg.LogMode)
	assert.Contains(t, cfg.DSN(), "dbname=nutrition")
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "nutrition.db", cfg.SQLitePath)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 10, cfg.PlanRateLimit)
	assert.Equal(t, time.Minute, cfg.PlanRateWindow)
}

func TestLoadConfig_SecretsFallback(t *testing.T) {
	isolate(t)
	dir := os.Getenv("SECRETS_DIR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("from-file\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	isolate(t)

	_, err := LoadConfig()
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "JWTSecret", verrs[0].Field)
}

func TestValidateConfig_Production(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	err := ValidateConfig(&Config{ServerPort: "8080", JWTSecret: "s", DBDriver: "sqlite", SQLitePath: "x.db"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite is not allowed in production")
	assert.Contains(t, err.Error(), "RedisPassword")
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("PROD"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment(""))
}

func TestLoadEngineConfig_Embedded(t *testing.T) {
	cfg, err := LoadEngineConfig("")
	require.NoError(t, err)
	assert.Equal(t, 0.35, cfg.Planner.MealSplit[nutrition.Lunch])
	assert.Equal(t, 10*time.Second, cfg.Planner.RecommenderTimeout)
	assert.Equal(t, 0.3, cfg.Analytics.CorrelationThreshold)
	assert.Equal(t, 10, cfg.Analytics.MinCorrelationPairs)
}

func TestLoadEngineConfig_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner:\n  recommender_timeout: 2s\n  max_items_per_meal: 4\nanalytics:\n  relative_slope: true\n"), 0o600))

	cfg, err := LoadEngineConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Planner.RecommenderTimeout)
	assert.Equal(t, 4, cfg.Planner.MaxItemsPerMeal)
	assert.Equal(t, 3, cfg.Planner.MinItemsPerMeal)
	assert.True(t, cfg.Analytics.RelativeSlope)
	assert.Len(t, cfg.Planner.MealSplit, 4)
}

func TestLoadEngineConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("planner:\n  meal_split:\n    brunch: 0.5\n    lunch: 0.9\n    dinner: 0.5\n"), 0o600))

	_, err := LoadEngineConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown meal type")
	assert.Contains(t, err.Error(), "above 1")

	_, err = LoadEngineConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
