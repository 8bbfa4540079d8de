package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Database configuration. DBDriver is "postgres" or "sqlite".
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string

	// Meal recommender (DeepSeek chat completions). An empty key disables it.
	DeepSeekAPIKey string
	DeepSeekURL    string
	DeepSeekModel  string

	// Plan export
	S3Bucket  string
	AWSRegion string

	// Plan generation rate limit per user
	PlanRateLimit  int
	PlanRateWindow time.Duration

	LogMode          string
	EngineConfigPath string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}
	loadCommon(cfg, env)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment from GitHub Actions variables and secrets
func loadCIConfig(cfg *Config) error {
	cfg.ServerPort = os.Getenv("SERVER_PORT")
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}
	cfg.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.RedisURL = os.Getenv("TEST_REDIS_URL")
	return nil
}

// loadDevConfig reads environment variables first and falls back to Docker secrets,
// then to local defaults so the API runs against sqlite without any setup.
func loadDevConfig(cfg *Config) {
	cfg.ServerPort = envOrSecret("SERVER_PORT", "server_port", "8080")
	cfg.ServerHost = envOrSecret("SERVER_HOST", "server_host", "0.0.0.0")
	cfg.DBDriver = envOrSecret("DB_DRIVER", "db_driver", "sqlite")
	cfg.DBHost = envOrSecret("DB_HOST", "db_host", "localhost")
	cfg.DBPort = envOrSecret("DB_PORT", "db_port", "5432")
	cfg.DBUser = envOrSecret("DB_USER", "db_user", "postgres")
	cfg.DBPassword = envOrSecret("DB_PASSWORD", "db_password", "")
	cfg.DBName = envOrSecret("DB_NAME", "db_name", "nutrition")
	cfg.DBSSLMode = envOrSecret("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.SQLitePath = envOrSecret("SQLITE_PATH", "sqlite_path", "nutrition.db")
	cfg.RedisHost = envOrSecret("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = envOrSecret("REDIS_PORT", "redis_port", "6379")
	cfg.RedisPassword = envOrSecret("REDIS_PASSWORD", "redis_password", "")
	cfg.RedisURL = envOrSecret("REDIS_URL", "redis_url", "")
	cfg.JWTSecret = envOrSecret("JWT_SECRET", "jwt_secret", "")
	cfg.DeepSeekAPIKey = envOrSecret("DEEPSEEK_API_KEY", "deepseek_api_key", "")
}

// loadProdConfig loads configuration for production environment from Docker secrets
func loadProdConfig(cfg *Config) {
	cfg.ServerPort = readSecret("server_port")
	cfg.ServerHost = readSecret("server_host")
	cfg.DBDriver = "postgres"
	cfg.DBHost = readSecret("db_host")
	cfg.DBPort = readSecret("db_port")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = readSecret("db_name")
	cfg.DBSSLMode = readSecret("db_ssl_mode")
	cfg.RedisHost = readSecret("redis_host")
	cfg.RedisPort = readSecret("redis_port")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisURL = readSecret("redis_url")
	cfg.DeepSeekAPIKey = readSecret("deepseek_api_key")
}

// loadCommon fills settings that are plain environment variables everywhere.
func loadCommon(cfg *Config, env Environment) {
	if cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}
	cfg.RedisDB = 0
	cfg.DeepSeekURL = getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1/chat/completions")
	cfg.DeepSeekModel = getEnv("DEEPSEEK_MODEL", "deepseek-chat")
	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	cfg.AllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))
	cfg.PlanRateLimit = getEnvInt("PLAN_RATE_LIMIT", 10)
	cfg.PlanRateWindow = getEnvDuration("PLAN_RATE_WINDOW", time.Minute)
	cfg.EngineConfigPath = os.Getenv("ENGINE_CONFIG_PATH")

	mode := "development"
	if env == Production {
		mode = "production"
	}
	cfg.LogMode = getEnv("LOG_MODE", mode)
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func envOrSecret(envName, secretName, fallback string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return fallback
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(name string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return n
	}
	return fallback
}

func getEnvDuration(name string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(name)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
