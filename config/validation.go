package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "\n")
}

// ValidateConfig checks the loaded configuration. Postgres connections need a
// host and database name; production additionally needs credentials.
func ValidateConfig(cfg *Config) error {
	env := GetEnvironment()
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"ServerPort", "is required"})
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{"JWTSecret", "is required"})
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			errs = append(errs, ValidationError{"DBHost", "is required for postgres"})
		}
		if cfg.DBName == "" {
			errs = append(errs, ValidationError{"DBName", "is required for postgres"})
		}
		if env == Production || env == CI {
			if cfg.DBPassword == "" {
				errs = append(errs, ValidationError{"DBPassword", fmt.Sprintf("is required in %s", env)})
			}
		}
	case "sqlite":
		if env == Production {
			errs = append(errs, ValidationError{"DBDriver", "sqlite is not allowed in production"})
		}
		if cfg.SQLitePath == "" {
			errs = append(errs, ValidationError{"SQLitePath", "is required for sqlite"})
		}
	default:
		errs = append(errs, ValidationError{"DBDriver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if env == Production && cfg.RedisPassword == "" && cfg.RedisURL == "" {
		errs = append(errs, ValidationError{"RedisPassword", "is required in production"})
	}
	if cfg.PlanRateLimit < 0 {
		errs = append(errs, ValidationError{"PlanRateLimit", "must not be negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
