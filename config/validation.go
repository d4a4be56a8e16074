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

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs []string
	add := func(field, message string) {
		errs = append(errs, ValidationError{Field: field, Message: message}.Error())
	}

	if cfg.JWTSecret == "" && !IsRelaxed() {
		add("jwt_secret", "is required outside development and test")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBPassword == "" && IsProduction() {
			add("db_password", "is required in production")
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			add("sqlite_path", "is required for the sqlite driver")
		}
	default:
		add("db_driver", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}

	if cfg.MinCookingTime < 1 {
		add("min_cooking_time", "must be at least 1")
	}
	if cfg.MinIngredientAmount < 1 {
		add("min_ingredient_amount", "must be at least 1")
	}
	if cfg.PageSize < 1 || cfg.PageSize > cfg.MaxPageSize {
		add("page_size", "must be between 1 and max_page_size")
	}
	if cfg.SubscriptionsPageSize < 1 || cfg.SubscriptionsPageSize > cfg.MaxPageSize {
		add("subscriptions_page_size", "must be between 1 and max_page_size")
	}
	if cfg.RecipesPreviewLimit < 0 {
		add("recipes_preview_limit", "must not be negative")
	}

	switch cfg.ImageStorage {
	case "local":
		if cfg.MediaDir == "" {
			add("media_dir", "is required for local image storage")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			add("s3_bucket", "is required for s3 image storage")
		}
	default:
		add("image_storage", fmt.Sprintf("unsupported backend %q", cfg.ImageStorage))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
