package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort      string        `koanf:"server_port"`
	ServerHost      string        `koanf:"server_host"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// Database configuration
	DBDriver      string `koanf:"db_driver"`
	DBHost        string `koanf:"db_host"`
	DBPort        string `koanf:"db_port"`
	DBUser        string `koanf:"db_user"`
	DBPassword    string `koanf:"db_password"`
	DBName        string `koanf:"db_name"`
	DBSSLMode     string `koanf:"db_ssl_mode"`
	SQLitePath    string `koanf:"sqlite_path"`
	MigrationsDir string `koanf:"migrations_dir"`

	// Redis configuration
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	// JWT configuration
	JWTSecret string        `koanf:"jwt_secret"`
	TokenTTL  time.Duration `koanf:"token_ttl"`

	// Recipe rules
	MinCookingTime        int    `koanf:"min_cooking_time"`
	MinIngredientAmount   int    `koanf:"min_ingredient_amount"`
	PageSize              int    `koanf:"page_size"`
	MaxPageSize           int    `koanf:"max_page_size"`
	SubscriptionsPageSize int    `koanf:"subscriptions_page_size"`
	RecipesPreviewLimit   int    `koanf:"recipes_preview_limit"`
	ReportFooter          string `koanf:"report_footer"`

	RecipeCreateLimit  int           `koanf:"recipe_create_limit"`
	RecipeCreateWindow time.Duration `koanf:"recipe_create_window"`

	// Image storage
	ImageStorage string `koanf:"image_storage"`
	MediaDir     string `koanf:"media_dir"`
	MediaURL     string `koanf:"media_url"`
	S3Bucket     string `koanf:"s3_bucket"`
	S3Region     string `koanf:"s3_region"`
	S3PublicURL  string `koanf:"s3_public_url"`

	// Logging
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// DefaultConfigPaths are probed in order when CONFIG_PATH is not set
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

// secretKeys are overlaid from the secrets directory when present
var secretKeys = []string{
	"db_user",
	"db_password",
	"jwt_secret",
	"redis_password",
	"redis_url",
}

var sliceKeys = []string{
	"cors_origins",
}

func defaultConfig() *Config {
	return &Config{
		ServerPort:      "8080",
		ServerHost:      "0.0.0.0",
		ShutdownTimeout: 5 * time.Second,
		CORSOrigins:     []string{"*"},

		DBDriver:      "postgres",
		DBHost:        "localhost",
		DBPort:        "5432",
		DBUser:        "postgres",
		DBName:        "foodgram",
		DBSSLMode:     "disable",
		SQLitePath:    "foodgram.db",
		MigrationsDir: "migrations",

		RedisPort: "6379",

		TokenTTL: 24 * time.Hour,

		MinCookingTime:        1,
		MinIngredientAmount:   1,
		PageSize:              6,
		MaxPageSize:           100,
		SubscriptionsPageSize: 10,
		RecipesPreviewLimit:   3,
		ReportFooter:          "FoodGram",

		RecipeCreateLimit:  30,
		RecipeCreateWindow: time.Hour,

		ImageStorage: "local",
		MediaDir:     "media",
		MediaURL:     "/media",
		S3Region:     "us-east-1",

		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// a .env file (development only), environment variables and secrets
func LoadConfig() (*Config, error) {
	environment := GetEnvironment()
	if environment == Development {
		// Missing .env is fine
		_ = godotenv.Load()
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, name := range secretKeys {
		if value := readSecret(name); value != "" {
			if err := k.Set(name, value); err != nil {
				return nil, fmt.Errorf("failed to apply secret %s: %w", name, err)
			}
		}
	}

	if err := splitSliceKeys(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransformFunc maps SERVER_PORT to server_port and drops unrelated variables
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	if _, ok := knownKeys[key]; ok {
		return key
	}
	return ""
}

var knownKeys = func() map[string]struct{} {
	keys := make(map[string]struct{})
	k := koanf.New(".")
	_ = k.Load(structs.Provider(defaultConfig(), "koanf"), nil)
	for _, key := range k.Keys() {
		keys[key] = struct{}{}
	}
	return keys
}()

// splitSliceKeys turns comma separated strings coming from env into slices
func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		raw, ok := k.Get(key).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return err
		}
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
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

// PostgresDSN returns the connection string for the configured postgres database
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisEnabled reports whether a Redis endpoint is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
