package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// DefaultOutputPath is where the snapshot document is written
const DefaultOutputPath = "data/notion-data.json"

// Config holds all configuration for the application
type Config struct {
	Notion  NotionConfig
	Output  OutputConfig
	Storage StorageConfig
	Sync    SyncConfig
	Log     LogConfig
}

// NotionConfig holds the API credential and the four database ids
type NotionConfig struct {
	APIKey    string
	BaseURL   string        `validate:"required,url"`
	Version   string        `validate:"required"`
	Timeout   time.Duration `validate:"gte=0"`
	Databases Databases
}

// Databases maps each feed to its Notion database id. Empty ids disable the feed.
type Databases struct {
	Habits     string
	Journal    string
	Skincare   string
	Treatments string
}

// OutputConfig holds the snapshot file location
type OutputConfig struct {
	Path string `validate:"required"`
}

// StorageConfig holds the optional mirror store configuration
type StorageConfig struct {
	Type          string `validate:"omitempty,oneof=dynamodb mongodb postgresql"` // empty disables mirroring
	Region        string `validate:"required_if=Type dynamodb"`                   // For AWS DynamoDB
	TableName     string `validate:"required_if=Type dynamodb"`
	Endpoint      string `validate:"omitempty,url"` // Custom endpoint for local testing
	MongoDBURI    string `validate:"required_if=Type mongodb"`
	MongoDatabase string `validate:"required_if=Type mongodb"`
	PostgresURI   string `validate:"required_if=Type postgresql"`
}

// SyncConfig holds scheduling configuration
type SyncConfig struct {
	Schedule string // standard cron expression, empty runs once
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=console json"`
}

// Load reads an optional env file, then loads configuration from environment
// variables with defaults. Variables already set in the process take precedence.
// The result is not validated; callers apply overrides and then call Validate.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Notion: NotionConfig{
			APIKey:  getEnv("NOTION_API_KEY", ""),
			BaseURL: getEnv("NOTION_API_URL", "https://api.notion.com/v1"),
			Version: getEnv("NOTION_VERSION", "2022-06-28"),
			Timeout: getEnvDuration("NOTION_TIMEOUT", 0),
			Databases: Databases{
				Habits:     getEnv("DB_HABITS", ""),
				Journal:    getEnv("DB_JOURNAL", ""),
				Skincare:   getEnv("DB_SKINCARE", ""),
				Treatments: getEnv("DB_TREATMENTS", ""),
			},
		},
		Output: OutputConfig{
			Path: getEnv("OUTPUT_PATH", DefaultOutputPath),
		},
		Storage: StorageConfig{
			Type:          strings.ToLower(getEnv("STORAGE_TYPE", "")),
			Region:        getEnv("AWS_REGION", "us-west-2"),
			TableName:     getEnv("TABLE_NAME", "notion_snapshots"),
			Endpoint:      getEnv("DYNAMODB_ENDPOINT", ""), // For local DynamoDB
			MongoDBURI:    getEnv("MONGODB_URI", ""),
			MongoDatabase: getEnv("MONGODB_DATABASE", "notion_sync"),
			PostgresURI:   getEnv("POSTGRES_URI", ""),
		},
		Sync: SyncConfig{
			Schedule: getEnv("SYNC_SCHEDULE", ""),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "console")),
		},
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Notion.APIKey == "" && len(c.Notion.Databases.Missing()) < 4 {
		return errors.New("NOTION_API_KEY is required when a database id is configured")
	}
	if c.Sync.Schedule != "" {
		if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
			return fmt.Errorf("invalid SYNC_SCHEDULE %q: %w", c.Sync.Schedule, err)
		}
	}
	return nil
}

// Missing returns the feeds whose database id is not configured
func (d Databases) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, id string }{
		{"habits", d.Habits},
		{"journal", d.Journal},
		{"skincare", d.Skincare},
		{"treatments", d.Treatments},
	} {
		if f.id == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
