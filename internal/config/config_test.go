package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"NOTION_API_KEY", "NOTION_API_URL", "NOTION_VERSION", "NOTION_TIMEOUT",
	"DB_HABITS", "DB_JOURNAL", "DB_SKINCARE", "DB_TREATMENTS",
	"OUTPUT_PATH", "STORAGE_TYPE", "AWS_REGION", "TABLE_NAME", "DYNAMODB_ENDPOINT",
	"MONGODB_URI", "MONGODB_DATABASE", "POSTGRES_URI", "SYNC_SCHEDULE", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
	assert.Equal(t, "https://api.notion.com/v1", cfg.Notion.BaseURL)
	assert.Equal(t, "2022-06-28", cfg.Notion.Version)
	assert.Zero(t, cfg.Notion.Timeout)
	assert.Empty(t, cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.ElementsMatch(t, []string{"habits", "journal", "skincare", "treatments"}, cfg.Notion.Databases.Missing())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTION_API_KEY", "secret")
	t.Setenv("DB_HABITS", "h")
	t.Setenv("DB_JOURNAL", "j")
	t.Setenv("NOTION_TIMEOUT", "15s")
	t.Setenv("SYNC_SCHEDULE", "*/15 * * * *")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Notion.APIKey)
	assert.Equal(t, "h", cfg.Notion.Databases.Habits)
	assert.Equal(t, 15*time.Second, cfg.Notion.Timeout)
	assert.Equal(t, "*/15 * * * *", cfg.Sync.Schedule)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"skincare", "treatments"}, cfg.Notion.Databases.Missing())
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{"NOTION_API_KEY", "DB_SKINCARE", "OUTPUT_PATH"} {
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("OUTPUT_PATH", "from-process.json")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOTION_API_KEY=file-key\nDB_SKINCARE=s\nOUTPUT_PATH=from-file.json\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("NOTION_API_KEY")
		os.Unsetenv("DB_SKINCARE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Notion.APIKey)
	assert.Equal(t, "s", cfg.Notion.Databases.Skincare)
	assert.Equal(t, "from-process.json", cfg.Output.Path)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"database without key", map[string]string{"DB_JOURNAL": "j"}},
		{"bad schedule", map[string]string{"SYNC_SCHEDULE": "every day"}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "redis"}},
		{"mongo without uri", map[string]string{"STORAGE_TYPE": "mongodb"}},
		{"postgres without uri", map[string]string{"STORAGE_TYPE": "postgresql"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad base url", map[string]string{"NOTION_API_URL": "not a url"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load("")
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_OverridesBeforeValidate(t *testing.T) {
	clearEnv(t)
	t.Setenv("SYNC_SCHEDULE", "every day")
	t.Setenv("LOG_LEVEL", "loud")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	cfg.Sync.Schedule = "*/15 * * * *"
	cfg.Log.Level = "debug"
	assert.NoError(t, cfg.Validate())
}
