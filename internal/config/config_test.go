package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"faithnews/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func validConfig() *Config {
	cfg := New()
	cfg.App.Sources = []domain.FeedSource{
		{Name: "Gospel Coalition", URL: "https://www.thegospelcoalition.org/feed/", Category: "theology"},
	}
	return cfg
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  address: ":9000"
app:
  refresh_schedule: "@every 1m"
  sources:
    - name: Relevant Magazine
      url: https://relevantmagazine.com/feed/
      category: youth
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, "@every 1m", cfg.App.RefreshSchedule)
	require.Len(t, cfg.App.Sources, 1)
	assert.Equal(t, "youth", cfg.App.Sources[0].Category)
	// defaults survive
	assert.Equal(t, 12, cfg.App.DefaultPageSize)
	assert.Equal(t, "10s", cfg.App.FetchTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
		"logger": {"level": "debug"},
		"app": {"sources": [{"name": "CCM", "url": "https://www.ccmmagazine.com/feed/", "category": "music"}]}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	require.Len(t, cfg.App.Sources, 1)
	assert.Equal(t, "CCM", cfg.App.Sources[0].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, "config.yml", "app: [unterminated")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no sources", func(c *Config) { c.App.Sources = nil }, "app.sources must not be empty"},
		{"bad url", func(c *Config) { c.App.Sources[0].URL = "not a url" }, "invalid url"},
		{"empty name", func(c *Config) { c.App.Sources[0].Name = "" }, "source name cannot be empty"},
		{"empty category", func(c *Config) { c.App.Sources[0].Category = "" }, "has no category"},
		{"duplicate name", func(c *Config) {
			c.App.Sources = append(c.App.Sources, c.App.Sources[0])
		}, "duplicate source name"},
		{"bad schedule", func(c *Config) { c.App.RefreshSchedule = "every now and then" }, "invalid app.refresh_schedule"},
		{"bad timeout", func(c *Config) { c.App.FetchTimeout = "soon" }, "invalid app.fetch_timeout"},
		{"zero concurrency", func(c *Config) { c.App.FetchConcurrency = 0 }, "fetch_concurrency"},
		{"zero feed size", func(c *Config) { c.App.MaxFeedBytes = 0 }, "max_feed_bytes"},
		{"page sizes", func(c *Config) { c.App.MaxPageSize = 5 }, "max_page_size"},
		{"db without user", func(c *Config) {
			c.Database.Enabled = true
			c.Database.DBName = "faithnews"
		}, "database username is not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 10*time.Second, cfg.App.FetchTimeoutDuration())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeoutDuration())
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5432, Username: "news", Password: "p@ss", DBName: "faith", SSLMode: "disable"}
	assert.Equal(t, "postgres://news:p%40ss@db:5432/faith?sslmode=disable", db.DSN())
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.App.Sources, 47)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "@every 5m", cfg.App.RefreshSchedule)
	assert.Equal(t, DefaultUserAgent, cfg.App.UserAgent)
}
