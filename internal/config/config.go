package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"faithnews/internal/domain"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config представляет основную конфигурацию сервиса faithnews.
// Содержит настройки сервера, логгера, агрегатора и архива статей.
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Logger   LoggerConfig   `json:"logger" yaml:"logger"`
	App      AppConfig      `json:"app" yaml:"app"`
	Database DatabaseConfig `json:"database" yaml:"database"`
}

// ServerConfig содержит настройки HTTP-сервера.
// RefreshRateLimit ограничивает частоту ручного обновления кэша с одного IP.
// TrustForwardedFor включается только за доверенным обратным прокси: тогда
// адрес клиента берется из X-Forwarded-For.
type ServerConfig struct {
	Address           string  `json:"address" yaml:"address"`
	CORSOrigin        string  `json:"cors_origin" yaml:"cors_origin"`
	RefreshRateLimit  float64 `json:"refresh_rate_limit" yaml:"refresh_rate_limit"`
	RefreshRateBurst  int     `json:"refresh_rate_burst" yaml:"refresh_rate_burst"`
	TrustForwardedFor bool    `json:"trust_forwarded_for" yaml:"trust_forwarded_for"`
	ShutdownTimeout   string  `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggerConfig содержит настройки системы логирования.
// Файлы ротируются по размеру; пустое имя файла отключает запись в файл.
type LoggerConfig struct {
	Level      string `json:"level" yaml:"level"`
	File       string `json:"file" yaml:"file"`
	ErrorFile  string `json:"error_file" yaml:"error_file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	Console    bool   `json:"console" yaml:"console"`
}

// AppConfig содержит настройки агрегатора: список лент, расписание обновления,
// таймауты загрузки и параметры пагинации.
type AppConfig struct {
	Sources          []domain.FeedSource `json:"sources" yaml:"sources"`
	RefreshSchedule  string              `json:"refresh_schedule" yaml:"refresh_schedule"`
	FetchTimeout     string              `json:"fetch_timeout" yaml:"fetch_timeout"`
	FetchConcurrency int                 `json:"fetch_concurrency" yaml:"fetch_concurrency"`
	MaxFeedBytes     int64               `json:"max_feed_bytes" yaml:"max_feed_bytes"`
	UserAgent        string              `json:"user_agent" yaml:"user_agent"`
	DefaultPageSize  int                 `json:"default_page_size" yaml:"default_page_size"`
	MaxPageSize      int                 `json:"max_page_size" yaml:"max_page_size"`
	PlaceholderSeed  int64               `json:"placeholder_seed" yaml:"placeholder_seed"`
}

// DatabaseConfig содержит параметры подключения к PostgreSQL для архива статей.
// Архив необязателен и включается флагом Enabled.
type DatabaseConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbname" yaml:"dbname"`
	SSLMode  string `json:"sslmode" yaml:"sslmode"`
}

// DefaultUserAgent имитирует браузер: часть лент отдаёт 403 ботам.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DSN возвращает строку подключения к PostgreSQL в формате URI.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.DBName,
		c.SSLMode)
}

// Load загружает конфигурацию из файла поверх значений по умолчанию.
// Формат определяется по расширению: .yaml/.yml разбираются как YAML,
// всё остальное как JSON.
func Load(configPath string) (*Config, error) {
	cfg := New()
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML from file %s: %w", configPath, err)
		}
	default:
		if err := json.Unmarshal(fileData, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON from file %s: %w", configPath, err)
		}
	}
	return cfg, nil
}

// New создает экземпляр Config со значениями по умолчанию.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:          ":3002",
			CORSOrigin:       "*",
			RefreshRateLimit: 0.2,
			RefreshRateBurst: 2,
			ShutdownTimeout:  "10s",
		},
		Logger: LoggerConfig{
			Level:      "info",
			File:       "faithnews.log",
			ErrorFile:  "faithnews_error.log",
			MaxSizeMB:  64,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Console:    true,
		},
		App: AppConfig{
			Sources:          []domain.FeedSource{},
			RefreshSchedule:  "@every 5m",
			FetchTimeout:     "10s",
			FetchConcurrency: 16,
			MaxFeedBytes:     10 << 20,
			UserAgent:        DefaultUserAgent,
			DefaultPageSize:  12,
			MaxPageSize:      100,
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

// Validate проверяет корректность конфигурации и возвращает первую найденную проблему.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is not set")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid server.shutdown_timeout: %w", err)
	}
	if c.Server.RefreshRateLimit <= 0 || c.Server.RefreshRateBurst <= 0 {
		return fmt.Errorf("server.refresh_rate_limit and server.refresh_rate_burst must be positive")
	}
	if len(c.App.Sources) == 0 {
		return fmt.Errorf("app.sources must not be empty")
	}
	names := make(map[string]struct{}, len(c.App.Sources))
	for _, src := range c.App.Sources {
		if src.Name == "" {
			return fmt.Errorf("source name cannot be empty for url: %s", src.URL)
		}
		if _, err := url.ParseRequestURI(src.URL); err != nil {
			return fmt.Errorf("invalid url in app.sources: %s", src.URL)
		}
		if src.Category == "" {
			return fmt.Errorf("source %q has no category", src.Name)
		}
		if _, dup := names[src.Name]; dup {
			return fmt.Errorf("duplicate source name: %s", src.Name)
		}
		names[src.Name] = struct{}{}
	}
	if _, err := cron.ParseStandard(c.App.RefreshSchedule); err != nil {
		return fmt.Errorf("invalid app.refresh_schedule: %w", err)
	}
	if d, err := time.ParseDuration(c.App.FetchTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid app.fetch_timeout: %q", c.App.FetchTimeout)
	}
	if c.App.MaxFeedBytes <= 0 {
		return fmt.Errorf("app.max_feed_bytes must be a positive number")
	}
	if c.App.FetchConcurrency <= 0 {
		return fmt.Errorf("app.fetch_concurrency must be a positive number")
	}
	if c.App.DefaultPageSize <= 0 {
		return fmt.Errorf("app.default_page_size must be a positive number")
	}
	if c.App.MaxPageSize < c.App.DefaultPageSize {
		return fmt.Errorf("app.max_page_size must not be less than app.default_page_size")
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is not set")
		}
		if c.Database.Username == "" {
			return fmt.Errorf("database username is not set")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is not set")
		}
	}
	return nil
}

// FetchTimeoutDuration возвращает таймаут загрузки одной ленты.
// Вызывать после Validate.
func (a AppConfig) FetchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(a.FetchTimeout)
	return d
}

// ShutdownTimeoutDuration возвращает таймаут graceful shutdown HTTP-сервера.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.ShutdownTimeout)
	return d
}
